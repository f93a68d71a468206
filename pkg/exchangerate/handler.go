package exchangerate

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/reisegeld/reisegeld/internal/rest"
)

type ConversionDTO struct {
	Date   time.Time `json:"date"`
	Rate   float64   `json:"rate"`
	Amount float64   `json:"amount"`
}

type Handler struct {
	converter *Converter
}

func NewHandler(converter *Converter) *Handler {
	return &Handler{converter: converter}
}

// Convert resolves a conversion for ?date&amount&from[&to]. A request that
// cannot be converted is answered with 204, not an error.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	date, err := time.Parse("2006-01-02", query.Get("date"))
	if err != nil {
		writeBadRequest(w, "Invalid date, expected YYYY-MM-DD", err)
		return
	}
	amount, err := strconv.ParseFloat(query.Get("amount"), 64)
	if err != nil || amount < 0 {
		writeBadRequest(w, "Invalid amount", err)
		return
	}
	from := query.Get("from")
	if len(from) != 3 {
		writeBadRequest(w, "Invalid source currency code", nil)
		return
	}

	conversion, err := h.converter.Convert(r.Context(), date, amount, from, query.Get("to"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if conversion == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ConversionDTO(*conversion)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeBadRequest(w http.ResponseWriter, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	response := rest.ErrorResponse{Error: message}
	if err != nil {
		response.Details = err.Error()
	}
	_ = json.NewEncoder(w).Encode(response)
}
