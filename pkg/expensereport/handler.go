package expensereport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/reisegeld/reisegeld/internal/rest"
	"github.com/reisegeld/reisegeld/pkg/exchangerate"
	log "github.com/sirupsen/logrus"
)

type CostDTO struct {
	Amount       float64                     `json:"amount"`
	Currency     string                      `json:"currency,omitempty"`
	Date         *time.Time                  `json:"date,omitempty"`
	Receipts     []int                       `json:"receipts,omitempty"`
	ExchangeRate *exchangerate.ConversionDTO `json:"exchangeRate,omitempty"`
}

type ExpenseDTO struct {
	ID          int     `json:"id,omitempty"`
	Description string  `json:"description"`
	Cost        CostDTO `json:"cost"`
}

type ExpenseReportDTO struct {
	ID       int          `json:"id"`
	Uid      string       `json:"uid"`
	OwnerID  int          `json:"ownerId"`
	EditorID int          `json:"editorId,omitempty"`
	Name     string       `json:"name"`
	Comment  string       `json:"comment,omitempty"`
	State    State        `json:"state"`
	Expenses []ExpenseDTO `json:"expenses"`
	History  []int        `json:"history,omitempty"`
	Historic bool         `json:"historic"`
}

type commentDTO struct {
	Comment string `json:"comment"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating expense report")
	w.Header().Set("Content-Type", "application/json")

	var dto ExpenseReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Name == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Name is required"})
		return
	}

	created, err := h.service.Create(r.Context(), dtoToReport(dto))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(reportToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := reportId(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	report, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(reportToDTO(report)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetOwn(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.service.GetOwn)
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.service.GetAll)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := reportId(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto ExpenseReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	report := dtoToReport(dto)
	report.ID = id

	updated, err := h.service.Update(r.Context(), report)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(reportToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := reportId(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SubmitForExamination(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := reportId(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	report, err := h.service.SubmitForExamination(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(reportToDTO(report)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Reject)
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Refund)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, id int, comment string) (ExpenseReport, error)) {
	w.Header().Set("Content-Type", "application/json")
	id, err := reportId(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto commentDTO
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}
	report, err := op(r.Context(), id, dto.Comment)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(reportToDTO(report)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, list func(ctx context.Context) ([]ExpenseReport, error)) {
	w.Header().Set("Content-Type", "application/json")
	reports, err := list(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	dtos := make([]ExpenseReportDTO, 0, len(reports))
	for _, report := range reports {
		dtos = append(dtos, reportToDTO(report))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrReportNotFound):
		http.Error(w, "expense report not found", http.StatusNotFound)
	case errors.Is(err, ErrNotAllowed):
		http.Error(w, "not allowed", http.StatusForbidden)
	case errors.Is(err, ErrInvalidState):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidDate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func reportId(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["reportId"])
}

func reportToDTO(report ExpenseReport) ExpenseReportDTO {
	expenses := make([]ExpenseDTO, 0, len(report.Expenses))
	for _, expense := range report.Expenses {
		expenses = append(expenses, expenseToDTO(expense))
	}
	return ExpenseReportDTO{
		ID:       report.ID,
		Uid:      report.UID,
		OwnerID:  report.OwnerID,
		EditorID: report.EditorID,
		Name:     report.Name,
		Comment:  report.Comment,
		State:    report.State,
		Expenses: expenses,
		History:  report.History,
		Historic: report.Historic,
	}
}

func dtoToReport(dto ExpenseReportDTO) ExpenseReport {
	expenses := make([]Expense, 0, len(dto.Expenses))
	for _, expense := range dto.Expenses {
		expenses = append(expenses, dtoToExpense(expense))
	}
	return ExpenseReport{
		ID:       dto.ID,
		UID:      dto.Uid,
		OwnerID:  dto.OwnerID,
		EditorID: dto.EditorID,
		Name:     dto.Name,
		Comment:  dto.Comment,
		State:    dto.State,
		Expenses: expenses,
		History:  dto.History,
		Historic: dto.Historic,
	}
}

func expenseToDTO(expense Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:          expense.ID,
		Description: expense.Description,
		Cost:        costToDTO(expense.Cost),
	}
}

func dtoToExpense(dto ExpenseDTO) Expense {
	return Expense{
		ID:          dto.ID,
		Description: dto.Description,
		Cost:        dtoToCost(dto.Cost),
	}
}

func costToDTO(cost Cost) CostDTO {
	dto := CostDTO{
		Amount:   cost.Amount,
		Currency: cost.Currency,
		Receipts: cost.Receipts,
	}
	if !cost.Date.IsZero() {
		date := cost.Date
		dto.Date = &date
	}
	if cost.ExchangeRate != nil {
		conversion := exchangerate.ConversionDTO(*cost.ExchangeRate)
		dto.ExchangeRate = &conversion
	}
	return dto
}

func dtoToCost(dto CostDTO) Cost {
	cost := Cost{
		Amount:   dto.Amount,
		Currency: dto.Currency,
		Receipts: dto.Receipts,
	}
	if dto.Date != nil {
		cost.Date = *dto.Date
	}
	if dto.ExchangeRate != nil {
		conversion := exchangerate.Conversion(*dto.ExchangeRate)
		cost.ExchangeRate = &conversion
	}
	return cost
}
