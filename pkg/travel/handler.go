package travel

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

type RecordDTO struct {
	ID            int        `json:"id,omitempty"`
	Type          RecordType `json:"type"`
	StartDate     time.Time  `json:"startDate"`
	EndDate       time.Time  `json:"endDate"`
	StartLocation string     `json:"startLocation,omitempty"`
	EndLocation   string     `json:"endLocation,omitempty"`
	Location      string     `json:"location,omitempty"`
	Distance      float64    `json:"distance,omitempty"`
	Transport     Transport  `json:"transport,omitempty"`
	Purpose       Purpose    `json:"purpose,omitempty"`
	Cost          CostDTO    `json:"cost"`
}

type CateringDayDTO struct {
	Date      time.Time `json:"date"`
	Breakfast bool      `json:"breakfast"`
	Lunch     bool      `json:"lunch"`
	Dinner    bool      `json:"dinner"`
}

type TravelDTO struct {
	ID                    int              `json:"id"`
	Uid                   string           `json:"uid"`
	TravelerID            int              `json:"travelerId"`
	EditorID              int              `json:"editorId,omitempty"`
	Name                  string           `json:"name"`
	Reason                string           `json:"reason"`
	DestinationPlace      string           `json:"destinationPlace"`
	InsideOfEU            bool             `json:"travelInsideOfEU"`
	State                 State            `json:"state"`
	Comment               string           `json:"comment,omitempty"`
	StartDate             time.Time        `json:"startDate"`
	EndDate               time.Time        `json:"endDate"`
	Advance               CostDTO          `json:"advance"`
	ProfessionalShare     float64          `json:"professionalShare,omitempty"`
	ClaimOvernightLumpSum bool             `json:"claimOvernightLumpSum"`
	Records               []RecordDTO      `json:"records"`
	CateringNoRefund      []CateringDayDTO `json:"cateringNoRefund"`
	History               []int            `json:"history,omitempty"`
	Historic              bool             `json:"historic"`
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
	log.Debug("Applying for new travel")
	w.Header().Set("Content-Type", "application/json")

	var dto TravelDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Name == "" || dto.Reason == "" || dto.DestinationPlace == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Name, reason and destination are required"})
		return
	}

	created, err := h.service.Create(r.Context(), dtoToTravel(dto))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(travelToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := travelId(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	travel, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(travelToDTO(travel)); err != nil {
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
	id, err := travelId(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto TravelDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	travel := dtoToTravel(dto)
	travel.ID = id

	updated, err := h.service.Update(r.Context(), travel)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(travelToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := travelId(r)
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

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Approve)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Reject)
}

func (h *Handler) SubmitForExamination(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := travelId(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	travel, err := h.service.SubmitForExamination(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(travelToDTO(travel)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Refund)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, id int, comment string) (Travel, error)) {
	w.Header().Set("Content-Type", "application/json")
	id, err := travelId(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto commentDTO
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}
	travel, err := op(r.Context(), id, dto.Comment)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(travelToDTO(travel)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, list func(ctx context.Context) ([]Travel, error)) {
	w.Header().Set("Content-Type", "application/json")
	travels, err := list(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	dtos := make([]TravelDTO, 0, len(travels))
	for _, travel := range travels {
		dtos = append(dtos, travelToDTO(travel))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTravelNotFound):
		http.Error(w, "travel not found", http.StatusNotFound)
	case errors.Is(err, ErrNotAllowed):
		http.Error(w, "not allowed", http.StatusForbidden)
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrRecordsOutOfOrder):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func travelId(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["travelId"])
}

func travelToDTO(travel Travel) TravelDTO {
	records := make([]RecordDTO, 0, len(travel.Records))
	for _, record := range travel.Records {
		records = append(records, recordToDTO(record))
	}
	days := make([]CateringDayDTO, 0, len(travel.CateringNoRefund))
	for _, d := range travel.CateringNoRefund {
		days = append(days, CateringDayDTO(d))
	}
	return TravelDTO{
		ID:                    travel.ID,
		Uid:                   travel.UID,
		TravelerID:            travel.TravelerID,
		EditorID:              travel.EditorID,
		Name:                  travel.Name,
		Reason:                travel.Reason,
		DestinationPlace:      travel.DestinationPlace,
		InsideOfEU:            travel.InsideOfEU,
		State:                 travel.State,
		Comment:               travel.Comment,
		StartDate:             travel.StartDate,
		EndDate:               travel.EndDate,
		Advance:               costToDTO(travel.Advance),
		ProfessionalShare:     travel.ProfessionalShare,
		ClaimOvernightLumpSum: travel.ClaimOvernightLumpSum,
		Records:               records,
		CateringNoRefund:      days,
		History:               travel.History,
		Historic:              travel.Historic,
	}
}

func dtoToTravel(dto TravelDTO) Travel {
	records := make([]Record, 0, len(dto.Records))
	for _, record := range dto.Records {
		records = append(records, dtoToRecord(record))
	}
	days := make([]CateringDay, 0, len(dto.CateringNoRefund))
	for _, d := range dto.CateringNoRefund {
		days = append(days, CateringDay(d))
	}
	return Travel{
		ID:                    dto.ID,
		UID:                   dto.Uid,
		TravelerID:            dto.TravelerID,
		EditorID:              dto.EditorID,
		Name:                  dto.Name,
		Reason:                dto.Reason,
		DestinationPlace:      dto.DestinationPlace,
		InsideOfEU:            dto.InsideOfEU,
		State:                 dto.State,
		Comment:               dto.Comment,
		StartDate:             dto.StartDate,
		EndDate:               dto.EndDate,
		Advance:               dtoToCost(dto.Advance),
		ProfessionalShare:     dto.ProfessionalShare,
		ClaimOvernightLumpSum: dto.ClaimOvernightLumpSum,
		Records:               records,
		CateringNoRefund:      days,
		History:               dto.History,
		Historic:              dto.Historic,
	}
}

func recordToDTO(record Record) RecordDTO {
	return RecordDTO{
		ID:            record.ID,
		Type:          record.Type,
		StartDate:     record.StartDate,
		EndDate:       record.EndDate,
		StartLocation: record.StartLocation,
		EndLocation:   record.EndLocation,
		Location:      record.Location,
		Distance:      record.Distance,
		Transport:     record.Transport,
		Purpose:       record.Purpose,
		Cost:          costToDTO(record.Cost),
	}
}

func dtoToRecord(dto RecordDTO) Record {
	return Record{
		ID:            dto.ID,
		Type:          dto.Type,
		StartDate:     dto.StartDate,
		EndDate:       dto.EndDate,
		StartLocation: dto.StartLocation,
		EndLocation:   dto.EndLocation,
		Location:      dto.Location,
		Distance:      dto.Distance,
		Transport:     dto.Transport,
		Purpose:       dto.Purpose,
		Cost:          dtoToCost(dto.Cost),
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
