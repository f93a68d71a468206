package travel

import (
	"errors"
	"time"

	"github.com/reisegeld/reisegeld/pkg/exchangerate"
)

type State string

const (
	StateRejected         State = "rejected"
	StateAppliedFor       State = "appliedFor"
	StateApproved         State = "approved"
	StateUnderExamination State = "underExamination"
	StateRefunded         State = "refunded"
)

type RecordType string

const (
	RecordTypeRoute RecordType = "route"
	RecordTypeStay  RecordType = "stay"
)

type Transport string

const (
	TransportOwnCar      Transport = "ownCar"
	TransportAirplane    Transport = "airplane"
	TransportShipOrFerry Transport = "shipOrFerry"
	TransportOther       Transport = "otherTransport"
)

type Purpose string

const (
	PurposeProfessional Purpose = "professional"
	PurposeMixed        Purpose = "mixed"
	PurposePrivate      Purpose = "private"
)

// Cost is an amount in some currency, optionally backed by receipts and a
// resolved conversion into the base currency.
type Cost struct {
	Amount       float64
	Currency     string
	Date         time.Time
	Receipts     []int
	ExchangeRate *exchangerate.Conversion
}

// Record is one leg (route) or one stop (stay) of a travel. Records are kept
// in chronological order; the first record's start and the last record's end
// span the whole travel.
type Record struct {
	ID            int
	Type          RecordType
	StartDate     time.Time
	EndDate       time.Time
	StartLocation string
	EndLocation   string
	Location      string
	Distance      float64
	Transport     Transport
	Purpose       Purpose
	Cost          Cost
}

// CateringDay carries one calendar day's meal provision flags. A set flag means
// the meal was provided and its share is excluded from the per diem.
type CateringDay struct {
	Date      time.Time
	Breakfast bool
	Lunch     bool
	Dinner    bool
}

type Travel struct {
	ID                    int
	UID                   string
	TravelerID            int
	EditorID              int
	Name                  string
	Reason                string
	DestinationPlace      string
	InsideOfEU            bool
	State                 State
	Comment               string
	StartDate             time.Time
	EndDate               time.Time
	Advance               Cost
	ProfessionalShare     float64
	ClaimOvernightLumpSum bool
	Records               []Record
	CateringNoRefund      []CateringDay
	History               []int
	Historic              bool
}

// ErrRecordsOutOfOrder reports a record list that is not chronologically
// ordered, including a record whose end precedes its start.
var ErrRecordsOutOfOrder = errors.New("travel records are not in chronological order")

// startOfDay strips the time of day, resolving the calendar day in UTC.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DiffInDays returns the whole-day difference between two dates on calendar
// day granularity.
func DiffInDays(start, end time.Time) int {
	return int(startOfDay(end).Sub(startOfDay(start)).Hours() / 24)
}

// DayList returns every calendar day from start to end, inclusive.
func DayList(start, end time.Time) []time.Time {
	first := startOfDay(start)
	days := make([]time.Time, 0, DiffInDays(start, end)+1)
	for i := 0; i <= DiffInDays(start, end); i++ {
		days = append(days, first.AddDate(0, 0, i))
	}
	return days
}

// ValidateRecordOrder checks the precondition the reconciler relies on: every
// record ends no earlier than it starts, and records do not start before their
// predecessor.
func ValidateRecordOrder(records []Record) error {
	for i, record := range records {
		if record.EndDate.Before(record.StartDate) {
			return ErrRecordsOutOfOrder
		}
		if i > 0 && record.StartDate.Before(records[i-1].StartDate) {
			return ErrRecordsOutOfOrder
		}
	}
	return nil
}

// ReconcileCateringDays derives the calendar days spanned by the record list
// and carries over meal flags from the previous day list by exact date match.
// Days that are no longer spanned are dropped, new days start with all flags
// unset. An empty record list yields an empty day list.
func ReconcileCateringDays(records []Record, previous []CateringDay) ([]CateringDay, error) {
	if len(records) == 0 {
		return []CateringDay{}, nil
	}
	start := records[0].StartDate
	end := records[len(records)-1].EndDate
	if DiffInDays(start, end) < 0 {
		return nil, ErrRecordsOutOfOrder
	}

	days := DayList(start, end)
	reconciled := make([]CateringDay, 0, len(days))
	for _, day := range days {
		entry := CateringDay{Date: day}
		for _, prev := range previous {
			if startOfDay(prev.Date).Equal(day) {
				entry.Breakfast = prev.Breakfast
				entry.Lunch = prev.Lunch
				entry.Dinner = prev.Dinner
				break
			}
		}
		reconciled = append(reconciled, entry)
	}
	return reconciled, nil
}
