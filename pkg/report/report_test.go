package report

import (
	"context"
	"testing"
	"time"

	"github.com/reisegeld/reisegeld/pkg/exchangerate"
	"github.com/reisegeld/reisegeld/pkg/lumpsum"
	"github.com/reisegeld/reisegeld/pkg/travel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTravelSource serves the listing without records, like the repository
// does, and the full aggregate on Get.
type stubTravelSource struct {
	travels []travel.Travel
}

func (s stubTravelSource) GetAll(_ context.Context) ([]travel.Travel, error) {
	listing := make([]travel.Travel, 0, len(s.travels))
	for _, t := range s.travels {
		t.Records = nil
		t.CateringNoRefund = nil
		listing = append(listing, t)
	}
	return listing, nil
}

func (s stubTravelSource) Get(_ context.Context, id int) (travel.Travel, error) {
	for _, t := range s.travels {
		if t.ID == id {
			return t, nil
		}
	}
	return travel.Travel{}, travel.ErrTravelNotFound
}

var testRates = lumpsum.Rates{
	Catering:  decimal.RequireFromString("28"),
	Overnight: decimal.RequireFromString("20"),
}

func day(yyyy int, mm time.Month, dd int) time.Time {
	return time.Date(yyyy, mm, dd, 0, 0, 0, 0, time.UTC)
}

func refundedTravel() travel.Travel {
	return travel.Travel{
		ID:                    1,
		Name:                  "Conference",
		DestinationPlace:      "Oslo",
		State:                 travel.StateRefunded,
		StartDate:             day(2023, 3, 1),
		EndDate:               day(2023, 3, 3),
		Advance:               travel.Cost{Amount: 30, Currency: "EUR"},
		ClaimOvernightLumpSum: true,
		Records: []travel.Record{
			{
				Type:      travel.RecordTypeRoute,
				StartDate: day(2023, 3, 1),
				EndDate:   day(2023, 3, 1),
				Cost: travel.Cost{
					Amount:   100,
					Currency: "NOK",
					Date:     day(2023, 3, 1),
					ExchangeRate: &exchangerate.Conversion{
						Date: day(2023, 3, 1), Rate: 11.37, Amount: 8.80,
					},
				},
			},
			{
				Type:      travel.RecordTypeStay,
				StartDate: day(2023, 3, 1),
				EndDate:   day(2023, 3, 3),
				Location:  "Oslo",
				Cost:      travel.Cost{Amount: 50, Currency: "EUR", Date: day(2023, 3, 2)},
			},
		},
		CateringNoRefund: []travel.CateringDay{
			{Date: day(2023, 3, 1)},
			{Date: day(2023, 3, 2), Lunch: true},
			{Date: day(2023, 3, 3)},
		},
	}
}

func TestRefundedBetween_SummarizesPayout(t *testing.T) {
	service := NewService(stubTravelSource{travels: []travel.Travel{refundedTravel()}}, testRates, NewCsvTravelRenderer())

	summaries, err := service.RefundedBetween(context.Background(), day(2023, 3, 1), day(2023, 3, 31))

	require.NoError(t, err)
	require.Len(t, summaries, 1)
	summary := summaries[0]
	// 28 + 16.80 (lunch provided) + 28
	assert.Equal(t, "72.80", summary.CateringRefund.StringFixed(2))
	// two nights
	assert.Equal(t, "40.00", summary.OvernightRefund.StringFixed(2))
	// 8.80 converted NOK cost + 50 EUR cost
	assert.Equal(t, "58.80", summary.Expenses.StringFixed(2))
	assert.Equal(t, "30.00", summary.Advance.StringFixed(2))
	assert.Equal(t, "141.60", summary.Total.StringFixed(2))
}

func TestRefundedBetween_FiltersStateAndRange(t *testing.T) {
	inRange := refundedTravel()
	tooEarly := refundedTravel()
	tooEarly.ID = 2
	tooEarly.StartDate = day(2023, 2, 28)
	notRefunded := refundedTravel()
	notRefunded.ID = 3
	notRefunded.State = travel.StateUnderExamination

	service := NewService(stubTravelSource{travels: []travel.Travel{inRange, tooEarly, notRefunded}},
		testRates, NewCsvTravelRenderer())

	summaries, err := service.RefundedBetween(context.Background(), day(2023, 3, 1), day(2023, 3, 31))

	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].Travel.ID)
}

func TestCsvTravelRendererImpl_RenderTravels(t *testing.T) {
	service := NewService(stubTravelSource{travels: []travel.Travel{refundedTravel()}}, testRates, NewCsvTravelRenderer())

	rendered, err := service.RenderRefundedBetween(context.Background(), day(2023, 3, 1), day(2023, 3, 31))

	require.NoError(t, err)
	want := "Name,Destination,Start,End,Catering,Overnight,Expenses,Advance,Total\n" +
		"Conference,Oslo,01/03/2023,03/03/2023,72.80,40.00,58.80,30.00,141.60\n" +
		"SUM,,,,72.80,40.00,58.80,30.00,141.60\n"
	assert.Equal(t, want, rendered)
}

func TestCsvTravelRendererImpl_EmptyRangeRendersHeaderAndSum(t *testing.T) {
	renderer := NewCsvTravelRenderer()

	rendered, err := renderer.RenderTravels(nil)

	require.NoError(t, err)
	want := "Name,Destination,Start,End,Catering,Overnight,Expenses,Advance,Total\n" +
		"SUM,,,,0.00,0.00,0.00,0.00,0.00\n"
	assert.Equal(t, want, rendered)
}
