// Package report exports refunded travels for the accounting department.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/reisegeld/reisegeld/pkg/lumpsum"
	"github.com/reisegeld/reisegeld/pkg/travel"
	"github.com/shopspring/decimal"
)

// TravelSummary is one refunded travel with its payout broken down into the
// lump sum and expense components.
type TravelSummary struct {
	Travel          travel.Travel
	CateringRefund  decimal.Decimal
	OvernightRefund decimal.Decimal
	Expenses        decimal.Decimal
	Advance         decimal.Decimal
	Total           decimal.Decimal
}

// TravelSource lists travels visible to the current user.
type TravelSource interface {
	GetAll(ctx context.Context) ([]travel.Travel, error)
	Get(ctx context.Context, id int) (travel.Travel, error)
}

type TravelRenderer interface {
	RenderTravels(summaries []TravelSummary) (string, error)
}

type Service struct {
	travels  TravelSource
	rates    lumpsum.Rates
	renderer TravelRenderer
}

func NewService(travels TravelSource, rates lumpsum.Rates, renderer TravelRenderer) *Service {
	return &Service{travels: travels, rates: rates, renderer: renderer}
}

// RefundedBetween summarizes every refunded travel starting within the given
// range, both dates inclusive.
func (s *Service) RefundedBetween(ctx context.Context, from, to time.Time) ([]TravelSummary, error) {
	travels, err := s.travels.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var summaries []TravelSummary
	for _, t := range travels {
		if t.State != travel.StateRefunded {
			continue
		}
		if t.StartDate.Before(from) || t.StartDate.After(to) {
			continue
		}
		// the listing carries no records, load the full aggregate
		full, err := s.travels.Get(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load travel %d: %w", t.ID, err)
		}
		summaries = append(summaries, s.summarize(full))
	}
	return summaries, nil
}

// RenderRefundedBetween renders the range summary through the configured
// renderer.
func (s *Service) RenderRefundedBetween(ctx context.Context, from, to time.Time) (string, error) {
	summaries, err := s.RefundedBetween(ctx, from, to)
	if err != nil {
		return "", err
	}
	return s.renderer.RenderTravels(summaries)
}

func (s *Service) summarize(t travel.Travel) TravelSummary {
	expenses := decimal.Zero
	for _, record := range t.Records {
		expenses = expenses.Add(costInBaseCurrency(record.Cost))
	}

	catering := lumpsum.TotalCateringRefund(t.CateringNoRefund, s.rates.Catering)
	overnight := lumpsum.OvernightRefund(t, s.rates.Overnight)
	advance := costInBaseCurrency(t.Advance)

	total := lumpsum.TotalRefund(t, s.rates).Add(expenses).Sub(advance)

	return TravelSummary{
		Travel:          t,
		CateringRefund:  catering,
		OvernightRefund: overnight,
		Expenses:        expenses.Round(2),
		Advance:         advance,
		Total:           total.Round(2),
	}
}

// costInBaseCurrency prefers the resolved conversion and falls back to the
// raw amount for costs already claimed in the base currency.
func costInBaseCurrency(cost travel.Cost) decimal.Decimal {
	if cost.ExchangeRate != nil {
		return decimal.NewFromFloat(cost.ExchangeRate.Amount)
	}
	return decimal.NewFromFloat(cost.Amount)
}
