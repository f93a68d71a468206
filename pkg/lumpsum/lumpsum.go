// Package lumpsum computes the per diem refund for a travel: a fixed catering
// lump sum per calendar day, reduced for every meal that was otherwise
// provided, plus an overnight lump sum per night.
package lumpsum

import (
	"github.com/reisegeld/reisegeld/pkg/travel"
	"github.com/shopspring/decimal"
)

// Shares of the daily catering lump sum attributed to each meal.
var (
	breakfastShare = decimal.NewFromFloat(0.2)
	lunchShare     = decimal.NewFromFloat(0.4)
	dinnerShare    = decimal.NewFromFloat(0.4)
)

// Rates holds the daily lump sums applicable to a destination.
type Rates struct {
	Catering  decimal.Decimal
	Overnight decimal.Decimal
}

// CateringRefund returns the refundable share of one day's catering lump sum,
// reduced by the provided meals.
func CateringRefund(day travel.CateringDay, daily decimal.Decimal) decimal.Decimal {
	refund := daily
	if day.Breakfast {
		refund = refund.Sub(daily.Mul(breakfastShare))
	}
	if day.Lunch {
		refund = refund.Sub(daily.Mul(lunchShare))
	}
	if day.Dinner {
		refund = refund.Sub(daily.Mul(dinnerShare))
	}
	if refund.IsNegative() {
		return decimal.Zero
	}
	return refund.Round(2)
}

// TotalCateringRefund sums the catering refund over all days of a travel.
func TotalCateringRefund(days []travel.CateringDay, daily decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, day := range days {
		total = total.Add(CateringRefund(day, daily))
	}
	return total.Round(2)
}

// OvernightRefund returns the overnight lump sum total for a travel. Nights
// are the gaps between spanned days, so a day list of length n yields n-1
// nights. Travels that waive the overnight claim get nothing.
func OvernightRefund(t travel.Travel, nightly decimal.Decimal) decimal.Decimal {
	if !t.ClaimOvernightLumpSum || len(t.CateringNoRefund) < 2 {
		return decimal.Zero
	}
	nights := int64(len(t.CateringNoRefund) - 1)
	return nightly.Mul(decimal.NewFromInt(nights)).Round(2)
}

// TotalRefund combines catering and overnight lump sums. When a professional
// share below 1 is set on the travel, only that fraction is refundable.
func TotalRefund(t travel.Travel, rates Rates) decimal.Decimal {
	total := TotalCateringRefund(t.CateringNoRefund, rates.Catering).
		Add(OvernightRefund(t, rates.Overnight))
	if t.ProfessionalShare > 0 && t.ProfessionalShare < 1 {
		total = total.Mul(decimal.NewFromFloat(t.ProfessionalShare))
	}
	return total.Round(2)
}
