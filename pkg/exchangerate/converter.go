package exchangerate

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/reisegeld/reisegeld/internal/utils"
	log "github.com/sirupsen/logrus"
)

// Converter resolves monthly exchange rates and converts foreign amounts into
// the base currency. Rates are cached in the repository: the first conversion
// request for a month fetches the whole monthly table once, later requests for
// the same month are served from the cache.
type Converter struct {
	repo         Repo
	source       RateSource
	clock        utils.Clock
	baseCurrency string
}

func NewConverter(repo Repo, source RateSource, clock utils.Clock, baseCurrency string) *Converter {
	return &Converter{
		repo:         repo,
		source:       source,
		clock:        clock,
		baseCurrency: baseCurrency,
	}
}

// Convert converts amount from the given currency into "to" (base currency when
// empty). It returns (nil, nil) when no conversion is needed or possible:
// identical currencies, a currency the rate table does not know, or an
// unreachable rate source. Repository failures are returned as errors.
func (c *Converter) Convert(ctx context.Context, date time.Time, amount float64, from, to string) (*Conversion, error) {
	if to == "" {
		to = c.baseCurrency
	}
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return nil, nil
	}

	conversionDate := date
	now := c.clock.Now()
	if conversionDate.After(now) {
		// claims cannot reference future rates
		conversionDate = now
	}
	month := int(conversionDate.UTC().Month())
	year := conversionDate.UTC().Year()

	rate, err := c.repo.FindRate(ctx, from, month, year)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		fetched, err := c.repo.MonthFetched(ctx, month, year)
		if err != nil {
			return nil, err
		}
		if fetched {
			// month already fetched, the currency is simply unsupported
			return nil, nil
		}
		rates, err := c.source.FetchMonth(ctx, year, month)
		if err != nil {
			log.Errorf("failed to fetch exchange rates for %d-%02d: %v", year, month, err)
			return nil, nil
		}
		if err := c.repo.StoreAll(ctx, rates); err != nil {
			return nil, err
		}
		// pick from the fetched set instead of re-querying
		for i := range rates {
			if rates[i].Currency == from {
				rate = &rates[i]
				break
			}
		}
	}
	if rate == nil {
		return nil, nil
	}

	return &Conversion{
		Date:   conversionDate,
		Rate:   rate.Value,
		Amount: math.Round(amount/rate.Value*100) / 100,
	}, nil
}
