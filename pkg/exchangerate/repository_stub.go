package exchangerate

import (
	"context"
	"fmt"
)

type StubRepo struct {
	rates map[string]Rate
}

func NewStubRepo() *StubRepo {
	return &StubRepo{rates: map[string]Rate{}}
}

func key(currency string, month, year int) string {
	return fmt.Sprintf("%s/%d/%d", currency, month, year)
}

func (s *StubRepo) FindRate(ctx context.Context, currency string, month, year int) (*Rate, error) {
	for _, rate := range s.rates {
		if rate.Currency == currency && rate.Month == month && rate.Year == year {
			found := rate
			return &found, nil
		}
	}
	return nil, nil
}

func (s *StubRepo) MonthFetched(ctx context.Context, month, year int) (bool, error) {
	for _, rate := range s.rates {
		if rate.Month == month && rate.Year == year {
			return true, nil
		}
	}
	return false, nil
}

func (s *StubRepo) StoreAll(ctx context.Context, rates []Rate) error {
	for _, rate := range rates {
		k := key(rate.Currency, rate.Month, rate.Year)
		if _, exists := s.rates[k]; !exists {
			s.rates[k] = rate
		}
	}
	return nil
}

func (s *StubRepo) Cleanup() {
	s.rates = map[string]Rate{}
}
