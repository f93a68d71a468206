package exchangerate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reisegeld/reisegeld/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	rates      []Rate
	err        error
	fetchCalls int
}

func (s *stubSource) FetchMonth(ctx context.Context, year, month int) ([]Rate, error) {
	s.fetchCalls++
	if s.err != nil {
		return nil, s.err
	}
	rates := make([]Rate, 0, len(s.rates))
	for _, rate := range s.rates {
		rate.Month = month
		rate.Year = year
		rates = append(rates, rate)
	}
	return rates, nil
}

func setupConverterTest() (*Converter, *StubRepo, *stubSource, *utils.MockClock) {
	repo := NewStubRepo()
	source := &stubSource{rates: []Rate{
		{Currency: "USD", Value: 1.0876},
		{Currency: "NOK", Value: 11.37},
		{Currency: "JPY", Value: 161.52},
	}}
	clock := &utils.MockClock{FixedNow: time.Date(2023, time.June, 15, 12, 0, 0, 0, time.UTC)}
	converter := NewConverter(repo, source, clock, "EUR")
	return converter, repo, source, clock
}

func TestConvert_SameCurrencyIsNoOp(t *testing.T) {
	converter, _, source, clock := setupConverterTest()

	for _, amount := range []float64{0, 1, 99.99, 1234567} {
		conversion, err := converter.Convert(context.Background(), clock.Now(), amount, "EUR", "EUR")
		require.NoError(t, err)
		assert.Nil(t, conversion)
	}
	// default target is the base currency
	conversion, err := converter.Convert(context.Background(), clock.Now(), 100, "eur", "")
	require.NoError(t, err)
	assert.Nil(t, conversion)
	assert.Equal(t, 0, source.fetchCalls)
}

func TestConvert_FetchesMonthOnceAndConverts(t *testing.T) {
	converter, _, source, clock := setupConverterTest()

	conversion, err := converter.Convert(context.Background(), clock.Now(), 100, "NOK", "")
	require.NoError(t, err)
	require.NotNil(t, conversion)
	assert.Equal(t, 11.37, conversion.Rate)
	assert.Equal(t, 8.8, conversion.Amount)
	assert.Equal(t, 1, source.fetchCalls)

	// second conversion in the same month is served from the cache
	conversion, err = converter.Convert(context.Background(), clock.Now(), 50, "USD", "")
	require.NoError(t, err)
	require.NotNil(t, conversion)
	assert.Equal(t, 1.0876, conversion.Rate)
	assert.Equal(t, 45.97, conversion.Amount)
	assert.Equal(t, 1, source.fetchCalls)
}

func TestConvert_CachedRateDoesNotFetch(t *testing.T) {
	converter, repo, source, clock := setupConverterTest()
	err := repo.StoreAll(context.Background(), []Rate{{Currency: "USD", Month: 6, Year: 2023, Value: 2}})
	require.NoError(t, err)

	conversion, err := converter.Convert(context.Background(), clock.Now(), 100, "USD", "")
	require.NoError(t, err)
	require.NotNil(t, conversion)
	assert.Equal(t, 2.0, conversion.Rate)
	assert.Equal(t, 50.0, conversion.Amount)
	assert.Equal(t, 0, source.fetchCalls)
}

func TestConvert_FetchedMonthWithoutCurrencyIsNil(t *testing.T) {
	converter, repo, source, clock := setupConverterTest()
	err := repo.StoreAll(context.Background(), []Rate{{Currency: "USD", Month: 6, Year: 2023, Value: 2}})
	require.NoError(t, err)

	// the month is cached, an unknown currency must not trigger a refetch
	conversion, err := converter.Convert(context.Background(), clock.Now(), 100, "XXX", "")
	require.NoError(t, err)
	assert.Nil(t, conversion)
	assert.Equal(t, 0, source.fetchCalls)
}

func TestConvert_FutureDateClampedToNow(t *testing.T) {
	converter, _, source, clock := setupConverterTest()

	future := clock.Now().AddDate(1, 2, 3)
	conversion, err := converter.Convert(context.Background(), future, 100, "USD", "")
	require.NoError(t, err)
	require.NotNil(t, conversion)
	assert.Equal(t, clock.Now(), conversion.Date)

	// resolved against the current month, not the future one
	cached, err := converter.Convert(context.Background(), clock.Now(), 100, "USD", "")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, conversion.Rate, cached.Rate)
	assert.Equal(t, conversion.Amount, cached.Amount)
	assert.Equal(t, 1, source.fetchCalls)
}

func TestConvert_SourceFailureIsNilNotError(t *testing.T) {
	converter, _, source, clock := setupConverterTest()
	source.err = errors.New("connection refused")

	conversion, err := converter.Convert(context.Background(), clock.Now(), 100, "USD", "")
	require.NoError(t, err)
	assert.Nil(t, conversion)
	assert.Equal(t, 1, source.fetchCalls)
}

func TestConvert_Rounding(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		rate   float64
		want   float64
	}{
		{"exact division", 100, 2, 50},
		{"repeating fraction rounds down", 100, 3, 33.33},
		{"half rounds up", 100.99, 2, 50.5},
		{"small amount", 0.01, 3, 0},
		{"rate below one", 10, 0.8, 12.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			converter, repo, _, clock := setupConverterTest()
			err := repo.StoreAll(context.Background(), []Rate{{Currency: "USD", Month: 6, Year: 2023, Value: tt.rate}})
			require.NoError(t, err)

			conversion, err := converter.Convert(context.Background(), clock.Now(), tt.amount, "USD", "")
			require.NoError(t, err)
			require.NotNil(t, conversion)
			assert.Equal(t, tt.want, conversion.Amount)
		})
	}
}

func TestConvert_LowercaseCurrencyIsNormalized(t *testing.T) {
	converter, _, _, clock := setupConverterTest()

	conversion, err := converter.Convert(context.Background(), clock.Now(), 100, "usd", "")
	require.NoError(t, err)
	require.NotNil(t, conversion)
	assert.Equal(t, 1.0876, conversion.Rate)
}
