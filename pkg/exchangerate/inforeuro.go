package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

const DefaultInforEuroURL = "https://ec.europa.eu/budg/inforeuro/api/public"

// RateSource provides the monthly rate table of an external authority.
type RateSource interface {
	FetchMonth(ctx context.Context, year, month int) ([]Rate, error)
}

type inforEuroRecord struct {
	Country   string  `json:"country"`
	Currency  string  `json:"currency"`
	IsoA3Code string  `json:"isoA3Code"`
	IsoA2Code string  `json:"isoA2Code"`
	Value     float64 `json:"value"`
	Comment   *string `json:"comment"`
}

// InforEuroClient fetches the EU commission's monthly exchange rates, which are
// published as one value per currency per calendar month against the euro.
type InforEuroClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewInforEuroClient(baseURL string) *InforEuroClient {
	if baseURL == "" {
		baseURL = DefaultInforEuroURL
	}
	return &InforEuroClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *InforEuroClient) FetchMonth(ctx context.Context, year, month int) ([]Rate, error) {
	reqURL := c.baseURL + "/monthly-rates?lang=EN&year=" + strconv.Itoa(year) + "&month=" + strconv.Itoa(month)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch monthly rates: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("monthly rates request returned status %d", res.StatusCode)
	}

	var records []inforEuroRecord
	if err := json.NewDecoder(res.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode monthly rates: %w", err)
	}

	rates := make([]Rate, 0, len(records))
	for _, record := range records {
		rates = append(rates, Rate{
			Currency: record.IsoA3Code,
			Month:    month,
			Year:     year,
			Value:    record.Value,
		})
	}
	log.Debugf("fetched %d exchange rates for %d-%02d", len(rates), year, month)
	return rates, nil
}
