package exchangerate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInforEuroClient_FetchMonth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/monthly-rates", r.URL.Path)
		assert.Equal(t, "2023", r.URL.Query().Get("year"))
		assert.Equal(t, "1", r.URL.Query().Get("month"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"country": "United States", "currency": "US dollar", "isoA3Code": "USD", "isoA2Code": "US", "value": 1.0666, "comment": null},
			{"country": "Norway", "currency": "Norwegian krone", "isoA3Code": "NOK", "isoA2Code": "NO", "value": 10.6725, "comment": null}
		]`))
	}))
	defer server.Close()

	client := NewInforEuroClient(server.URL)
	rates, err := client.FetchMonth(context.Background(), 2023, 1)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, Rate{Currency: "USD", Month: 1, Year: 2023, Value: 1.0666}, rates[0])
	assert.Equal(t, Rate{Currency: "NOK", Month: 1, Year: 2023, Value: 10.6725}, rates[1])
}

func TestInforEuroClient_NonOKStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "try later", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewInforEuroClient(server.URL)
	_, err := client.FetchMonth(context.Background(), 2023, 1)
	assert.Error(t, err)
}

func TestInforEuroClient_MalformedBodyIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected": "shape"}`))
	}))
	defer server.Close()

	client := NewInforEuroClient(server.URL)
	_, err := client.FetchMonth(context.Background(), 2023, 1)
	assert.Error(t, err)
}
