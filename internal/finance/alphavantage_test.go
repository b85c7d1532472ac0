package finance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alphaVantageServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn := r.URL.Query().Get("function")
		body, ok := responses[fn]
		if !ok {
			t.Errorf("unexpected function %s", fn)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.NotEmpty(t, r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestAlphaVantage_GlobalQuote(t *testing.T) {
	srv := alphaVantageServer(t, map[string]string{
		"GLOBAL_QUOTE": `{"Global Quote":{
			"01. symbol":"AAPL",
			"02. open":"149.10",
			"03. high":"151.00",
			"04. low":"147.50",
			"05. price":"150.25",
			"07. latest trading day":"2025-06-13",
			"08. previous close":"148.00",
			"10. change percent":"1.5203%"}}`,
	})
	defer srv.Close()

	client := NewAlphaVantage(srv.URL, "test-key")
	quote, err := client.GlobalQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, 150.25, quote.Current)
	assert.Equal(t, 148.00, quote.PreviousClose)
	assert.InDelta(t, 1.5203, quote.PercentChange, 1e-9)
	assert.Equal(t, "2025-06-13", quote.Timestamp.Format("2006-01-02"))
}

func TestAlphaVantage_RateLimit(t *testing.T) {
	srv := alphaVantageServer(t, map[string]string{
		"GLOBAL_QUOTE": `{"Information":"API call frequency limit reached."}`,
	})
	defer srv.Close()

	client := NewAlphaVantage(srv.URL, "test-key")
	_, err := client.GlobalQuote(context.Background(), "AAPL")
	assert.True(t, IsKind(err, KindUpstream))
}

func TestAlphaVantage_NoMatchOffersCandidates(t *testing.T) {
	srv := alphaVantageServer(t, map[string]string{
		"GLOBAL_QUOTE": `{"Global Quote":{}}`,
		"SYMBOL_SEARCH": `{"bestMatches":[
			{"1. symbol":"AAPL","2. name":"Apple Inc"},
			{"1. symbol":"APLE","2. name":"Apple Hospitality REIT"}]}`,
	})
	defer srv.Close()

	client := NewAlphaVantage(srv.URL, "test-key")
	_, err := client.GlobalQuote(context.Background(), "AAPLE")
	require.True(t, IsKind(err, KindNoExactMatch))

	candidates := Candidates(err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Apple Inc", candidates[0].Description)
}

func TestAlphaVantage_MalformedPrice(t *testing.T) {
	srv := alphaVantageServer(t, map[string]string{
		"GLOBAL_QUOTE": `{"Global Quote":{"01. symbol":"AAPL","05. price":"n/a"}}`,
	})
	defer srv.Close()

	client := NewAlphaVantage(srv.URL, "test-key")
	_, err := client.GlobalQuote(context.Background(), "AAPL")
	assert.True(t, IsKind(err, KindMalformed))
}
