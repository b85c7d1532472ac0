package finance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finnhubServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.NotEmpty(t, r.Header.Get("X-Finnhub-Token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestFinnhub_Quote(t *testing.T) {
	srv := finnhubServer(t, map[string]string{
		"/quote": `{"c":150.25,"pc":148.0,"o":149.1,"h":151.0,"l":147.5,"dp":1.52,"t":1718445600}`,
	})
	defer srv.Close()

	client := NewFinnhub(srv.URL, "test-key")
	quote, err := client.Quote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", quote.Ticker)
	assert.Equal(t, 150.25, quote.Current)
	assert.Equal(t, 1.52, quote.PercentChange)
	assert.Equal(t, time.Unix(1718445600, 0), quote.Timestamp)
}

func TestFinnhub_Quote_NoData(t *testing.T) {
	srv := finnhubServer(t, map[string]string{
		"/quote": `{"c":0,"pc":0,"o":0,"h":0,"l":0,"dp":0,"t":0}`,
	})
	defer srv.Close()

	client := NewFinnhub(srv.URL, "test-key")
	_, err := client.Quote(context.Background(), "ZZZZ")
	assert.True(t, IsKind(err, KindNoData))
}

func TestFinnhub_ResolveQuote_NoExactMatch(t *testing.T) {
	srv := finnhubServer(t, map[string]string{
		"/search": `{"count":2,"result":[
			{"symbol":"AAPL.SW","description":"APPLE INC"},
			{"symbol":"APLE","description":"APPLE HOSPITALITY REIT"}]}`,
	})
	defer srv.Close()

	client := NewFinnhub(srv.URL, "test-key")
	_, err := client.ResolveQuote(context.Background(), "AAPLE")
	require.True(t, IsKind(err, KindNoExactMatch))

	candidates := Candidates(err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "AAPL.SW", candidates[0].Symbol)
}

func TestFinnhub_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewFinnhub(srv.URL, "test-key")
	_, err := client.Quote(context.Background(), "AAPL")
	assert.True(t, IsKind(err, KindUpstream))
}

func TestFinnhub_MalformedPayload(t *testing.T) {
	srv := finnhubServer(t, map[string]string{"/quote": `not json at all`})
	defer srv.Close()

	client := NewFinnhub(srv.URL, "test-key")
	_, err := client.Quote(context.Background(), "AAPL")
	assert.True(t, IsKind(err, KindMalformed))
}

func TestFinnhub_GeneralNews_DefaultsSource(t *testing.T) {
	srv := finnhubServer(t, map[string]string{
		"/news": `[
			{"headline":"Stocks rise","summary":"up","url":"https://x/1","source":"cnbc","datetime":1718445600},
			{"headline":"Markets churn","summary":"flat","url":"https://x/2","datetime":1718445601}]`,
	})
	defer srv.Close()

	client := NewFinnhub(srv.URL, "test-key")
	articles, err := client.GeneralNews(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "cnbc", articles[0].Source)
	assert.Equal(t, "Unknown", articles[1].Source)
}

func TestFinnhub_RecommendationTrends(t *testing.T) {
	srv := finnhubServer(t, map[string]string{
		"/stock/recommendation": `[
			{"period":"2025-03-01","strongBuy":4,"buy":2,"hold":5,"sell":1,"strongSell":0},
			{"period":"2025-02-01","strongBuy":3,"buy":1,"hold":6,"sell":2,"strongSell":1}]`,
	})
	defer srv.Close()

	client := NewFinnhub(srv.URL, "test-key")
	rows, err := client.RecommendationTrends(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-03-01", rows[0].Period)
	assert.Equal(t, 4, rows[0].StrongBuy)
}

func TestFinnhub_Beta(t *testing.T) {
	srv := finnhubServer(t, map[string]string{
		"/stock/metric": `{"metric":{"beta":1.29,"peBasicExclExtraTTM":27.4}}`,
	})
	defer srv.Close()

	client := NewFinnhub(srv.URL, "test-key")
	beta, err := client.Beta(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 1.29, beta, 1e-9)
}

func TestFinnhub_Beta_Missing(t *testing.T) {
	srv := finnhubServer(t, map[string]string{"/stock/metric": `{"metric":{}}`})
	defer srv.Close()

	client := NewFinnhub(srv.URL, "test-key")
	_, err := client.Beta(context.Background(), "AAPL")
	assert.True(t, IsKind(err, KindNoData))
}
