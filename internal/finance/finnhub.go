package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"StockPulse/internal/metrics"
	"StockPulse/internal/model"
)

// Finnhub is a thin client for the Finnhub REST API.
type Finnhub struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewFinnhub creates a Finnhub client. The bounded timeout is a deliberate
// hardening addition so one slow upstream call cannot starve the bot.
func NewFinnhub(baseURL, apiKey string) *Finnhub {
	return &Finnhub{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Quote fetches the latest quote for a ticker.
func (f *Finnhub) Quote(ctx context.Context, ticker string) (*model.Quote, error) {
	var raw struct {
		Current       float64 `json:"c"`
		PreviousClose float64 `json:"pc"`
		Open          float64 `json:"o"`
		High          float64 `json:"h"`
		Low           float64 `json:"l"`
		PercentChange float64 `json:"dp"`
		Timestamp     int64   `json:"t"`
	}
	if err := f.get(ctx, "quote", ticker, url.Values{"symbol": {ticker}}, &raw); err != nil {
		return nil, err
	}
	if raw.Timestamp == 0 {
		return nil, &Error{Kind: KindNoData, Op: "quote", Ticker: ticker}
	}
	return &model.Quote{
		Ticker:        ticker,
		Current:       raw.Current,
		PreviousClose: raw.PreviousClose,
		Open:          raw.Open,
		High:          raw.High,
		Low:           raw.Low,
		PercentChange: raw.PercentChange,
		Timestamp:     time.Unix(raw.Timestamp, 0),
	}, nil
}

// SymbolLookup searches for symbols matching the query. An empty result is
// returned as a NoData error; callers distinguish direct from indirect hits.
func (f *Finnhub) SymbolLookup(ctx context.Context, ticker string) ([]model.SymbolMatch, error) {
	var raw struct {
		Count  int `json:"count"`
		Result []struct {
			Symbol      string `json:"symbol"`
			Description string `json:"description"`
		} `json:"result"`
	}
	if err := f.get(ctx, "symbol-lookup", ticker, url.Values{"q": {ticker}}, &raw); err != nil {
		return nil, err
	}
	if raw.Count == 0 || len(raw.Result) == 0 {
		return nil, &Error{Kind: KindNoData, Op: "symbol-lookup", Ticker: ticker}
	}
	matches := make([]model.SymbolMatch, 0, len(raw.Result))
	for _, r := range raw.Result {
		matches = append(matches, model.SymbolMatch{Symbol: r.Symbol, Description: r.Description})
	}
	return matches, nil
}

// ResolveQuote looks the ticker up and, on a direct symbol match, fetches its
// quote. Indirect matches surface as a NoExactMatch error carrying candidates.
func (f *Finnhub) ResolveQuote(ctx context.Context, ticker string) (*model.Quote, error) {
	matches, err := f.SymbolLookup(ctx, ticker)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if m.Symbol == ticker {
			return f.Quote(ctx, ticker)
		}
	}
	return nil, &Error{Kind: KindNoExactMatch, Op: "quote", Ticker: ticker, Candidates: matches}
}

type finnhubArticle struct {
	Headline  string `json:"headline"`
	Summary   string `json:"summary"`
	URL       string `json:"url"`
	Source    string `json:"source"`
	Timestamp int64  `json:"datetime"`
}

// GeneralNews fetches the provider-wide general market news feed.
func (f *Finnhub) GeneralNews(ctx context.Context) ([]model.NewsArticle, error) {
	var raw []finnhubArticle
	if err := f.get(ctx, "general-news", "", url.Values{"category": {"general"}}, &raw); err != nil {
		return nil, err
	}
	return toArticles(raw), nil
}

// CompanyNews fetches news for one ticker within a date range.
func (f *Finnhub) CompanyNews(ctx context.Context, ticker string, from, to time.Time) ([]model.NewsArticle, error) {
	q := url.Values{
		"symbol": {ticker},
		"from":   {from.Format("2006-01-02")},
		"to":     {to.Format("2006-01-02")},
	}
	var raw []finnhubArticle
	if err := f.get(ctx, "company-news", ticker, q, &raw); err != nil {
		return nil, err
	}
	return toArticles(raw), nil
}

func toArticles(raw []finnhubArticle) []model.NewsArticle {
	articles := make([]model.NewsArticle, 0, len(raw))
	for _, r := range raw {
		source := r.Source
		if source == "" {
			source = "Unknown"
		}
		articles = append(articles, model.NewsArticle{
			Headline:  r.Headline,
			Summary:   r.Summary,
			URL:       r.URL,
			Source:    source,
			Timestamp: r.Timestamp,
		})
	}
	return articles
}

// RecommendationTrends fetches analyst recommendation counts per period,
// most recent period first, as delivered by the provider.
func (f *Finnhub) RecommendationTrends(ctx context.Context, ticker string) ([]model.TrendRow, error) {
	var raw []struct {
		Period     string `json:"period"`
		StrongBuy  int    `json:"strongBuy"`
		Buy        int    `json:"buy"`
		Hold       int    `json:"hold"`
		Sell       int    `json:"sell"`
		StrongSell int    `json:"strongSell"`
	}
	if err := f.get(ctx, "recommendation-trends", ticker, url.Values{"symbol": {ticker}}, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, &Error{Kind: KindNoData, Op: "recommendation-trends", Ticker: ticker}
	}
	rows := make([]model.TrendRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, model.TrendRow{
			Period:     r.Period,
			StrongBuy:  r.StrongBuy,
			Buy:        r.Buy,
			Hold:       r.Hold,
			Sell:       r.Sell,
			StrongSell: r.StrongSell,
		})
	}
	return rows, nil
}

// Beta extracts the beta metric from basic financials.
func (f *Finnhub) Beta(ctx context.Context, ticker string) (float64, error) {
	var raw struct {
		Metric map[string]json.RawMessage `json:"metric"`
	}
	q := url.Values{"symbol": {ticker}, "metric": {"all"}}
	if err := f.get(ctx, "basic-financials", ticker, q, &raw); err != nil {
		return 0, err
	}
	b, ok := raw.Metric["beta"]
	if !ok {
		return 0, &Error{Kind: KindNoData, Op: "basic-financials", Ticker: ticker}
	}
	var beta float64
	if err := json.Unmarshal(b, &beta); err != nil {
		return 0, &Error{Kind: KindMalformed, Op: "basic-financials", Ticker: ticker, Err: err}
	}
	return beta, nil
}

func (f *Finnhub) endpoint(op string) string {
	switch op {
	case "quote":
		return "/quote"
	case "symbol-lookup":
		return "/search"
	case "general-news":
		return "/news"
	case "company-news":
		return "/company-news"
	case "recommendation-trends":
		return "/stock/recommendation"
	case "basic-financials":
		return "/stock/metric"
	}
	return ""
}

func (f *Finnhub) get(ctx context.Context, op, ticker string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+f.endpoint(op)+"?"+q.Encode(), nil)
	if err != nil {
		return &Error{Kind: KindUpstream, Op: op, Ticker: ticker, Err: err}
	}
	req.Header.Set("X-Finnhub-Token", f.APIKey)

	metrics.UpstreamRequestsTotal.WithLabelValues("finnhub").Inc()
	resp, err := f.Client.Do(req)
	if err != nil {
		return &Error{Kind: KindUpstream, Op: op, Ticker: ticker, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &Error{Kind: KindUpstream, Op: op, Ticker: ticker, Err: fmt.Errorf("rate limited")}
	}
	if resp.StatusCode != http.StatusOK {
		return &Error{Kind: KindUpstream, Op: op, Ticker: ticker, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindMalformed, Op: op, Ticker: ticker, Err: err}
	}
	return nil
}
