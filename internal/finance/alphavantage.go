package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"StockPulse/internal/metrics"
	"StockPulse/internal/model"
)

// AlphaVantage is a thin client for the Alpha Vantage REST API.
type AlphaVantage struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAlphaVantage creates an Alpha Vantage client.
func NewAlphaVantage(baseURL, apiKey string) *AlphaVantage {
	return &AlphaVantage{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type avQuotePayload struct {
	// Alpha Vantage signals a hit API-call cap through one of these keys
	// instead of an HTTP status.
	Information string `json:"Information"`
	Note        string `json:"Note"`
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Open          string `json:"02. open"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		TradingDay    string `json:"07. latest trading day"`
		PreviousClose string `json:"08. previous close"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// GlobalQuote fetches the latest quote. An empty "Global Quote" object is
// reported as NoExactMatch with symbol-search candidates attached, matching
// the disambiguation contract of the Finnhub path.
func (c *AlphaVantage) GlobalQuote(ctx context.Context, ticker string) (*model.Quote, error) {
	q := url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {ticker}}

	var raw avQuotePayload
	if err := c.get(ctx, "global-quote", ticker, q, &raw); err != nil {
		return nil, err
	}
	if raw.Information != "" || raw.Note != "" {
		return nil, &Error{Kind: KindUpstream, Op: "global-quote", Ticker: ticker,
			Err: fmt.Errorf("rate limited: %s%s", raw.Information, raw.Note)}
	}
	if raw.GlobalQuote.Symbol == "" {
		matches, err := c.SymbolSearch(ctx, ticker)
		if err != nil {
			return nil, err
		}
		return nil, &Error{Kind: KindNoExactMatch, Op: "global-quote", Ticker: ticker, Candidates: matches}
	}

	quote := &model.Quote{Ticker: ticker}
	var err error
	if quote.Current, err = parseAVFloat(raw.GlobalQuote.Price); err != nil {
		return nil, &Error{Kind: KindMalformed, Op: "global-quote", Ticker: ticker, Err: err}
	}
	if quote.Open, err = parseAVFloat(raw.GlobalQuote.Open); err != nil {
		return nil, &Error{Kind: KindMalformed, Op: "global-quote", Ticker: ticker, Err: err}
	}
	if quote.High, err = parseAVFloat(raw.GlobalQuote.High); err != nil {
		return nil, &Error{Kind: KindMalformed, Op: "global-quote", Ticker: ticker, Err: err}
	}
	if quote.Low, err = parseAVFloat(raw.GlobalQuote.Low); err != nil {
		return nil, &Error{Kind: KindMalformed, Op: "global-quote", Ticker: ticker, Err: err}
	}
	if quote.PreviousClose, err = parseAVFloat(raw.GlobalQuote.PreviousClose); err != nil {
		return nil, &Error{Kind: KindMalformed, Op: "global-quote", Ticker: ticker, Err: err}
	}
	if quote.PercentChange, err = parseAVFloat(strings.TrimSuffix(raw.GlobalQuote.ChangePercent, "%")); err != nil {
		return nil, &Error{Kind: KindMalformed, Op: "global-quote", Ticker: ticker, Err: err}
	}
	if day, derr := time.Parse("2006-01-02", raw.GlobalQuote.TradingDay); derr == nil {
		quote.Timestamp = day
	}
	return quote, nil
}

// SymbolSearch returns best-match candidates for a ticker keyword.
func (c *AlphaVantage) SymbolSearch(ctx context.Context, keywords string) ([]model.SymbolMatch, error) {
	q := url.Values{"function": {"SYMBOL_SEARCH"}, "keywords": {keywords}}

	var raw struct {
		BestMatches []struct {
			Symbol string `json:"1. symbol"`
			Name   string `json:"2. name"`
		} `json:"bestMatches"`
	}
	if err := c.get(ctx, "symbol-search", keywords, q, &raw); err != nil {
		return nil, err
	}
	if len(raw.BestMatches) == 0 {
		return nil, &Error{Kind: KindNoData, Op: "symbol-search", Ticker: keywords}
	}
	matches := make([]model.SymbolMatch, 0, len(raw.BestMatches))
	for _, m := range raw.BestMatches {
		matches = append(matches, model.SymbolMatch{Symbol: m.Symbol, Description: m.Name})
	}
	return matches, nil
}

func (c *AlphaVantage) get(ctx context.Context, op, ticker string, q url.Values, out any) error {
	q.Set("apikey", c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return &Error{Kind: KindUpstream, Op: op, Ticker: ticker, Err: err}
	}
	metrics.UpstreamRequestsTotal.WithLabelValues("alphavantage").Inc()
	resp, err := c.Client.Do(req)
	if err != nil {
		return &Error{Kind: KindUpstream, Op: op, Ticker: ticker, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &Error{Kind: KindUpstream, Op: op, Ticker: ticker, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindMalformed, Op: op, Ticker: ticker, Err: err}
	}
	return nil
}

func parseAVFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
