package model

import "time"

// Quote represents a point-in-time price snapshot for one ticker.
type Quote struct {
	Ticker        string
	Current       float64
	PreviousClose float64
	Open          float64
	High          float64
	Low           float64
	PercentChange float64
	Timestamp     time.Time
}

// NewsArticle is a single news item as returned by the provider.
// Immutable once fetched.
type NewsArticle struct {
	Headline  string
	Summary   string
	URL       string
	Source    string
	Timestamp int64 // epoch seconds
}

// PublishedAt returns the article timestamp as wall-clock time.
func (a NewsArticle) PublishedAt() time.Time {
	return time.Unix(a.Timestamp, 0)
}

// SymbolMatch is one candidate from a symbol search, used for
// "did you mean" disambiguation when a lookup has no direct hit.
type SymbolMatch struct {
	Symbol      string
	Description string
}
