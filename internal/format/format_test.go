package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/model"
)

func TestQuote_DirectionalIndicator(t *testing.T) {
	up := Quote(&model.Quote{Ticker: "AAPL", Current: 150.254, PercentChange: 1.52})
	assert.Contains(t, up, "📈")
	assert.Contains(t, up, "Current price: 150.25")

	down := Quote(&model.Quote{Ticker: "AAPL", PercentChange: -0.4})
	assert.Contains(t, down, "📉")

	flat := Quote(&model.Quote{Ticker: "AAPL", PercentChange: 0})
	assert.Contains(t, flat, "➡️")
}

func TestCAPM(t *testing.T) {
	msg := CAPM(model.CAPM{
		Ticker: "AAPL", Beta: 1.5, RiskFreeRate: 4.77, MarketReturn: 8.00, ExpectedReturn: 9.615,
	})
	assert.Contains(t, msg, "Beta: 1.50")
	assert.Contains(t, msg, "Risk-free rate: 4.77%")
	assert.Contains(t, msg, "Expected return: 9.6")
}

func TestDidYouMean(t *testing.T) {
	msg := DidYouMean([]model.SymbolMatch{
		{Symbol: "AAPL", Description: "Apple Inc"},
		{Symbol: "APLE", Description: "Apple Hospitality REIT"},
	})
	assert.Contains(t, msg, "Did you mean")
	assert.Contains(t, msg, "1: AAPL, Apple Inc")
	assert.Contains(t, msg, "2: APLE, Apple Hospitality REIT")
}

func TestNewsEmbed(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	articles := []model.NewsArticle{{
		Headline:  "Stocks rally",
		URL:       "https://example.com/1",
		Source:    "cnbc",
		Timestamp: now.Add(-time.Hour).Unix(),
	}}

	embed := NewsEmbed("Top Stock Market News", "desc", articles, now)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "Stocks rally (cnbc)", embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[0].Value, "https://example.com/1")
	assert.Equal(t, "Powered by Finnhub API", embed.Footer.Text)
}

func TestNewsEmbed_Empty(t *testing.T) {
	embed := NewsEmbed("Top Stock Market News", "desc", nil, time.Now())
	assert.Empty(t, embed.Fields)
	assert.Contains(t, embed.Description, "No news articles available")
}
