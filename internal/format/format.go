// Package format maps API payloads into user-facing Discord messages.
// Pure functions, no I/O.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"StockPulse/internal/model"
)

const digestColor = 0x2ecc71 // green
const errorColor = 0xe74c3c  // red

// Quote renders a quote with a directional indicator chosen by the sign of
// the percent change.
func Quote(q *model.Quote) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s **%s**\n", trendEmoji(q.PercentChange), q.Ticker))
	b.WriteString(fmt.Sprintf("Current price: %.2f\n", q.Current))
	b.WriteString(fmt.Sprintf("Previous Close: %.2f\n", q.PreviousClose))
	b.WriteString(fmt.Sprintf("Open: %.2f\n", q.Open))
	b.WriteString(fmt.Sprintf("High: %.2f\n", q.High))
	b.WriteString(fmt.Sprintf("Low: %.2f\n", q.Low))
	b.WriteString(fmt.Sprintf("Percent Change: %.2f%%\n", q.PercentChange))
	if !q.Timestamp.IsZero() {
		b.WriteString(fmt.Sprintf("Timestamp: %s\n", q.Timestamp.Format("2006-01-02 15:04:05")))
	}
	return b.String()
}

func trendEmoji(percentChange float64) string {
	switch {
	case percentChange > 0:
		return "📈"
	case percentChange < 0:
		return "📉"
	default:
		return "➡️"
	}
}

// CAPM renders a CAPM calculation result.
func CAPM(c model.CAPM) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**%s** CAPM expected return\n", c.Ticker))
	b.WriteString(fmt.Sprintf("Beta: %.2f\n", c.Beta))
	b.WriteString(fmt.Sprintf("Risk-free rate: %.2f%%\n", c.RiskFreeRate))
	b.WriteString(fmt.Sprintf("Market return: %.2f%%\n", c.MarketReturn))
	b.WriteString(fmt.Sprintf("Expected return: %.2f%%\n", c.ExpectedReturn))
	return b.String()
}

// DidYouMean renders the disambiguation list for a lookup with no direct match.
func DidYouMean(matches []model.SymbolMatch) string {
	var b strings.Builder
	b.WriteString("Could not find a direct match.\nDid you mean:\n")
	for i, m := range matches {
		b.WriteString(fmt.Sprintf("%d: %s, %s\n", i+1, m.Symbol, m.Description))
	}
	return b.String()
}

// NewsEmbed builds the digest embed. An empty article list yields a
// "no data" embed rather than an error.
func NewsEmbed(title, description string, articles []model.NewsArticle, now time.Time) *discordgo.MessageEmbed {
	if len(articles) == 0 {
		return ErrorEmbed(title, "No news articles available right now.")
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(articles))
	for _, a := range articles {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("%s (%s)", a.Headline, a.Source),
			Value: fmt.Sprintf("[Read more here](%s)\nPublished: %s",
				a.URL, a.PublishedAt().Format("2006-01-02 15:04:05")),
			Inline: false,
		})
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       digestColor,
		Fields:      fields,
		Timestamp:   now.Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Powered by Finnhub API"},
	}
}

// ErrorEmbed builds a red embed carrying a user-facing failure message.
func ErrorEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       errorColor,
	}
}
