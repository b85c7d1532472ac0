// Package news filters, ranks, and truncates raw market news into the
// digest delivered to Discord channels.
package news

import (
	"sort"
	"strings"
	"time"

	"StockPulse/internal/model"
)

// MaxDigestArticles caps the digest length.
const MaxDigestArticles = 10

// MaxArticleAge is the recency window for digest candidates.
const MaxArticleAge = 24 * time.Hour

// StockKeywords is the relevance filter: an article survives when its
// lowercase headline or summary contains at least one of these.
var StockKeywords = []string{
	"stock", "market", "shares", "earnings", "ipo",
	"investment", "trading", "ai", "technology",
}

// TrustedSources rank ahead of everything else, compared lowercase.
var TrustedSources = []string{"cnbc", "bloomberg", "reuters", "wsj", "financial times"}

// Select turns a raw article list of arbitrary age and order into the
// digest: recency filter, keyword filter, stable rank by (trust tier
// ascending, timestamp descending), truncated to MaxDigestArticles.
// An empty result is valid output, not an error.
func Select(articles []model.NewsArticle, now time.Time) []model.NewsArticle {
	cutoff := now.Add(-MaxArticleAge).Unix()

	kept := make([]model.NewsArticle, 0, len(articles))
	for _, a := range articles {
		if a.Timestamp < cutoff {
			continue
		}
		if !IsStockRelevant(a) {
			continue
		}
		kept = append(kept, a)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		ti, tj := SourceTier(kept[i].Source), SourceTier(kept[j].Source)
		if ti != tj {
			return ti < tj
		}
		return kept[i].Timestamp > kept[j].Timestamp
	})

	if len(kept) > MaxDigestArticles {
		kept = kept[:MaxDigestArticles]
	}
	return kept
}

// IsStockRelevant reports whether the article mentions any stock keyword.
func IsStockRelevant(a model.NewsArticle) bool {
	headline := strings.ToLower(a.Headline)
	summary := strings.ToLower(a.Summary)
	for _, kw := range StockKeywords {
		if strings.Contains(headline, kw) || strings.Contains(summary, kw) {
			return true
		}
	}
	return false
}

// SourceTier returns 1 for trusted sources and 2 for everything else.
func SourceTier(source string) int {
	source = strings.ToLower(source)
	for _, s := range TrustedSources {
		if source == s {
			return 1
		}
	}
	return 2
}
