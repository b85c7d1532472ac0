package chart

import (
	"fmt"
	"time"

	"StockPulse/internal/model"
)

// TrendSeries holds analyst recommendation counts in chronological order
// with month-name labels, ready for plotting. All six slices are the same
// length by construction.
type TrendSeries struct {
	StrongBuy  []float64
	Buy        []float64
	Hold       []float64
	Sell       []float64
	StrongSell []float64
	Labels     []string
}

// NewTrendSeries builds a TrendSeries from provider rows, which arrive most
// recent first and are reversed here. A period label that is not a parseable
// calendar date is a hard failure.
func NewTrendSeries(rows []model.TrendRow) (*TrendSeries, error) {
	n := len(rows)
	s := &TrendSeries{
		StrongBuy:  make([]float64, n),
		Buy:        make([]float64, n),
		Hold:       make([]float64, n),
		Sell:       make([]float64, n),
		StrongSell: make([]float64, n),
		Labels:     make([]string, n),
	}
	for i, row := range rows {
		j := n - 1 - i
		month, err := monthLabel(row.Period)
		if err != nil {
			return nil, err
		}
		s.Labels[j] = month
		s.StrongBuy[j] = float64(row.StrongBuy)
		s.Buy[j] = float64(row.Buy)
		s.Hold[j] = float64(row.Hold)
		s.Sell[j] = float64(row.Sell)
		s.StrongSell[j] = float64(row.StrongSell)
	}
	return s, nil
}

// CombinedBuy returns buy+strongBuy elementwise, for the condensed line chart.
func (s *TrendSeries) CombinedBuy() []float64 { return sumSlices(s.Buy, s.StrongBuy) }

// CombinedSell returns sell+strongSell elementwise.
func (s *TrendSeries) CombinedSell() []float64 { return sumSlices(s.Sell, s.StrongSell) }

func sumSlices(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// monthLabel converts a "YYYY-MM-DD" period into a month name.
func monthLabel(period string) (string, error) {
	t, err := time.Parse("2006-01-02", period)
	if err != nil {
		return "", fmt.Errorf("invalid period label %q: %w", period, err)
	}
	return t.Month().String(), nil
}
