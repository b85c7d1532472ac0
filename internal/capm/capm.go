// Package capm implements the Capital Asset Pricing Model.
package capm

import "StockPulse/internal/model"

// ExpectedReturn computes riskFree + beta * (marketReturn - riskFree).
// All rates are percentages.
func ExpectedReturn(riskFree, marketReturn, beta float64) float64 {
	return riskFree + beta*(marketReturn-riskFree)
}

// Compute builds the full CAPM result for a ticker.
func Compute(ticker string, beta, riskFree, marketReturn float64) model.CAPM {
	return model.CAPM{
		Ticker:         ticker,
		Beta:           beta,
		RiskFreeRate:   riskFree,
		MarketReturn:   marketReturn,
		ExpectedReturn: ExpectedReturn(riskFree, marketReturn, beta),
	}
}
