package model

// TrendRow is one period of analyst recommendation counts.
// The provider returns rows most-recent-first.
type TrendRow struct {
	Period     string // "YYYY-MM-DD"
	StrongBuy  int
	Buy        int
	Hold       int
	Sell       int
	StrongSell int
}

// CAPM holds the inputs and result of a Capital Asset Pricing Model
// calculation. Purely derived, never stored.
type CAPM struct {
	Ticker         string
	Beta           float64
	RiskFreeRate   float64
	MarketReturn   float64
	ExpectedReturn float64
}
