package domain

import "time"

// Signal classifies a candidate's technical position into an actionable category.
type Signal string

const (
	SignalStrongBuy        Signal = "STRONG_BUY"
	SignalBuy              Signal = "BUY"
	SignalWatch            Signal = "WATCH"
	SignalHold             Signal = "HOLD"
	SignalOverboughtReduce Signal = "OVERBOUGHT_REDUCE"
	SignalDataInsufficient Signal = "DATA_INSUFFICIENT"
)

// FundamentalsQuarter is one fiscal quarter of financial statement data for a symbol.
// Values absent from the source feed are NaN; each consumer decides how a missing
// value degrades.
type FundamentalsQuarter struct {
	Date               time.Time `json:"date"`
	Revenue            float64   `json:"revenue"`
	GrossProfit        float64   `json:"gross_profit"`
	OperatingIncome    float64   `json:"operating_income"`
	NetIncome          float64   `json:"net_income"`
	EPS                float64   `json:"eps"`
	Equity             float64   `json:"equity"`
	TotalAssets        float64   `json:"total_assets"`
	TotalLiabilities   float64   `json:"total_liabilities"`
	OperatingCashFlow  float64   `json:"operating_cash_flow"`
	CapitalExpenditure float64   `json:"capital_expenditure"`
}

// PriceBar is one daily OHLCV bar.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// InstitutionalFlow is one trading day of institutional net buy/sell amounts.
// TotalNet is the sum of the three institution types.
type InstitutionalFlow struct {
	Date       time.Time `json:"date"`
	ForeignNet float64   `json:"foreign_net"`
	TrustNet   float64   `json:"trust_net"`
	DealerNet  float64   `json:"dealer_net"`
	TotalNet   float64   `json:"total_net"`
}

// ShareholdingRatio is one collection week of large-holder concentration.
// MajorRatio is the percentage of shares held by large-lot accounts.
type ShareholdingRatio struct {
	Date       time.Time `json:"date"`
	MajorRatio float64   `json:"major_ratio"`
}

// Candidate is one scored row of a screening run. It lives only for the duration
// of the run; persistence is the report writer's concern.
type Candidate struct {
	Symbol             string            `json:"symbol"`
	Name               string            `json:"name"`
	FundamentalScore   float64           `json:"fundamental_score"`
	PEScore            int               `json:"pe_score"`
	FundamentalDetails map[string]int    `json:"fundamental_details"`
	ChipScore          int               `json:"chip_score"`
	ChipDetails        map[string]string `json:"chip_details"`
	TechScore          int               `json:"tech_score"`
	TechDetails        map[string]string `json:"tech_details"`
	Bias60             float64           `json:"bias_60"`
	K                  *float64          `json:"k,omitempty"`
	D                  *float64          `json:"d,omitempty"`
	Signal             Signal            `json:"signal"`
}
