package finmind

// Dataset row shapes as the provider returns them. Field names follow the
// provider's JSON, quirks included.

// priceRow is one TaiwanStockPrice row.
type priceRow struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	Max    float64 `json:"max"`
	Min    float64 `json:"min"`
	Close  float64 `json:"close"`
	Volume float64 `json:"Trading_Volume"`
}

// statementRow is one financial statement row in the provider's long format:
// one (date, type, value) triple per statement line item.
type statementRow struct {
	Date  string  `json:"date"`
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// institutionalRow is one TaiwanStockInstitutionalInvestorsBuySell row; buy and
// sell are share counts, netted during transformation.
type institutionalRow struct {
	Date string  `json:"date"`
	Name string  `json:"name"`
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

// shareholdingRow is one TaiwanStockHoldingSharesPer row; the scorer only
// keeps the large-lot bucket.
type shareholdingRow struct {
	Date    string  `json:"date"`
	Level   string  `json:"HoldingSharesLevel"`
	Percent float64 `json:"percent"`
}
