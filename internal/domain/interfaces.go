package domain

// Store interfaces consumed by the scoring pipeline. Implementations return rows
// sorted ascending by date, unique per (symbol, date), possibly empty. The sqlite
// repositories in internal/modules/marketdata satisfy these; tests use in-memory
// fakes.

// FundamentalStore reads a symbol's quarterly financial history.
type FundamentalStore interface {
	Fundamentals(symbol string) ([]FundamentalsQuarter, error)
}

// PriceStore reads a symbol's daily OHLCV history.
type PriceStore interface {
	Prices(symbol string) ([]PriceBar, error)
}

// ChipStore reads a symbol's daily institutional net-flow history.
type ChipStore interface {
	NetFlows(symbol string) ([]InstitutionalFlow, error)
}

// ShareholdingStore reads a symbol's weekly large-holder ratio history.
type ShareholdingStore interface {
	Shareholding(symbol string) ([]ShareholdingRatio, error)
}

// NameLookup resolves a symbol to its display name. Implementations fall back to
// the symbol itself when the name is unknown.
type NameLookup interface {
	Resolve(symbol string) string
}
