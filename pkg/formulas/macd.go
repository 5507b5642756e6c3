package formulas

import (
	"github.com/markcheno/go-talib"
)

// MACD represents the latest MACD values plus the prior bar's histogram,
// which momentum scorers use to detect whether the histogram is growing.
type MACD struct {
	Line          float64 `json:"line"`
	Signal        float64 `json:"signal"`
	Histogram     float64 `json:"histogram"`
	PrevHistogram float64 `json:"prev_histogram"`
}

// CalculateMACD calculates MACD (Moving Average Convergence Divergence).
//
// MACD Formula:
//   Line = EMA(fast) - EMA(slow)
//   Signal = EMA(Line, signalPeriod)
//   Histogram = Line - Signal
//
// Args:
//   closes: Array of closing prices
//   fast, slow, signal: Periods (typically 12, 26, 9)
//
// Returns:
//   MACD struct or nil if insufficient data
func CalculateMACD(closes []float64, fast, slow, signal int) *MACD {
	// talib needs slow+signal bars of lookback before values stabilise
	if len(closes) < slow+signal+1 {
		return nil
	}

	line, sig, hist := talib.Macd(closes, fast, slow, signal)
	n := len(hist)
	if n < 2 || isNaN(line[n-1]) || isNaN(sig[n-1]) || isNaN(hist[n-1]) {
		return nil
	}

	return &MACD{
		Line:          line[n-1],
		Signal:        sig[n-1],
		Histogram:     hist[n-1],
		PrevHistogram: hist[n-2],
	}
}
