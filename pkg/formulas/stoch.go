package formulas

import (
	"github.com/markcheno/go-talib"
)

// StochKD represents the latest slow stochastic oscillator values.
type StochKD struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
}

// CalculateStochKD calculates the slow stochastic oscillator (KD).
//
// Formula:
//   Raw %K = (Close - LowestLow(n)) / (HighestHigh(n) - LowestLow(n)) × 100
//   K = SMA(Raw %K, smoothK)
//   D = SMA(K, smoothD)
//
// Args:
//   highs, lows, closes: Price arrays of equal length
//   length: %K lookback period (typically 14)
//   smoothK, smoothD: Smoothing periods (typically 3, 3)
//
// Returns:
//   StochKD struct or nil if insufficient data
func CalculateStochKD(highs, lows, closes []float64, length, smoothK, smoothD int) *StochKD {
	needed := length + smoothK + smoothD
	if len(closes) < needed || len(highs) != len(closes) || len(lows) != len(closes) {
		return nil
	}

	// MAType 0 = SMA (Simple Moving Average)
	k, d := talib.Stoch(highs, lows, closes, length, smoothK, 0, smoothD, 0)

	n := len(k)
	if n == 0 || isNaN(k[n-1]) || isNaN(d[n-1]) {
		return nil
	}

	return &StochKD{K: k[n-1], D: d[n-1]}
}
