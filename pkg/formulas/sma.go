package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateSMA calculates a simple moving average.
//
// Args:
//   closes: Array of closing prices
//   length: Lookback period
//
// Returns:
//   Current SMA value or nil if insufficient data
func CalculateSMA(closes []float64, length int) *float64 {
	if len(closes) < length {
		return nil
	}

	sma := talib.Sma(closes, length)

	if len(sma) > 0 && !isNaN(sma[len(sma)-1]) {
		result := sma[len(sma)-1]
		return &result
	}

	return nil
}

// CalculateBias calculates the deviation ratio of the current price from a
// moving average, as a percentage.
//
// Formula: Bias = (Price - MA) / MA × 100
func CalculateBias(closes []float64, length int) *float64 {
	if len(closes) == 0 {
		return nil
	}

	ma := CalculateSMA(closes, length)
	if ma == nil || *ma == 0 {
		return nil
	}

	price := closes[len(closes)-1]
	bias := (price - *ma) / *ma * 100
	return &bias
}
