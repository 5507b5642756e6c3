package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSMA(t *testing.T) {
	t.Run("simple average of the window", func(t *testing.T) {
		sma := CalculateSMA([]float64{1, 2, 3, 4, 5}, 5)
		require.NotNil(t, sma)
		assert.InDelta(t, 3.0, *sma, 0.001)
	})

	t.Run("uses only the trailing window", func(t *testing.T) {
		sma := CalculateSMA([]float64{100, 100, 10, 20, 30}, 3)
		require.NotNil(t, sma)
		assert.InDelta(t, 20.0, *sma, 0.001)
	})

	t.Run("insufficient data", func(t *testing.T) {
		assert.Nil(t, CalculateSMA([]float64{1, 2}, 3))
	})
}

func TestCalculateBias(t *testing.T) {
	t.Run("deviation from moving average", func(t *testing.T) {
		// MA(3) = 100, price 110: bias +10%
		bias := CalculateBias([]float64{95, 95, 110}, 3)
		require.NotNil(t, bias)
		assert.InDelta(t, 10.0, *bias, 0.001)
	})

	t.Run("insufficient data", func(t *testing.T) {
		assert.Nil(t, CalculateBias([]float64{100}, 3))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, CalculateBias(nil, 3))
	})
}

func TestCalculateRSI(t *testing.T) {
	t.Run("needs length plus one bars", func(t *testing.T) {
		closes := make([]float64, 14)
		for i := range closes {
			closes[i] = 100
		}
		assert.Nil(t, CalculateRSI(closes, 14))
	})

	t.Run("all gains reads overbought", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		rsi := CalculateRSI(closes, 14)
		require.NotNil(t, rsi)
		assert.InDelta(t, 100.0, *rsi, 0.001)
	})
}

func TestCalculateMACD(t *testing.T) {
	t.Run("insufficient data", func(t *testing.T) {
		assert.Nil(t, CalculateMACD(make([]float64, 35), 12, 26, 9))
	})

	t.Run("uptrend reads bullish", func(t *testing.T) {
		closes := make([]float64, 80)
		price := 100.0
		for i := range closes {
			closes[i] = price
			price *= 1.01
		}

		m := CalculateMACD(closes, 12, 26, 9)
		require.NotNil(t, m)
		assert.Greater(t, m.Line, m.Signal)
		assert.Greater(t, m.Histogram, 0.0)
	})
}

func TestCalculateStochKD(t *testing.T) {
	t.Run("insufficient data", func(t *testing.T) {
		n := 10
		assert.Nil(t, CalculateStochKD(make([]float64, n), make([]float64, n), make([]float64, n), 14, 3, 3))
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		assert.Nil(t, CalculateStochKD(make([]float64, 30), make([]float64, 29), make([]float64, 30), 14, 3, 3))
	})

	t.Run("close at the top of the range", func(t *testing.T) {
		n := 30
		highs := make([]float64, n)
		lows := make([]float64, n)
		closes := make([]float64, n)
		for i := range closes {
			closes[i] = 100 + float64(i)
			highs[i] = closes[i] // close pinned to the high
			lows[i] = closes[i] - 10
		}

		kd := CalculateStochKD(highs, lows, closes, 14, 3, 3)
		require.NotNil(t, kd)
		assert.Greater(t, kd.K, 80.0)
	})
}

func TestCalculateBollingerBands(t *testing.T) {
	t.Run("insufficient data", func(t *testing.T) {
		assert.Nil(t, CalculateBollingerBands(make([]float64, 19), 20, 2))
	})

	t.Run("band ordering", func(t *testing.T) {
		closes := []float64{
			100, 102, 98, 101, 99, 103, 97, 100, 102, 98,
			101, 99, 103, 97, 100, 102, 98, 101, 99, 103,
		}
		bb := CalculateBollingerBands(closes, 20, 2)
		require.NotNil(t, bb)
		assert.Greater(t, bb.Upper, bb.Middle)
		assert.Greater(t, bb.Middle, bb.Lower)
		assert.InDelta(t, 100.15, bb.Middle, 0.001)
	})
}

func TestStats(t *testing.T) {
	t.Run("mean", func(t *testing.T) {
		assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 0.001)
		assert.Zero(t, Mean(nil))
	})

	t.Run("sample standard deviation", func(t *testing.T) {
		assert.InDelta(t, 1.0, StdDev([]float64{1, 2, 3}), 0.001)
		assert.Zero(t, StdDev(nil))
	})

	t.Run("sum", func(t *testing.T) {
		assert.InDelta(t, 6.0, Sum([]float64{1, 2, 3}), 0.001)
	})

	t.Run("tail", func(t *testing.T) {
		assert.Equal(t, []float64{2, 3}, Tail([]float64{1, 2, 3}, 2))
		assert.Equal(t, []float64{1, 2, 3}, Tail([]float64{1, 2, 3}, 5))
	})
}
