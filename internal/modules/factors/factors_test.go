package factors

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twquant/tw-screener/internal/domain"
)

// blankQuarter returns a quarter with every value missing.
func blankQuarter(date string) domain.FundamentalsQuarter {
	d, _ := time.Parse("2006-01-02", date)
	return domain.FundamentalsQuarter{
		Date:               d,
		Revenue:            math.NaN(),
		GrossProfit:        math.NaN(),
		OperatingIncome:    math.NaN(),
		NetIncome:          math.NaN(),
		EPS:                math.NaN(),
		Equity:             math.NaN(),
		TotalAssets:        math.NaN(),
		TotalLiabilities:   math.NaN(),
		OperatingCashFlow:  math.NaN(),
		CapitalExpenditure: math.NaN(),
	}
}

var quarterDates = []string{
	"2022-06-30", "2022-09-30", "2022-12-31", "2023-03-31",
	"2023-06-30", "2023-09-30", "2023-12-31", "2024-03-31",
}

func TestCalculateROE(t *testing.T) {
	t.Run("TTM income over average equity", func(t *testing.T) {
		qs := make([]domain.FundamentalsQuarter, 4)
		equities := []float64{10, 11, 11, 12}
		for i := range qs {
			qs[i] = blankQuarter(quarterDates[i])
			qs[i].NetIncome = 2.5
			qs[i].Equity = equities[i]
		}

		// 10 / 11 * 100
		roe, err := CalculateROE(qs)
		require.NoError(t, err)
		assert.InDelta(t, 90.909, roe, 0.01)
	})

	t.Run("missing net income column", func(t *testing.T) {
		qs := make([]domain.FundamentalsQuarter, 4)
		for i := range qs {
			qs[i] = blankQuarter(quarterDates[i])
			qs[i].Equity = 10
		}

		_, err := CalculateROE(qs)
		assert.True(t, errors.Is(err, ErrMissingColumn))
	})

	t.Run("missing equity column", func(t *testing.T) {
		qs := make([]domain.FundamentalsQuarter, 4)
		for i := range qs {
			qs[i] = blankQuarter(quarterDates[i])
			qs[i].NetIncome = 1
		}

		_, err := CalculateROE(qs)
		assert.True(t, errors.Is(err, ErrMissingColumn))
	})

	t.Run("fewer than four quarters", func(t *testing.T) {
		qs := []domain.FundamentalsQuarter{blankQuarter(quarterDates[0])}
		qs[0].NetIncome = 2
		qs[0].Equity = 10

		roe, err := CalculateROE(qs)
		require.NoError(t, err)
		assert.Zero(t, roe)
	})

	t.Run("non-positive equity in window", func(t *testing.T) {
		qs := make([]domain.FundamentalsQuarter, 4)
		for i := range qs {
			qs[i] = blankQuarter(quarterDates[i])
			qs[i].NetIncome = 2
			qs[i].Equity = 10
		}
		qs[2].Equity = -5

		roe, err := CalculateROE(qs)
		require.NoError(t, err)
		assert.Zero(t, roe)
	})

	t.Run("empty input", func(t *testing.T) {
		roe, err := CalculateROE(nil)
		require.NoError(t, err)
		assert.Zero(t, roe)
	})
}

func TestCalculateEPSYoY(t *testing.T) {
	build := func(priorEPS, latestEPS float64) []domain.FundamentalsQuarter {
		qs := make([]domain.FundamentalsQuarter, 5)
		for i := range qs {
			qs[i] = blankQuarter(quarterDates[i])
			qs[i].EPS = 1
		}
		qs[0].EPS = priorEPS
		qs[4].EPS = latestEPS
		return qs
	}

	tests := []struct {
		name   string
		prior  float64
		latest float64
		want   float64
	}{
		{name: "growth", prior: 1.0, latest: 1.4, want: 40.0},
		{name: "decline", prior: 1.5, latest: 1.1, want: -26.667},
		{name: "negative prior uses absolute base", prior: -1.0, latest: -1.5, want: -50.0},
		{name: "near-zero prior with positive latest", prior: 0.0005, latest: 2.0, want: 100.0},
		{name: "near-zero prior with negative latest", prior: 0.0005, latest: -1.0, want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateEPSYoY(build(tt.prior, tt.latest))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}

	t.Run("fewer than five quarters", func(t *testing.T) {
		got, err := CalculateEPSYoY(build(1, 2)[:4])
		require.NoError(t, err)
		assert.Zero(t, got)
	})

	t.Run("missing latest EPS", func(t *testing.T) {
		qs := build(1, 2)
		qs[4].EPS = math.NaN()
		got, err := CalculateEPSYoY(qs)
		require.NoError(t, err)
		assert.Zero(t, got)
	})
}

func TestCalculateFCF(t *testing.T) {
	t.Run("TTM operating cash flow minus capex", func(t *testing.T) {
		qs := make([]domain.FundamentalsQuarter, 4)
		for i := range qs {
			qs[i] = blankQuarter(quarterDates[i])
			qs[i].OperatingCashFlow = 1000
			qs[i].CapitalExpenditure = 500
		}

		fcf, err := CalculateFCF(qs)
		require.NoError(t, err)
		assert.InDelta(t, 2000, fcf, 0.001)
	})

	t.Run("missing values count as zero", func(t *testing.T) {
		qs := make([]domain.FundamentalsQuarter, 4)
		for i := range qs {
			qs[i] = blankQuarter(quarterDates[i])
			qs[i].OperatingCashFlow = 1000
			qs[i].CapitalExpenditure = 500
		}
		qs[2].CapitalExpenditure = math.NaN()

		fcf, err := CalculateFCF(qs)
		require.NoError(t, err)
		assert.InDelta(t, 2500, fcf, 0.001)
	})

	t.Run("fewer than four quarters", func(t *testing.T) {
		fcf, err := CalculateFCF([]domain.FundamentalsQuarter{blankQuarter(quarterDates[0])})
		require.NoError(t, err)
		assert.Zero(t, fcf)
	})
}

func TestCalculateGrossMarginTrend(t *testing.T) {
	t.Run("margin change in percentage points", func(t *testing.T) {
		qs := make([]domain.FundamentalsQuarter, 5)
		for i := range qs {
			qs[i] = blankQuarter(quarterDates[i])
			qs[i].Revenue = 100
			qs[i].GrossProfit = 40
		}
		qs[4].GrossProfit = 43

		trend, err := CalculateGrossMarginTrend(qs)
		require.NoError(t, err)
		assert.InDelta(t, 3.0, trend, 0.001)
	})

	t.Run("non-positive revenue degrades to zero", func(t *testing.T) {
		qs := make([]domain.FundamentalsQuarter, 5)
		for i := range qs {
			qs[i] = blankQuarter(quarterDates[i])
			qs[i].Revenue = 100
			qs[i].GrossProfit = 40
		}
		qs[0].Revenue = 0

		trend, err := CalculateGrossMarginTrend(qs)
		require.NoError(t, err)
		assert.Zero(t, trend)
	})
}

func TestCalculateDebtRatio(t *testing.T) {
	t.Run("liabilities over assets", func(t *testing.T) {
		q := blankQuarter(quarterDates[0])
		q.TotalAssets = 200
		q.TotalLiabilities = 80

		ratio, err := CalculateDebtRatio([]domain.FundamentalsQuarter{q})
		require.NoError(t, err)
		assert.InDelta(t, 40.0, ratio, 0.001)
	})

	t.Run("missing data is worst case", func(t *testing.T) {
		ratio, err := CalculateDebtRatio([]domain.FundamentalsQuarter{blankQuarter(quarterDates[0])})
		require.NoError(t, err)
		assert.InDelta(t, 100.0, ratio, 0.001)
	})

	t.Run("empty input is worst case", func(t *testing.T) {
		ratio, err := CalculateDebtRatio(nil)
		require.NoError(t, err)
		assert.InDelta(t, 100.0, ratio, 0.001)
	})
}

func TestCalculateRevenueYoY(t *testing.T) {
	build := func(prior, latest float64) []domain.FundamentalsQuarter {
		qs := make([]domain.FundamentalsQuarter, 5)
		for i := range qs {
			qs[i] = blankQuarter(quarterDates[i])
			qs[i].Revenue = 100
		}
		qs[0].Revenue = prior
		qs[4].Revenue = latest
		return qs
	}

	t.Run("growth", func(t *testing.T) {
		got, err := CalculateRevenueYoY(build(100, 125))
		require.NoError(t, err)
		assert.InDelta(t, 25.0, got, 0.001)
	})

	t.Run("non-positive prior revenue", func(t *testing.T) {
		got, err := CalculateRevenueYoY(build(0, 125))
		require.NoError(t, err)
		assert.Zero(t, got)
	})
}

func TestCalculatePERelative(t *testing.T) {
	// Five quarters of EPS 1 give a constant TTM EPS of 4 from the fourth
	// quarter onward.
	quarters := func() []domain.FundamentalsQuarter {
		qs := make([]domain.FundamentalsQuarter, 5)
		for i := range qs {
			qs[i] = blankQuarter(quarterDates[i])
			qs[i].EPS = 1
		}
		return qs
	}

	bars := func(closes ...float64) []domain.PriceBar {
		out := make([]domain.PriceBar, len(closes))
		start, _ := time.Parse("2006-01-02", "2023-07-01")
		for i, c := range closes {
			out[i] = domain.PriceBar{Date: start.AddDate(0, 0, i), Close: c}
		}
		return out
	}

	t.Run("z-score against own history", func(t *testing.T) {
		// PE series 10..15, current 15: z = 2.5 / 1.8708
		got, err := CalculatePERelative(quarters(), bars(40, 44, 48, 52, 56, 60), 756)
		require.NoError(t, err)
		assert.InDelta(t, 1.336, got, 0.01)
	})

	t.Run("constant history falls back to mean ratio", func(t *testing.T) {
		got, err := CalculatePERelative(quarters(), bars(40, 40, 40, 40), 756)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, got, 0.001)
	})

	t.Run("negative current PE is penalized", func(t *testing.T) {
		got, err := CalculatePERelative(quarters(), bars(40, 44, -40), 756)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, got, 0.001)
	})

	t.Run("no price history is neutral", func(t *testing.T) {
		got, err := CalculatePERelative(quarters(), nil, 756)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, got, 0.001)
	})

	t.Run("bars before any full TTM window are skipped", func(t *testing.T) {
		early := []domain.PriceBar{{Date: mustDate("2022-01-15"), Close: 40}}
		got, err := CalculatePERelative(quarters(), early, 756)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, got, 0.001)
	})

	t.Run("window restricts the history", func(t *testing.T) {
		// With a window of 3, only PEs 13,14,15 standardize the current.
		got, err := CalculatePERelative(quarters(), bars(40, 44, 48, 52, 56, 60), 3)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, got, 0.001)
	})
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
