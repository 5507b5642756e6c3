package factors

import (
	"errors"
	"fmt"
	"math"

	"github.com/twquant/tw-screener/internal/domain"
	"github.com/twquant/tw-screener/pkg/formulas"
)

// ErrMissingColumn indicates a factor's structurally required column carries no
// data at all for the symbol. Only ROE raises this; every other factor degrades
// to its documented default instead.
var ErrMissingColumn = errors.New("required column missing")

// Calculator computes one raw factor value from a symbol's quarterly fundamentals
// and daily price history. Insufficient history resolves to the factor's
// documented default, never an error.
type Calculator func(qs []domain.FundamentalsQuarter, bars []domain.PriceBar) (float64, error)

// nearZeroEPS is the band within which a prior-year EPS counts as zero for YoY.
const nearZeroEPS = 0.001

// CalculateROE returns the trailing-twelve-month return on equity as a percentage.
//
// Formula: TTM net income (sum of last 4 quarters) ÷ average equity (mean of
// last 4 quarters) × 100
//
// Returns ErrMissingColumn when the net income or equity column carries no data.
// Returns 0 when fewer than 4 quarters exist or any of the last 4 equity values
// is non-positive.
func CalculateROE(qs []domain.FundamentalsQuarter) (float64, error) {
	if len(qs) == 0 {
		return 0, nil
	}
	if !columnPresent(qs, func(q domain.FundamentalsQuarter) float64 { return q.NetIncome }) {
		return 0, fmt.Errorf("%w: net_income", ErrMissingColumn)
	}
	if !columnPresent(qs, func(q domain.FundamentalsQuarter) float64 { return q.Equity }) {
		return 0, fmt.Errorf("%w: equity", ErrMissingColumn)
	}
	if len(qs) < 4 {
		return 0, nil
	}

	last4 := qs[len(qs)-4:]
	ttmIncome := 0.0
	equitySum := 0.0
	for _, q := range last4 {
		if math.IsNaN(q.Equity) || q.Equity <= 0 {
			return 0, nil
		}
		if !math.IsNaN(q.NetIncome) {
			ttmIncome += q.NetIncome
		}
		equitySum += q.Equity
	}

	avgEquity := equitySum / 4
	return ttmIncome / avgEquity * 100, nil
}

// CalculateEPSYoY returns EPS growth versus the quarter four periods prior,
// as a percentage. Needs 5 quarters; fewer returns 0. A near-zero prior EPS
// returns 100 when the latest EPS is positive, 0 otherwise.
func CalculateEPSYoY(qs []domain.FundamentalsQuarter) (float64, error) {
	if len(qs) < 5 {
		return 0, nil
	}

	latest := qs[len(qs)-1].EPS
	prior := qs[len(qs)-5].EPS
	if math.IsNaN(latest) || math.IsNaN(prior) {
		return 0, nil
	}

	if math.Abs(prior) < nearZeroEPS {
		if latest > 0 {
			return 100, nil
		}
		return 0, nil
	}

	return (latest - prior) / math.Abs(prior) * 100, nil
}

// CalculateFCF returns trailing-twelve-month free cash flow in absolute currency
// units: TTM operating cash flow minus TTM capital expenditure over the last 4
// quarters. Missing values are treated as 0 before summing. Fewer than 4
// quarters returns 0.
func CalculateFCF(qs []domain.FundamentalsQuarter) (float64, error) {
	if len(qs) < 4 {
		return 0, nil
	}

	ocf := 0.0
	capex := 0.0
	for _, q := range qs[len(qs)-4:] {
		if !math.IsNaN(q.OperatingCashFlow) {
			ocf += q.OperatingCashFlow
		}
		if !math.IsNaN(q.CapitalExpenditure) {
			capex += q.CapitalExpenditure
		}
	}

	return ocf - capex, nil
}

// CalculateGrossMarginTrend returns the change in gross margin (percentage
// points) between the latest quarter and the quarter four periods prior.
// Needs 5 quarters; fewer, or a non-positive revenue at either end, returns 0.
func CalculateGrossMarginTrend(qs []domain.FundamentalsQuarter) (float64, error) {
	if len(qs) < 5 {
		return 0, nil
	}

	latest := qs[len(qs)-1]
	prior := qs[len(qs)-5]

	latestMargin, ok := grossMargin(latest)
	if !ok {
		return 0, nil
	}
	priorMargin, ok := grossMargin(prior)
	if !ok {
		return 0, nil
	}

	return latestMargin - priorMargin, nil
}

func grossMargin(q domain.FundamentalsQuarter) (float64, bool) {
	if math.IsNaN(q.Revenue) || q.Revenue <= 0 || math.IsNaN(q.GrossProfit) {
		return 0, false
	}
	return q.GrossProfit / q.Revenue * 100, true
}

// CalculateDebtRatio returns total liabilities over total assets for the latest
// quarter, as a percentage. Missing data or non-positive assets returns 100,
// the worst case, which forces the lowest ordinal score.
func CalculateDebtRatio(qs []domain.FundamentalsQuarter) (float64, error) {
	if len(qs) == 0 {
		return 100, nil
	}

	latest := qs[len(qs)-1]
	if math.IsNaN(latest.TotalAssets) || latest.TotalAssets <= 0 || math.IsNaN(latest.TotalLiabilities) {
		return 100, nil
	}

	return latest.TotalLiabilities / latest.TotalAssets * 100, nil
}

// CalculateRevenueYoY returns revenue growth versus the quarter four periods
// prior, as a percentage. Needs 5 quarters; fewer, or a non-positive prior
// revenue, returns 0.
func CalculateRevenueYoY(qs []domain.FundamentalsQuarter) (float64, error) {
	if len(qs) < 5 {
		return 0, nil
	}

	latest := qs[len(qs)-1].Revenue
	prior := qs[len(qs)-5].Revenue
	if math.IsNaN(latest) || math.IsNaN(prior) || prior <= 0 {
		return 0, nil
	}

	return (latest - prior) / prior * 100, nil
}

// CalculatePERelative standardizes the current PE against its own recent
// history and returns the z-score.
//
// TTM EPS is a rolling 4-quarter sum, merged onto the daily price series by
// taking the latest TTM EPS known as of or before each price date. The
// standardization window is the most recent windowRows merged observations
// restricted to positive PEs.
//
// Degenerate values: an empty merged or positive-PE series returns 1 (neutral);
// a non-positive or NaN current PE returns 2 (penalized); a zero standard
// deviation falls back to the ratio of current to mean PE.
func CalculatePERelative(qs []domain.FundamentalsQuarter, bars []domain.PriceBar, windowRows int) (float64, error) {
	if len(qs) < 5 || len(bars) == 0 {
		return 1, nil
	}

	// Rolling 4-quarter EPS sums, valid from the 4th quarter onward.
	ttm := make([]float64, len(qs))
	for i := 3; i < len(qs); i++ {
		sum := 0.0
		for _, q := range qs[i-3 : i+1] {
			if !math.IsNaN(q.EPS) {
				sum += q.EPS
			}
		}
		ttm[i] = sum
	}

	// Merge: latest known TTM EPS as of or before each price date.
	var merged []float64
	qi := -1
	for _, bar := range bars {
		for qi+1 < len(qs) && !qs[qi+1].Date.After(bar.Date) {
			qi++
		}
		if qi < 3 {
			continue // no full TTM window known yet
		}
		eps := ttm[qi]
		if eps == 0 {
			continue
		}
		merged = append(merged, bar.Close/eps)
	}

	if len(merged) == 0 {
		return 1, nil
	}

	current := merged[len(merged)-1]
	if math.IsNaN(current) || current <= 0 {
		return 2, nil
	}

	window := formulas.Tail(merged, windowRows)
	positives := make([]float64, 0, len(window))
	for _, pe := range window {
		if pe > 0 {
			positives = append(positives, pe)
		}
	}
	if len(positives) == 0 {
		return 1, nil
	}

	mean := formulas.Mean(positives)
	std := formulas.StdDev(positives)
	if std == 0 || math.IsNaN(std) {
		if mean == 0 {
			return 1, nil
		}
		return current / mean, nil
	}

	return (current - mean) / std, nil
}

// columnPresent reports whether at least one row carries a real value for the
// column selected by get.
func columnPresent(qs []domain.FundamentalsQuarter, get func(domain.FundamentalsQuarter) float64) bool {
	for _, q := range qs {
		if !math.IsNaN(get(q)) {
			return true
		}
	}
	return false
}
