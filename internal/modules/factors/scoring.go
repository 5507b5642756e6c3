package factors

// Ordinal scoring maps each raw factor value to an integer score 1-5 through an
// ordered threshold table. Direct factors reward higher values, inverse factors
// reward lower ones. Tables are scanned top to bottom; the first matching band
// wins; no match scores 1; an unknown factor scores 3 (neutral).

type band struct {
	threshold float64
	score     int
}

// Direct factors: first band where raw >= threshold wins.
var directBands = map[string][]band{
	"roe": {
		{20, 5},
		{15, 4},
		{10, 3},
		{5, 2},
	},
	"eps_yoy": {
		{30, 5},
		{15, 4},
		{0, 3},
		{-10, 2},
	},
	// Absolute currency units (TWD).
	"fcf": {
		{5_000_000_000, 5},
		{1_000_000_000, 4},
		{0, 3},
		{-1_000_000_000, 2},
	},
	// Percentage points of gross margin change.
	"gross_margin_trend": {
		{2.0, 5},
		{0.5, 4},
		{-0.5, 3},
		{-2.0, 2},
	},
	"revenue_yoy": {
		{20, 5},
		{10, 4},
		{0, 3},
		{-5, 2},
	},
}

// Inverse factors: first band where raw <= threshold wins.
var inverseBands = map[string][]band{
	"debt_ratio": {
		{30, 5},
		{50, 4},
		{70, 3},
		{85, 2},
	},
	// Standard deviations from the historical PE mean.
	"pe_relative": {
		{-1.0, 5},
		{0.0, 4},
		{1.0, 3},
		{2.0, 2},
	},
}

// ScoreFactor converts a raw factor value into its ordinal 1-5 score.
func ScoreFactor(name string, raw float64) int {
	if bands, ok := directBands[name]; ok {
		for _, b := range bands {
			if raw >= b.threshold {
				return b.score
			}
		}
		return 1
	}

	if bands, ok := inverseBands[name]; ok {
		for _, b := range bands {
			if raw <= b.threshold {
				return b.score
			}
		}
		return 1
	}

	return 3
}
