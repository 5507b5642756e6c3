package factors

import (
	"fmt"
	"math"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// weightTolerance is how far the weight sum may drift from 1.0.
const weightTolerance = 1e-3

// FactorNames lists the seven fundamental factors in evaluation order.
var FactorNames = []string{
	"roe",
	"eps_yoy",
	"fcf",
	"gross_margin_trend",
	"debt_ratio",
	"revenue_yoy",
	"pe_relative",
}

// Weights maps factor names to their share of the composite score.
type Weights map[string]float64

// DefaultWeights returns the documented default weight set.
func DefaultWeights() Weights {
	return Weights{
		"roe":                0.20,
		"eps_yoy":            0.20,
		"fcf":                0.15,
		"gross_margin_trend": 0.15,
		"revenue_yoy":        0.10,
		"debt_ratio":         0.10,
		"pe_relative":        0.10,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// Validate checks that every factor has a weight and the weights sum to 1.0
// within tolerance.
func (w Weights) Validate() error {
	for _, name := range FactorNames {
		if _, ok := w[name]; !ok {
			return fmt.Errorf("weight for factor %q missing", name)
		}
	}

	if sum := w.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("weights sum to %.4f, expected 1.0", sum)
	}

	return nil
}

// LoadWeights reads factor weights from a YAML file mapping factor names to
// weights. A missing or malformed file must not stop a run: it logs a warning
// and returns the default set instead.
func LoadWeights(path string, log zerolog.Logger) Weights {
	if path == "" {
		return DefaultWeights()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Cannot read factor weights, using defaults")
		return DefaultWeights()
	}

	weights := Weights{}
	if err := yaml.Unmarshal(data, &weights); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Cannot parse factor weights, using defaults")
		return DefaultWeights()
	}

	if err := weights.Validate(); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Invalid factor weights, using defaults")
		return DefaultWeights()
	}

	return weights
}
