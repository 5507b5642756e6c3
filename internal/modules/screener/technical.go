package screener

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/twquant/tw-screener/internal/domain"
	"github.com/twquant/tw-screener/pkg/formulas"
)

// minTechnicalBars is the minimum daily history for technical scoring; the
// longest moving average needs 120 bars.
const minTechnicalBars = 120

// overboughtBias is the 60-day deviation above which a weak score flips from
// HOLD to OVERBOUGHT_REDUCE.
const overboughtBias = 20.0

// TechResult is the technical-position composite for one symbol: an additive
// 0-100 score, per-indicator labels, the 60-day bias, stochastic K/D, and the
// mapped trading signal.
type TechResult struct {
	Score   int               `json:"score"`
	Details map[string]string `json:"details"`
	Bias60  float64           `json:"bias_60"`
	K       *float64          `json:"k,omitempty"`
	D       *float64          `json:"d,omitempty"`
	Signal  domain.Signal     `json:"signal"`
}

// TechnicalScorer produces a 0-100 technical score and a trading signal. It
// annotates; it never filters. An indicator without enough bars contributes 0
// with a "no data" label and the rest keep scoring.
type TechnicalScorer struct {
	prices domain.PriceStore
	log    zerolog.Logger
}

// NewTechnicalScorer creates a technical scorer.
func NewTechnicalScorer(prices domain.PriceStore, log zerolog.Logger) *TechnicalScorer {
	return &TechnicalScorer{
		prices: prices,
		log:    log.With().Str("component", "technical_scorer").Logger(),
	}
}

// Score computes the technical composite for a symbol. Fewer than 120 bars
// yields score 0 and signal DATA_INSUFFICIENT; the candidate is still retained
// by the pipeline. A store read failure is returned to the caller.
func (s *TechnicalScorer) Score(symbol string) (TechResult, error) {
	bars, err := s.prices.Prices(symbol)
	if err != nil {
		return TechResult{}, fmt.Errorf("read prices for %s: %w", symbol, err)
	}

	if len(bars) < minTechnicalBars {
		return TechResult{
			Score:   0,
			Details: map[string]string{"history": fmt.Sprintf("%d bars, need %d", len(bars), minTechnicalBars)},
			Signal:  domain.SignalDataInsufficient,
		}, nil
	}

	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
		volumes[i] = b.Volume
	}

	total := 0
	details := make(map[string]string, 6)

	score, label, bias60 := scoreMATrend(closes)
	total += score
	details["ma_trend"] = label

	score, label = scoreMACDMomentum(closes)
	total += score
	details["macd"] = label

	score, label = scoreRSILevel(closes)
	total += score
	details["rsi"] = label

	score, label, k, d := scoreStochKD(highs, lows, closes)
	total += score
	details["kd"] = label

	score, label = scoreVolumeExpansion(volumes)
	total += score
	details["volume"] = label

	score, label = scoreBollingerPosition(closes)
	total += score
	details["bollinger"] = label

	return TechResult{
		Score:   total,
		Details: details,
		Bias60:  bias60,
		K:       k,
		D:       d,
		Signal:  signalFor(total, bias60),
	}, nil
}

// signalFor maps a total technical score to a trading signal; a weak score on
// an overextended 60-day bias reads as reduce rather than hold.
func signalFor(total int, bias60 float64) domain.Signal {
	switch {
	case total >= 65:
		return domain.SignalStrongBuy
	case total >= 50:
		return domain.SignalBuy
	case total >= 35:
		return domain.SignalWatch
	case bias60 > overboughtBias:
		return domain.SignalOverboughtReduce
	default:
		return domain.SignalHold
	}
}

// scoreMATrend (0-25) compares the close to the 20/60/120-day moving averages
// and also computes the 60-day bias for signal tie-breaking.
func scoreMATrend(closes []float64) (int, string, float64) {
	sma20 := formulas.CalculateSMA(closes, 20)
	sma60 := formulas.CalculateSMA(closes, 60)
	sma120 := formulas.CalculateSMA(closes, 120)

	bias60 := 0.0
	if bias := formulas.CalculateBias(closes, 60); bias != nil {
		bias60 = *bias
	}

	if sma20 == nil || sma60 == nil || sma120 == nil {
		return 0, "no data", bias60
	}

	price := closes[len(closes)-1]
	switch {
	case price > *sma20 && *sma20 > *sma60 && *sma60 > *sma120:
		return 25, "full bullish alignment", bias60
	case price > *sma20 && *sma20 > *sma60:
		return 20, "above rising short averages", bias60
	case price > *sma60:
		return 15, "above 60-day average", bias60
	case price > *sma120:
		return 10, "above 120-day average", bias60
	default:
		return 0, "below major averages", bias60
	}
}

// scoreMACDMomentum (0-20) rewards a bullish crossover with a growing
// histogram; a line above the zero axis still earns partial credit.
func scoreMACDMomentum(closes []float64) (int, string) {
	m := formulas.CalculateMACD(closes, 12, 26, 9)
	if m == nil {
		return 0, "no data"
	}

	switch {
	case m.Line > m.Signal && m.Histogram > 0 && m.Histogram > m.PrevHistogram:
		return 20, "bullish crossover, histogram growing"
	case m.Line > m.Signal && m.Histogram > 0:
		return 15, "bullish crossover"
	case m.Line > 0:
		return 10, "above zero axis"
	default:
		return 0, "bearish"
	}
}

// scoreRSILevel (0-15) favors a healthy 40-70 band; an oversold reading keeps
// partial credit as a rebound candidate, overbought gets a token score.
func scoreRSILevel(closes []float64) (int, string) {
	rsi := formulas.CalculateRSI(closes, 14)
	if rsi == nil {
		return 0, "no data"
	}

	r := *rsi
	switch {
	case r >= 40 && r <= 70:
		return 15, fmt.Sprintf("healthy (%.1f)", r)
	case r >= 30 && r < 40:
		return 10, fmt.Sprintf("near oversold (%.1f)", r)
	case r > 70:
		return 5, fmt.Sprintf("overbought (%.1f)", r)
	default:
		return 0, fmt.Sprintf("oversold (%.1f)", r)
	}
}

// scoreStochKD (0-15) rewards a golden cross below the overbought zone;
// low-range consolidation earns partial credit even without a crossover.
func scoreStochKD(highs, lows, closes []float64) (int, string, *float64, *float64) {
	kd := formulas.CalculateStochKD(highs, lows, closes, 14, 3, 3)
	if kd == nil {
		return 0, "no data", nil, nil
	}

	k, d := kd.K, kd.D
	switch {
	case k > d && k < 80:
		return 15, fmt.Sprintf("golden cross (K %.1f)", k), &k, &d
	case k > d && k >= 80:
		return 10, fmt.Sprintf("golden cross but overbought (K %.1f)", k), &k, &d
	case k >= 20 && k <= 50:
		return 8, fmt.Sprintf("low-range consolidation (K %.1f)", k), &k, &d
	default:
		return 0, fmt.Sprintf("weak (K %.1f)", k), &k, &d
	}
}

// scoreVolumeExpansion (0-15) compares the mean volume of the last 5 days to
// the preceding 20-day window.
func scoreVolumeExpansion(volumes []float64) (int, string) {
	if len(volumes) < 25 {
		return 0, "no data"
	}

	recent := formulas.Mean(volumes[len(volumes)-5:])
	base := formulas.Mean(volumes[len(volumes)-25 : len(volumes)-5])
	if base <= 0 {
		return 0, "no data"
	}

	ratio := recent / base
	label := fmt.Sprintf("5d/20d volume ratio %.2f", ratio)
	switch {
	case ratio > 1.5:
		return 15, label
	case ratio > 1.2:
		return 12, label
	case ratio > 1.0:
		return 8, label
	default:
		return 0, label
	}
}

// scoreBollingerPosition (0-10, length 20, 2 sigma) favors prices in the lower
// half of the bands; a close below the lower band reads as a rebound candidate.
func scoreBollingerPosition(closes []float64) (int, string) {
	bb := formulas.CalculateBollingerBands(closes, 20, 2)
	if bb == nil {
		return 0, "no data"
	}

	price := closes[len(closes)-1]
	switch {
	case price < bb.Lower:
		return 5, "below lower band, rebound candidate"
	case price <= bb.Middle:
		return 10, "between lower and middle band"
	case price <= (bb.Middle+bb.Upper)/2:
		return 8, "above middle band"
	default:
		return 0, "at upper band region"
	}
}
