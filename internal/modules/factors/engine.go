package factors

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/twquant/tw-screener/internal/domain"
)

// compositeScale turns the weighted 1-5 ordinal sum into the 40-200 range.
const compositeScale = 40

// defaultPEWindowRows is roughly three years of trading days, the convention
// for the PE standardization window.
const defaultPEWindowRows = 756

// Result is the fundamental composite for one symbol: the weighted score in
// [40,200] plus the per-factor ordinal breakdown.
type Result struct {
	Composite float64        `json:"composite"`
	Factors   map[string]int `json:"factors"`
}

// PEScore returns the ordinal valuation score, used by the Layer-1 gate.
func (r Result) PEScore() int {
	return r.Factors["pe_relative"]
}

type registeredFactor struct {
	name string
	calc Calculator
}

// Engine computes the weighted fundamental composite score for a symbol.
// Each factor is an independently pluggable calculation; a factor that fails
// is scored 1 (worst) without aborting the composite. Results are memoized
// per symbol per calendar day.
type Engine struct {
	fundamentals domain.FundamentalStore
	prices       domain.PriceStore
	weights      Weights
	registry     []registeredFactor
	log          zerolog.Logger

	mu    sync.Mutex
	cache map[string]Result

	// now is injectable so tests can pin the cache day.
	now func() time.Time
}

// EngineConfig configures a factor engine.
type EngineConfig struct {
	Fundamentals domain.FundamentalStore
	Prices       domain.PriceStore
	Weights      Weights // nil means DefaultWeights
	PEWindowRows int     // 0 means defaultPEWindowRows
	Log          zerolog.Logger
}

// NewEngine creates a factor engine. The weight sum invariant is checked here,
// once; a drifted sum is logged and used as-is rather than failing the run.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Fundamentals == nil || cfg.Prices == nil {
		return nil, fmt.Errorf("factor engine requires fundamental and price stores")
	}

	weights := cfg.Weights
	if weights == nil {
		weights = DefaultWeights()
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("factor weights empty")
	}
	if err := weights.Validate(); err != nil {
		cfg.Log.Warn().Err(err).Msg("Factor weights failed validation, using as configured")
	}

	peWindow := cfg.PEWindowRows
	if peWindow <= 0 {
		peWindow = defaultPEWindowRows
	}

	e := &Engine{
		fundamentals: cfg.Fundamentals,
		prices:       cfg.Prices,
		weights:      weights,
		log:          cfg.Log.With().Str("component", "factor_engine").Logger(),
		cache:        make(map[string]Result),
		now:          time.Now,
	}

	e.registry = []registeredFactor{
		{"roe", func(qs []domain.FundamentalsQuarter, _ []domain.PriceBar) (float64, error) {
			return CalculateROE(qs)
		}},
		{"eps_yoy", func(qs []domain.FundamentalsQuarter, _ []domain.PriceBar) (float64, error) {
			return CalculateEPSYoY(qs)
		}},
		{"fcf", func(qs []domain.FundamentalsQuarter, _ []domain.PriceBar) (float64, error) {
			return CalculateFCF(qs)
		}},
		{"gross_margin_trend", func(qs []domain.FundamentalsQuarter, _ []domain.PriceBar) (float64, error) {
			return CalculateGrossMarginTrend(qs)
		}},
		{"debt_ratio", func(qs []domain.FundamentalsQuarter, _ []domain.PriceBar) (float64, error) {
			return CalculateDebtRatio(qs)
		}},
		{"revenue_yoy", func(qs []domain.FundamentalsQuarter, _ []domain.PriceBar) (float64, error) {
			return CalculateRevenueYoY(qs)
		}},
		{"pe_relative", func(qs []domain.FundamentalsQuarter, bars []domain.PriceBar) (float64, error) {
			return CalculatePERelative(qs, bars, peWindow)
		}},
	}

	return e, nil
}

// Score computes the composite fundamental score for a symbol. Repeat calls
// within the same calendar day return the memoized result. A store read
// failure is returned to the caller; individual factor failures degrade to
// ordinal score 1.
func (e *Engine) Score(symbol string) (Result, error) {
	key := symbol + ":" + e.now().Format("2006-01-02")

	e.mu.Lock()
	if cached, ok := e.cache[key]; ok {
		e.mu.Unlock()
		return cached, nil
	}
	e.mu.Unlock()

	qs, err := e.fundamentals.Fundamentals(symbol)
	if err != nil {
		return Result{}, fmt.Errorf("read fundamentals for %s: %w", symbol, err)
	}
	bars, err := e.prices.Prices(symbol)
	if err != nil {
		return Result{}, fmt.Errorf("read prices for %s: %w", symbol, err)
	}

	breakdown := make(map[string]int, len(e.registry))
	weighted := 0.0
	for _, f := range e.registry {
		score := 1
		raw, err := f.calc(qs, bars)
		if err != nil {
			e.log.Warn().Err(err).Str("symbol", symbol).Str("factor", f.name).
				Msg("Factor calculation failed, scoring worst")
		} else if math.IsNaN(raw) {
			e.log.Warn().Str("symbol", symbol).Str("factor", f.name).
				Msg("Factor produced NaN, scoring worst")
		} else {
			score = ScoreFactor(f.name, raw)
		}

		breakdown[f.name] = score
		weighted += float64(score) * e.weights[f.name]
	}

	result := Result{
		Composite: weighted * compositeScale,
		Factors:   breakdown,
	}

	e.mu.Lock()
	e.cache[key] = result
	e.mu.Unlock()

	return result, nil
}
