package screener

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/twquant/tw-screener/internal/domain"
	"github.com/twquant/tw-screener/internal/modules/factors"
)

const (
	// defaultTopN is how many Layer-1 survivors continue to the later layers.
	defaultTopN = 30

	// defaultMinPEScore is the valuation gate: only symbols whose pe_relative
	// ordinal is at least this (cheap or fair tiers) survive Layer 1.
	defaultMinPEScore = 4
)

// Config configures a screener.
type Config struct {
	Engine    *factors.Engine
	Chip      *ChipScorer
	Technical *TechnicalScorer
	Names     domain.NameLookup
	TopN      int // 0 means defaultTopN
	Log       zerolog.Logger
}

// Screener runs the three-layer pipeline:
//
//	Universe → L1 fundamental gate → L2 chip annotate → L3 technical annotate
//
// Layer 1 filters and ranks; Layers 2 and 3 only annotate. Per-symbol scoring
// failures are logged and contained: an L1 failure excludes the symbol from
// ranking, an L3 failure drops it from the final table, and the batch always
// continues.
type Screener struct {
	engine    *factors.Engine
	chip      *ChipScorer
	technical *TechnicalScorer
	names     domain.NameLookup
	topN      int
	log       zerolog.Logger
}

// New creates a screener.
func New(cfg Config) *Screener {
	topN := cfg.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	return &Screener{
		engine:    cfg.Engine,
		chip:      cfg.Chip,
		technical: cfg.Technical,
		names:     cfg.Names,
		topN:      topN,
		log:       cfg.Log.With().Str("component", "screener").Logger(),
	}
}

// Run screens the universe and returns the final candidate table, ordered by
// Layer-1 composite score descending. The table is empty when the universe is
// empty or no symbol survives the valuation gate; that is a valid outcome, not
// an error.
func (s *Screener) Run(universe []string) []domain.Candidate {
	s.log.Info().Int("universe", len(universe)).Msg("Screening run started")

	candidates := s.layer1Fundamental(universe)
	s.layer2Chip(candidates)
	final := s.layer3Technical(candidates)

	s.log.Info().
		Int("layer1_survivors", len(candidates)).
		Int("final", len(final)).
		Msg("Screening run finished")
	return final
}

// layer1Fundamental scores every symbol, applies the valuation gate, ranks by
// composite score descending, and truncates to the top N.
func (s *Screener) layer1Fundamental(universe []string) []domain.Candidate {
	var survivors []domain.Candidate
	for _, symbol := range universe {
		result, err := s.engine.Score(symbol)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Fundamental scoring failed, symbol excluded")
			continue
		}

		if result.PEScore() < defaultMinPEScore {
			s.log.Debug().Str("symbol", symbol).Int("pe_score", result.PEScore()).
				Msg("Rejected by valuation gate")
			continue
		}

		survivors = append(survivors, domain.Candidate{
			Symbol:             symbol,
			Name:               s.names.Resolve(symbol),
			FundamentalScore:   result.Composite,
			PEScore:            result.PEScore(),
			FundamentalDetails: result.Factors,
		})
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].FundamentalScore > survivors[j].FundamentalScore
	})

	if len(survivors) > s.topN {
		survivors = survivors[:s.topN]
	}
	return survivors
}

// layer2Chip annotates every Layer-1 survivor in place. Nothing is filtered
// here: a weak or missing chip picture is information for the report, not a
// rejection.
func (s *Screener) layer2Chip(candidates []domain.Candidate) {
	for i := range candidates {
		result := s.chip.Score(candidates[i].Symbol)
		candidates[i].ChipScore = result.Score
		candidates[i].ChipDetails = result.Details
	}
}

// layer3Technical annotates candidates with the technical score and signal.
// Insufficient price history keeps the row with DATA_INSUFFICIENT; only a
// scoring failure drops it.
func (s *Screener) layer3Technical(candidates []domain.Candidate) []domain.Candidate {
	final := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		result, err := s.technical.Score(c.Symbol)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", c.Symbol).Msg("Technical scoring failed, symbol dropped")
			continue
		}

		c.TechScore = result.Score
		c.TechDetails = result.Details
		c.Bias60 = result.Bias60
		c.K = result.K
		c.D = result.D
		c.Signal = result.Signal
		final = append(final, c)
	}
	return final
}
