package screener

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/twquant/tw-screener/internal/domain"
)

// chipWindowDays is the tail window of daily net-flow rows the scorer reads.
// It is a row count, not a calendar week.
const chipWindowDays = 5

// ChipResult is the institutional-conviction composite for one symbol: an
// additive 0-100 score plus a descriptive label per sub-factor.
type ChipResult struct {
	Score   int               `json:"score"`
	Details map[string]string `json:"details"`
}

// ChipScorer quantifies short-term institutional conviction from the last 5
// days of net flows and the last two weekly large-holder readings. It only
// annotates; it never filters a candidate out.
type ChipScorer struct {
	flows    domain.ChipStore
	holdings domain.ShareholdingStore
	log      zerolog.Logger
}

// NewChipScorer creates a chip scorer.
func NewChipScorer(flows domain.ChipStore, holdings domain.ShareholdingStore, log zerolog.Logger) *ChipScorer {
	return &ChipScorer{
		flows:    flows,
		holdings: holdings,
		log:      log.With().Str("component", "chip_scorer").Logger(),
	}
}

// Score computes the chip composite for a symbol. Fewer than 5 net-flow rows
// forces the whole score to 0 with an insufficient-data annotation; this is a
// hard override, not a partial sum. Store failures degrade the same way.
func (s *ChipScorer) Score(symbol string) ChipResult {
	flows, err := s.flows.NetFlows(symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Cannot read net flows")
		flows = nil
	}

	if len(flows) < chipWindowDays {
		return ChipResult{
			Score: 0,
			Details: map[string]string{
				"trust_streak":        "insufficient data",
				"foreign":             "insufficient data",
				"dealer":              "insufficient data",
				"institutional_total": "insufficient data",
				"major_holder":        "no data",
			},
		}
	}

	recent := flows[len(flows)-chipWindowDays:]

	holdings, err := s.holdings.Shareholding(symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Cannot read shareholding ratios")
		holdings = nil
	}

	total := 0
	details := make(map[string]string, 5)

	score, label := scoreTrustStreak(recent)
	total += score
	details["trust_streak"] = label

	score, label = scoreForeignPosture(recent)
	total += score
	details["foreign"] = label

	score, label = scoreDealerPosture(recent)
	total += score
	details["dealer"] = label

	score, label = scoreInstitutionalTotal(recent)
	total += score
	details["institutional_total"] = label

	score, label = scoreMajorHolderTrend(holdings)
	total += score
	details["major_holder"] = label

	return ChipResult{Score: total, Details: details}
}

// scoreTrustStreak (0-30) counts consecutive trading days of investment-trust
// net buying, scanning backward from the most recent day.
func scoreTrustStreak(recent []domain.InstitutionalFlow) (int, string) {
	streak := 0
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].TrustNet <= 0 {
			break
		}
		streak++
	}

	label := fmt.Sprintf("trust net buying %d day streak", streak)
	switch {
	case streak >= 5:
		return 30, label
	case streak >= 3:
		return 20, label
	case streak >= 1:
		return 10, label
	default:
		return 0, "no trust buying"
	}
}

// scoreForeignPosture (0-25) combines the 5-day mean of foreign net flow with
// the latest day's direction.
func scoreForeignPosture(recent []domain.InstitutionalFlow) (int, string) {
	mean := 0.0
	for _, f := range recent {
		mean += f.ForeignNet
	}
	mean /= float64(len(recent))
	latest := recent[len(recent)-1].ForeignNet

	switch {
	case mean > 1000 && latest > 0:
		return 25, fmt.Sprintf("strong foreign buying (avg %.0f)", mean)
	case mean > 0:
		return 15, fmt.Sprintf("mild foreign buying (avg %.0f)", mean)
	case mean > -1000:
		return 5, fmt.Sprintf("flat foreign flow (avg %.0f)", mean)
	default:
		return 0, fmt.Sprintf("foreign selling (avg %.0f)", mean)
	}
}

// scoreDealerPosture (0-15) looks at the 5-day dealer net flow sum.
func scoreDealerPosture(recent []domain.InstitutionalFlow) (int, string) {
	sum := 0.0
	for _, f := range recent {
		sum += f.DealerNet
	}

	switch {
	case sum > 0:
		return 15, fmt.Sprintf("dealer net buying (%.0f)", sum)
	case sum > -500:
		return 8, fmt.Sprintf("dealer roughly flat (%.0f)", sum)
	default:
		return 0, fmt.Sprintf("dealer selling (%.0f)", sum)
	}
}

// scoreInstitutionalTotal (0-20) looks at the 5-day aggregate of all three
// institution types.
func scoreInstitutionalTotal(recent []domain.InstitutionalFlow) (int, string) {
	sum := 0.0
	for _, f := range recent {
		sum += f.TotalNet
	}

	label := fmt.Sprintf("three-institution 5d net %.0f", sum)
	switch {
	case sum > 5000:
		return 20, label
	case sum > 1000:
		return 15, label
	case sum > 0:
		return 10, label
	default:
		return 0, label
	}
}

// scoreMajorHolderTrend (0-10) compares the last two weekly large-holder
// ratios, regardless of the calendar gap between them.
func scoreMajorHolderTrend(holdings []domain.ShareholdingRatio) (int, string) {
	if len(holdings) < 2 {
		return 0, "no data"
	}

	latest := holdings[len(holdings)-1].MajorRatio
	prior := holdings[len(holdings)-2].MajorRatio
	diff := latest - prior

	switch {
	case diff > 0.5:
		return 10, fmt.Sprintf("major holders up %.2fpp", diff)
	case diff >= 0:
		return 5, fmt.Sprintf("major holders steady (%.2fpp)", diff)
	default:
		return 0, fmt.Sprintf("major holders down %.2fpp", diff)
	}
}
