package marketdata

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/twquant/tw-screener/internal/domain"
)

// Lookbacks for each data kind. Prices cover the PE standardization window
// plus the technical scorer's 120 bars; flows and shareholding only feed
// short tail windows.
const (
	priceLookback        = 4 * 365 * 24 * time.Hour
	fundamentalsLookback = 4 * 365 * 24 * time.Hour
	flowLookback         = 30 * 24 * time.Hour
	shareholdingLookback = 120 * 24 * time.Hour
)

// DataSource is the remote provider a Collector pulls from.
type DataSource interface {
	DailyPrices(symbol, startDate string) ([]domain.PriceBar, error)
	Fundamentals(symbol, startDate string) ([]domain.FundamentalsQuarter, error)
	InstitutionalFlows(symbol, startDate string) ([]domain.InstitutionalFlow, error)
	ShareholdingRatios(symbol, startDate string) ([]domain.ShareholdingRatio, error)
}

// Collector refreshes the local store from the remote provider ahead of a
// screening run. A symbol that fails to collect is logged and skipped; the
// screener degrades it to default scores rather than aborting the batch.
type Collector struct {
	source       DataSource
	fundamentals *FundamentalRepository
	prices       *PriceRepository
	chips        *ChipRepository
	holdings     *ShareholdingRepository
	log          zerolog.Logger

	now func() time.Time
}

// NewCollector creates a collector.
func NewCollector(
	source DataSource,
	fundamentals *FundamentalRepository,
	prices *PriceRepository,
	chips *ChipRepository,
	holdings *ShareholdingRepository,
	log zerolog.Logger,
) *Collector {
	return &Collector{
		source:       source,
		fundamentals: fundamentals,
		prices:       prices,
		chips:        chips,
		holdings:     holdings,
		log:          log.With().Str("component", "collector").Logger(),
		now:          time.Now,
	}
}

// Collect refreshes every data kind for every symbol in the universe and
// returns how many symbols refreshed cleanly.
func (c *Collector) Collect(universe []string) int {
	ok := 0
	for _, symbol := range universe {
		if err := c.collectSymbol(symbol); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Collection failed, symbol skipped")
			continue
		}
		ok++
	}

	c.log.Info().Int("collected", ok).Int("universe", len(universe)).Msg("Collection finished")
	return ok
}

func (c *Collector) collectSymbol(symbol string) error {
	since := func(lookback time.Duration) string {
		return c.now().Add(-lookback).Format(dateLayout)
	}

	quarters, err := c.source.Fundamentals(symbol, since(fundamentalsLookback))
	if err != nil {
		return err
	}
	if err := c.fundamentals.Upsert(symbol, quarters); err != nil {
		return err
	}

	bars, err := c.source.DailyPrices(symbol, since(priceLookback))
	if err != nil {
		return err
	}
	if err := c.prices.Upsert(symbol, bars); err != nil {
		return err
	}

	flows, err := c.source.InstitutionalFlows(symbol, since(flowLookback))
	if err != nil {
		return err
	}
	if err := c.chips.Upsert(symbol, flows); err != nil {
		return err
	}

	ratios, err := c.source.ShareholdingRatios(symbol, since(shareholdingLookback))
	if err != nil {
		return err
	}
	return c.holdings.Upsert(symbol, ratios)
}
