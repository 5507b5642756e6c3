package marketdata

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twquant/tw-screener/internal/domain"
)

type fakeSource struct {
	failFor map[string]bool
}

func (f *fakeSource) fail(symbol string) error {
	if f.failFor[symbol] {
		return errors.New("provider down")
	}
	return nil
}

func (f *fakeSource) DailyPrices(symbol, startDate string) ([]domain.PriceBar, error) {
	if err := f.fail(symbol); err != nil {
		return nil, err
	}
	return []domain.PriceBar{{Date: day("2024-06-03"), Open: 100, High: 102, Low: 99, Close: 101, Volume: 40000}}, nil
}

func (f *fakeSource) Fundamentals(symbol, startDate string) ([]domain.FundamentalsQuarter, error) {
	if err := f.fail(symbol); err != nil {
		return nil, err
	}
	return []domain.FundamentalsQuarter{{Date: day("2024-03-31"), Revenue: 10e9, EPS: 2.5}}, nil
}

func (f *fakeSource) InstitutionalFlows(symbol, startDate string) ([]domain.InstitutionalFlow, error) {
	if err := f.fail(symbol); err != nil {
		return nil, err
	}
	return []domain.InstitutionalFlow{{Date: day("2024-06-03"), ForeignNet: 3000, TotalNet: 3000}}, nil
}

func (f *fakeSource) ShareholdingRatios(symbol, startDate string) ([]domain.ShareholdingRatio, error) {
	if err := f.fail(symbol); err != nil {
		return nil, err
	}
	return []domain.ShareholdingRatio{{Date: day("2024-05-31"), MajorRatio: 19.0}}, nil
}

func TestCollectorFailSoft(t *testing.T) {
	db := testDB(t)
	log := zerolog.Nop()
	fundamentals := NewFundamentalRepository(db.Conn(), log)
	prices := NewPriceRepository(db.Conn(), log)
	chips := NewChipRepository(db.Conn(), log)
	holdings := NewShareholdingRepository(db.Conn(), log)

	source := &fakeSource{failFor: map[string]bool{"2317": true}}
	c := NewCollector(source, fundamentals, prices, chips, holdings, log)

	collected := c.Collect([]string{"2330", "2317"})
	assert.Equal(t, 1, collected, "one symbol fails, the batch continues")

	// The healthy symbol landed in every store.
	bars, err := prices.Prices("2330")
	require.NoError(t, err)
	assert.Len(t, bars, 1)

	quarters, err := fundamentals.Fundamentals("2330")
	require.NoError(t, err)
	assert.Len(t, quarters, 1)

	flows, err := chips.NetFlows("2330")
	require.NoError(t, err)
	assert.Len(t, flows, 1)

	ratios, err := holdings.Shareholding("2330")
	require.NoError(t, err)
	assert.Len(t, ratios, 1)

	// The failed symbol wrote nothing.
	bars, err = prices.Prices("2317")
	require.NoError(t, err)
	assert.Empty(t, bars)
}
