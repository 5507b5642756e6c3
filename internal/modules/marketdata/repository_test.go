package marketdata

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twquant/tw-screener/internal/database"
	"github.com/twquant/tw-screener/internal/domain"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return db
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFundamentalRepository(t *testing.T) {
	db := testDB(t)
	repo := NewFundamentalRepository(db.Conn(), zerolog.Nop())

	q := domain.FundamentalsQuarter{
		Date:               day("2024-03-31"),
		Revenue:            10e9,
		GrossProfit:        4.5e9,
		OperatingIncome:    3e9,
		NetIncome:          2e9,
		EPS:                2.5,
		Equity:             40e9,
		TotalAssets:        100e9,
		TotalLiabilities:   25e9,
		OperatingCashFlow:  math.NaN(), // unreported by the provider
		CapitalExpenditure: 0.2e9,
	}
	require.NoError(t, repo.Upsert("2330", []domain.FundamentalsQuarter{q}))

	got, err := repo.Fundamentals("2330")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, q.Date, got[0].Date)
	assert.Equal(t, 10e9, got[0].Revenue)
	assert.Equal(t, 2.5, got[0].EPS)
	assert.True(t, math.IsNaN(got[0].OperatingCashFlow), "NULL must come back as NaN")

	t.Run("re-collection replaces in place", func(t *testing.T) {
		q.EPS = 2.6
		require.NoError(t, repo.Upsert("2330", []domain.FundamentalsQuarter{q}))

		got, err := repo.Fundamentals("2330")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 2.6, got[0].EPS)
	})

	t.Run("unknown symbol is empty, not an error", func(t *testing.T) {
		got, err := repo.Fundamentals("9999")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestPriceRepositoryOrdering(t *testing.T) {
	db := testDB(t)
	repo := NewPriceRepository(db.Conn(), zerolog.Nop())

	bars := []domain.PriceBar{
		{Date: day("2024-06-04"), Open: 101, High: 103, Low: 100, Close: 102, Volume: 50000},
		{Date: day("2024-06-03"), Open: 100, High: 102, Low: 99, Close: 101, Volume: 40000},
	}
	require.NoError(t, repo.Upsert("2330", bars))

	got, err := repo.Prices("2330")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, day("2024-06-03"), got[0].Date, "reads come back ascending")
	assert.Equal(t, 101.0, got[0].Close)
	assert.Equal(t, 102.0, got[1].Close)
}

func TestChipRepository(t *testing.T) {
	db := testDB(t)
	repo := NewChipRepository(db.Conn(), zerolog.Nop())

	flows := []domain.InstitutionalFlow{
		{Date: day("2024-06-03"), ForeignNet: 3000, TrustNet: 700, DealerNet: -300, TotalNet: 3400},
	}
	require.NoError(t, repo.Upsert("2330", flows))

	got, err := repo.NetFlows("2330")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3400.0, got[0].TotalNet)
	assert.Equal(t, -300.0, got[0].DealerNet)
}

func TestShareholdingRepository(t *testing.T) {
	db := testDB(t)
	repo := NewShareholdingRepository(db.Conn(), zerolog.Nop())

	ratios := []domain.ShareholdingRatio{
		{Date: day("2024-05-24"), MajorRatio: 18.5},
		{Date: day("2024-05-31"), MajorRatio: 19.0},
	}
	require.NoError(t, repo.Upsert("2330", ratios))

	got, err := repo.Shareholding("2330")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 19.0, got[1].MajorRatio)
}
