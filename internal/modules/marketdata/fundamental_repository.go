package marketdata

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/twquant/tw-screener/internal/domain"
)

// FundamentalRepository handles quarterly financial statement storage.
type FundamentalRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewFundamentalRepository creates a new fundamental repository
func NewFundamentalRepository(db *sql.DB, log zerolog.Logger) *FundamentalRepository {
	return &FundamentalRepository{
		db:  db,
		log: log.With().Str("repo", "fundamentals").Logger(),
	}
}

// Fundamentals returns a symbol's quarterly history, ascending by date.
func (r *FundamentalRepository) Fundamentals(symbol string) ([]domain.FundamentalsQuarter, error) {
	query := `SELECT date, revenue, gross_profit, operating_income, net_income, eps,
		equity, total_assets, total_liabilities, operating_cash_flow, capital_expenditure
		FROM fundamentals WHERE symbol = ? ORDER BY date ASC`

	rows, err := r.db.Query(query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query fundamentals: %w", err)
	}
	defer rows.Close()

	var quarters []domain.FundamentalsQuarter
	for rows.Next() {
		var dateStr string
		var revenue, grossProfit, operatingIncome, netIncome, eps sql.NullFloat64
		var equity, totalAssets, totalLiabilities, ocf, capex sql.NullFloat64

		if err := rows.Scan(&dateStr, &revenue, &grossProfit, &operatingIncome, &netIncome,
			&eps, &equity, &totalAssets, &totalLiabilities, &ocf, &capex); err != nil {
			return nil, fmt.Errorf("failed to scan fundamentals row: %w", err)
		}

		date, err := parseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fundamentals date: %w", err)
		}

		quarters = append(quarters, domain.FundamentalsQuarter{
			Date:               date,
			Revenue:            floatOrNaN(revenue),
			GrossProfit:        floatOrNaN(grossProfit),
			OperatingIncome:    floatOrNaN(operatingIncome),
			NetIncome:          floatOrNaN(netIncome),
			EPS:                floatOrNaN(eps),
			Equity:             floatOrNaN(equity),
			TotalAssets:        floatOrNaN(totalAssets),
			TotalLiabilities:   floatOrNaN(totalLiabilities),
			OperatingCashFlow:  floatOrNaN(ocf),
			CapitalExpenditure: floatOrNaN(capex),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fundamentals: %w", err)
	}
	return quarters, nil
}

// Upsert writes a batch of quarters for a symbol, replacing rows that share a
// (symbol, date) key so re-collection dedups in place.
func (r *FundamentalRepository) Upsert(symbol string, quarters []domain.FundamentalsQuarter) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO fundamentals
		(symbol, date, revenue, gross_profit, operating_income, net_income, eps,
		 equity, total_assets, total_liabilities, operating_cash_flow, capital_expenditure)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, q := range quarters {
		_, err := stmt.Exec(symbol, q.Date.Format(dateLayout),
			nullable(q.Revenue), nullable(q.GrossProfit), nullable(q.OperatingIncome),
			nullable(q.NetIncome), nullable(q.EPS), nullable(q.Equity),
			nullable(q.TotalAssets), nullable(q.TotalLiabilities),
			nullable(q.OperatingCashFlow), nullable(q.CapitalExpenditure))
		if err != nil {
			return fmt.Errorf("failed to upsert fundamentals row: %w", err)
		}
	}

	return tx.Commit()
}
