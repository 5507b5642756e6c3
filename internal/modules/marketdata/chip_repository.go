package marketdata

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/twquant/tw-screener/internal/domain"
)

// ChipRepository handles daily institutional net-flow storage.
type ChipRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewChipRepository creates a new chip repository
func NewChipRepository(db *sql.DB, log zerolog.Logger) *ChipRepository {
	return &ChipRepository{
		db:  db,
		log: log.With().Str("repo", "chips").Logger(),
	}
}

// NetFlows returns a symbol's institutional flow history, ascending by date.
func (r *ChipRepository) NetFlows(symbol string) ([]domain.InstitutionalFlow, error) {
	query := `SELECT date, foreign_net, trust_net, dealer_net, total_net
		FROM institutional_flows WHERE symbol = ? ORDER BY date ASC`

	rows, err := r.db.Query(query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query institutional flows: %w", err)
	}
	defer rows.Close()

	var flows []domain.InstitutionalFlow
	for rows.Next() {
		var dateStr string
		var foreignNet, trustNet, dealerNet, totalNet sql.NullFloat64

		if err := rows.Scan(&dateStr, &foreignNet, &trustNet, &dealerNet, &totalNet); err != nil {
			return nil, fmt.Errorf("failed to scan flow row: %w", err)
		}

		date, err := parseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse flow date: %w", err)
		}

		flows = append(flows, domain.InstitutionalFlow{
			Date:       date,
			ForeignNet: floatOrNaN(foreignNet),
			TrustNet:   floatOrNaN(trustNet),
			DealerNet:  floatOrNaN(dealerNet),
			TotalNet:   floatOrNaN(totalNet),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flows: %w", err)
	}
	return flows, nil
}

// Upsert writes a batch of daily flows for a symbol.
func (r *ChipRepository) Upsert(symbol string, flows []domain.InstitutionalFlow) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO institutional_flows
		(symbol, date, foreign_net, trust_net, dealer_net, total_net)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, f := range flows {
		_, err := stmt.Exec(symbol, f.Date.Format(dateLayout),
			nullable(f.ForeignNet), nullable(f.TrustNet),
			nullable(f.DealerNet), nullable(f.TotalNet))
		if err != nil {
			return fmt.Errorf("failed to upsert flow row: %w", err)
		}
	}

	return tx.Commit()
}
