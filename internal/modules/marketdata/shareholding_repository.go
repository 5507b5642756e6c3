package marketdata

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/twquant/tw-screener/internal/domain"
)

// ShareholdingRepository handles weekly large-holder ratio storage.
type ShareholdingRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewShareholdingRepository creates a new shareholding repository
func NewShareholdingRepository(db *sql.DB, log zerolog.Logger) *ShareholdingRepository {
	return &ShareholdingRepository{
		db:  db,
		log: log.With().Str("repo", "shareholding").Logger(),
	}
}

// Shareholding returns a symbol's weekly ratio history, ascending by date.
func (r *ShareholdingRepository) Shareholding(symbol string) ([]domain.ShareholdingRatio, error) {
	query := `SELECT date, major_ratio
		FROM shareholding_ratios WHERE symbol = ? ORDER BY date ASC`

	rows, err := r.db.Query(query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query shareholding ratios: %w", err)
	}
	defer rows.Close()

	var ratios []domain.ShareholdingRatio
	for rows.Next() {
		var dateStr string
		var majorRatio sql.NullFloat64

		if err := rows.Scan(&dateStr, &majorRatio); err != nil {
			return nil, fmt.Errorf("failed to scan shareholding row: %w", err)
		}

		date, err := parseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse shareholding date: %w", err)
		}

		ratios = append(ratios, domain.ShareholdingRatio{
			Date:       date,
			MajorRatio: floatOrNaN(majorRatio),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shareholding ratios: %w", err)
	}
	return ratios, nil
}

// Upsert writes a batch of weekly ratios for a symbol.
func (r *ShareholdingRepository) Upsert(symbol string, ratios []domain.ShareholdingRatio) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO shareholding_ratios
		(symbol, date, major_ratio) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, ratio := range ratios {
		if _, err := stmt.Exec(symbol, ratio.Date.Format(dateLayout), nullable(ratio.MajorRatio)); err != nil {
			return fmt.Errorf("failed to upsert shareholding row: %w", err)
		}
	}

	return tx.Commit()
}
