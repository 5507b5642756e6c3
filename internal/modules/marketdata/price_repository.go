package marketdata

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/twquant/tw-screener/internal/domain"
)

// PriceRepository handles daily OHLCV storage.
type PriceRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(db *sql.DB, log zerolog.Logger) *PriceRepository {
	return &PriceRepository{
		db:  db,
		log: log.With().Str("repo", "prices").Logger(),
	}
}

// Prices returns a symbol's daily bars, ascending by date.
func (r *PriceRepository) Prices(symbol string) ([]domain.PriceBar, error) {
	query := `SELECT date, open, high, low, close, volume
		FROM daily_prices WHERE symbol = ? ORDER BY date ASC`

	rows, err := r.db.Query(query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	var bars []domain.PriceBar
	for rows.Next() {
		var dateStr string
		var open, high, low, closePrice, volume sql.NullFloat64

		if err := rows.Scan(&dateStr, &open, &high, &low, &closePrice, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}

		date, err := parseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price date: %w", err)
		}

		bars = append(bars, domain.PriceBar{
			Date:   date,
			Open:   floatOrNaN(open),
			High:   floatOrNaN(high),
			Low:    floatOrNaN(low),
			Close:  floatOrNaN(closePrice),
			Volume: floatOrNaN(volume),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}
	return bars, nil
}

// Upsert writes a batch of daily bars for a symbol.
func (r *PriceRepository) Upsert(symbol string, bars []domain.PriceBar) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO daily_prices
		(symbol, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		_, err := stmt.Exec(symbol, b.Date.Format(dateLayout),
			nullable(b.Open), nullable(b.High), nullable(b.Low),
			nullable(b.Close), nullable(b.Volume))
		if err != nil {
			return fmt.Errorf("failed to upsert price row: %w", err)
		}
	}

	return tx.Commit()
}
