package marketdata

import (
	"database/sql"
	"math"
	"time"
)

// dateLayout is how partition dates are stored in sqlite.
const dateLayout = "2006-01-02"

// nullable converts a possibly-NaN float into a driver value, mapping NaN to
// NULL so missing source values round-trip through the store.
func nullable(f float64) interface{} {
	if math.IsNaN(f) {
		return nil
	}
	return f
}

// floatOrNaN converts a scanned nullable column back into the NaN-as-missing
// convention the scorers expect.
func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
