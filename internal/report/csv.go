package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/twquant/tw-screener/internal/domain"
)

// csvHeader is the flat report schema, one row per candidate.
var csvHeader = []string{
	"symbol", "name", "fundamental_score", "pe_score",
	"chip_score", "tech_score", "bias_60", "k", "d", "signal",
}

// WriteCSV writes the candidate table to dir as screening_YYYY-MM-DD.csv and
// returns the file path.
func WriteCSV(dir string, asOf time.Time, candidates []domain.Candidate) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("screening_%s.csv", asOf.Format("2006-01-02")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write report header: %w", err)
	}

	for _, c := range candidates {
		row := []string{
			c.Symbol,
			c.Name,
			strconv.FormatFloat(c.FundamentalScore, 'f', 1, 64),
			strconv.Itoa(c.PEScore),
			strconv.Itoa(c.ChipScore),
			strconv.Itoa(c.TechScore),
			strconv.FormatFloat(c.Bias60, 'f', 2, 64),
			formatOptional(c.K),
			formatOptional(c.D),
			string(c.Signal),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write report row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush report: %w", err)
	}
	return path, nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
