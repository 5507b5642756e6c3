package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/twquant/tw-screener/internal/domain"
)

// summaryLimit caps the number of candidates listed in a notification message.
const summaryLimit = 10

// Summary renders a short plain-text digest of a screening run, suitable for
// push notification channels.
func Summary(asOf time.Time, candidates []domain.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Screening %s: %d candidates\n", asOf.Format("2006-01-02"), len(candidates))

	shown := candidates
	if len(shown) > summaryLimit {
		shown = shown[:summaryLimit]
	}
	for i, c := range shown {
		fmt.Fprintf(&b, "%d. %s %s F:%.0f C:%d T:%d %s\n",
			i+1, c.Symbol, c.Name, c.FundamentalScore, c.ChipScore, c.TechScore, c.Signal)
	}
	if len(candidates) > summaryLimit {
		fmt.Fprintf(&b, "... and %d more\n", len(candidates)-summaryLimit)
	}
	return strings.TrimRight(b.String(), "\n")
}
