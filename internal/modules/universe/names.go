package universe

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// NameMap is the stock universe: an ordered list of symbols with display
// names, loaded from a plain text file of "symbol name" lines.
type NameMap struct {
	symbols []string
	names   map[string]string
}

// Load reads a universe file. Blank lines and "#" comments are skipped; a
// line without a name column still contributes its symbol.
func Load(path string, log zerolog.Logger) (*NameMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stock list: %w", err)
	}
	defer f.Close()

	m := &NameMap{names: make(map[string]string)}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		symbol := parts[0]
		m.symbols = append(m.symbols, symbol)
		if len(parts) > 1 {
			m.names[symbol] = strings.Join(parts[1:], " ")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stock list: %w", err)
	}

	log.Info().Int("symbols", len(m.symbols)).Str("path", path).Msg("Stock universe loaded")
	return m, nil
}

// Symbols returns the universe in file order.
func (m *NameMap) Symbols() []string {
	return m.symbols
}

// Resolve returns a symbol's display name, falling back to the symbol itself
// when unknown.
func (m *NameMap) Resolve(symbol string) string {
	if name, ok := m.names[symbol]; ok {
		return name
	}
	return symbol
}
