package universe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stocks.txt")
	content := `# universe
2330 台積電
2317 鴻海

9999
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	m, err := Load(path, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"2330", "2317", "9999"}, m.Symbols())
	assert.Equal(t, "台積電", m.Resolve("2330"))
	assert.Equal(t, "鴻海", m.Resolve("2317"))
	assert.Equal(t, "9999", m.Resolve("9999"), "nameless symbol resolves to itself")
	assert.Equal(t, "0000", m.Resolve("0000"), "unknown symbol resolves to itself")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"), zerolog.Nop())
	assert.Error(t, err)
}
