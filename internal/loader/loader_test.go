package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.csv")
	content := "entity,period,concept,value,unit\n" +
		"AAPL,2024Q1,TotalAssets,\"352,000\",Million\n" +
		"AAPL,2024Q1,TotalLiabilities,,Million\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "AAPL", rows[0]["entity"])
	assert.Equal(t, 352000.0, rows[0]["value"], "thousands separators parse as numbers")
	assert.Nil(t, rows[1]["value"], "empty cells become nil")
	assert.Equal(t, "Million", rows[1]["unit"])
}

func TestLoadCSVStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("entity,value\nAAPL,1\n")...)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	rows, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AAPL", rows[0]["entity"])
}

func TestLoadCSVShortRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.csv")
	require.NoError(t, os.WriteFile(path, []byte("entity,value,unit\nAAPL,5\n"), 0o644))

	rows, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	_, hasUnit := rows[0]["unit"]
	assert.False(t, hasUnit, "columns past the record end are simply absent")
}
