package universe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/contracts"
)

func writeUniverseFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stock_list.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeUniverseFile(t, "symbol,isin\nRELIANCE,INE002A01018\ntcs ,ine467b01029\n")

	instruments, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, instruments, 2)

	assert.Equal(t, contracts.Instrument{Symbol: "RELIANCE", ISIN: "INE002A01018"}, instruments[0])
	assert.Equal(t, contracts.Instrument{Symbol: "TCS", ISIN: "INE467B01029"}, instruments[1], "values are trimmed and uppercased")
	assert.Equal(t, "NSE_EQ|INE467B01029", instruments[1].Key())
}

func TestLoadCSVDuplicateSymbolKeepsFirst(t *testing.T) {
	path := writeUniverseFile(t, "symbol,isin\nTCS,INE467B01029\nTCS,INE467B01030\n")

	instruments, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, instruments, 1)
	assert.Equal(t, "INE467B01029", instruments[0].ISIN)
}

func TestLoadCSVRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong header", "ticker,code\nTCS,INE467B01029\n"},
		{"missing isin", "symbol,isin\nTCS,\n"},
		{"missing symbol", "symbol,isin\n,INE467B01029\n"},
		{"short isin", "symbol,isin\nTCS,INE467\n"},
		{"no rows", "symbol,isin\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(writeUniverseFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
