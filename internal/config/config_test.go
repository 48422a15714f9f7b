package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotto-office/internal/models"
)

func TestParseRates(t *testing.T) {
	rates, err := ParseRates([]byte("2up: 70\n3toad: 120.5\n"))
	require.NoError(t, err)

	assert.True(t, rates[models.Bet2Up].Equal(decimal.NewFromInt(70)))
	assert.True(t, rates[models.Bet3Toad].Equal(decimal.RequireFromString("120.5")))
	assert.True(t, rates[models.Bet2Down].Equal(decimal.NewFromInt(90)), "untouched types keep the default")

	_, err = ParseRates([]byte("4up: 10\n"))
	assert.Error(t, err)
	_, err = ParseRates([]byte("2up: -1\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	ratesPath := filepath.Join(dir, "rates.yaml")
	require.NoError(t, os.WriteFile(ratesPath, []byte("runup: 3.5\n"), 0o600))

	t.Setenv("TURSO_DATABASE_URL", "libsql://example.turso.io")
	t.Setenv("ADMIN_TELEGRAM_IDS", "111, 222,abc")
	t.Setenv("RATES_FILE", ratesPath)
	t.Setenv("PORT", "")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, []int64{111, 222}, c.AdminIDs)
	assert.True(t, c.IsAdminID(222))
	assert.False(t, c.IsAdminID(333))
	assert.True(t, c.Rates[models.BetRunUp].Equal(decimal.RequireFromString("3.5")))
}

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("TURSO_DATABASE_URL", "")
	_, err := Load()
	assert.Error(t, err)
}
