package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"lotto-office/internal/lotto"
	"lotto-office/internal/models"
)

// Config is read once at startup and passed to whoever needs it.
type Config struct {
	Env           string
	Port          string
	DatabaseURL   string
	DBAuthToken   string
	TelegramToken string
	AdminPassword string
	AdminIDs      []int64
	RatesFile     string
	Rates         lotto.Rates
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // Load .env file if exists

	c := &Config{
		Env:           getenv("APP_ENV", "development"),
		Port:          getenv("PORT", "8080"),
		DatabaseURL:   os.Getenv("TURSO_DATABASE_URL"),
		DBAuthToken:   os.Getenv("TURSO_AUTH_TOKEN"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminIDs:      ParseIDs(os.Getenv("ADMIN_TELEGRAM_IDS")),
		RatesFile:     os.Getenv("RATES_FILE"),
		Rates:         lotto.DefaultRates(),
	}
	if c.DatabaseURL == "" {
		return nil, errors.New("TURSO_DATABASE_URL must be set")
	}

	if c.RatesFile != "" {
		rates, err := LoadRates(c.RatesFile)
		if err != nil {
			return nil, err
		}
		c.Rates = rates
	}
	return c, nil
}

// IsAdminID reports whether a Telegram user is listed in ADMIN_TELEGRAM_IDS.
func (c *Config) IsAdminID(id int64) bool {
	for _, adminID := range c.AdminIDs {
		if adminID == id {
			return true
		}
	}
	return false
}

// ParseIDs reads a comma separated list, skipping anything that is not a number.
func ParseIDs(s string) []int64 {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// LoadRates reads a YAML payout table such as
//
//	2up: 90
//	3toad: 150
//
// Bet types missing from the file keep their default rate.
func LoadRates(path string) (lotto.Rates, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rates file: %w", err)
	}
	return ParseRates(raw)
}

func ParseRates(raw []byte) (lotto.Rates, error) {
	var table map[string]string
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parse rates: %w", err)
	}

	rates := lotto.DefaultRates()
	for name, value := range table {
		bt, _, err := models.ParseBetType(name)
		if err != nil || bt == models.Bet2UpDown {
			return nil, fmt.Errorf("rates: unknown bet type %q", name)
		}
		rate, err := decimal.NewFromString(value)
		if err != nil || rate.IsNegative() {
			return nil, fmt.Errorf("rates: bad rate %q for %s", value, name)
		}
		rates[bt] = rate
	}
	return rates, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
