package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func validConfig() Config {
	return Config{
		Symbol:         "TSLA",
		From:           time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		To:             time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		ShortWindow:    50,
		LongWindow:     200,
		InitialCapital: 100000,
		Source:         "csv",
		CSVPath:        "closes.csv",
		DBDriver:       "memory",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty symbol", mutate: func(c *Config) { c.Symbol = "" }, wantErr: "symbol"},
		{name: "missing dates", mutate: func(c *Config) { c.From = time.Time{} }, wantErr: "dates are required"},
		{name: "from after to", mutate: func(c *Config) { c.From, c.To = c.To, c.From }, wantErr: "must be before"},
		{name: "zero short window", mutate: func(c *Config) { c.ShortWindow = 0 }, wantErr: "short window must be positive"},
		{name: "negative long window", mutate: func(c *Config) { c.LongWindow = -1 }, wantErr: "long window must be positive"},
		{name: "short not below long", mutate: func(c *Config) { c.ShortWindow = 200 }, wantErr: "smaller than long"},
		{name: "zero capital", mutate: func(c *Config) { c.InitialCapital = 0 }, wantErr: "capital must be positive"},
		{name: "csv without path", mutate: func(c *Config) { c.CSVPath = "" }, wantErr: "requires a csv path"},
		{name: "unknown source", mutate: func(c *Config) { c.Source = "yahoo" }, wantErr: "unknown price source"},
		{name: "wallex source ok", mutate: func(c *Config) { c.Source = "wallex"; c.CSVPath = "" }},
		{name: "postgres without conn str", mutate: func(c *Config) { c.DBDriver = "postgres" }, wantErr: "DB_CONN_STR"},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "oracle" }, wantErr: "unknown storage driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestYAMLUnmarshal(t *testing.T) {
	data := `
symbol: "AAPL"
from: 2021-06-01
to: 2022-06-01
short_window: 20
long_window: 60
initial_capital: 5000
source: "wallex"
db_driver: "sqlite"
db_path: "test.db"
`
	var cfg Config
	assert.NoError(t, yaml.Unmarshal([]byte(data), &cfg))
	assert.Equal(t, "AAPL", cfg.Symbol)
	assert.Equal(t, 20, cfg.ShortWindow)
	assert.Equal(t, 60, cfg.LongWindow)
	assert.Equal(t, 5000.0, cfg.InitialCapital)
	assert.Equal(t, time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), cfg.From)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.NoError(t, cfg.Validate())
}
