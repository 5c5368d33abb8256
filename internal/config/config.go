// Package config
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

/*
YAML config example:
symbol: "TSLA"
from: 2020-01-01
to: 2023-12-31
short_window: 50
long_window: 200
initial_capital: 100000
source: "csv"
csv_path: "closes.csv"
db_driver: "sqlite"
db_path: "smacross.db"
out_dir: "."
*/

type Config struct {
	Symbol         string    `yaml:"symbol"`
	From           time.Time `yaml:"from"`
	To             time.Time `yaml:"to"`
	ShortWindow    int       `yaml:"short_window"`
	LongWindow     int       `yaml:"long_window"`
	InitialCapital float64   `yaml:"initial_capital"`

	Source  string `yaml:"source"`   // "csv" or "wallex"
	CSVPath string `yaml:"csv_path"` // used when source is "csv"

	DBDriver string `yaml:"db_driver"` // "memory", "sqlite" or "postgres"
	DBPath   string `yaml:"db_path"`   // sqlite database file
	OutDir   string `yaml:"out_dir"`   // directory for CSV exports

	NotificationRetries int           `yaml:"notification_retries"`
	NotificationDelay   time.Duration `yaml:"notification_delay"`

	// From the environment (.env is honored), never from flags or YAML.
	WallexAPIKey   string `yaml:"-"`
	DBConnStr      string `yaml:"-"`
	TelegramToken  string `yaml:"-"`
	TelegramChatID string `yaml:"-"`
}

// Load builds the configuration from flags, an optional YAML file and the
// environment. A YAML file replaces the flag values wholesale.
func Load() (Config, error) {
	symbol := flag.String("symbol", "TSLA", "Instrument symbol")
	from := flag.String("from", time.Now().AddDate(-2, 0, 0).Format("2006-01-02"), "Start date (YYYY-MM-DD)")
	to := flag.String("to", time.Now().Format("2006-01-02"), "End date (YYYY-MM-DD)")
	shortWindow := flag.Int("short-window", 50, "Short SMA window in trading days")
	longWindow := flag.Int("long-window", 200, "Long SMA window in trading days")
	initialCapital := flag.Float64("initial-capital", 100000.0, "Starting cash")
	source := flag.String("source", "csv", "Price source: csv or wallex")
	csvPath := flag.String("csv", "", "Path to a date,close CSV file")
	dbDriver := flag.String("db", "memory", "Storage: memory, sqlite or postgres")
	dbPath := flag.String("db-path", "smacross.db", "SQLite database file")
	outDir := flag.String("out-dir", ".", "Directory for CSV exports")
	notificationRetries := flag.Int("notification-retries", 3, "Number of notification send attempts")
	notificationDelay := flag.Duration("notification-delay", 5*time.Second, "Delay between notification retries")
	configFile := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg := Config{}
	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	} else {
		fromTime, err := time.Parse("2006-01-02", *from)
		if err != nil {
			return Config{}, fmt.Errorf("parse -from: %w", err)
		}
		toTime, err := time.Parse("2006-01-02", *to)
		if err != nil {
			return Config{}, fmt.Errorf("parse -to: %w", err)
		}
		cfg = Config{
			Symbol:              *symbol,
			From:                fromTime,
			To:                  toTime,
			ShortWindow:         *shortWindow,
			LongWindow:          *longWindow,
			InitialCapital:      *initialCapital,
			Source:              *source,
			CSVPath:             *csvPath,
			DBDriver:            *dbDriver,
			DBPath:              *dbPath,
			OutDir:              *outDir,
			NotificationRetries: *notificationRetries,
			NotificationDelay:   *notificationDelay,
		}
	}

	cfg.WallexAPIKey = os.Getenv("WALLEX_API_KEY")
	cfg.DBConnStr = os.Getenv("DB_CONN_STR")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")
	return cfg, nil
}

// MustLoad is Load plus Validate, exiting on any failure.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Config | %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config | %v", err)
	}
	return cfg
}

// Validate rejects configurations the simulator would refuse anyway, before
// any data is fetched.
func (c Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol must not be empty")
	}
	if c.From.IsZero() || c.To.IsZero() {
		return fmt.Errorf("from and to dates are required")
	}
	if !c.From.Before(c.To) {
		return fmt.Errorf("from (%s) must be before to (%s)",
			c.From.Format("2006-01-02"), c.To.Format("2006-01-02"))
	}
	if c.ShortWindow <= 0 {
		return fmt.Errorf("short window must be positive, got %d", c.ShortWindow)
	}
	if c.LongWindow <= 0 {
		return fmt.Errorf("long window must be positive, got %d", c.LongWindow)
	}
	if c.ShortWindow >= c.LongWindow {
		return fmt.Errorf("short window (%d) must be smaller than long window (%d)", c.ShortWindow, c.LongWindow)
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive, got %v", c.InitialCapital)
	}
	switch c.Source {
	case "csv":
		if c.CSVPath == "" {
			return fmt.Errorf("csv source requires a csv path")
		}
	case "wallex":
	default:
		return fmt.Errorf("unknown price source %q", c.Source)
	}
	switch c.DBDriver {
	case "", "memory", "sqlite":
	case "postgres":
		if c.DBConnStr == "" {
			return fmt.Errorf("postgres driver requires DB_CONN_STR")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.DBDriver)
	}
	return nil
}
