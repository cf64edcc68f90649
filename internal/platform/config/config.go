package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration. It is built once in main and
// handed to constructors by value; nothing reads it from package state.
type Config struct {
	Database Database    `yaml:"database"`
	Teams    Teams       `yaml:"teams"`
	Wikidata Wikidata    `yaml:"wikidata"`
	Telegram Telegram    `yaml:"telegram"`
	Email    Email       `yaml:"email"`
	Pipeline Pipeline    `yaml:"pipeline"`
	Redis    RedisConfig `yaml:"redis"`
	Kafka    Kafka       `yaml:"kafka"`
	Metrics  Metrics     `yaml:"metrics"`
	Server   Server      `yaml:"server"`
	Log      Log         `yaml:"log"`
	Sheets   Sheets      `yaml:"sheets"`
}

// Database selects the store dialect and its connection string.
type Database struct {
	Driver string `yaml:"driver"` // "sqlite" | "postgres"
	DSN    string `yaml:"dsn"`
}

// Teams points at the folder of team membership files.
type Teams struct {
	Folder string `yaml:"folder"`
}

// Wikidata configures the identity and biography lookups.
type Wikidata struct {
	SearchURL        string        `yaml:"search_url"`
	SPARQLURL        string        `yaml:"sparql_url"`
	Locale           string        `yaml:"locale"`
	HumanDescription string        `yaml:"human_description"`
	UserAgent        string        `yaml:"user_agent"`
	Timeout          time.Duration `yaml:"timeout"`
	ChunkSize        int           `yaml:"chunk_size"`
}

// Telegram configures the instant message channel. AdminChatID is the
// distinguished global recipient; empty disables admin notifications.
type Telegram struct {
	APIURL      string        `yaml:"api_url"`
	BotToken    string        `yaml:"bot_token"`
	AdminChatID string        `yaml:"admin_chat_id"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Email configures the SMTP channel. Missing credentials disable it.
type Email struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	From     string        `yaml:"from"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Enabled reports whether enough is configured to attempt a delivery.
func (e Email) Enabled() bool {
	return e.Host != "" && e.User != "" && e.Password != ""
}

// Pipeline holds the worker pool sizes and the delivery attempt cap.
type Pipeline struct {
	LookupWorkers   int `yaml:"lookup_workers"`
	DeliveryWorkers int `yaml:"delivery_workers"`
	MaxAttempts     int `yaml:"max_attempts"`
}

// RedisConfig configures the optional run lock.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	LockKey      string        `yaml:"lock_key"`
	LockTTL      time.Duration `yaml:"lock_ttl"`
}

// Kafka configures the optional delivery outcome stream.
type Kafka struct {
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	ClientID string   `yaml:"client_id"`
}

// Enabled reports whether outcomes should be published.
func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

// Metrics configures where batch runs push their metrics.
type Metrics struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	JobName        string `yaml:"job_name"`
}

// Server configures the long-running scheduler mode.
type Server struct {
	Addr     string `yaml:"addr"`
	Schedule string `yaml:"schedule"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" | "json"
	File   string `yaml:"file"`
}

// Sheets configures the team sheet downloader.
type Sheets struct {
	SheetID           string `yaml:"sheet_id"`
	GID               string `yaml:"gid"`
	ExportURL         string `yaml:"export_url"`
	NotificationsFile string `yaml:"notifications_file"`
	CorrectionsFile   string `yaml:"corrections_file"`
}

// MaxChunkSize is the largest number of identifiers a single facts query may carry.
const MaxChunkSize = 50

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database: Database{Driver: "sqlite", DSN: "fantamorto.db"},
		Teams:    Teams{Folder: "teams"},
		Wikidata: Wikidata{
			SearchURL: "https://www.wikidata.org/w/api.php",
			SPARQLURL: "https://query.wikidata.org/sparql",
			Locale:    "it",
			UserAgent: "fantamorto/1.0 (https://github.com/fantamorto/fantamorto)",
			Timeout:   30 * time.Second,
			ChunkSize: MaxChunkSize,
		},
		Telegram: Telegram{
			APIURL:  "https://api.telegram.org",
			Timeout: 10 * time.Second,
		},
		Email: Email{
			Port:    587,
			Timeout: 30 * time.Second,
		},
		Pipeline: Pipeline{
			LookupWorkers:   5,
			DeliveryWorkers: 10,
			MaxAttempts:     5,
		},
		Redis: RedisConfig{
			PoolSize:     4,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			LockKey:      "fantamorto:pipeline:lock",
			LockTTL:      30 * time.Minute,
		},
		Kafka:   Kafka{Topic: "fantamorto.notifications", ClientID: "fantamorto"},
		Metrics: Metrics{JobName: "fantamorto"},
		Server:  Server{Addr: ":9090", Schedule: "0 * * * *"},
		Log:     Log{Level: "info", Format: "text"},
		Sheets: Sheets{
			GID:               "0",
			ExportURL:         "https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s",
			NotificationsFile: "notifiche.csv",
			CorrectionsFile:   "correzioni.csv",
		},
	}
}

// Load reads the YAML file at path (when non-empty) on top of the defaults,
// applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays secrets and deploy knobs so they never need to live in
// the YAML file.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("FANTAMORTO_DB_DRIVER", &c.Database.Driver)
	str("FANTAMORTO_DB_DSN", &c.Database.DSN)
	str("FANTAMORTO_TEAMS_FOLDER", &c.Teams.Folder)
	str("FANTAMORTO_LOG_LEVEL", &c.Log.Level)
	str("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	str("TELEGRAM_ADMIN_CHAT_ID", &c.Telegram.AdminChatID)
	str("SMTP_HOST", &c.Email.Host)
	str("SMTP_USER", &c.Email.User)
	str("SMTP_PASSWORD", &c.Email.Password)
	str("REDIS_URL", &c.Redis.URL)
	str("PUSHGATEWAY_URL", &c.Metrics.PushgatewayURL)
	str("SHEET_ID", &c.Sheets.SheetID)

	if v, ok := lookup("SMTP_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		c.Email.Port = port
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	return nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q: must be sqlite or postgres", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.Pipeline.LookupWorkers < 1 {
		errs = append(errs, errors.New("pipeline.lookup_workers must be positive"))
	}
	if c.Pipeline.DeliveryWorkers < 1 {
		errs = append(errs, errors.New("pipeline.delivery_workers must be positive"))
	}
	if c.Pipeline.MaxAttempts < 1 {
		errs = append(errs, errors.New("pipeline.max_attempts must be positive"))
	}
	if c.Wikidata.ChunkSize < 1 || c.Wikidata.ChunkSize > MaxChunkSize {
		errs = append(errs, fmt.Errorf("wikidata.chunk_size must be between 1 and %d", MaxChunkSize))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: must be text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
