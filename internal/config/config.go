// Package config provides application configuration loaded from environment
// variables (optionally seeded from a .env file). Use the package-level Get()
// function to obtain the singleton Config instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sub-config structs
// ──────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        // e.g. "8080"
	Env            string        // "development" | "production"
	ReadTimeout    time.Duration // default 10s
	WriteTimeout   time.Duration // default 10s
	AllowedOrigins []string      // CORS origins honored in production
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	DSN             string        // full postgres DSN
	MaxOpenConns    int           // default 25
	MaxIdleConns    int           // default 10
	ConnMaxLifetime time.Duration // default 5m
}

// ChainConfig holds market indexer settings.
type ChainConfig struct {
	IndexerURL   string        // base URL of the market data indexer
	FetchTimeout time.Duration // default 5s
}

// WalletConfig holds transfer relayer settings.
type WalletConfig struct {
	RelayerURL    string        // base URL of the wallet relayer daemon
	SubmitTimeout time.Duration // default 30s; placement inherits this timeout
}

// RemoteConfig holds the optional cross-device history sync target.
type RemoteConfig struct {
	SyncURL     string        // "" disables the sync entirely
	PushTimeout time.Duration // default 5s
}

// SweepConfig holds settlement sweep cadence. The cadence is a policy choice,
// not a correctness requirement; the sweep itself is idempotent.
type SweepConfig struct {
	Interval          time.Duration // default 30s
	BroadcastInterval time.Duration // odds push to WS clients; default 5s
}

// TrackerConfig holds placement limits.
type TrackerConfig struct {
	MinStake float64 // minimum stake per prediction; default 1
}

// ──────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ──────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for the entire application.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Chain   ChainConfig
	Wallet  WalletConfig
	Remote  RemoteConfig
	Sweep   SweepConfig
	Tracker TrackerConfig
}

// IsProd returns true when running in the production environment.
func (c *Config) IsProd() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
func (c *Config) Validate() error {
	var errs []error

	if c.IsProd() && c.DB.DSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must be set in production"))
	}
	if c.Chain.IndexerURL == "" {
		errs = append(errs, errors.New("CHAIN_INDEXER_URL must be set"))
	}
	if c.Wallet.RelayerURL == "" {
		errs = append(errs, errors.New("WALLET_RELAYER_URL must be set"))
	}
	if c.Sweep.Interval <= 0 {
		errs = append(errs, fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.Sweep.Interval))
	}
	if c.Sweep.BroadcastInterval <= 0 {
		errs = append(errs, fmt.Errorf("SWEEP_BROADCAST_INTERVAL must be positive, got %s", c.Sweep.BroadcastInterval))
	}
	if c.Tracker.MinStake <= 0 {
		errs = append(errs, fmt.Errorf("TRACKER_MIN_STAKE must be positive, got %.4f", c.Tracker.MinStake))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Singleton
// ──────────────────────────────────────────────────────────────────────────────

var (
	instance *Config
	once     sync.Once
	loadErr  error
)

// Get returns the singleton Config, loading it once from the environment.
// Panics if loading fails — call this early in main() to catch
// misconfigurations at startup.
func Get() *Config {
	once.Do(func() {
		instance, loadErr = load()
	})
	if loadErr != nil {
		panic(fmt.Sprintf("config: failed to load: %v", loadErr))
	}
	return instance
}

// MustLoad loads and validates configuration. Intended for use in main().
// Panics on any error so misconfiguration is caught immediately at boot.
func MustLoad() *Config {
	cfg := Get()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: validation failed: %v", err))
	}
	return cfg
}

// ──────────────────────────────────────────────────────────────────────────────
// Internal loader
// ──────────────────────────────────────────────────────────────────────────────

func load() (*Config, error) {
	// Seed environment from a .env file when present; real env vars win.
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Server = ServerConfig{
		Port:           getEnv("SERVER_PORT", "8080"),
		Env:            getEnv("ENVIRONMENT", "development"),
		ReadTimeout:    getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:   getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "oddsline_tracker"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	maxOpen, err := getInt("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
	}
	maxIdle, err := getInt("DB_MAX_IDLE_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_IDLE_CONNS: %w", err)
	}

	cfg.DB = DBConfig{
		DSN:             dsn,
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	cfg.Chain = ChainConfig{
		IndexerURL:   getEnv("CHAIN_INDEXER_URL", "http://localhost:8545"),
		FetchTimeout: getDuration("CHAIN_FETCH_TIMEOUT", 5*time.Second),
	}

	cfg.Wallet = WalletConfig{
		RelayerURL:    getEnv("WALLET_RELAYER_URL", "http://localhost:8645"),
		SubmitTimeout: getDuration("WALLET_SUBMIT_TIMEOUT", 30*time.Second),
	}

	cfg.Remote = RemoteConfig{
		SyncURL:     getEnv("REMOTE_SYNC_URL", ""),
		PushTimeout: getDuration("REMOTE_PUSH_TIMEOUT", 5*time.Second),
	}

	cfg.Sweep = SweepConfig{
		Interval:          getDuration("SWEEP_INTERVAL", 30*time.Second),
		BroadcastInterval: getDuration("SWEEP_BROADCAST_INTERVAL", 5*time.Second),
	}

	minStake, err := getFloat("TRACKER_MIN_STAKE", 1)
	if err != nil {
		return nil, fmt.Errorf("TRACKER_MIN_STAKE: %w", err)
	}
	cfg.Tracker = TrackerConfig{MinStake: minStake}

	return cfg, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helper functions
// ──────────────────────────────────────────────────────────────────────────────

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float %q", v)
	}
	return f, nil
}

// splitList parses a comma-separated env value into trimmed, non-empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// getDuration parses an env var as a Go duration string (e.g. "30s", "5m").
// Falls back to defaultVal if the variable is unset or unparseable.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
