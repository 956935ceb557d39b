// Package config loads the monitor configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"solana-launch-monitor/internal/decoder"
	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/enrichment"
	"solana-launch-monitor/internal/ingestion"
	"solana-launch-monitor/internal/throttle"
	"solana-launch-monitor/internal/tracker"
)

// Config holds the YAML configuration.
type Config struct {
	Solana     SolanaConfig     `yaml:"solana"`
	Tracker    TrackerConfig    `yaml:"tracker"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Throttle   ThrottleConfig   `yaml:"throttle"`
	History    HistoryConfig    `yaml:"history"`
	Storage    StorageConfig    `yaml:"storage"`
	Redis      RedisConfig      `yaml:"redis"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

type SolanaConfig struct {
	RPCURL         string        `yaml:"rpc_url"`
	WSURL          string        `yaml:"ws_url"`
	Programs       []string      `yaml:"programs"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type TrackerConfig struct {
	Target              float64 `yaml:"target"`
	NearCompletionRatio float64 `yaml:"near_completion_ratio"`
	TradeTracking       bool    `yaml:"trade_tracking"`
	MaxQueuedEvents     int     `yaml:"max_queued_events"`
}

type EnrichmentConfig struct {
	Capacity    int           `yaml:"capacity"`
	TrimTo      int           `yaml:"trim_to"`
	Spacing     time.Duration `yaml:"spacing"`
	MaxRetries  int           `yaml:"max_retries"`
	BackoffBase time.Duration `yaml:"backoff_base"`
	BackoffMax  time.Duration `yaml:"backoff_max"`
}

type ThrottleConfig struct {
	Window time.Duration `yaml:"window"`
}

type HistoryConfig struct {
	Launches    int `yaml:"launches"`
	Completions int `yaml:"completions"`
	Enrichments int `yaml:"enrichments"`
}

// StorageConfig enables the archives. Empty DSNs disable them.
type StorageConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// RedisConfig enables event publishing. An empty URL disables it.
type RedisConfig struct {
	URL     string `yaml:"url"`
	Channel string `yaml:"channel"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used for keys absent from the file.
func Default() *Config {
	return &Config{
		Solana: SolanaConfig{
			Programs:       []string{decoder.PumpFunProgram, decoder.LaunchpadProgram},
			ConnectTimeout: ingestion.DefaultConnectTimeout,
		},
		Tracker: TrackerConfig{
			Target:              domain.DefaultTargetQuote,
			NearCompletionRatio: domain.DefaultNearCompletionRatio,
			MaxQueuedEvents:     tracker.DefaultMaxQueuedEvents,
		},
		Enrichment: EnrichmentConfig{
			Capacity:    enrichment.DefaultCapacity,
			TrimTo:      enrichment.DefaultTrimTo,
			Spacing:     enrichment.DefaultSpacing,
			MaxRetries:  enrichment.DefaultMaxRetries,
			BackoffBase: enrichment.DefaultBackoffBase,
			BackoffMax:  enrichment.DefaultBackoffMax,
		},
		Throttle: ThrottleConfig{Window: throttle.DefaultWindow},
		History: HistoryConfig{
			Launches:    ingestion.DefaultLaunchHistory,
			Completions: ingestion.DefaultCompletionHistory,
			Enrichments: ingestion.DefaultEnrichmentHistory,
		},
		Metrics: MetricsConfig{Addr: ":9090"},
		Log:     LogConfig{Level: "info", Format: "json"},
	}
}

var envPattern = regexp.MustCompile(`\${([A-Za-z_][A-Za-z0-9_]*)}`)

// Load reads path over the defaults after loading a sibling .env file and
// interpolating ${VAR} references. The result is not validated; callers
// validate after applying flag overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}

	if err := loadDotEnv(path); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	interpolated, err := interpolateEnv(string(raw))
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(interpolated), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(configPath string) error {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
	}
	return nil
}

func interpolateEnv(input string) (string, error) {
	missing := map[string]struct{}{}
	out := envPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := envPattern.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		missing[name] = struct{}{}
		return match
	})

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		return "", fmt.Errorf("missing environment variables: %s", strings.Join(names, ", "))
	}
	return out, nil
}

// Validate performs direct schema checks.
func (c *Config) Validate() error {
	if c.Solana.RPCURL == "" {
		return errors.New("solana.rpc_url is required")
	}
	if c.Solana.WSURL == "" {
		return errors.New("solana.ws_url is required")
	}
	if len(c.Solana.Programs) == 0 {
		return errors.New("solana.programs must list at least one program")
	}
	if c.Solana.ConnectTimeout <= 0 {
		return errors.New("solana.connect_timeout must be positive")
	}
	if c.Tracker.Target <= 0 {
		return errors.New("tracker.target must be positive")
	}
	if r := c.Tracker.NearCompletionRatio; r <= 0 || r > 1 {
		return fmt.Errorf("tracker.near_completion_ratio must be in (0, 1], got %v", r)
	}
	if c.Enrichment.Capacity <= 0 {
		return errors.New("enrichment.capacity must be positive")
	}
	if c.Enrichment.TrimTo <= 0 || c.Enrichment.TrimTo >= c.Enrichment.Capacity {
		return fmt.Errorf("enrichment.trim_to must be in (0, %d), got %d", c.Enrichment.Capacity, c.Enrichment.TrimTo)
	}
	if c.Enrichment.BackoffMax < c.Enrichment.BackoffBase {
		return errors.New("enrichment.backoff_max must not be below backoff_base")
	}
	if c.Throttle.Window <= 0 {
		return errors.New("throttle.window must be positive")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported log.format: %s", c.Log.Format)
	}
	return nil
}
