package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"solana-launch-monitor/internal/decoder"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadInterpolatesEnvAndKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
solana:
  rpc_url: ${RPC_URL}
  ws_url: wss://example-ws
throttle:
  window: 250ms
enrichment:
  spacing: 200ms
`)
	t.Setenv("RPC_URL", "http://example-rpc")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected load to succeed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config: %v", err)
	}

	if got := cfg.Solana.RPCURL; got != "http://example-rpc" {
		t.Fatalf("rpc_url not interpolated, got %q", got)
	}
	if cfg.Throttle.Window != 250*time.Millisecond {
		t.Errorf("expected window 250ms, got %v", cfg.Throttle.Window)
	}
	if cfg.Enrichment.Spacing != 200*time.Millisecond {
		t.Errorf("expected spacing 200ms, got %v", cfg.Enrichment.Spacing)
	}
	if cfg.Enrichment.Capacity != 50 || cfg.Enrichment.TrimTo != 30 {
		t.Errorf("expected default capacity 50/30, got %d/%d", cfg.Enrichment.Capacity, cfg.Enrichment.TrimTo)
	}
	if cfg.Tracker.Target != 85 || cfg.Tracker.NearCompletionRatio != 0.80 {
		t.Errorf("unexpected tracker defaults: %+v", cfg.Tracker)
	}
	if len(cfg.Solana.Programs) != 2 || cfg.Solana.Programs[0] != decoder.PumpFunProgram {
		t.Errorf("unexpected default programs: %v", cfg.Solana.Programs)
	}
	if cfg.History.Launches != 200 || cfg.History.Completions != 100 || cfg.History.Enrichments != 50 {
		t.Errorf("unexpected history defaults: %+v", cfg.History)
	}
}

func TestLoadFailsOnMissingEnv(t *testing.T) {
	path := writeConfig(t, `
solana:
  rpc_url: ${MONITOR_MISSING_RPC}
  ws_url: ${MONITOR_MISSING_WS}
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected missing env to fail")
	}
	if !strings.Contains(err.Error(), "MONITOR_MISSING_RPC, MONITOR_MISSING_WS") {
		t.Errorf("expected sorted variable names, got %v", err)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("MONITOR_DOTENV_WS=wss://from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("solana:\n  ws_url: ${MONITOR_DOTENV_WS}\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("MONITOR_DOTENV_WS") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Solana.WSURL != "wss://from-dotenv" {
		t.Errorf("expected ws_url from .env, got %q", cfg.Solana.WSURL)
	}
}

func TestLoadRequiresPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Solana.RPCURL = "http://rpc"
		cfg.Solana.WSURL = "ws://ws"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"missing rpc", func(c *Config) { c.Solana.RPCURL = "" }, "rpc_url"},
		{"missing ws", func(c *Config) { c.Solana.WSURL = "" }, "ws_url"},
		{"no programs", func(c *Config) { c.Solana.Programs = nil }, "programs"},
		{"zero connect timeout", func(c *Config) { c.Solana.ConnectTimeout = 0 }, "connect_timeout"},
		{"ratio above one", func(c *Config) { c.Tracker.NearCompletionRatio = 1.5 }, "near_completion_ratio"},
		{"trim not below capacity", func(c *Config) { c.Enrichment.TrimTo = 50 }, "trim_to"},
		{"backoff inverted", func(c *Config) { c.Enrichment.BackoffMax = time.Millisecond }, "backoff_max"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid config: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
