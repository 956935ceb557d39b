package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"solana-launch-monitor/internal/config"
	"solana-launch-monitor/internal/logging"
)

var (
	cfgPath   string
	logLevel  string
	logFormat string
	rpcURL    string

	rootCmd = &cobra.Command{
		Use:   "launch-monitor",
		Short: "Real-time monitor for pump.fun and launchpad token launches on Solana",
	}
)

func init() {
	cobra.EnableCommandSorting = false

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to YAML config file (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format override (json, console)")
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc-url", "", "Solana RPC HTTP endpoint override")

	rootCmd.AddCommand(
		runCmd,
		decodeCmd,
		checkCmd,
	)
}

// Execute runs the root command tree.
func Execute() error {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

// loadConfig reads --config when given and applies the persistent overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if rpcURL != "" {
		cfg.Solana.RPCURL = rpcURL
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}
