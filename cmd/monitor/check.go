package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"solana-launch-monitor/internal/logging"
	"solana-launch-monitor/internal/solana"
)

var flagSkipWS bool

func init() {
	checkCmd.Flags().BoolVar(&flagSkipWS, "skip-ws", false, "Only check the RPC endpoint")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check connectivity to the configured Solana endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Solana.ConnectTimeout)
		defer cancel()

		start := time.Now()
		slot, err := solana.NewHTTPClient(cfg.Solana.RPCURL).GetSlot(ctx)
		if err != nil {
			return fmt.Errorf("rpc %s: %w", logging.RedactURL(cfg.Solana.RPCURL), err)
		}
		fmt.Printf("rpc ok: slot=%d latency=%s\n", slot, time.Since(start).Round(time.Millisecond))

		if flagSkipWS {
			return nil
		}

		start = time.Now()
		ws, err := solana.NewWSClient(ctx, cfg.Solana.WSURL, nil)
		if err != nil {
			return fmt.Errorf("websocket %s: %w", logging.RedactURL(cfg.Solana.WSURL), err)
		}
		defer ws.Close()
		fmt.Printf("websocket ok: latency=%s\n", time.Since(start).Round(time.Millisecond))
		return nil
	},
}
