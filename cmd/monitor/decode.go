package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"solana-launch-monitor/internal/decoder"
	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/enrichment"
	"solana-launch-monitor/internal/solana"
)

var (
	flagSignature string
	flagTimeout   time.Duration
)

func init() {
	decodeCmd.Flags().StringVar(&flagSignature, "signature", "", "Fetch a transaction and decode its logs instead of raw payloads")
	decodeCmd.Flags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "RPC timeout for --signature")
}

var decodeCmd = &cobra.Command{
	Use:   "decode [base64-payload...]",
	Short: "Decode program data payloads or a transaction's logs",
	Long: `Decode prints the classified and decoded form of each payload as JSON.

With --signature the transaction is fetched over RPC, every "Program data:"
line in its logs is decoded, and launchpad buy accounts are resolved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagSignature == "" && len(args) == 0 {
			return fmt.Errorf("provide at least one payload or --signature")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if flagSignature != "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
			defer cancel()
			return decodeTransaction(ctx, solana.NewHTTPClient(cfg.Solana.RPCURL), flagSignature, enc)
		}

		parser := decoder.NewParser(nil)
		for _, arg := range args {
			data, err := base64.StdEncoding.DecodeString(arg)
			if err != nil {
				return fmt.Errorf("payload %q: %w", arg, err)
			}
			if err := enc.Encode(toOutput(parser.ParsePayload(data))); err != nil {
				return err
			}
		}
		return nil
	},
}

type decodeOutput struct {
	Tag        string                `json:"tag,omitempty"`
	Program    string                `json:"program,omitempty"`
	Line       int                   `json:"line,omitempty"`
	Launch     *domain.Launch        `json:"launch,omitempty"`
	Trade      *domain.Trade         `json:"trade,omitempty"`
	Completion *domain.Completion    `json:"completion,omitempty"`
	Initialize *domain.LaunchpadInit `json:"initialize,omitempty"`
	Error      string                `json:"error,omitempty"`
}

func toOutput(d *decoder.Decoded, err error) decodeOutput {
	if err != nil {
		return decodeOutput{Error: err.Error()}
	}
	return decodeOutput{
		Tag:        d.Tag.String(),
		Launch:     d.Launch,
		Trade:      d.Trade,
		Completion: d.Completion,
		Initialize: d.Initialize,
	}
}

func decodeTransaction(ctx context.Context, rpc solana.RPCClient, signature string, enc *json.Encoder) error {
	tx, err := rpc.GetTransaction(ctx, signature)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}
	if tx == nil {
		return fmt.Errorf("transaction %s not found", signature)
	}

	var logs []string
	if tx.Meta != nil {
		logs = tx.Meta.LogMessages
	}

	results := decoder.NewParser(nil).Parse(logs)
	outputs := make([]decodeOutput, 0, len(results))
	for _, r := range results {
		out := toOutput(r.Decoded, r.Err)
		out.Program = r.Program
		out.Line = r.Line
		outputs = append(outputs, out)
	}

	report := struct {
		Signature string               `json:"signature"`
		Slot      int64                `json:"slot"`
		Failed    bool                 `json:"failed"`
		Payloads  []decodeOutput       `json:"payloads"`
		Buy       *domain.LaunchpadBuy `json:"launchpad_buy,omitempty"`
	}{
		Signature: signature,
		Slot:      tx.Slot,
		Failed:    tx.Meta != nil && tx.Meta.Err != nil,
		Payloads:  outputs,
	}
	if buy, err := enrichment.NewResolver().Resolve(tx); err == nil {
		report.Buy = buy
	}
	return enc.Encode(report)
}
