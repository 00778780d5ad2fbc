package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "bridgescope",
		Short:        "Bridge transaction explorer backed by a relayer feed and chain RPC",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	txsCmd := &cobra.Command{
		Use:   "txs",
		Short: "List bridge transactions sent by an address",
		RunE:  runTxs,
	}

	txsCmd.Flags().String("relayer-url", "", "relayer API base URL")
	txsCmd.Flags().String("address", "", "sender address to query")
	txsCmd.Flags().Uint64("chain-id", 0, "restrict the feed to one chain id, 0 means all")
	txsCmd.Flags().Int("page", 0, "relayer page number")
	txsCmd.Flags().Int("size", 100, "relayer page size")
	txsCmd.Flags().Int("max-retries", 2, "maximum relayer retry attempts")
	txsCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial relayer retry backoff")
	txsCmd.Flags().Duration("http-timeout", 30*time.Second, "relayer request timeout")
	txsCmd.Flags().Int("concurrency", 0, "maximum concurrent enrichment tasks, 0 means unlimited")
	txsCmd.Flags().Bool("token-meta-fallback", false, "read symbol/decimals from the token contract when the feed omits them")
	txsCmd.Flags().String("format", "json", "output format (json, table)")
	txsCmd.Flags().String("out", "", "optional JSONL export path")
	txsCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for export")
	txsCmd.Flags().String("metrics-file", "", "optional Prometheus textfile path")
	txsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(txsCmd)

	blockInfoCmd := &cobra.Command{
		Use:   "blockinfo",
		Short: "Show the relayer's indexing progress per chain",
		RunE:  runBlockInfo,
	}

	blockInfoCmd.Flags().String("relayer-url", "", "relayer API base URL")
	blockInfoCmd.Flags().Int("max-retries", 2, "maximum relayer retry attempts")
	blockInfoCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial relayer retry backoff")
	blockInfoCmd.Flags().Duration("http-timeout", 30*time.Second, "relayer request timeout")
	blockInfoCmd.Flags().Bool("head-lag", false, "compare relayer progress with each chain's RPC head")
	blockInfoCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for export")
	blockInfoCmd.Flags().String("metrics-file", "", "optional Prometheus textfile path")
	blockInfoCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(blockInfoCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
