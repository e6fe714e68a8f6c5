package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "extrinsicscope",
		Short:        "Substrate extrinsic classifier for one account",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	processCmd := &cobra.Command{
		Use:   "process [block-hash...]",
		Short: "Process explicit block hashes",
		RunE:  runProcess,
	}
	addCommonFlags(processCmd.Flags())
	processCmd.Flags().StringSlice("hash", nil, "block hashes (comma-separated)")
	processCmd.Flags().String("blocks-file", "", "JSON block dump to read blocks from instead of RPC")
	root.AddCommand(processCmd)

	followCmd := &cobra.Command{
		Use:   "follow",
		Short: "Follow finalized blocks",
		RunE:  runFollow,
	}
	addCommonFlags(followCmd.Flags())
	followCmd.Flags().Duration("poll-interval", 6*time.Second, "finalized head poll interval")
	addProgressFlags(followCmd.Flags())
	root.AddCommand(followCmd)

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Process an inclusive block range",
		RunE:  runBackfill,
	}
	addCommonFlags(backfillCmd.Flags())
	backfillCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	backfillCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means finalized head")
	backfillCmd.Flags().Uint64("batch-size", 100, "blocks per batch")
	backfillCmd.Flags().Int("workers", 4, "concurrent blocks per batch")
	addProgressFlags(backfillCmd.Flags())
	root.AddCommand(backfillCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print stored transactions of the account",
		RunE:  runList,
	}
	addStoreFlags(listCmd.Flags())
	listCmd.Flags().String("chain", "", "chain id")
	listCmd.Flags().String("account", "", "account id (hex)")
	listCmd.Flags().Int("limit", 50, "maximum number of transactions")
	listCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(listCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "", "node RPC URL")
	flags.String("chain", "", "chain id from the chains registry")
	flags.String("account", "", "account id (hex)")
	flags.Uint32("spec-version", 0, "runtime spec version of the codec")
	flags.String("metrics-addr", "", "address to serve Prometheus metrics on, empty disables")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	addStoreFlags(flags)
}

func addStoreFlags(flags *pflag.FlagSet) {
	flags.String("store", "jsonl", "storage backend (jsonl, postgres, pebble)")
	flags.String("out", "./data/transactions.jsonl", "output JSONL path")
	flags.String("pg-dsn", "", "Postgres DSN")
	flags.String("pebble-dir", "./data/pebble", "pebble data directory")
}

func addProgressFlags(flags *pflag.FlagSet) {
	flags.Int("rate-limit", 20, "RPC requests per second, 0 disables")
	flags.String("checkpoint", "./data/checkpoint.json", "checkpoint file path (jsonl store)")
	flags.Bool("checkpoint-enabled", true, "enable checkpointing")
	flags.Int("max-retries", 5, "maximum retry attempts per block")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
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
