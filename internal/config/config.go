package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"extrinsicScope/internal/model"
)

// Store backends.
const (
	StoreJSONL    = "jsonl"
	StorePostgres = "postgres"
	StorePebble   = "pebble"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL            string
	ChainID           string
	Account           string
	Hashes            []string
	BlocksFile        string
	SpecVersion       uint32
	FromBlock         uint64
	ToBlock           uint64
	BatchSize         uint64
	Workers           int
	RateLimit         int
	PollInterval      time.Duration
	Store             string
	Out               string
	PGDSN             string
	PebbleDir         string
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	MetricsAddr       string
	LogLevel          string
	Chains            []model.Chain
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EXTRINSIC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("batch-size", uint64(100))
	v.SetDefault("workers", 4)
	v.SetDefault("rate-limit", 20)
	v.SetDefault("poll-interval", 6*time.Second)
	v.SetDefault("store", StoreJSONL)
	v.SetDefault("out", "./data/transactions.jsonl")
	v.SetDefault("pebble-dir", "./data/pebble")
	v.SetDefault("checkpoint", "./data/checkpoint.json")
	v.SetDefault("checkpoint-enabled", true)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:            v.GetString("rpc"),
		ChainID:           v.GetString("chain"),
		Account:           v.GetString("account"),
		Hashes:            getStringSlice(v, "hash"),
		BlocksFile:        v.GetString("blocks-file"),
		SpecVersion:       v.GetUint32("spec-version"),
		FromBlock:         v.GetUint64("from"),
		ToBlock:           v.GetUint64("to"),
		BatchSize:         v.GetUint64("batch-size"),
		Workers:           v.GetInt("workers"),
		RateLimit:         v.GetInt("rate-limit"),
		PollInterval:      v.GetDuration("poll-interval"),
		Store:             strings.ToLower(v.GetString("store")),
		Out:               v.GetString("out"),
		PGDSN:             v.GetString("pg-dsn"),
		PebbleDir:         v.GetString("pebble-dir"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		MetricsAddr:       v.GetString("metrics-addr"),
		LogLevel:          v.GetString("log-level"),
	}

	chains, err := loadChains(v)
	if err != nil {
		return Config{}, err
	}
	cfg.Chains = chains

	return cfg, nil
}

// Validate checks the settings shared by every command.
func (c Config) Validate() error {
	switch c.Store {
	case StoreJSONL:
		if c.Out == "" {
			return fmt.Errorf("out is required for the jsonl store")
		}
	case StorePostgres:
		if c.PGDSN == "" {
			return fmt.Errorf("pg-dsn is required for the postgres store")
		}
	case StorePebble:
		if c.PebbleDir == "" {
			return fmt.Errorf("pebble-dir is required for the pebble store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.Account == "" {
		return fmt.Errorf("account is required")
	}
	if _, err := model.ParseAccountID(c.Account); err != nil {
		return err
	}
	if _, err := c.Chain(); err != nil {
		return err
	}
	return nil
}

// AccountID parses the configured account.
func (c Config) AccountID() (model.AccountID, error) {
	return model.ParseAccountID(c.Account)
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
