package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RelayerURL        string
	Address           string
	ChainID           uint64
	Page              int
	Size              int
	MaxRetries        int
	RetryBackoff      time.Duration
	HTTPTimeout       time.Duration
	Concurrency       int
	TokenMetaFallback bool
	Out               string
	PGDSN             string
	MetricsFile       string
	LogLevel          string
	Chains            []ChainConfig
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BRIDGESCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("page", 0)
	v.SetDefault("size", 100)
	v.SetDefault("max-retries", 2)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("http-timeout", 30*time.Second)
	v.SetDefault("concurrency", 0)
	v.SetDefault("token-meta-fallback", false)
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

	chains, err := loadChains(v)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		RelayerURL:        v.GetString("relayer-url"),
		Address:           strings.TrimSpace(v.GetString("address")),
		ChainID:           v.GetUint64("chain-id"),
		Page:              v.GetInt("page"),
		Size:              v.GetInt("size"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		HTTPTimeout:       v.GetDuration("http-timeout"),
		Concurrency:       v.GetInt("concurrency"),
		TokenMetaFallback: v.GetBool("token-meta-fallback"),
		Out:               v.GetString("out"),
		PGDSN:             v.GetString("pg-dsn"),
		MetricsFile:       v.GetString("metrics-file"),
		LogLevel:          v.GetString("log-level"),
		Chains:            chains,
	}

	return cfg, nil
}
