package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bridgescope/internal/bridge"
	"bridgescope/internal/chain"
	"bridgescope/internal/config"
	"bridgescope/internal/metrics"
	"bridgescope/internal/model"
	"bridgescope/internal/relayer"
	"bridgescope/internal/storage/postgres"
)

func runBlockInfo(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	headLag, _ := cmd.Flags().GetBool("head-lag")

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RelayerURL == "" {
		return fmt.Errorf("relayer url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	promRegistry := prometheus.NewRegistry()
	m := metrics.NewMetrics(promRegistry)

	feed := relayer.NewClient(relayer.Config{
		BaseURL:      cfg.RelayerURL,
		HTTPClient:   &http.Client{Timeout: cfg.HTTPTimeout},
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger, m)

	svc := bridge.NewService(feed, nil, nil, bridge.EnrichOptions{}, logger, m)

	infos, err := svc.GetBlockInfo(ctx)
	if err != nil {
		return err
	}

	if headLag {
		reg, err := cfg.Registry()
		if err != nil {
			return err
		}
		chains, err := chain.DialAll(ctx, reg.Chains(), logger)
		if err != nil {
			return err
		}
		defer chains.Close()
		logHeadLag(ctx, chains, infos, logger)
	}

	if cfg.PGDSN != "" {
		if err := exportBlockInfo(ctx, cfg.PGDSN, infos); err != nil {
			return err
		}
		logger.Info("block info exported", zap.Int("chains", len(infos)), zap.String("pg_dsn", redactDSN(cfg.PGDSN)))
	}

	if err := metrics.WriteTextfile(cfg.MetricsFile, promRegistry); err != nil {
		logger.Warn("metrics export failed", zap.Error(err))
	}

	return writeJSON(os.Stdout, infos)
}

// logHeadLag reports how far the relayer is behind each chain's RPC head.
func logHeadLag(ctx context.Context, chains *chain.MultiClient, infos map[uint64]model.BlockInfo, logger *zap.Logger) {
	for chainID, info := range infos {
		head, err := chains.LatestBlockNumber(ctx, chainID)
		if err != nil {
			logger.Warn("head lookup failed", zap.Uint64("chain_id", chainID), zap.Error(err))
			continue
		}
		var lag uint64
		if head > info.LatestProcessedBlock {
			lag = head - info.LatestProcessedBlock
		}
		logger.Info("relayer head lag",
			zap.Uint64("chain_id", chainID),
			zap.Uint64("head", head),
			zap.Uint64("processed", info.LatestProcessedBlock),
			zap.Uint64("lag", lag),
		)
	}
}

func exportBlockInfo(ctx context.Context, dsn string, infos map[uint64]model.BlockInfo) error {
	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	return store.UpsertBlockInfo(ctx, infos)
}
