package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bridgescope/internal/bridge"
	"bridgescope/internal/chain"
	"bridgescope/internal/config"
	"bridgescope/internal/metrics"
	"bridgescope/internal/relayer"
	"bridgescope/internal/storage"
	"bridgescope/internal/storage/postgres"
)

func runTxs(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if format != formatJSON && format != formatTable {
		return fmt.Errorf("unknown format %q", format)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RelayerURL == "" {
		return fmt.Errorf("relayer url is required")
	}
	if !common.IsHexAddress(cfg.Address) {
		return fmt.Errorf("invalid address %q", cfg.Address)
	}

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chains, err := chain.DialAll(ctx, reg.Chains(), logger)
	if err != nil {
		return err
	}
	defer chains.Close()

	promRegistry := prometheus.NewRegistry()
	m := metrics.NewMetrics(promRegistry)

	feed := relayer.NewClient(relayer.Config{
		BaseURL:      cfg.RelayerURL,
		HTTPClient:   &http.Client{Timeout: cfg.HTTPTimeout},
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger, m)

	svc := bridge.NewService(feed, chains, reg, bridge.EnrichOptions{
		Concurrency:       cfg.Concurrency,
		TokenMetaFallback: cfg.TokenMetaFallback,
	}, logger, m)

	var chainID *uint64
	if cfg.ChainID != 0 {
		id := cfg.ChainID
		chainID = &id
	}

	logger.Info("txs start",
		zap.String("relayer", cfg.RelayerURL),
		zap.String("address", cfg.Address),
		zap.Uint64("chain_id", cfg.ChainID),
		zap.Int("page", cfg.Page),
		zap.Int("size", cfg.Size),
		zap.Int("chains", len(reg.Chains())),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	page, err := svc.GetAllBridgeTransactionsByAddress(ctx, cfg.Address, bridge.PaginationParams{
		Page: cfg.Page,
		Size: cfg.Size,
	}, chainID)
	if err != nil {
		return err
	}

	export := storage.PageExport{
		Address:    cfg.Address,
		ChainID:    chainID,
		ExportedAt: time.Now(),
		Page:       page,
	}
	if err := exportPage(ctx, cfg, export, m, logger); err != nil {
		return err
	}

	if err := metrics.WriteTextfile(cfg.MetricsFile, promRegistry); err != nil {
		logger.Warn("metrics export failed", zap.Error(err))
	}

	logger.Info("txs done",
		zap.Int("transactions", len(page.Transactions)),
		zap.Int("total", page.Pagination.Total),
	)

	if format == formatTable {
		return writeTable(os.Stdout, page)
	}
	return writeJSON(os.Stdout, page)
}

func exportPage(ctx context.Context, cfg config.Config, export storage.PageExport, m *metrics.Metrics, logger *zap.Logger) error {
	var sinks []namedSink

	if cfg.Out != "" {
		sinks = append(sinks, namedSink{name: "jsonl", storage: storage.NewJsonlStorage(cfg.Out)})
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, namedSink{name: "postgres", storage: store})
	}

	count := len(export.Page.Transactions)
	for _, sink := range sinks {
		if err := sink.storage.PutPage(ctx, export); err != nil {
			m.RecordSinkWrite(sink.name, "error", count)
			return fmt.Errorf("export %s: %w", sink.name, err)
		}
		m.RecordSinkWrite(sink.name, "ok", count)
		logger.Info("page exported", zap.String("sink", sink.name), zap.Int("page", export.Page.Pagination.Page), zap.Int("count", count))
	}
	return nil
}

type namedSink struct {
	name    string
	storage storage.Storage
}
