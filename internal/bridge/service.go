package bridge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"bridgescope/internal/metrics"
	"bridgescope/internal/model"
	"bridgescope/internal/registry"
	"bridgescope/internal/relayer"
)

// EventFeed is the relayer API as seen by the service.
type EventFeed interface {
	FetchEvents(ctx context.Context, params relayer.EventsParams) (*model.EventsResponse, error)
	FetchBlockInfo(ctx context.Context) ([]model.BlockInfo, error)
}

// PaginationParams selects a page of the relayer feed.
type PaginationParams struct {
	Page int
	Size int
}

// Service reconciles relayer events with on-chain state.
type Service struct {
	feed     EventFeed
	registry *registry.Registry
	enricher *Enricher
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewService builds a Service with its dependencies.
func NewService(feed EventFeed, reader ChainReader, reg *registry.Registry, opts EnrichOptions, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		feed:     feed,
		registry: reg,
		enricher: NewEnricher(reader, reg, opts, logger, m),
		logger:   logger,
		metrics:  m,
	}
}

// GetAllBridgeTransactionsByAddress returns one page of bridge transactions
// sent by address, confirmed on the source chain and carrying the destination
// chain's current message status.
//
// Pagination is the relayer's, reported unchanged: the returned page may hold
// fewer transactions than the relayer's totals suggest.
func (s *Service) GetAllBridgeTransactionsByAddress(ctx context.Context, address string, params PaginationParams, chainID *uint64) (*model.TransactionsPage, error) {
	resp, err := s.feed.FetchEvents(ctx, relayer.EventsParams{
		Address: address,
		ChainID: chainID,
		Event:   relayer.EventMessageSent,
		Page:    params.Page,
		Size:    params.Size,
	})
	if err != nil {
		return nil, err
	}

	pagination := resp.PaginationInfo()
	s.metrics.RecordRecordsFetched(len(resp.Items))

	if len(resp.Items) == 0 {
		return &model.TransactionsPage{Transactions: []model.BridgeTransaction{}, Pagination: pagination}, nil
	}

	items := FilterRecords(resp.Items, s.registry, s.logger, s.metrics)

	txs := make([]transformedTx, 0, len(items))
	for _, item := range items {
		tx, err := transformRecord(item, s.logger)
		if err != nil {
			return nil, fmt.Errorf("transform record %s: %w", item.Data.Raw.TransactionHash, err)
		}
		txs = append(txs, tx)
	}

	enriched := s.enricher.Enrich(ctx, address, txs)

	s.logger.Info("transactions reconciled",
		zap.String("address", address),
		zap.Int("fetched", len(resp.Items)),
		zap.Int("filtered", len(items)),
		zap.Int("enriched", len(enriched)),
		zap.Int("page", pagination.Page),
		zap.Int("total", pagination.Total),
	)

	return assemblePage(enriched, pagination), nil
}

// GetBlockInfo returns the relayer's indexing progress keyed by chain id.
// Later entries for the same chain id replace earlier ones.
func (s *Service) GetBlockInfo(ctx context.Context) (map[uint64]model.BlockInfo, error) {
	infos, err := s.feed.FetchBlockInfo(ctx)
	if err != nil {
		return nil, err
	}

	byChain := make(map[uint64]model.BlockInfo, len(infos))
	for _, info := range infos {
		byChain[info.ChainID] = info
	}
	return byChain, nil
}
