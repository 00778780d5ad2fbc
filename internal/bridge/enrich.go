package bridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bridgescope/internal/metrics"
	"bridgescope/internal/model"
	"bridgescope/internal/registry"
)

// EnrichOptions tunes the enrichment fan-out.
type EnrichOptions struct {
	// Concurrency caps in-flight transactions; zero or less means one task per transaction.
	Concurrency int
	// TokenMetaFallback reads ERC20 metadata from the source chain when the
	// feed reports a token transfer without a symbol.
	TokenMetaFallback bool
}

// Enricher merges transformed feed records with live chain state.
type Enricher struct {
	reader   ChainReader
	registry *registry.Registry
	opts     EnrichOptions
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewEnricher(reader ChainReader, reg *registry.Registry, opts EnrichOptions, logger *zap.Logger, m *metrics.Metrics) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		reader:   reader,
		registry: reg,
		opts:     opts,
		logger:   logger,
		metrics:  m,
	}
}

// enrichResult is the outcome of one transaction's enrichment. tx is set only
// when outcome is metrics.OutcomeEnriched.
type enrichResult struct {
	tx      *model.BridgeTransaction
	outcome string
	err     error
}

// Enrich reads receipt and message status for every transaction sent by
// address and returns the confirmed ones in input order. A failure for one
// transaction only removes that transaction from the result. That includes a
// destination bridge reporting a status outside New, Retriable, Done and
// Failed: such a transaction is logged at warn and left out.
func (e *Enricher) Enrich(ctx context.Context, address string, txs []transformedTx) []model.BridgeTransaction {
	results := make([]enrichResult, len(txs))
	tokens := NewTokenMetaCache()

	g := new(errgroup.Group)
	if e.opts.Concurrency > 0 {
		g.SetLimit(e.opts.Concurrency)
	}
	for i := range txs {
		i := i
		g.Go(func() error {
			results[i] = e.enrichOne(ctx, address, txs[i], tokens)
			return nil
		})
	}
	_ = g.Wait()

	enriched := make([]model.BridgeTransaction, 0, len(txs))
	for i, res := range results {
		e.metrics.RecordEnrichment(res.outcome)
		switch res.outcome {
		case metrics.OutcomeEnriched:
			enriched = append(enriched, *res.tx)
		case metrics.OutcomeError:
			e.logger.Warn("enrich transaction failed",
				zap.String("tx_hash", txs[i].Hash),
				zap.Uint64("src_chain_id", txs[i].SrcChainID),
				zap.Uint64("dest_chain_id", txs[i].DestChainID),
				zap.Error(res.err),
			)
		default:
			e.logger.Debug("skip transaction", zap.String("tx_hash", txs[i].Hash), zap.String("outcome", res.outcome))
		}
	}
	return enriched
}

func (e *Enricher) enrichOne(ctx context.Context, address string, tx transformedTx, tokens *TokenMetaCache) enrichResult {
	if !strings.EqualFold(tx.From, address) {
		return enrichResult{outcome: metrics.OutcomeForeignSender}
	}

	bridgeTx := model.BridgeTransaction{
		Message:        tx.Message,
		MsgHash:        tx.MsgHash,
		Status:         tx.Status,
		Amount:         tx.Amount,
		Symbol:         tx.Symbol,
		Decimals:       tx.CanonicalToken.Decimals,
		SrcChainID:     tx.SrcChainID,
		DestChainID:    tx.DestChainID,
		Hash:           tx.Hash,
		From:           tx.From,
		CanonicalToken: tx.CanonicalToken,
	}

	txHash, err := parseHash(tx.Hash)
	if err != nil {
		return failed(err)
	}

	start := time.Now()
	receipt, err := e.reader.TransactionReceipt(ctx, tx.SrcChainID, txHash)
	e.metrics.RecordChainRead(tx.SrcChainID, "receipt", time.Since(start).Seconds())
	if err != nil {
		return failed(fmt.Errorf("get receipt: %w", err))
	}
	if receipt == nil {
		return enrichResult{outcome: metrics.OutcomeNotMined}
	}
	bridgeTx.Receipt = receipt

	if tx.MsgHash == "" {
		return enrichResult{outcome: metrics.OutcomeMissingMsgHash}
	}
	msgHash, err := parseHash(tx.MsgHash)
	if err != nil {
		return failed(err)
	}

	contracts, ok := e.registry.ContractsFor(tx.DestChainID)
	if !ok {
		return failed(fmt.Errorf("no contracts for destination chain %d", tx.DestChainID))
	}

	start = time.Now()
	status, err := readMessageStatus(ctx, e.reader, tx.DestChainID, contracts.BridgeAddress, msgHash)
	e.metrics.RecordChainRead(tx.DestChainID, "getMessageStatus", time.Since(start).Seconds())
	if err != nil {
		return failed(fmt.Errorf("get message status: %w", err))
	}
	bridgeTx.Status = status

	if isTokenTransfer(tx.CanonicalToken.Address) {
		bridgeTx.Amount = tx.Amount
		bridgeTx.Symbol = tx.Symbol
		bridgeTx.Decimals = tx.CanonicalToken.Decimals

		if e.opts.TokenMetaFallback && tx.Symbol == "" {
			e.applyTokenMeta(ctx, &bridgeTx, tokens)
		}
	}

	return enrichResult{tx: &bridgeTx, outcome: metrics.OutcomeEnriched}
}

// applyTokenMeta fills symbol, name and decimals from the token contract on the
// source chain. Lookup failures leave the feed values in place.
func (e *Enricher) applyTokenMeta(ctx context.Context, bridgeTx *model.BridgeTransaction, tokens *TokenMetaCache) {
	token := common.HexToAddress(bridgeTx.CanonicalToken.Address)
	meta, ok := tokens.Get(bridgeTx.SrcChainID, token)
	if !ok {
		var err error
		meta, err = FetchTokenMeta(ctx, e.reader, bridgeTx.SrcChainID, token, e.logger)
		if err != nil {
			e.logger.Debug("token metadata fetch failed", zap.String("token", token.Hex()), zap.Error(err))
			return
		}
		tokens.Set(bridgeTx.SrcChainID, token, meta)
	}

	bridgeTx.Symbol = meta.Symbol
	bridgeTx.Decimals = meta.Decimals
	bridgeTx.CanonicalToken.Symbol = meta.Symbol
	bridgeTx.CanonicalToken.Name = meta.Name
	bridgeTx.CanonicalToken.Decimals = meta.Decimals
}

func isTokenTransfer(canonicalAddress string) bool {
	if canonicalAddress == "" || !common.IsHexAddress(canonicalAddress) {
		return false
	}
	return common.HexToAddress(canonicalAddress) != (common.Address{})
}

func failed(err error) enrichResult {
	return enrichResult{outcome: metrics.OutcomeError, err: err}
}
