package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"bridgescope/internal/model"
	"bridgescope/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

// Store exports reconciled bridge data to Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the export tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// PutPage upserts the page's transactions.
func (s *Store) PutPage(ctx context.Context, export storage.PageExport) error {
	if export.Page == nil {
		return fmt.Errorf("export %s: no page", export.Address)
	}
	return s.PutTransactions(ctx, export.Page.Transactions)
}

// PutTransactions upserts transactions keyed by source transaction hash.
func (s *Store) PutTransactions(ctx context.Context, txs []model.BridgeTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, tx := range txs {
		var blockNumber *int64
		if tx.Receipt != nil && tx.Receipt.BlockNumber != nil {
			n := tx.Receipt.BlockNumber.Int64()
			blockNumber = &n
		}
		amount := pgtype.Numeric{Int: new(big.Int), Valid: true}
		if tx.Amount != nil {
			amount.Int = tx.Amount
		}
		messageID := pgtype.Numeric{Int: new(big.Int).SetUint64(tx.Message.ID), Valid: true}
		batch.Queue(`
			INSERT INTO bridge_transactions (
				tx_hash, msg_hash, status, sender, src_chain_id, dest_chain_id, amount, symbol,
				decimals, canonical_token, message_id, block_number, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
			ON CONFLICT (tx_hash)
			DO UPDATE SET
				status = EXCLUDED.status,
				amount = EXCLUDED.amount,
				symbol = EXCLUDED.symbol,
				decimals = EXCLUDED.decimals,
				block_number = EXCLUDED.block_number,
				updated_at = now()
		`,
			tx.Hash,
			tx.MsgHash,
			int16(tx.Status),
			tx.From,
			int64(tx.SrcChainID),
			int64(tx.DestChainID),
			amount,
			tx.Symbol,
			int16(tx.Decimals),
			tx.CanonicalToken.Address,
			messageID,
			blockNumber,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range txs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertBlockInfo stores the relayer's latest indexing progress per chain.
func (s *Store) UpsertBlockInfo(ctx context.Context, infos map[uint64]model.BlockInfo) error {
	if len(infos) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, info := range infos {
		batch.Queue(`
			INSERT INTO relayer_block_info (chain_id, latest_processed_block, latest_block, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (chain_id) DO UPDATE
			SET latest_processed_block = EXCLUDED.latest_processed_block,
				latest_block = EXCLUDED.latest_block,
				updated_at = now()
		`,
			int64(info.ChainID),
			int64(info.LatestProcessedBlock),
			int64(info.LatestBlock),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range infos {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// TransactionStatus returns the stored status for a transaction hash.
func (s *Store) TransactionStatus(ctx context.Context, txHash string) (model.MessageStatus, bool, error) {
	var status int16
	row := s.pool.QueryRow(ctx, `SELECT status FROM bridge_transactions WHERE tx_hash=$1`, txHash)
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return model.MessageStatus(status), true, nil
}
