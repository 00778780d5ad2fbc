package postgres

import (
	"context"
	"math/big"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"

	"bridgescope/internal/model"
	"bridgescope/internal/storage"
)

// newTestStore connects to BRIDGESCOPE_TEST_PG_DSN, skipping when unset.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("BRIDGESCOPE_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("BRIDGESCOPE_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(store.Close)

	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if _, err := store.pool.Exec(ctx, "TRUNCATE TABLE bridge_transactions, relayer_block_info"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return store
}

var _ storage.Storage = (*Store)(nil)

func TestNewStoreRequiresDSN(t *testing.T) {
	if _, err := NewStore(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestPutTransactionsUpsertsStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tx := model.BridgeTransaction{
		Hash:        "0x01",
		MsgHash:     "0xa1",
		Status:      model.StatusNew,
		From:        "0x1111111111111111111111111111111111111111",
		SrcChainID:  31336,
		DestChainID: 167001,
		Amount:      new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil),
		Symbol:      "ETH",
		Decimals:    18,
		Message:     model.Message{ID: 9},
		Receipt:     &types.Receipt{BlockNumber: big.NewInt(123)},
	}
	if err := store.PutTransactions(ctx, []model.BridgeTransaction{tx}); err != nil {
		t.Fatalf("put: %v", err)
	}

	tx.Status = model.StatusDone
	page := &model.TransactionsPage{Transactions: []model.BridgeTransaction{tx}}
	if err := store.PutPage(ctx, storage.PageExport{Address: tx.From, Page: page}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	status, ok, err := store.TransactionStatus(ctx, "0x01")
	if err != nil || !ok {
		t.Fatalf("status lookup: ok=%v err=%v", ok, err)
	}
	if status != model.StatusDone {
		t.Fatalf("status not updated: %v", status)
	}

	if _, ok, err := store.TransactionStatus(ctx, "0xmissing"); err != nil || ok {
		t.Fatalf("expected missing row: ok=%v err=%v", ok, err)
	}
}

func TestUpsertBlockInfo(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	infos := map[uint64]model.BlockInfo{
		31336:  {ChainID: 31336, LatestProcessedBlock: 10, LatestBlock: 12},
		167001: {ChainID: 167001, LatestProcessedBlock: 5, LatestBlock: 5},
	}
	if err := store.UpsertBlockInfo(ctx, infos); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	var processed int64
	row := store.pool.QueryRow(ctx, `SELECT latest_processed_block FROM relayer_block_info WHERE chain_id=$1`, int64(31336))
	if err := row.Scan(&processed); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if processed != 10 {
		t.Fatalf("processed block mismatch: %d", processed)
	}
}
