package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bridgescope/internal/model"
)

const exportAddress = "0x1111111111111111111111111111111111111111"

func readPageLines(t *testing.T, path string) []pageLine {
	t.Helper()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var lines []pageLine
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var line pageLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			t.Fatalf("line is not json: %v", err)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return lines
}

func TestJsonlStorageWritesOneLinePerPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "pages.jsonl")
	store := NewJsonlStorage(path)
	exportedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	chainID := uint64(31336)

	first := &model.TransactionsPage{
		Transactions: []model.BridgeTransaction{
			{Hash: "0x01", MsgHash: "0xa1", Status: model.StatusNew, Amount: big.NewInt(5), SrcChainID: 31336, DestChainID: 167001},
			{Hash: "0x02", MsgHash: "0xa2", Status: model.StatusDone, Amount: big.NewInt(7)},
		},
		Pagination: model.PaginationInfo{Page: 0, Size: 2, Total: 5, TotalPages: 3, First: true},
	}
	if err := store.PutPage(context.Background(), PageExport{Address: exportAddress, ChainID: &chainID, ExportedAt: exportedAt, Page: first}); err != nil {
		t.Fatalf("put first page: %v", err)
	}

	second := &model.TransactionsPage{Pagination: model.PaginationInfo{Page: 1, Size: 2, Total: 5, TotalPages: 3}}
	if err := store.PutPage(context.Background(), PageExport{Address: exportAddress, ExportedAt: exportedAt, Page: second}); err != nil {
		t.Fatalf("put second page: %v", err)
	}

	lines := readPageLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	if lines[0].Address != exportAddress || lines[0].ChainID == nil || *lines[0].ChainID != chainID {
		t.Fatalf("first line query mismatch: %+v", lines[0])
	}
	if !lines[0].ExportedAt.Equal(exportedAt) {
		t.Fatalf("exported_at mismatch: %v", lines[0].ExportedAt)
	}
	if lines[0].Pagination != first.Pagination {
		t.Fatalf("pagination mismatch: %+v", lines[0].Pagination)
	}
	if len(lines[0].Transactions) != 2 || lines[0].Transactions[1].Hash != "0x02" || lines[0].Transactions[0].Amount.Int64() != 5 {
		t.Fatalf("transactions mismatch: %+v", lines[0].Transactions)
	}

	if lines[1].ChainID != nil || lines[1].Pagination.Page != 1 {
		t.Fatalf("second line mismatch: %+v", lines[1])
	}
	if lines[1].Transactions == nil || len(lines[1].Transactions) != 0 {
		t.Fatalf("empty page should export an empty list: %+v", lines[1].Transactions)
	}
}

func TestJsonlStorageRejectsMissingPage(t *testing.T) {
	store := NewJsonlStorage(filepath.Join(t.TempDir(), "pages.jsonl"))
	if err := store.PutPage(context.Background(), PageExport{Address: exportAddress}); err == nil {
		t.Fatalf("expected error for missing page")
	}
}
