package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"bridgescope/internal/model"
)

// pageLine is the JSONL shape of an exported page.
type pageLine struct {
	Address      string                    `json:"address"`
	ChainID      *uint64                   `json:"chain_id,omitempty"`
	ExportedAt   time.Time                 `json:"exported_at"`
	Pagination   model.PaginationInfo      `json:"pagination"`
	Transactions []model.BridgeTransaction `json:"transactions"`
}

// JsonlStorage appends one line per exported page, so repeated runs over
// successive pages build a history of what the relayer reported.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

func (s *JsonlStorage) PutPage(_ context.Context, export PageExport) error {
	if export.Page == nil {
		return fmt.Errorf("export %s: no page", export.Address)
	}

	line := pageLine{
		Address:      export.Address,
		ChainID:      export.ChainID,
		ExportedAt:   export.ExportedAt.UTC(),
		Pagination:   export.Page.Pagination,
		Transactions: export.Page.Transactions,
	}
	if line.Transactions == nil {
		line.Transactions = []model.BridgeTransaction{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open export file: %w", err)
	}

	// Encode writes the trailing newline.
	if err := json.NewEncoder(file).Encode(line); err != nil {
		file.Close()
		return fmt.Errorf("write page %d for %s: %w", line.Pagination.Page, export.Address, err)
	}
	return file.Close()
}
