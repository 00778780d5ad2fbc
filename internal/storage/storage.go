package storage

import (
	"context"
	"time"

	"bridgescope/internal/model"
)

// PageExport is one reconciled page together with the query that produced it.
type PageExport struct {
	Address    string
	ChainID    *uint64
	ExportedAt time.Time
	Page       *model.TransactionsPage
}

// Storage defines a sink for reconciled bridge pages.
type Storage interface {
	PutPage(ctx context.Context, export PageExport) error
}
