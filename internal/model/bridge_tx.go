package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
)

// CanonicalToken describes the home representation of a bridged asset.
type CanonicalToken struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

// BridgeTransaction is a reconciled, display-ready bridge transfer.
type BridgeTransaction struct {
	Message        Message        `json:"message"`
	MsgHash        string         `json:"msg_hash"`
	Status         MessageStatus  `json:"status"`
	Amount         *big.Int       `json:"amount"`
	Symbol         string         `json:"symbol"`
	Decimals       uint8          `json:"decimals"`
	SrcChainID     uint64         `json:"src_chain_id"`
	DestChainID    uint64         `json:"dest_chain_id"`
	Hash           string         `json:"hash"`
	From           string         `json:"from"`
	CanonicalToken CanonicalToken `json:"canonical_token"`
	Receipt        *types.Receipt `json:"receipt,omitempty"`
}

// PaginationInfo is the relayer's pagination metadata, reported as-is.
type PaginationInfo struct {
	Page       int  `json:"page"`
	Size       int  `json:"size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	First      bool `json:"first"`
	Last       bool `json:"last"`
	MaxPage    int  `json:"max_page"`
}

// TransactionsPage is one reconciled page of bridge transactions.
type TransactionsPage struct {
	Transactions []BridgeTransaction `json:"transactions"`
	Pagination   PaginationInfo      `json:"pagination"`
}

// BlockInfo is the relayer's indexing progress on a chain.
type BlockInfo struct {
	ChainID              uint64 `json:"chainID"`
	LatestProcessedBlock uint64 `json:"latestProcessedBlock"`
	LatestBlock          uint64 `json:"latestBlock"`
}
