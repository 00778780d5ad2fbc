package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"bridgescope/internal/registry"
)

// MultiClient routes reads to the RPC client of the requested chain.
type MultiClient struct {
	clients map[uint64]*Client
}

// DialAll connects to every registry chain that has an RPC URL and checks
// that each endpoint reports the expected chain id.
func DialAll(ctx context.Context, chains []registry.Chain, logger *zap.Logger) (*MultiClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &MultiClient{clients: make(map[uint64]*Client, len(chains))}
	for _, c := range chains {
		if c.RPCURL == "" {
			logger.Warn("chain has no rpc url", zap.Uint64("chain_id", c.ID), zap.String("name", c.Name))
			continue
		}

		client, err := NewClient(ctx, c.RPCURL)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("connect rpc for chain %d: %w", c.ID, err)
		}

		reported, err := client.GetChainID(ctx)
		if err != nil {
			client.Close()
			m.Close()
			return nil, fmt.Errorf("get chain id for chain %d: %w", c.ID, err)
		}
		if !reported.IsUint64() || reported.Uint64() != c.ID {
			client.Close()
			m.Close()
			return nil, fmt.Errorf("rpc for chain %d reports chain id %s", c.ID, reported)
		}

		m.clients[c.ID] = client
		logger.Debug("chain connected", zap.Uint64("chain_id", c.ID), zap.String("name", c.Name))
	}
	return m, nil
}

// NewMultiClient wraps already connected clients keyed by chain id.
func NewMultiClient(clients map[uint64]*Client) *MultiClient {
	if clients == nil {
		clients = make(map[uint64]*Client)
	}
	return &MultiClient{clients: clients}
}

// Close closes every underlying client.
func (m *MultiClient) Close() {
	for _, c := range m.clients {
		c.Close()
	}
}

func (m *MultiClient) client(chainID uint64) (*Client, error) {
	c, ok := m.clients[chainID]
	if !ok {
		return nil, fmt.Errorf("no rpc client for chain %d", chainID)
	}
	return c, nil
}

// TransactionReceipt returns the receipt of hash on chainID, or nil if not mined.
func (m *MultiClient) TransactionReceipt(ctx context.Context, chainID uint64, hash common.Hash) (*types.Receipt, error) {
	c, err := m.client(chainID)
	if err != nil {
		return nil, err
	}
	return c.TransactionReceipt(ctx, hash)
}

// CallContract performs an eth_call at the latest block on chainID.
func (m *MultiClient) CallContract(ctx context.Context, chainID uint64, msg ethereum.CallMsg) ([]byte, error) {
	c, err := m.client(chainID)
	if err != nil {
		return nil, err
	}
	return c.CallContract(ctx, msg, nil)
}

// LatestBlockNumber returns the head block number of chainID.
func (m *MultiClient) LatestBlockNumber(ctx context.Context, chainID uint64) (uint64, error) {
	c, err := m.client(chainID)
	if err != nil {
		return 0, err
	}
	return c.LatestBlockNumber(ctx)
}
