package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Contracts lists the bridge-related contract addresses deployed on a chain.
type Contracts struct {
	BridgeAddress         common.Address
	TokenVaultAddress     common.Address
	CrossChainSyncAddress common.Address
	SignalServiceAddress  common.Address
}

// Chain is a single registry entry.
type Chain struct {
	ID        uint64
	Name      string
	RPCURL    string
	Supported bool
	Contracts Contracts
}

// Registry is a read-only table of chains and their contracts.
// Chains may have contracts registered without being supported for bridging.
type Registry struct {
	chains map[uint64]Chain
}

// New builds a Registry, rejecting duplicate chain ids.
func New(chains []Chain) (*Registry, error) {
	table := make(map[uint64]Chain, len(chains))
	for _, c := range chains {
		if c.ID == 0 {
			return nil, fmt.Errorf("chain %q: id is required", c.Name)
		}
		if _, ok := table[c.ID]; ok {
			return nil, fmt.Errorf("duplicate chain id %d", c.ID)
		}
		table[c.ID] = c
	}
	return &Registry{chains: table}, nil
}

// ContractsFor returns the contract addresses registered for chainID.
func (r *Registry) ContractsFor(chainID uint64) (Contracts, bool) {
	c, ok := r.chains[chainID]
	if !ok {
		return Contracts{}, false
	}
	return c.Contracts, true
}

// IsSupported reports whether chainID is a supported bridging chain.
func (r *Registry) IsSupported(chainID uint64) bool {
	c, ok := r.chains[chainID]
	return ok && c.Supported
}

// Chain returns the full entry for chainID.
func (r *Registry) Chain(chainID uint64) (Chain, bool) {
	c, ok := r.chains[chainID]
	return c, ok
}

// Chains returns all entries ordered by chain id.
func (r *Registry) Chains() []Chain {
	out := make([]Chain, 0, len(r.chains))
	for _, c := range r.chains {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsBridgeAddress reports whether address is the bridge registered for chainID.
// The comparison is case-insensitive.
func (r *Registry) IsBridgeAddress(chainID uint64, address string) bool {
	c, ok := r.chains[chainID]
	if !ok || c.Contracts.BridgeAddress == (common.Address{}) {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(address), c.Contracts.BridgeAddress.Hex())
}
