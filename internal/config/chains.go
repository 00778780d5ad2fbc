package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"bridgescope/internal/registry"
)

// ChainConfig describes one chain and its bridge contracts.
type ChainConfig struct {
	ID             uint64 `mapstructure:"id"`
	Name           string `mapstructure:"name"`
	RPC            string `mapstructure:"rpc"`
	Supported      bool   `mapstructure:"supported"`
	Bridge         string `mapstructure:"bridge"`
	TokenVault     string `mapstructure:"token_vault"`
	CrossChainSync string `mapstructure:"cross_chain_sync"`
	SignalService  string `mapstructure:"signal_service"`
}

// layerDefaults lists the flat per-layer key prefixes and whether the layer
// takes part in bridging unless configured otherwise.
var layerDefaults = []struct {
	prefix    string
	supported bool
}{
	{prefix: "l1", supported: true},
	{prefix: "l2", supported: true},
	{prefix: "l3", supported: false},
}

// loadChains reads the "chains" list and then the flat l1-*, l2-*, l3-* keys.
// A flat layer is only added when its chain id is set.
func loadChains(v *viper.Viper) ([]ChainConfig, error) {
	var chains []ChainConfig
	if v.IsSet("chains") {
		if err := v.UnmarshalKey("chains", &chains); err != nil {
			return nil, fmt.Errorf("parse chains: %w", err)
		}
	}

	for _, layer := range layerDefaults {
		key := func(name string) string { return layer.prefix + "-" + name }
		id := v.GetUint64(key("chain-id"))
		if id == 0 {
			continue
		}
		supported := layer.supported
		if v.IsSet(key("supported")) {
			supported = v.GetBool(key("supported"))
		}
		chains = append(chains, ChainConfig{
			ID:             id,
			Name:           v.GetString(key("chain-name")),
			RPC:            v.GetString(key("rpc")),
			Supported:      supported,
			Bridge:         v.GetString(key("bridge")),
			TokenVault:     v.GetString(key("token-vault")),
			CrossChainSync: v.GetString(key("cross-chain-sync")),
			SignalService:  v.GetString(key("signal-service")),
		})
	}
	return chains, nil
}

// Registry validates the chain table and builds a registry from it.
func (c Config) Registry() (*registry.Registry, error) {
	chains := make([]registry.Chain, 0, len(c.Chains))
	for _, cc := range c.Chains {
		contracts, err := parseContracts(cc)
		if err != nil {
			return nil, fmt.Errorf("chain %d: %w", cc.ID, err)
		}
		chains = append(chains, registry.Chain{
			ID:        cc.ID,
			Name:      cc.Name,
			RPCURL:    cc.RPC,
			Supported: cc.Supported,
			Contracts: contracts,
		})
	}
	return registry.New(chains)
}

func parseContracts(cc ChainConfig) (registry.Contracts, error) {
	var contracts registry.Contracts
	fields := []struct {
		name  string
		input string
		out   *common.Address
	}{
		{name: "bridge", input: cc.Bridge, out: &contracts.BridgeAddress},
		{name: "token vault", input: cc.TokenVault, out: &contracts.TokenVaultAddress},
		{name: "cross chain sync", input: cc.CrossChainSync, out: &contracts.CrossChainSyncAddress},
		{name: "signal service", input: cc.SignalService, out: &contracts.SignalServiceAddress},
	}
	for _, f := range fields {
		input := strings.TrimSpace(f.input)
		if input == "" {
			continue
		}
		if !common.IsHexAddress(input) {
			return registry.Contracts{}, fmt.Errorf("invalid %s address: %s", f.name, input)
		}
		*f.out = common.HexToAddress(input)
	}
	if contracts.BridgeAddress == (common.Address{}) {
		return registry.Contracts{}, fmt.Errorf("bridge address is required")
	}
	return contracts, nil
}
