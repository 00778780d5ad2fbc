package bridge

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"bridgescope/internal/model"
)

// ChainReader is the read-only chain access the enrichment step needs.
// TransactionReceipt must return (nil, nil) for a transaction that is not mined yet.
type ChainReader interface {
	TransactionReceipt(ctx context.Context, chainID uint64, hash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, chainID uint64, msg ethereum.CallMsg) ([]byte, error)
}

func readContract(ctx context.Context, reader ChainReader, chainID uint64, contract common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &contract, Data: data}
	resp, err := reader.CallContract(ctx, chainID, msg)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return values, nil
}

func readMessageStatus(ctx context.Context, reader ChainReader, chainID uint64, bridgeAddress common.Address, msgHash common.Hash) (model.MessageStatus, error) {
	parsed, err := BridgeABI()
	if err != nil {
		return 0, fmt.Errorf("parse bridge abi: %w", err)
	}
	values, err := readContract(ctx, reader, chainID, bridgeAddress, parsed, "getMessageStatus", [32]byte(msgHash))
	if err != nil {
		return 0, err
	}
	raw, err := asUint8(values[0])
	if err != nil {
		return 0, fmt.Errorf("message status: %w", err)
	}
	return model.MessageStatusFromChain(raw)
}

func parseHash(input string) (common.Hash, error) {
	data, err := hexutil.Decode(input)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid hash %q: %w", input, err)
	}
	if len(data) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid hash length %q", input)
	}
	return common.BytesToHash(data), nil
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
