package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"bridgescope/internal/model"
	"bridgescope/internal/registry"
)

const (
	l1ChainID = uint64(31336)
	l2ChainID = uint64(167001)
	l3ChainID = uint64(167002)

	owner = "0x1111111111111111111111111111111111111111"
)

var (
	l1Bridge = common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	l2Bridge = common.HexToAddress("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
	l3Bridge = common.HexToAddress("0xCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC")
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New([]registry.Chain{
		{ID: l1ChainID, Name: "L1", Supported: true, Contracts: registry.Contracts{BridgeAddress: l1Bridge}},
		{ID: l2ChainID, Name: "L2", Supported: true, Contracts: registry.Contracts{BridgeAddress: l2Bridge}},
		{ID: l3ChainID, Name: "L3", Supported: false, Contracts: registry.Contracts{BridgeAddress: l3Bridge}},
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func hashOf(n int64) string {
	return common.BigToHash(big.NewInt(n)).Hex()
}

// rawRecord builds an L1 -> L2 MessageSent record emitted by the L1 bridge.
func rawRecord(txHash, msgHash string) model.RawEventRecord {
	return model.RawEventRecord{
		Name:         "MessageSent",
		Status:       model.StatusNew,
		ChainID:      model.FlexUint64(l1ChainID),
		MsgHash:      msgHash,
		MessageOwner: owner,
		Event:        "MessageSent",
		Amount:       "1000",
		Data: model.RawEventData{
			Message: model.RawMessage{
				ID:            1,
				To:            owner,
				Owner:         owner,
				Sender:        l1Bridge.Hex(),
				GasLimit:      "140000",
				CallValue:     "0",
				DepositValue:  "1000",
				ProcessingFee: "10",
				SrcChainID:    model.FlexUint64(l1ChainID),
				DestChainID:   model.FlexUint64(l2ChainID),
				RefundAddress: owner,
			},
			Raw: model.RawEventLog{
				TransactionHash: txHash,
				Address:         l1Bridge.Hex(),
			},
		},
		CanonicalTokenAddress:  "0x0000000000000000000000000000000000000000",
		CanonicalTokenSymbol:   "ETH",
		CanonicalTokenDecimals: 18,
	}
}

type contractCall struct {
	chainID uint64
	to      common.Address
	method  string
}

// fakeReader serves receipts and contract reads from in-memory tables.
type fakeReader struct {
	mu sync.Mutex

	receipts    map[common.Hash]*types.Receipt
	receiptErrs map[common.Hash]error
	statuses    map[common.Hash]uint8
	statusErr   error
	tokens      map[common.Address]model.TokenMeta

	receiptChains []uint64
	calls         []contractCall
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		receipts:    make(map[common.Hash]*types.Receipt),
		receiptErrs: make(map[common.Hash]error),
		statuses:    make(map[common.Hash]uint8),
		tokens:      make(map[common.Address]model.TokenMeta),
	}
}

func (f *fakeReader) mine(txHash string) {
	h := common.HexToHash(txHash)
	f.receipts[h] = &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: h}
}

func (f *fakeReader) TransactionReceipt(ctx context.Context, chainID uint64, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receiptChains = append(f.receiptChains, chainID)
	if err, ok := f.receiptErrs[hash]; ok {
		return nil, err
	}
	return f.receipts[hash], nil
}

func (f *fakeReader) CallContract(ctx context.Context, chainID uint64, msg ethereum.CallMsg) ([]byte, error) {
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, errors.New("malformed call")
	}

	bridgeABI, err := BridgeABI()
	if err != nil {
		return nil, err
	}
	erc20ABI, err := erc20ABIStringInstance()
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	selector := msg.Data[:4]
	statusMethod := bridgeABI.Methods["getMessageStatus"]
	if bytes.Equal(selector, statusMethod.ID) {
		f.calls = append(f.calls, contractCall{chainID: chainID, to: *msg.To, method: "getMessageStatus"})
		if f.statusErr != nil {
			return nil, f.statusErr
		}
		args, err := statusMethod.Inputs.Unpack(msg.Data[4:])
		if err != nil {
			return nil, err
		}
		msgHash := common.Hash(args[0].([32]byte))
		status, ok := f.statuses[msgHash]
		if !ok {
			return nil, fmt.Errorf("execution reverted: unknown message %s", msgHash.Hex())
		}
		return statusMethod.Outputs.Pack(status)
	}

	meta, ok := f.tokens[*msg.To]
	if !ok {
		return nil, fmt.Errorf("no contract at %s", msg.To.Hex())
	}
	for name, method := range erc20ABI.Methods {
		if !bytes.Equal(selector, method.ID) {
			continue
		}
		f.calls = append(f.calls, contractCall{chainID: chainID, to: *msg.To, method: name})
		switch name {
		case "decimals":
			return method.Outputs.Pack(meta.Decimals)
		case "symbol":
			return method.Outputs.Pack(meta.Symbol)
		case "name":
			return method.Outputs.Pack(meta.Name)
		}
	}
	return nil, errors.New("unknown selector")
}

func (f *fakeReader) callsFor(method string) []contractCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []contractCall
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}
