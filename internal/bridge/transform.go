package bridge

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"bridgescope/internal/model"
)

const noCallData = "0x"

// transformedTx is a filtered feed record reshaped into the transaction model,
// before any chain state has been read.
type transformedTx struct {
	Status         model.MessageStatus
	Amount         *big.Int
	Symbol         string
	Hash           string
	From           string
	SrcChainID     uint64
	DestChainID    uint64
	MsgHash        string
	CanonicalToken model.CanonicalToken
	Message        model.Message
}

// transformRecord maps a filtered record. Numeric parse failures are returned
// as errors; undecodable call data is reported as empty.
func transformRecord(item model.RawEventRecord, logger *zap.Logger) (transformedTx, error) {
	msg := item.Data.Message

	data, ok := decodeCallData(msg.Data)
	if !ok {
		logger.Debug("undecodable call data",
			zap.String("tx_hash", item.Data.Raw.TransactionHash),
			zap.Int("length", len(msg.Data)),
		)
	}

	amount, err := parseBigInt("amount", item.Amount)
	if err != nil {
		return transformedTx{}, err
	}
	gasLimit, err := parseBigInt("gas limit", msg.GasLimit)
	if err != nil {
		return transformedTx{}, err
	}
	callValue, err := parseBigInt("call value", msg.CallValue)
	if err != nil {
		return transformedTx{}, err
	}
	depositValue, err := parseBigInt("deposit value", msg.DepositValue)
	if err != nil {
		return transformedTx{}, err
	}
	processingFee, err := parseBigInt("processing fee", msg.ProcessingFee)
	if err != nil {
		return transformedTx{}, err
	}

	return transformedTx{
		Status:      item.Status,
		Amount:      amount,
		Symbol:      item.CanonicalTokenSymbol,
		Hash:        item.Data.Raw.TransactionHash,
		From:        item.MessageOwner,
		SrcChainID:  uint64(msg.SrcChainID),
		DestChainID: uint64(msg.DestChainID),
		MsgHash:     item.MsgHash,
		CanonicalToken: model.CanonicalToken{
			Address:  item.CanonicalTokenAddress,
			Symbol:   item.CanonicalTokenSymbol,
			Name:     item.CanonicalTokenName,
			Decimals: item.CanonicalTokenDecimals,
		},
		Message: model.Message{
			ID:            uint64(msg.ID),
			Sender:        msg.Sender,
			Owner:         msg.Owner,
			To:            msg.To,
			Data:          data,
			Memo:          msg.Memo,
			GasLimit:      gasLimit,
			CallValue:     callValue,
			DepositValue:  depositValue,
			ProcessingFee: processingFee,
			RefundAddress: msg.RefundAddress,
			SrcChainID:    uint64(msg.SrcChainID),
			DestChainID:   uint64(msg.DestChainID),
		},
	}, nil
}

// decodeCallData converts the relayer's base64 call data into 0x-prefixed hex.
// Padded, unpadded and URL-safe alphabets are accepted, as is whitespace.
// An empty value and the bare "0x" marker both mean no data; anything else
// that does not decode also yields "0x" with ok set to false.
func decodeCallData(data string) (string, bool) {
	if data == "" || data == noCallData {
		return noCallData, true
	}

	normalized := strings.Map(func(r rune) rune {
		switch {
		case r == '-':
			return '+'
		case r == '_':
			return '/'
		case r == '=' || unicode.IsSpace(r):
			return -1
		}
		return r
	}, data)

	raw, err := base64.RawStdEncoding.DecodeString(normalized)
	if err != nil {
		return noCallData, false
	}
	return hexutil.Encode(raw), true
}

// parseBigInt parses a decimal or 0x-prefixed integer. An empty value is zero.
// Exponent forms such as "1e21" are accepted when they denote an integer.
func parseBigInt(field string, value model.NumericString) (*big.Int, error) {
	text := strings.TrimSpace(string(value))
	if text == "" {
		return new(big.Int), nil
	}

	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		n, ok := new(big.Int).SetString(text[2:], 16)
		if !ok {
			return nil, fmt.Errorf("parse %s: invalid integer %q", field, text)
		}
		return n, nil
	}

	if n, ok := new(big.Int).SetString(text, 10); ok {
		return n, nil
	}
	if strings.ContainsAny(text, "eE") {
		if r, ok := new(big.Rat).SetString(text); ok && r.IsInt() {
			return new(big.Int).Set(r.Num()), nil
		}
	}
	return nil, fmt.Errorf("parse %s: invalid integer %q", field, text)
}
