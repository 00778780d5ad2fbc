package model

import "math/big"

// Message is the canonical cross-chain bridge message.
type Message struct {
	ID            uint64   `json:"id"`
	Sender        string   `json:"sender"`
	Owner         string   `json:"owner"`
	To            string   `json:"to"`
	Data          string   `json:"data"`
	Memo          string   `json:"memo"`
	GasLimit      *big.Int `json:"gas_limit"`
	CallValue     *big.Int `json:"call_value"`
	DepositValue  *big.Int `json:"deposit_value"`
	ProcessingFee *big.Int `json:"processing_fee"`
	RefundAddress string   `json:"refund_address"`
	SrcChainID    uint64   `json:"src_chain_id"`
	DestChainID   uint64   `json:"dest_chain_id"`
}
