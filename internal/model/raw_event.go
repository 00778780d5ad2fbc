package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RawEventRecord is a single MessageSent item as reported by the relayer API.
type RawEventRecord struct {
	ID                     uint64        `json:"id"`
	Name                   string        `json:"name"`
	Data                   RawEventData  `json:"data"`
	Status                 MessageStatus `json:"status"`
	ChainID                FlexUint64    `json:"chainID"`
	MsgHash                string        `json:"msgHash"`
	MessageOwner           string        `json:"messageOwner"`
	Event                  string        `json:"event"`
	Amount                 NumericString `json:"amount"`
	CanonicalTokenAddress  string        `json:"canonicalTokenAddress"`
	CanonicalTokenSymbol   string        `json:"canonicalTokenSymbol"`
	CanonicalTokenName     string        `json:"canonicalTokenName"`
	CanonicalTokenDecimals uint8         `json:"canonicalTokenDecimals"`
}

// RawEventData holds the decoded event payload and its log reference.
type RawEventData struct {
	Message RawMessage  `json:"Message"`
	Raw     RawEventLog `json:"Raw"`
}

// RawMessage mirrors the bridge Message struct as serialized by the relayer.
type RawMessage struct {
	ID            FlexUint64    `json:"Id"`
	To            string        `json:"To"`
	Data          string        `json:"Data"`
	Memo          string        `json:"Memo"`
	Owner         string        `json:"Owner"`
	Sender        string        `json:"Sender"`
	GasLimit      NumericString `json:"GasLimit"`
	CallValue     NumericString `json:"CallValue"`
	SrcChainID    FlexUint64    `json:"SrcChainId"`
	DestChainID   FlexUint64    `json:"DestChainId"`
	DepositValue  NumericString `json:"DepositValue"`
	ProcessingFee NumericString `json:"ProcessingFee"`
	RefundAddress string        `json:"RefundAddress"`
}

// RawEventLog references the chain log that produced the event.
type RawEventLog struct {
	TransactionHash string `json:"transactionHash"`
	Address         string `json:"address"`
}

// NumericString keeps the textual form of an integer field that the relayer
// may encode either as a JSON string or a JSON number.
type NumericString string

func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("numeric field: %w", err)
	}
	*n = NumericString(num.String())
	return nil
}

// FlexUint64 is an unsigned integer accepted as a JSON number or a decimal string.
type FlexUint64 uint64

func (f *FlexUint64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		if text == "" {
			*f = 0
			return nil
		}
	}
	val, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid uint64 %q: %w", text, err)
	}
	*f = FlexUint64(val)
	return nil
}

// EventsResponse is the paginated payload returned by the relayer /events endpoint.
type EventsResponse struct {
	Items      []RawEventRecord `json:"items"`
	Page       int              `json:"page"`
	Size       int              `json:"size"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
	First      bool             `json:"first"`
	Last       bool             `json:"last"`
	MaxPage    int              `json:"max_page"`
}

// PaginationInfo returns the feed's pagination fields unchanged.
func (r *EventsResponse) PaginationInfo() PaginationInfo {
	return PaginationInfo{
		Page:       r.Page,
		Size:       r.Size,
		Total:      r.Total,
		TotalPages: r.TotalPages,
		First:      r.First,
		Last:       r.Last,
		MaxPage:    r.MaxPage,
	}
}
