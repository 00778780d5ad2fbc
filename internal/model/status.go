package model

import "fmt"

// MessageStatus is the processing state of a bridge message.
// Non-negative values are the ones stored by the bridge contract.
type MessageStatus int

const (
	StatusProcessing MessageStatus = -2
	StatusPending    MessageStatus = -1
	StatusNew        MessageStatus = 0
	StatusRetriable  MessageStatus = 1
	StatusDone       MessageStatus = 2
	StatusFailed     MessageStatus = 3
)

func (s MessageStatus) String() string {
	switch s {
	case StatusProcessing:
		return "processing"
	case StatusPending:
		return "pending"
	case StatusNew:
		return "new"
	case StatusRetriable:
		return "retriable"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// MessageStatusFromChain validates a raw getMessageStatus return value.
func MessageStatusFromChain(value uint8) (MessageStatus, error) {
	status := MessageStatus(value)
	switch status {
	case StatusNew, StatusRetriable, StatusDone, StatusFailed:
		return status, nil
	default:
		return 0, fmt.Errorf("unknown message status %d", value)
	}
}
