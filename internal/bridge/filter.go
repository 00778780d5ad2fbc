package bridge

import (
	"go.uber.org/zap"

	"bridgescope/internal/metrics"
	"bridgescope/internal/model"
	"bridgescope/internal/registry"
)

// FilterRecords drops duplicate, incomplete, wrong-bridge and unsupported-chain
// records, preserving the order of the survivors.
//
// A raw transaction hash is remembered on first sight even when that record is
// dropped for another reason, so a later duplicate can never take its place.
func FilterRecords(items []model.RawEventRecord, reg *registry.Registry, logger *zap.Logger, m *metrics.Metrics) []model.RawEventRecord {
	if logger == nil {
		logger = zap.NewNop()
	}

	seen := make(map[string]struct{}, len(items))
	filtered := make([]model.RawEventRecord, 0, len(items))
	for _, item := range items {
		raw := item.Data.Raw
		msg := item.Data.Message

		reason := ""
		if _, ok := seen[raw.TransactionHash]; ok {
			reason = metrics.DropDuplicate
		} else {
			seen[raw.TransactionHash] = struct{}{}
		}

		switch {
		case reason != "":
		case raw.TransactionHash == "" || raw.Address == "":
			reason = metrics.DropIncomplete
		case !reg.IsBridgeAddress(uint64(item.ChainID), raw.Address):
			reason = metrics.DropWrongBridge
		case !reg.IsSupported(uint64(msg.SrcChainID)) || !reg.IsSupported(uint64(msg.DestChainID)):
			reason = metrics.DropUnsupported
		}

		if reason != "" {
			m.RecordRecordDropped(reason)
			logger.Debug("drop record",
				zap.String("reason", reason),
				zap.String("tx_hash", raw.TransactionHash),
				zap.String("address", raw.Address),
				zap.Uint64("chain_id", uint64(item.ChainID)),
			)
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}
