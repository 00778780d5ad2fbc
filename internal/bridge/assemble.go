package bridge

import "bridgescope/internal/model"

// orderForDisplay returns txs newest first with every StatusNew transaction
// ahead of the rest. Relative order inside each group is kept.
func orderForDisplay(txs []model.BridgeTransaction) []model.BridgeTransaction {
	ordered := make([]model.BridgeTransaction, 0, len(txs))
	rest := make([]model.BridgeTransaction, 0, len(txs))
	for i := len(txs) - 1; i >= 0; i-- {
		if txs[i].Status == model.StatusNew {
			ordered = append(ordered, txs[i])
		} else {
			rest = append(rest, txs[i])
		}
	}
	return append(ordered, rest...)
}

func assemblePage(txs []model.BridgeTransaction, pagination model.PaginationInfo) *model.TransactionsPage {
	return &model.TransactionsPage{
		Transactions: orderForDisplay(txs),
		Pagination:   pagination,
	}
}
