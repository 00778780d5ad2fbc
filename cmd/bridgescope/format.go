package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"text/tabwriter"

	"bridgescope/internal/model"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, page *model.TransactionsPage) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HASH\tSTATUS\tROUTE\tAMOUNT\tSYMBOL\tBLOCK")
	for _, tx := range page.Transactions {
		block := "-"
		if tx.Receipt != nil && tx.Receipt.BlockNumber != nil {
			block = tx.Receipt.BlockNumber.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d->%d\t%s\t%s\t%s\n",
			tx.Hash,
			tx.Status,
			tx.SrcChainID,
			tx.DestChainID,
			formatTokenAmount(tx.Amount, tx.Decimals),
			tx.Symbol,
			block,
		)
	}
	fmt.Fprintf(tw, "\npage %d/%d\ttotal %d\n", page.Pagination.Page, page.Pagination.TotalPages, page.Pagination.Total)
	return tw.Flush()
}

// formatTokenAmount renders a raw integer amount with decimals applied.
func formatTokenAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	rat := new(big.Rat).SetFrac(abs, denom)
	text := rat.FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}
