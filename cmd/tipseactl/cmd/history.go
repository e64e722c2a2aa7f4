package cmd

import (
	"fmt"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tipsea/tipsea-solana/pkg/database/query"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/data/transaction"
)

var (
	historyLimit  uint64
	historyCursor string
	historyOrder  string
)

var historyCmd = &cobra.Command{
	Use:   "history [payer]",
	Short: "List the transactions paid for by an account, defaulting to the faucet",
	Args:  cobra.MaximumNArgs(1),
	RunE:  listHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().Uint64VarP(&historyLimit, "limit", "l", 100, "maximum number of transactions to list")
	historyCmd.Flags().StringVarP(&historyCursor, "cursor", "c", "", "base58 cursor of the last transaction already seen")
	historyCmd.Flags().StringVarP(&historyOrder, "order", "o", "asc", "ordering of results: asc or desc")
}

func listHistory(cmd *cobra.Command, args []string) error {
	payer := base58.Encode(bank.FaucetKey())
	if len(args) > 0 {
		decoded, err := base58.Decode(args[0])
		if err != nil || len(decoded) != 32 {
			return errors.Errorf("invalid payer: %s", args[0])
		}
		payer = args[0]
	}

	ordering, err := query.ToOrdering(historyOrder)
	if err != nil {
		return errors.Wrap(err, "invalid order")
	}

	opts := []query.Option{
		query.WithLimit(historyLimit),
		query.WithDirection(ordering),
	}
	if len(historyCursor) > 0 {
		cursor, err := base58.Decode(historyCursor)
		if err != nil {
			return errors.Wrap(err, "invalid cursor")
		}
		opts = append(opts, query.WithCursor(cursor))
	}

	records, err := dataProvider.GetTransactionHistory(cmd.Context(), payer, opts...)
	if err == transaction.ErrTransactionNotFound {
		fmt.Println("no transactions")
		return nil
	} else if err != nil {
		return errors.Wrap(err, "error loading history")
	}

	fmt.Printf("%-20s %-10s %-88s %s\n", "cursor", "slot", "signature", "result")
	for _, record := range records {
		result := "ok"
		if record.HasErrors && record.Error != nil {
			result = *record.Error
			if txnErr, err := solana.ParseTransactionError(*record.Error); err == nil {
				result = txnErr.Error()
			}
		}

		fmt.Printf(
			"%-20s %-10d %-88s %s\n",
			query.ToCursor(record.Id).ToBase58(),
			record.Slot,
			record.Signature,
			result,
		)
	}
	return nil
}
