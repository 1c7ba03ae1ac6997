package main

import (
	"github.com/shirkaty/portal/internal/guard"
	"github.com/spf13/cobra"
)

var transactionsCmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"txn"},
	Short:   "View payments and fees",
}

var transactionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/transactions"); err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")

		transactions, err := portalClient.ListTransactions(cmd.Context(), status)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(transactions)
		} else {
			printTransactionTable(transactions)
		}
		return nil
	},
}

var transactionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a transaction and its timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/transactions"); err != nil {
			return err
		}
		txn, err := portalClient.GetTransaction(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(txn)
		} else {
			printTransaction(txn)
		}
		return nil
	},
}

func init() {
	transactionsListCmd.Flags().StringP("status", "s", "", "filter by status")

	transactionsCmd.AddCommand(transactionsListCmd)
	transactionsCmd.AddCommand(transactionsShowCmd)
}
