package main

import (
	"fmt"

	"github.com/shirkaty/portal/internal/client"
	"github.com/shirkaty/portal/internal/guard"
	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Back-office commands (admin role required)",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Run the root setup first; child PersistentPreRunE overrides it.
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return checkAccess(guard.AdminOnly, "/admin")
	},
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := portalClient.GetStats(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(stats)
			return nil
		}
		fmt.Printf("Users:            %d\n", stats.TotalUsers)
		fmt.Printf("Tickets:          %d\n", stats.TotalTickets)
		fmt.Printf("Pending tickets:  %d\n", stats.PendingTickets)
		fmt.Printf("Documents:        %d\n", stats.TotalDocuments)
		return nil
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List portal accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		limit, _ := cmd.Flags().GetInt("limit")

		resp, err := portalClient.ListUsers(cmd.Context(), &client.ListUsersRequest{
			Search: search,
			Limit:  limit,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp.Users)
		} else {
			printUserTable(resp.Users, resp.Total)
		}
		return nil
	},
}

var adminTicketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "List every ticket in the queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetStringSlice("status")

		resp, err := portalClient.ListAllTickets(cmd.Context(), &client.ListTicketsRequest{Status: status})
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp.Tickets)
		} else {
			printTicketTable(resp.Tickets, resp.Total)
		}
		return nil
	},
}

var adminReplyCmd = &cobra.Command{
	Use:   "reply <ticket-id> <message>",
	Short: "Reply to a ticket as the support team",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := portalClient.ReplyTicket(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Replied with message %s (owner notified)\n", msg.ID)
		return nil
	},
}

var adminDocumentsCmd = &cobra.Command{
	Use:   "documents <id> --status <status>",
	Short: "Update a document request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		if status == "" {
			return fmt.Errorf("--status is required")
		}

		doc, err := portalClient.UpdateDocument(cmd.Context(), args[0], &client.UpdateDocumentRequest{
			Status: &status,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Document %s is now %s\n", doc.ID, doc.Status)
		return nil
	},
}

var adminCompaniesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List all companies",
	RunE: func(cmd *cobra.Command, args []string) error {
		companies, err := portalClient.ListCompanies(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(companies)
			return nil
		}
		for _, c := range companies {
			printCompany(c)
			fmt.Println()
		}
		return nil
	},
}

var adminCompanyUpdateCmd = &cobra.Command{
	Use:   "company <id>",
	Short: "Record formation progress on a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &client.UpdateCompanyRequest{}
		if cmd.Flags().Changed("name") {
			v, _ := cmd.Flags().GetString("name")
			req.Name = &v
		}
		if cmd.Flags().Changed("number") {
			v, _ := cmd.Flags().GetString("number")
			req.Number = &v
		}
		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			req.Status = &v
		}
		if cmd.Flags().Changed("incorporated") {
			v, _ := cmd.Flags().GetString("incorporated")
			req.IncorporatedAt = &v
		}

		company, err := portalClient.UpdateCompany(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}
		printCompany(company)
		return nil
	},
}

var adminSubscriptionCmd = &cobra.Command{
	Use:   "subscription <company-id>",
	Short: "Set a company's subscription plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, _ := cmd.Flags().GetString("plan")
		price, _ := cmd.Flags().GetInt64("price")
		status, _ := cmd.Flags().GetString("status")
		renewal, _ := cmd.Flags().GetString("renewal")

		sub, err := portalClient.SetSubscription(cmd.Context(), args[0], &client.SetSubscriptionRequest{
			Plan:        plan,
			Price:       price,
			Status:      status,
			RenewalDate: renewal,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Subscription set: %s at %s/year, renews %s\n",
			sub.Plan, formatPence(sub.Price), sub.RenewalDate.Format("2006-01-02"))
		return nil
	},
}

var adminTxnCreateCmd = &cobra.Command{
	Use:   "txn-create <user-id>",
	Short: "Open a transaction for a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		txnType, _ := cmd.Flags().GetString("type")
		amount, _ := cmd.Flags().GetInt64("amount")
		description, _ := cmd.Flags().GetString("description")

		txn, err := portalClient.CreateTransaction(cmd.Context(), &client.CreateTransactionRequest{
			UserID:      args[0],
			Type:        txnType,
			Amount:      amount,
			Description: description,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created transaction %s (reference %s)\n", txn.ID, txn.Reference)
		return nil
	},
}

var adminTxnUpdateCmd = &cobra.Command{
	Use:   "txn-update <id>",
	Short: "Update a transaction's status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &client.UpdateTransactionRequest{}
		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			req.Status = &v
		}
		if cmd.Flags().Changed("amount") {
			v, _ := cmd.Flags().GetInt64("amount")
			req.Amount = &v
		}

		txn, err := portalClient.UpdateTransaction(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}
		fmt.Printf("Transaction %s is now %s\n", txn.ID, txn.Status)
		return nil
	},
}

var adminTxnNoteCmd = &cobra.Command{
	Use:   "txn-note <id> <note>",
	Short: "Append a progress note to a transaction's timeline",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		upd, err := portalClient.AddTransactionUpdate(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Added timeline entry %s\n", upd.ID)
		return nil
	},
}

var adminNotifyCmd = &cobra.Command{
	Use:   "notify <user-id> <title>",
	Short: "Push a notification to a customer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, _ := cmd.Flags().GetString("body")
		kind, _ := cmd.Flags().GetString("kind")

		n, err := portalClient.CreateNotification(cmd.Context(), &client.CreateNotificationRequest{
			UserID: args[0],
			Title:  args[1],
			Body:   body,
			Kind:   kind,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Sent notification %s\n", n.ID)
		return nil
	},
}

func init() {
	adminUsersCmd.Flags().String("search", "", "substring match on email/name")
	adminUsersCmd.Flags().Int("limit", 50, "maximum number of users to return")

	adminTicketsCmd.Flags().StringSliceP("status", "s", nil, "filter by status (repeatable)")

	adminDocumentsCmd.Flags().String("status", "", "new status (pending or completed)")

	adminCompanyUpdateCmd.Flags().String("name", "", "company name")
	adminCompanyUpdateCmd.Flags().String("number", "", "Companies House registration number")
	adminCompanyUpdateCmd.Flags().String("status", "", "status (pending, active, dissolved)")
	adminCompanyUpdateCmd.Flags().String("incorporated", "", "incorporation date (YYYY-MM-DD)")

	adminSubscriptionCmd.Flags().String("plan", "", "plan (starter, professional, enterprise)")
	adminSubscriptionCmd.Flags().Int64("price", 0, "yearly price in pence")
	adminSubscriptionCmd.Flags().String("status", "", "status (default active)")
	adminSubscriptionCmd.Flags().String("renewal", "", "renewal date (YYYY-MM-DD)")

	adminTxnCreateCmd.Flags().StringP("type", "t", "payment", "transaction type")
	adminTxnCreateCmd.Flags().Int64("amount", 0, "amount in pence")
	adminTxnCreateCmd.Flags().StringP("description", "d", "", "description")

	adminTxnUpdateCmd.Flags().String("status", "", "new status")
	adminTxnUpdateCmd.Flags().Int64("amount", 0, "amount in pence")

	adminNotifyCmd.Flags().String("body", "", "notification body")
	adminNotifyCmd.Flags().String("kind", "info", "kind (info, success, warning, error)")

	adminCmd.AddCommand(adminStatsCmd)
	adminCmd.AddCommand(adminUsersCmd)
	adminCmd.AddCommand(adminTicketsCmd)
	adminCmd.AddCommand(adminReplyCmd)
	adminCmd.AddCommand(adminDocumentsCmd)
	adminCmd.AddCommand(adminCompaniesCmd)
	adminCmd.AddCommand(adminCompanyUpdateCmd)
	adminCmd.AddCommand(adminSubscriptionCmd)
	adminCmd.AddCommand(adminTxnCreateCmd)
	adminCmd.AddCommand(adminTxnUpdateCmd)
	adminCmd.AddCommand(adminTxnNoteCmd)
	adminCmd.AddCommand(adminNotifyCmd)
}
