package main

import (
	"fmt"

	"github.com/shirkaty/portal/internal/client"
	"github.com/shirkaty/portal/internal/guard"
	"github.com/spf13/cobra"
)

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Manage support tickets",
}

var ticketsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your tickets",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/tickets"); err != nil {
			return err
		}
		status, _ := cmd.Flags().GetStringSlice("status")
		priority, _ := cmd.Flags().GetStringSlice("priority")
		search, _ := cmd.Flags().GetString("search")
		limit, _ := cmd.Flags().GetInt("limit")

		resp, err := portalClient.ListTickets(cmd.Context(), &client.ListTicketsRequest{
			Status:   status,
			Priority: priority,
			Search:   search,
			Limit:    limit,
		})
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

var ticketsCreateCmd = &cobra.Command{
	Use:   "create <subject>",
	Short: "Open a new support ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/tickets"); err != nil {
			return err
		}
		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetString("priority")
		category, _ := cmd.Flags().GetString("category")

		ticket, err := portalClient.CreateTicket(cmd.Context(), &client.CreateTicketRequest{
			Subject:     args[0],
			Description: description,
			Priority:    priority,
			Category:    category,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(ticket)
		} else {
			fmt.Printf("Created ticket %s\n", ticket.ID)
		}
		return nil
	},
}

var ticketsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a ticket and its conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/tickets"); err != nil {
			return err
		}
		ticket, err := portalClient.GetTicket(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		messages, err := portalClient.GetMessages(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(map[string]any{"ticket": ticket, "messages": messages})
			return nil
		}
		printTicket(ticket)
		if len(messages) > 0 {
			fmt.Println()
			printMessages(messages)
		}
		return nil
	},
}

var ticketsReplyCmd = &cobra.Command{
	Use:   "reply <id> <message>",
	Short: "Add a message to a ticket",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/tickets"); err != nil {
			return err
		}
		msg, err := portalClient.AddMessage(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(msg)
		} else {
			fmt.Printf("Added message %s\n", msg.ID)
		}
		return nil
	},
}

var ticketsCloseCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Close a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/tickets"); err != nil {
			return err
		}
		status := "closed"
		ticket, err := portalClient.UpdateTicket(cmd.Context(), args[0], &client.UpdateTicketRequest{
			Status: &status,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Closed ticket %s\n", ticket.ID)
		return nil
	},
}

var ticketsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/tickets"); err != nil {
			return err
		}
		if err := portalClient.DeleteTicket(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted ticket %s\n", args[0])
		return nil
	},
}

func init() {
	ticketsListCmd.Flags().StringSliceP("status", "s", nil, "filter by status (repeatable)")
	ticketsListCmd.Flags().StringSliceP("priority", "p", nil, "filter by priority (repeatable)")
	ticketsListCmd.Flags().String("search", "", "substring match on subject/description")
	ticketsListCmd.Flags().Int("limit", 20, "maximum number of tickets to return")

	ticketsCreateCmd.Flags().StringP("description", "d", "", "ticket description")
	ticketsCreateCmd.Flags().StringP("priority", "p", "", "priority (low, medium, high, urgent)")
	ticketsCreateCmd.Flags().StringP("category", "c", "", "category")

	ticketsCmd.AddCommand(ticketsListCmd)
	ticketsCmd.AddCommand(ticketsCreateCmd)
	ticketsCmd.AddCommand(ticketsShowCmd)
	ticketsCmd.AddCommand(ticketsReplyCmd)
	ticketsCmd.AddCommand(ticketsCloseCmd)
	ticketsCmd.AddCommand(ticketsDeleteCmd)
	ticketsCmd.AddCommand(ticketsWatchCmd)
}
