package main

import (
	"fmt"

	"github.com/shirkaty/portal/internal/guard"
	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"ntf"},
	Short:   "View and manage notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/notifications"); err != nil {
			return err
		}
		unreadOnly, _ := cmd.Flags().GetBool("unread")

		resp, err := portalClient.ListNotifications(cmd.Context(), unreadOnly)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp)
		} else {
			printNotificationTable(resp.Notifications, resp.Unread)
		}
		return nil
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Mark a notification as read, or all with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/notifications"); err != nil {
			return err
		}
		all, _ := cmd.Flags().GetBool("all")
		switch {
		case all:
			if err := portalClient.MarkAllNotificationsRead(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("All notifications marked read")
		case len(args) == 1:
			if err := portalClient.MarkNotificationRead(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Marked %s read\n", args[0])
		default:
			return fmt.Errorf("pass a notification id or --all")
		}
		return nil
	},
}

func init() {
	notificationsListCmd.Flags().BoolP("unread", "u", false, "only unread notifications")
	notificationsReadCmd.Flags().Bool("all", false, "mark all notifications read")

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
}
