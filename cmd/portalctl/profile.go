package main

import (
	"fmt"

	"github.com/shirkaty/portal/internal/client"
	"github.com/shirkaty/portal/internal/guard"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and edit your account settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/settings"); err != nil {
			return err
		}
		user, err := portalClient.Me(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(user)
			return nil
		}
		fmt.Printf("Email:   %s\n", user.Email)
		fmt.Printf("Name:    %s\n", user.Name)
		if user.Phone != "" {
			fmt.Printf("Phone:   %s\n", user.Phone)
		}
		if user.CompanyName != "" {
			fmt.Printf("Company: %s\n", user.CompanyName)
		}
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change your name, phone, or company name",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/settings"); err != nil {
			return err
		}

		req := &client.UpdateProfileRequest{}
		if cmd.Flags().Changed("name") {
			v, _ := cmd.Flags().GetString("name")
			req.Name = &v
		}
		if cmd.Flags().Changed("phone") {
			v, _ := cmd.Flags().GetString("phone")
			req.Phone = &v
		}
		if cmd.Flags().Changed("company") {
			v, _ := cmd.Flags().GetString("company")
			req.CompanyName = &v
		}
		if req.Name == nil && req.Phone == nil && req.CompanyName == nil {
			return fmt.Errorf("nothing to change: pass --name, --phone, or --company")
		}

		user, err := portalClient.UpdateProfile(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Printf("Profile updated: %s\n", user.Name)
		return nil
	},
}

func init() {
	profileUpdateCmd.Flags().String("name", "", "full name")
	profileUpdateCmd.Flags().String("phone", "", "phone number")
	profileUpdateCmd.Flags().String("company", "", "company name")

	profileCmd.AddCommand(profileUpdateCmd)
}
