package main

import (
	"errors"
	"fmt"

	"github.com/shirkaty/portal/internal/client"
	"github.com/shirkaty/portal/internal/guard"
	"github.com/spf13/cobra"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Show your company formation status",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/company"); err != nil {
			return err
		}
		company, err := portalClient.GetCompany(cmd.Context())
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			fmt.Println("No company on file. Start a formation from the portal or during signup.")
			return nil
		}
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(company)
		} else {
			printCompany(company)
		}
		return nil
	},
}
