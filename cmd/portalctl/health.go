package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the portal server is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := portalClient.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("portal server unreachable at %s: %w", serverURL, err)
		}
		fmt.Println(status)
		return nil
	},
}
