package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shirkaty/portal/internal/client"
	"github.com/shirkaty/portal/internal/guard"
	"github.com/shirkaty/portal/internal/session"
	"github.com/shirkaty/portal/internal/ui"
	"github.com/spf13/cobra"
)

var (
	serverURL  string
	natsURL    string
	jsonOutput bool

	portalClient *client.HTTPClient
	sess         *session.Store
	logger       *slog.Logger
)

func defaultServerURL() string {
	if s := os.Getenv("PORTAL_URL"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

func defaultNATSURL() string {
	return os.Getenv("PORTAL_NATS_URL")
}

var rootCmd = &cobra.Command{
	Use:   "portalctl <command>",
	Short: "CLI client for the Shirkaty customer portal",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

		portalClient = client.NewHTTPClient(serverURL, "")

		path, err := session.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to resolve session path: %w", err)
		}
		sess = session.NewStore(portalClient, path, logger)
		if err := sess.Restore(); err != nil {
			logger.Warn("failed to restore session", "error", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if portalClient != nil {
			portalClient.Close()
		}
	},
}

// checkAccess runs the route guard for the command's access level and turns
// a redirect verdict into a CLI error.
func checkAccess(access guard.Access, route string) error {
	decision := guard.Check(sess.Snapshot(), access, route)
	switch decision.Verdict {
	case guard.Allow:
		return nil
	case guard.RedirectLogin:
		return fmt.Errorf("not signed in: run `portalctl login` and retry")
	default:
		return fmt.Errorf("admin access required")
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", defaultServerURL(), "portal server URL")
	rootCmd.PersistentFlags().StringVar(&natsURL, "nats", defaultNATSURL(), "NATS URL for live updates (watch commands)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(companyCmd)
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(transactionsCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
