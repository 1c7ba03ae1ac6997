package main

import (
	"errors"
	"fmt"

	"github.com/shirkaty/portal/internal/client"
	"github.com/shirkaty/portal/internal/session"
	"github.com/shirkaty/portal/internal/ui"
	"github.com/spf13/cobra"
)

var signupCmd = &cobra.Command{
	Use:   "signup <email>",
	Short: "Register a new portal account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		companyName, _ := cmd.Flags().GetString("company")
		phone, _ := cmd.Flags().GetString("phone")

		password, err := ui.ReadPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := ui.ReadPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		resp, err := portalClient.SignUp(cmd.Context(), &client.SignUpRequest{
			Email:       args[0],
			Password:    password,
			Name:        name,
			CompanyName: companyName,
			Phone:       phone,
		})
		if err != nil {
			return err
		}

		// The signup response already carries a session token; sign in
		// locally with it.
		sess.Apply(session.ChangeFromAuth(resp))

		fmt.Printf("Account created: %s\n", resp.User.Email)
		if companyName != "" {
			fmt.Printf("Company formation started: %s\n", companyName)
		}
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in to the portal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := ui.ReadPassword("Password: ")
		if err != nil {
			return err
		}

		err = sess.SignIn(cmd.Context(), args[0], password)
		switch {
		case errors.Is(err, session.ErrInvalidCredential):
			return fmt.Errorf("invalid email or password")
		case errors.Is(err, session.ErrUnavailable):
			return fmt.Errorf("portal server unavailable at %s", serverURL)
		case err != nil:
			return err
		}

		// A concurrent sign-out can discard the result of a successful
		// sign-in, leaving the session anonymous with no identity.
		snap := sess.Snapshot()
		if snap.State != session.Authenticated {
			fmt.Println("Not signed in")
			return nil
		}
		fmt.Printf("Signed in as %s (%s)\n", snap.Identity.Email, snap.Role())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		// SignOut always lands in the anonymous state, even when the server
		// is unreachable.
		if err := sess.SignOut(cmd.Context()); err != nil {
			logger.Warn("remote signout failed", "error", err)
		}
		fmt.Println("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := sess.Snapshot()
		if snap.State != session.Authenticated {
			fmt.Println("Not signed in")
			return nil
		}
		if jsonOutput {
			printJSON(map[string]any{
				"email":      snap.Identity.Email,
				"name":       snap.Identity.Name,
				"role":       snap.Role(),
				"expires_at": snap.ExpiresAt,
			})
			return nil
		}
		fmt.Printf("Email:   %s\n", snap.Identity.Email)
		fmt.Printf("Name:    %s\n", snap.Identity.Name)
		fmt.Printf("Role:    %s\n", snap.Role())
		fmt.Printf("Expires: %s\n", formatTime(snap.ExpiresAt))
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the stored token for a fresh one",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := sess.Refresh(cmd.Context())
		switch {
		case errors.Is(err, session.ErrInvalidCredential):
			return fmt.Errorf("session no longer valid: run `portalctl login`")
		case errors.Is(err, session.ErrUnavailable):
			return fmt.Errorf("portal server unavailable at %s", serverURL)
		case err != nil:
			return err
		}

		snap := sess.Snapshot()
		if snap.State != session.Authenticated {
			fmt.Println("Session is gone")
			return nil
		}
		fmt.Printf("Session renewed until %s\n", formatTime(snap.ExpiresAt))
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset <email>",
	Short: "Request a password reset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := portalClient.RequestPasswordReset(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("If the account exists, a reset notification has been sent")
		return nil
	},
}

func init() {
	signupCmd.Flags().String("name", "", "full name")
	signupCmd.Flags().String("company", "", "company name to start a formation")
	signupCmd.Flags().String("phone", "", "phone number")
}
