package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shirkaty/portal/internal/client"
	"github.com/shirkaty/portal/internal/events"
	"github.com/shirkaty/portal/internal/guard"
	"github.com/shirkaty/portal/internal/livequery"
	"github.com/shirkaty/portal/internal/model"
	"github.com/shirkaty/portal/internal/session"
	"github.com/shirkaty/portal/internal/ui"
	"github.com/spf13/cobra"
)

var ticketsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of your tickets, updated from the change feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/tickets"); err != nil {
			return err
		}
		if natsURL == "" {
			return fmt.Errorf("watch needs a change feed: set --nats or PORTAL_NATS_URL")
		}

		sub, err := events.NewNATSSubscriber(natsURL)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer sub.Close()

		fetch := func(ctx context.Context) ([]*model.Ticket, error) {
			resp, err := portalClient.ListTickets(ctx, &client.ListTicketsRequest{})
			if err != nil {
				return nil, err
			}
			return resp.Tickets, nil
		}

		query := livequery.New(fetch, sub, events.TopicTicketsAll, livequery.WithLogger[[]*model.Ticket](logger))
		query.Watch(func(snap livequery.Snapshot[[]*model.Ticket]) {
			renderWatch(snap)
		})

		if err := query.Start(cmd.Context()); err != nil {
			return err
		}
		defer query.Close()

		renderWatch(query.Snapshot())

		// A revocation on the feed for our user ends the watch: the server
		// has invalidated the session, so keep the local state in step.
		revokedCh, unsubRevoked, err := sub.Subscribe(events.TopicSessionRevoked)
		if err != nil {
			return fmt.Errorf("failed to subscribe to revocations: %w", err)
		}
		defer unsubRevoked()

		revoked := make(chan struct{})
		go func() {
			for payload := range revokedCh {
				if sessionRevoked(payload, sess.Snapshot()) {
					sess.Apply(session.Change{Event: "signed_out"})
					close(revoked)
					return
				}
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
			return nil
		case <-revoked:
			fmt.Println(ui.RenderUnread("session revoked by the server, signed out"))
			return nil
		}
	},
}

// sessionRevoked reports whether a revocation event on the change feed
// targets the currently signed-in user.
func sessionRevoked(payload []byte, snap session.Snapshot) bool {
	if snap.State != session.Authenticated || snap.Identity == nil {
		return false
	}
	var ev events.SessionRevoked
	if err := json.Unmarshal(payload, &ev); err != nil {
		return false
	}
	return ev.UserID == snap.Identity.UserID
}

// renderWatch redraws the ticket table on every snapshot.
func renderWatch(snap livequery.Snapshot[[]*model.Ticket]) {
	// Clear screen and home the cursor.
	fmt.Print("\x1b[2J\x1b[H")
	switch snap.Phase {
	case livequery.Loading:
		fmt.Println("Loading tickets...")
	case livequery.Failed:
		fmt.Printf("%s %v (retrying on next change)\n", ui.RenderUnread("fetch failed:"), snap.Err)
	default:
		printTicketTable(snap.Records, len(snap.Records))
		fmt.Println(ui.RenderMuted("watching for changes, Ctrl-C to exit"))
	}
}
