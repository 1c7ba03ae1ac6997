// Package server implements the portal HTTP/JSON API: authentication,
// tickets, notifications, company status, documents, transactions, the admin
// back office, and the SSE change-feed bridge.
package server

import (
	"context"
	"log/slog"

	"github.com/shirkaty/portal/internal/auth"
	"github.com/shirkaty/portal/internal/blob"
	"github.com/shirkaty/portal/internal/events"
	"github.com/shirkaty/portal/internal/store"
)

// PortalServer holds the server's collaborators and implements every HTTP
// handler.
type PortalServer struct {
	store     store.Store
	publisher events.Publisher
	tokens    *auth.TokenManager
	blobs     blob.Storage
	sseHub    *sseHub
	logger    *slog.Logger
}

// NewPortalServer returns a server backed by the given store, publisher,
// token manager, and blob storage.
func NewPortalServer(s store.Store, p events.Publisher, tm *auth.TokenManager, b blob.Storage, logger *slog.Logger) *PortalServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &PortalServer{
		store:     s,
		publisher: p,
		tokens:    tm,
		blobs:     b,
		sseHub:    newSSEHub(),
		logger:    logger,
	}
}

// publish emits an event on the change feed and fans it out to connected SSE
// clients. Both are best-effort; a feed outage never fails the mutation that
// triggered it.
func (s *PortalServer) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
	s.broadcastEvent(topic, event)
}

// inputError indicates invalid user input. The HTTP layer maps it to 400.
type inputError string

func (e inputError) Error() string { return string(e) }
