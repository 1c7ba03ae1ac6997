package events

import (
	"context"

	"github.com/shirkaty/portal/internal/model"
)

// Event topic constants. Topics follow "portal.<table>.<verb>" so a
// subscriber can scope a change feed to one table with "portal.tickets.>"
// or to everything with "portal.>".
const (
	TopicTicketCreated = "portal.tickets.created"
	TopicTicketUpdated = "portal.tickets.updated"
	TopicTicketDeleted = "portal.tickets.deleted"
	TopicMessageAdded  = "portal.messages.created"

	TopicNotificationCreated = "portal.notifications.created"
	TopicNotificationRead    = "portal.notifications.read"

	TopicDocumentCreated = "portal.documents.created"
	TopicDocumentUpdated = "portal.documents.updated"

	TopicTransactionCreated = "portal.transactions.created"
	TopicTransactionUpdated = "portal.transactions.updated"

	TopicCompanyUpdated = "portal.companies.updated"

	TopicUserCreated = "portal.users.created"
	TopicUserUpdated = "portal.users.updated"

	// Session lifecycle events (cross-client sign-out, credential revocation).
	TopicSessionRevoked = "portal.session.revoked"

	// Wildcard subscriptions.
	TopicTicketsAll       = "portal.tickets.>"
	TopicNotificationsAll = "portal.notifications.>"
	TopicAll              = "portal.>"
)

// Event types

type TicketCreated struct {
	Ticket *model.Ticket `json:"ticket"`
}

type TicketUpdated struct {
	Ticket  *model.Ticket  `json:"ticket"`
	Changes map[string]any `json:"changes"` // field name -> new value
}

type TicketDeleted struct {
	TicketID string `json:"ticket_id"`
	UserID   string `json:"user_id"`
}

type MessageAdded struct {
	Message *model.Message `json:"message"`
}

type NotificationCreated struct {
	Notification *model.Notification `json:"notification"`
}

type NotificationRead struct {
	UserID         string `json:"user_id"`
	NotificationID string `json:"notification_id,omitempty"` // empty = mark-all
}

type DocumentCreated struct {
	Document *model.Document `json:"document"`
}

type DocumentUpdated struct {
	Document *model.Document `json:"document"`
	Changes  map[string]any  `json:"changes"`
}

type TransactionCreated struct {
	Transaction *model.Transaction `json:"transaction"`
}

type TransactionUpdated struct {
	Transaction *model.Transaction       `json:"transaction"`
	Update      *model.TransactionUpdate `json:"update,omitempty"`
}

type CompanyUpdated struct {
	Company *model.Company `json:"company"`
	Changes map[string]any `json:"changes"`
}

type UserCreated struct {
	User *model.User `json:"user"`
}

type UserUpdated struct {
	User    *model.User    `json:"user"`
	Changes map[string]any `json:"changes"`
}

type SessionRevoked struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason,omitempty"` // "signout", "expired", "revoked"
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
