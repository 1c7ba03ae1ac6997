package store

import (
	"context"
	"errors"

	"github.com/shirkaty/portal/internal/model"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store defines the persistence interface for the portal.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, filter model.UserFilter) ([]*model.User, int, error) // returns users, total count, error
	UpdateUser(ctx context.Context, user *model.User) error

	// Companies and subscriptions
	CreateCompany(ctx context.Context, company *model.Company) error
	GetCompany(ctx context.Context, id string) (*model.Company, error)
	GetCompanyByUser(ctx context.Context, userID string) (*model.Company, error)
	ListCompanies(ctx context.Context) ([]*model.Company, error)
	UpdateCompany(ctx context.Context, company *model.Company) error
	UpsertSubscription(ctx context.Context, sub *model.Subscription) error

	// Tickets and messages
	CreateTicket(ctx context.Context, ticket *model.Ticket) error
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)
	ListTickets(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, int, error)
	UpdateTicket(ctx context.Context, ticket *model.Ticket) error
	DeleteTicket(ctx context.Context, id string) error
	AddMessage(ctx context.Context, msg *model.Message) error
	GetMessages(ctx context.Context, ticketID string) ([]*model.Message, error)

	// Notifications
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, filter model.NotificationFilter) ([]*model.Notification, error)
	// MarkNotificationsRead marks a single notification (id non-empty) or all
	// of a user's notifications (id empty) as read.
	MarkNotificationsRead(ctx context.Context, userID, id string) error

	// Documents
	CreateDocument(ctx context.Context, doc *model.Document) error
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	ListDocuments(ctx context.Context, filter model.DocumentFilter) ([]*model.Document, int, error)
	UpdateDocument(ctx context.Context, doc *model.Document) error

	// Transactions
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter model.TransactionFilter) ([]*model.Transaction, int, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	AddTransactionUpdate(ctx context.Context, upd *model.TransactionUpdate) error
	GetTransactionUpdates(ctx context.Context, transactionID string) ([]*model.TransactionUpdate, error)

	// Admin aggregates
	GetStats(ctx context.Context) (*model.Stats, error)

	// Lifecycle
	Close() error
}
