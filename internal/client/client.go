// Package client provides a transport-agnostic interface for the portal
// service and an HTTP/JSON implementation that talks to the portal REST API.
package client

import (
	"context"

	"github.com/shirkaty/portal/internal/model"
)

// PortalClient is the interface that all portalctl commands, the session
// store, and the live-query fetchers use to communicate with the portal
// server. It is implemented by HTTPClient (default) and can be backed by any
// transport.
type PortalClient interface {
	// Auth
	SignUp(ctx context.Context, req *SignUpRequest) (*AuthResponse, error)
	SignIn(ctx context.Context, email, password string) (*AuthResponse, error)
	SignOut(ctx context.Context) error
	Refresh(ctx context.Context) (*AuthResponse, error)
	RequestPasswordReset(ctx context.Context, email string) error
	Me(ctx context.Context) (*model.User, error)
	UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*model.User, error)

	// Tickets
	CreateTicket(ctx context.Context, req *CreateTicketRequest) (*model.Ticket, error)
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)
	ListTickets(ctx context.Context, req *ListTicketsRequest) (*ListTicketsResponse, error)
	UpdateTicket(ctx context.Context, id string, req *UpdateTicketRequest) (*model.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
	AddMessage(ctx context.Context, ticketID, body string) (*model.Message, error)
	GetMessages(ctx context.Context, ticketID string) ([]*model.Message, error)

	// Notifications
	ListNotifications(ctx context.Context, unreadOnly bool) (*ListNotificationsResponse, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error

	// Company
	GetCompany(ctx context.Context) (*model.Company, error)

	// Documents
	ListDocuments(ctx context.Context, status string) ([]*model.Document, error)
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	RequestDocument(ctx context.Context, req *RequestDocumentRequest) (*model.Document, error)
	UploadDocument(ctx context.Context, name, docType, filename string, data []byte) (*model.Document, error)
	DownloadDocument(ctx context.Context, id string) ([]byte, error)

	// Transactions
	ListTransactions(ctx context.Context, status string) ([]*model.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)

	// Admin
	GetStats(ctx context.Context) (*model.Stats, error)
	ListUsers(ctx context.Context, req *ListUsersRequest) (*ListUsersResponse, error)
	ListAllTickets(ctx context.Context, req *ListTicketsRequest) (*ListTicketsResponse, error)
	ReplyTicket(ctx context.Context, ticketID, body string) (*model.Message, error)
	UpdateDocument(ctx context.Context, id string, req *UpdateDocumentRequest) (*model.Document, error)
	UpdateCompany(ctx context.Context, id string, req *UpdateCompanyRequest) (*model.Company, error)
	ListCompanies(ctx context.Context) ([]*model.Company, error)
	SetSubscription(ctx context.Context, companyID string, req *SetSubscriptionRequest) (*model.Subscription, error)
	CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, req *UpdateTransactionRequest) (*model.Transaction, error)
	AddTransactionUpdate(ctx context.Context, id, note string) (*model.TransactionUpdate, error)
	CreateNotification(ctx context.Context, req *CreateNotificationRequest) (*model.Notification, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// SignUpRequest holds parameters for registering a new account.
type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// AuthResponse is returned from signup, signin, and refresh.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expires_at"`
	User      *model.User `json:"user"`
}

// UpdateProfileRequest holds optional account settings changes. Nil pointer
// fields mean "don't change".
type UpdateProfileRequest struct {
	Name        *string `json:"name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
}

// CreateTicketRequest holds parameters for opening a support ticket.
type CreateTicketRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Priority    string `json:"priority,omitempty"`
	Category    string `json:"category,omitempty"`
}

// ListTicketsRequest holds parameters for listing tickets.
type ListTicketsRequest struct {
	Status   []string `json:"status,omitempty"`
	Priority []string `json:"priority,omitempty"`
	Search   string   `json:"search,omitempty"`
	Limit    int      `json:"limit,omitempty"`
	Offset   int      `json:"offset,omitempty"`
}

// ListTicketsResponse is the response from ListTickets.
type ListTicketsResponse struct {
	Tickets []*model.Ticket `json:"tickets"`
	Total   int             `json:"total"`
}

// UpdateTicketRequest holds optional parameters for updating a ticket.
// Nil pointer fields mean "don't change".
type UpdateTicketRequest struct {
	Subject     *string `json:"subject,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	AssignedTo  *string `json:"assigned_to,omitempty"`
}

// ListNotificationsResponse is the response from ListNotifications.
type ListNotificationsResponse struct {
	Notifications []*model.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

// RequestDocumentRequest asks the back office to produce a document.
type RequestDocumentRequest struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	ReferenceDate string `json:"reference_date,omitempty"`
}

// UpdateDocumentRequest holds optional admin updates to a document.
type UpdateDocumentRequest struct {
	Status *string `json:"status,omitempty"`
}

// UpdateCompanyRequest holds optional admin updates to a company.
type UpdateCompanyRequest struct {
	Name           *string `json:"name,omitempty"`
	Number         *string `json:"number,omitempty"`
	Status         *string `json:"status,omitempty"`
	IncorporatedAt *string `json:"incorporated_at,omitempty"`
}

// SetSubscriptionRequest sets or replaces a company's subscription.
type SetSubscriptionRequest struct {
	Plan        string `json:"plan"`
	Price       int64  `json:"price"` // pence
	Status      string `json:"status"`
	RenewalDate string `json:"renewal_date,omitempty"`
}

// CreateTransactionRequest holds parameters for opening a transaction.
type CreateTransactionRequest struct {
	UserID      string `json:"user_id"`
	Type        string `json:"type"`
	Amount      int64  `json:"amount"` // pence
	Description string `json:"description,omitempty"`
}

// UpdateTransactionRequest holds optional admin updates to a transaction.
type UpdateTransactionRequest struct {
	Status      *string `json:"status,omitempty"`
	Amount      *int64  `json:"amount,omitempty"` // pence
	Description *string `json:"description,omitempty"`
}

// CreateNotificationRequest holds parameters for pushing a notification to a
// user.
type CreateNotificationRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Kind   string `json:"kind,omitempty"`
}

// ListUsersRequest holds parameters for the admin user listing.
type ListUsersRequest struct {
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// ListUsersResponse is the response from ListUsers.
type ListUsersResponse struct {
	Users []*model.User `json:"users"`
	Total int           `json:"total"`
}
