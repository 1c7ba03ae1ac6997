package model

// TicketFilter holds criteria for querying tickets. An empty UserID means
// no ownership scoping (admin views).
type TicketFilter struct {
	UserID   string           `json:"user_id,omitempty"`
	Status   []TicketStatus   `json:"status,omitempty"`
	Priority []TicketPriority `json:"priority,omitempty"`
	Category string           `json:"category,omitempty"`
	Search   string           `json:"search,omitempty"` // substring match on subject/description
	Limit    int              `json:"limit,omitempty"`
	Offset   int              `json:"offset,omitempty"`
}

// NotificationFilter scopes notifications to an owner, optionally to unread only.
type NotificationFilter struct {
	UserID     string `json:"user_id"`
	UnreadOnly bool   `json:"unread_only,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// DocumentFilter holds criteria for querying documents.
type DocumentFilter struct {
	UserID string           `json:"user_id,omitempty"`
	Status []DocumentStatus `json:"status,omitempty"`
	Type   string           `json:"type,omitempty"`
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
}

// TransactionFilter holds criteria for querying transactions.
type TransactionFilter struct {
	UserID string              `json:"user_id,omitempty"`
	Type   []TransactionType   `json:"type,omitempty"`
	Status []TransactionStatus `json:"status,omitempty"`
	Limit  int                 `json:"limit,omitempty"`
	Offset int                 `json:"offset,omitempty"`
}

// UserFilter holds criteria for the admin user list.
type UserFilter struct {
	Role   Role   `json:"role,omitempty"`
	Search string `json:"search,omitempty"` // substring match on email/name
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Stats is the admin dashboard aggregate.
type Stats struct {
	TotalUsers     int `json:"total_users"`
	TotalTickets   int `json:"total_tickets"`
	TotalDocuments int `json:"total_documents"`
	PendingTickets int `json:"pending_tickets"`
}
