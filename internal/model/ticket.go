package model

import "time"

// TicketStatus represents the current state of a support ticket.
type TicketStatus string

const (
	TicketPending    TicketStatus = "pending"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

// String returns the string representation of the status.
func (s TicketStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketPending, TicketInProgress, TicketResolved, TicketClosed:
		return true
	}
	return false
}

// TicketPriority orders tickets by urgency.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

// String returns the string representation of the priority.
func (p TicketPriority) String() string {
	return string(p)
}

// IsValid checks whether the priority is a known value.
func (p TicketPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Ticket is a support request raised by a portal user.
type Ticket struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Subject     string         `json:"subject"`
	Description string         `json:"description"`
	Status      TicketStatus   `json:"status"`
	Priority    TicketPriority `json:"priority"`
	Category    string         `json:"category,omitempty"`
	AssignedTo  string         `json:"assigned_to,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"`

	// Relational data -- populated by queries, not stored in the tickets table.
	MessageCount int        `json:"message_count"`
	Messages     []*Message `json:"messages,omitempty"`

	// Joined account fields for the admin ticket view.
	UserEmail string `json:"user_email,omitempty"`
	UserName  string `json:"user_name,omitempty"`
}

// Message is a single reply on a ticket thread. IsAdmin marks replies sent
// by the support team rather than the ticket owner.
type Message struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	SenderID  string    `json:"sender_id,omitempty"`
	Body      string    `json:"body"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}
