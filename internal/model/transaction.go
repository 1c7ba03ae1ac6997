package model

import "time"

// TransactionType categorizes what a transaction paid for.
type TransactionType string

const (
	TxnCompanyFormation TransactionType = "company_formation"
	TxnDocumentRequest  TransactionType = "document_request"
	TxnPlanUpgrade      TransactionType = "plan_upgrade"
	TxnServiceAddon     TransactionType = "service_addon"
)

// String returns the string representation of the type.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks whether the type is a known value.
func (t TransactionType) IsValid() bool {
	switch t {
	case TxnCompanyFormation, TxnDocumentRequest, TxnPlanUpgrade, TxnServiceAddon:
		return true
	}
	return false
}

// TransactionStatus is the processing state of a transaction.
type TransactionStatus string

const (
	TxnPending    TransactionStatus = "pending"
	TxnInProgress TransactionStatus = "in_progress"
	TxnCompleted  TransactionStatus = "completed"
	TxnCancelled  TransactionStatus = "cancelled"
	TxnOnHold     TransactionStatus = "on_hold"
)

// String returns the string representation of the status.
func (s TransactionStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TxnPending, TxnInProgress, TxnCompleted, TxnCancelled, TxnOnHold:
		return true
	}
	return false
}

// Transaction is a paid service order. Reference is the human-facing order
// number quoted in support conversations.
type Transaction struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
	Amount      int64             `json:"amount"` // pence
	Description string            `json:"description,omitempty"`
	Reference   string            `json:"reference"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`

	// Relational data -- populated by queries, not stored in the
	// transactions table.
	Updates []*TransactionUpdate `json:"updates,omitempty"`
}

// TransactionUpdate is a status note appended to a transaction's timeline.
type TransactionUpdate struct {
	ID            string            `json:"id"`
	TransactionID string            `json:"transaction_id"`
	Status        TransactionStatus `json:"status"`
	Note          string            `json:"note,omitempty"`
	CreatedBy     string            `json:"created_by,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}
