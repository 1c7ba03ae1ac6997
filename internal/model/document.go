package model

import "time"

// DocumentStatus tracks a document request through fulfilment.
type DocumentStatus string

const (
	DocumentPending   DocumentStatus = "pending"
	DocumentCompleted DocumentStatus = "completed"
)

// String returns the string representation of the status.
func (s DocumentStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentPending, DocumentCompleted:
		return true
	}
	return false
}

// Document is a company document requested by or issued to a user.
// FileKey is the blob storage path of the uploaded file; it is empty while
// the request is still pending.
type Document struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	ReferenceDate time.Time      `json:"reference_date"`
	Status        DocumentStatus `json:"status"`
	FileKey       string         `json:"file_key,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`

	// Joined account fields for the admin document view.
	UserEmail string `json:"user_email,omitempty"`
	UserName  string `json:"user_name,omitempty"`
}
