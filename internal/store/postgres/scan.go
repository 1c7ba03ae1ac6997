package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/shirkaty/portal/internal/model"
	"github.com/shirkaty/portal/internal/store"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// mapError translates driver-level errors to the store's sentinel errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
		return store.ErrAlreadyExists
	}
	return err
}

// scanUser scans a row in userColumns order into a model.User.
func scanUser(row scannable) (*model.User, error) {
	var u model.User
	var companyName, phone sql.NullString

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&companyName,
		&phone,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	u.CompanyName = companyName.String
	u.Phone = phone.String
	return &u, nil
}

// scanTicket scans a row in ticketColumns order into a model.Ticket.
func scanTicket(row scannable) (*model.Ticket, error) {
	var t model.Ticket
	var category, assignedTo sql.NullString
	var resolvedAt sql.NullTime

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Subject,
		&t.Description,
		&t.Status,
		&t.Priority,
		&category,
		&assignedTo,
		&t.CreatedAt,
		&t.UpdatedAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	t.Category = category.String
	t.AssignedTo = assignedTo.String
	if resolvedAt.Valid {
		ts := resolvedAt.Time
		t.ResolvedAt = &ts
	}
	return &t, nil
}

// scanCompany scans a row in companyColumns order into a model.Company.
func scanCompany(row scannable) (*model.Company, error) {
	var c model.Company
	var number sql.NullString
	var incorporatedAt sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&number,
		&c.Status,
		&incorporatedAt,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	c.Number = number.String
	if incorporatedAt.Valid {
		ts := incorporatedAt.Time
		c.IncorporatedAt = &ts
	}
	return &c, nil
}

// scanDocument scans a row in documentColumns order into a model.Document.
func scanDocument(row scannable) (*model.Document, error) {
	var d model.Document
	var fileKey sql.NullString

	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Name,
		&d.Type,
		&d.ReferenceDate,
		&d.Status,
		&fileKey,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	d.FileKey = fileKey.String
	return &d, nil
}

// scanTransaction scans a row in transactionColumns order into a model.Transaction.
func scanTransaction(row scannable) (*model.Transaction, error) {
	var t model.Transaction
	var description sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Type,
		&t.Status,
		&t.Amount,
		&description,
		&t.Reference,
		&t.CreatedAt,
		&t.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	t.Description = description.String
	if completedAt.Valid {
		ts := completedAt.Time
		t.CompletedAt = &ts
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
