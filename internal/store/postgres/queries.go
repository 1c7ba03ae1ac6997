package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shirkaty/portal/internal/model"
	"github.com/shirkaty/portal/internal/store"
)

// ticketColumns is the column list used for SELECT statements on the tickets table.
const ticketColumns = `id, user_id, subject, description, status, priority,
	category, assigned_to, created_at, updated_at, resolved_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateTicket(ctx context.Context, db executor, t *model.Ticket) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO tickets (
			id, user_id, subject, description, status, priority,
			category, assigned_to, created_at, updated_at, resolved_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11
		)`,
		t.ID,
		t.UserID,
		t.Subject,
		t.Description,
		string(t.Status),
		string(t.Priority),
		nullString(t.Category),
		nullString(t.AssignedTo),
		t.CreatedAt,
		t.UpdatedAt,
		nullTimePtr(t.ResolvedAt),
	)
	return mapError(err)
}

func queryGetTicket(ctx context.Context, db executor, id string) (*model.Ticket, error) {
	row := db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id)
	t, err := scanTicket(row)
	if err != nil {
		return nil, err
	}

	// Fetch the message thread.
	msgs, err := queryGetMessages(ctx, db, id)
	if err != nil {
		return nil, err
	}
	t.Messages = msgs
	t.MessageCount = len(msgs)

	return t, nil
}

func queryListTickets(ctx context.Context, db executor, filter model.TicketFilter) ([]*model.Ticket, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.UserID != "" {
		whereClauses = append(whereClauses, "t.user_id = "+nextArg())
		args = append(args, filter.UserID)
	}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(s))
		}
		whereClauses = append(whereClauses, "t.status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(filter.Priority) > 0 {
		placeholders := make([]string, len(filter.Priority))
		for i, p := range filter.Priority {
			placeholders[i] = nextArg()
			args = append(args, string(p))
		}
		whereClauses = append(whereClauses, "t.priority IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.Category != "" {
		whereClauses = append(whereClauses, "t.category = "+nextArg())
		args = append(args, filter.Category)
	}

	if filter.Search != "" {
		arg := nextArg()
		whereClauses = append(whereClauses, "(t.subject ILIKE "+arg+" OR t.description ILIKE "+arg+")")
		args = append(args, "%"+filter.Search+"%")
	}

	where := ""
	if len(whereClauses) > 0 {
		where = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Total count before limit/offset.
	var total int
	countQuery := `SELECT COUNT(*) FROM tickets t` + where
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := `
		SELECT t.id, t.user_id, t.subject, t.description, t.status, t.priority,
			t.category, t.assigned_to, t.created_at, t.updated_at, t.resolved_at,
			u.email, u.name,
			(SELECT COUNT(*) FROM messages m WHERE m.ticket_id = t.id)
		FROM tickets t
		JOIN users u ON u.id = t.user_id` + where + `
		ORDER BY t.created_at DESC`

	if filter.Limit > 0 {
		query += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var tickets []*model.Ticket
	for rows.Next() {
		var t model.Ticket
		var category, assignedTo sql.NullString
		var resolvedAt sql.NullTime
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Subject, &t.Description, &t.Status, &t.Priority,
			&category, &assignedTo, &t.CreatedAt, &t.UpdatedAt, &resolvedAt,
			&t.UserEmail, &t.UserName,
			&t.MessageCount,
		)
		if err != nil {
			return nil, 0, mapError(err)
		}
		t.Category = category.String
		t.AssignedTo = assignedTo.String
		if resolvedAt.Valid {
			ts := resolvedAt.Time
			t.ResolvedAt = &ts
		}
		tickets = append(tickets, &t)
	}
	return tickets, total, mapError(rows.Err())
}

func queryUpdateTicket(ctx context.Context, db executor, t *model.Ticket) error {
	res, err := db.ExecContext(ctx, `
		UPDATE tickets SET
			subject = $2, description = $3, status = $4, priority = $5,
			category = $6, assigned_to = $7, updated_at = $8, resolved_at = $9
		WHERE id = $1`,
		t.ID,
		t.Subject,
		t.Description,
		string(t.Status),
		string(t.Priority),
		nullString(t.Category),
		nullString(t.AssignedTo),
		t.UpdatedAt,
		nullTimePtr(t.ResolvedAt),
	)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func queryDeleteTicket(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func queryAddMessage(ctx context.Context, db executor, m *model.Message) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO messages (id, ticket_id, sender_id, body, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID,
		m.TicketID,
		nullString(m.SenderID),
		m.Body,
		m.IsAdmin,
		m.CreatedAt,
	)
	return mapError(err)
}

func queryGetMessages(ctx context.Context, db executor, ticketID string) ([]*model.Message, error) {
	// Message threads read oldest-first, unlike every other listing.
	rows, err := db.QueryContext(ctx, `
		SELECT id, ticket_id, sender_id, body, is_admin, created_at
		FROM messages WHERE ticket_id = $1
		ORDER BY created_at ASC`, ticketID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var msgs []*model.Message
	for rows.Next() {
		var m model.Message
		var senderID sql.NullString
		if err := rows.Scan(&m.ID, &m.TicketID, &senderID, &m.Body, &m.IsAdmin, &m.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		m.SenderID = senderID.String
		msgs = append(msgs, &m)
	}
	return msgs, mapError(rows.Err())
}
