package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shirkaty/portal/internal/model"
	"github.com/shirkaty/portal/internal/store"
)

// documentColumns is the column list used for SELECT statements on the documents table.
const documentColumns = `id, user_id, name, type, reference_date, status, file_key, created_at`

// transactionColumns is the column list used for SELECT statements on the transactions table.
const transactionColumns = `id, user_id, type, status, amount, description, reference,
	created_at, updated_at, completed_at`

func queryCreateNotification(ctx context.Context, db executor, n *model.Notification) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, body, kind, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID,
		n.UserID,
		n.Title,
		n.Body,
		string(n.Kind),
		n.Read,
		n.CreatedAt,
	)
	return mapError(err)
}

func queryListNotifications(ctx context.Context, db executor, filter model.NotificationFilter) ([]*model.Notification, error) {
	query := `
		SELECT id, user_id, title, body, kind, read, created_at
		FROM notifications WHERE user_id = $1`
	args := []any{filter.UserID}
	if filter.UnreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, filter.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var notifs []*model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Kind, &n.Read, &n.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		notifs = append(notifs, &n)
	}
	return notifs, mapError(rows.Err())
}

func queryMarkNotificationsRead(ctx context.Context, db executor, userID, id string) error {
	if id != "" {
		res, err := db.ExecContext(ctx,
			`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND id = $2`, userID, id)
		if err != nil {
			return mapError(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	}
	_, err := db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1`, userID)
	return mapError(err)
}

func queryCreateDocument(ctx context.Context, db executor, d *model.Document) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO documents (id, user_id, name, type, reference_date, status, file_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID,
		d.UserID,
		d.Name,
		d.Type,
		d.ReferenceDate,
		string(d.Status),
		nullString(d.FileKey),
		d.CreatedAt,
	)
	return mapError(err)
}

func queryGetDocument(ctx context.Context, db executor, id string) (*model.Document, error) {
	row := db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

func queryListDocuments(ctx context.Context, db executor, filter model.DocumentFilter) ([]*model.Document, int, error) {
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
		whereClauses = append(whereClauses, "d.user_id = "+nextArg())
		args = append(args, filter.UserID)
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(s))
		}
		whereClauses = append(whereClauses, "d.status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.Type != "" {
		whereClauses = append(whereClauses, "d.type = "+nextArg())
		args = append(args, filter.Type)
	}

	where := ""
	if len(whereClauses) > 0 {
		where = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents d`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := `
		SELECT d.id, d.user_id, d.name, d.type, d.reference_date, d.status, d.file_key, d.created_at,
			u.email, u.name
		FROM documents d
		JOIN users u ON u.id = d.user_id` + where + `
		ORDER BY d.created_at DESC`

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

	var docs []*model.Document
	for rows.Next() {
		var d model.Document
		var fileKey sql.NullString
		err := rows.Scan(
			&d.ID, &d.UserID, &d.Name, &d.Type, &d.ReferenceDate, &d.Status,
			&fileKey, &d.CreatedAt,
			&d.UserEmail, &d.UserName,
		)
		if err != nil {
			return nil, 0, mapError(err)
		}
		d.FileKey = fileKey.String
		docs = append(docs, &d)
	}
	return docs, total, mapError(rows.Err())
}

func queryUpdateDocument(ctx context.Context, db executor, d *model.Document) error {
	res, err := db.ExecContext(ctx, `
		UPDATE documents SET
			name = $2, type = $3, reference_date = $4, status = $5, file_key = $6
		WHERE id = $1`,
		d.ID,
		d.Name,
		d.Type,
		d.ReferenceDate,
		string(d.Status),
		nullString(d.FileKey),
	)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func queryCreateTransaction(ctx context.Context, db executor, t *model.Transaction) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, user_id, type, status, amount, description, reference,
			created_at, updated_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID,
		t.UserID,
		string(t.Type),
		string(t.Status),
		t.Amount,
		nullString(t.Description),
		t.Reference,
		t.CreatedAt,
		t.UpdatedAt,
		nullTimePtr(t.CompletedAt),
	)
	return mapError(err)
}

func queryGetTransaction(ctx context.Context, db executor, id string) (*model.Transaction, error) {
	row := db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, err
	}

	updates, err := queryGetTransactionUpdates(ctx, db, id)
	if err != nil {
		return nil, err
	}
	t.Updates = updates

	return t, nil
}

func queryListTransactions(ctx context.Context, db executor, filter model.TransactionFilter) ([]*model.Transaction, int, error) {
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
		whereClauses = append(whereClauses, "user_id = "+nextArg())
		args = append(args, filter.UserID)
	}
	if len(filter.Type) > 0 {
		placeholders := make([]string, len(filter.Type))
		for i, ty := range filter.Type {
			placeholders[i] = nextArg()
			args = append(args, string(ty))
		}
		whereClauses = append(whereClauses, "type IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, st := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(st))
		}
		whereClauses = append(whereClauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	where := ""
	if len(whereClauses) > 0 {
		where = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions` + where + ` ORDER BY created_at DESC`
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

	var txns []*model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txns = append(txns, t)
	}
	return txns, total, mapError(rows.Err())
}

func queryUpdateTransaction(ctx context.Context, db executor, t *model.Transaction) error {
	res, err := db.ExecContext(ctx, `
		UPDATE transactions SET
			status = $2, amount = $3, description = $4, updated_at = $5, completed_at = $6
		WHERE id = $1`,
		t.ID,
		string(t.Status),
		t.Amount,
		nullString(t.Description),
		t.UpdatedAt,
		nullTimePtr(t.CompletedAt),
	)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func queryAddTransactionUpdate(ctx context.Context, db executor, u *model.TransactionUpdate) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO transaction_updates (id, transaction_id, status, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID,
		u.TransactionID,
		string(u.Status),
		nullString(u.Note),
		nullString(u.CreatedBy),
		u.CreatedAt,
	)
	return mapError(err)
}

func queryGetTransactionUpdates(ctx context.Context, db executor, transactionID string) ([]*model.TransactionUpdate, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, transaction_id, status, note, created_by, created_at
		FROM transaction_updates WHERE transaction_id = $1
		ORDER BY created_at ASC`, transactionID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var updates []*model.TransactionUpdate
	for rows.Next() {
		var u model.TransactionUpdate
		var note, createdBy sql.NullString
		if err := rows.Scan(&u.ID, &u.TransactionID, &u.Status, &note, &createdBy, &u.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		u.Note = note.String
		u.CreatedBy = createdBy.String
		updates = append(updates, &u)
	}
	return updates, mapError(rows.Err())
}

func queryGetStats(ctx context.Context, db executor) (*model.Stats, error) {
	var s model.Stats
	err := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM tickets),
			(SELECT COUNT(*) FROM documents),
			(SELECT COUNT(*) FROM tickets WHERE status = 'pending')`,
	).Scan(&s.TotalUsers, &s.TotalTickets, &s.TotalDocuments, &s.PendingTickets)
	if err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}
