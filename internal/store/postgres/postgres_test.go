package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/shirkaty/portal/internal/model"
	"github.com/shirkaty/portal/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var ticketRowColumns = []string{
	"id", "user_id", "subject", "description", "status", "priority",
	"category", "assigned_to", "created_at", "updated_at", "resolved_at",
}

var userRowColumns = []string{
	"id", "email", "name", "role", "company_name", "phone", "password_hash", "created_at",
}

func TestScanHelpers(t *testing.T) {
	if nullTimePtr(nil).Valid {
		t.Error("nullTimePtr(nil) should be invalid")
	}
	now := time.Now()
	if nt := nullTimePtr(&now); !nt.Valid || !nt.Time.Equal(now) {
		t.Errorf("nullTimePtr(now) = %v", nt)
	}

	if nullString("").Valid {
		t.Error("nullString(\"\") should be invalid")
	}
	if ns := nullString("hello"); !ns.Valid || ns.String != "hello" {
		t.Errorf("nullString(\"hello\") = %v", ns)
	}
}

func TestCreateTicket(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO tickets").
		WithArgs(
			"tk-abc1234567", "usr-u1", "Subject", "Body", "pending", "high",
			sqlmock.AnyArg(), sqlmock.AnyArg(), now, now, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := queryCreateTicket(context.Background(), db, &model.Ticket{
		ID:          "tk-abc1234567",
		UserID:      "usr-u1",
		Subject:     "Subject",
		Description: "Body",
		Status:      model.TicketPending,
		Priority:    model.PriorityHigh,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("queryCreateTicket: %v", err)
	}
}

func TestGetTicket_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .+ FROM tickets WHERE id = \\$1").
		WithArgs("tk-missing").
		WillReturnError(sql.ErrNoRows)

	_, err := queryGetTicket(context.Background(), db, "tk-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want store.ErrNotFound", err)
	}
}

func TestGetTicket_WithMessages(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM tickets WHERE id = \\$1").
		WithArgs("tk-1").
		WillReturnRows(sqlmock.NewRows(ticketRowColumns).
			AddRow("tk-1", "usr-u1", "Subject", "Body", "pending", "low",
				nil, nil, now, now, nil))
	mock.ExpectQuery("SELECT .+ FROM messages WHERE ticket_id = \\$1").
		WithArgs("tk-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "ticket_id", "sender_id", "body", "is_admin", "created_at"}).
			AddRow("msg-1", "tk-1", "usr-u1", "first", false, now).
			AddRow("msg-2", "tk-1", nil, "second", true, now.Add(time.Minute)))

	tk, err := queryGetTicket(context.Background(), db, "tk-1")
	if err != nil {
		t.Fatalf("queryGetTicket: %v", err)
	}
	if tk.MessageCount != 2 || len(tk.Messages) != 2 {
		t.Errorf("MessageCount = %d, Messages = %d, want 2", tk.MessageCount, len(tk.Messages))
	}
	if tk.Messages[1].SenderID != "" || !tk.Messages[1].IsAdmin {
		t.Errorf("admin message scanned wrong: %+v", tk.Messages[1])
	}
}

func TestListTickets_OwnerScope(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tickets t WHERE t.user_id = \\$1").
		WithArgs("usr-u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT t.id, .+ FROM tickets t").
		WithArgs("usr-u1").
		WillReturnRows(sqlmock.NewRows(append(append([]string{}, ticketRowColumns...), "email", "name", "message_count")).
			AddRow("tk-1", "usr-u1", "Subject", "Body", "pending", "low",
				nil, nil, now, now, nil, "amira@example.co.uk", "Amira", 3))

	tickets, total, err := queryListTickets(context.Background(), db, model.TicketFilter{UserID: "usr-u1"})
	if err != nil {
		t.Fatalf("queryListTickets: %v", err)
	}
	if total != 1 || len(tickets) != 1 {
		t.Fatalf("got %d tickets, total %d", len(tickets), total)
	}
	if tickets[0].UserEmail != "amira@example.co.uk" || tickets[0].MessageCount != 3 {
		t.Errorf("joined fields scanned wrong: %+v", tickets[0])
	}
}

func TestUpdateTicket_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("UPDATE tickets SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := queryUpdateTicket(context.Background(), db, &model.Ticket{
		ID:       "tk-missing",
		Subject:  "s",
		Status:   model.TicketPending,
		Priority: model.PriorityLow,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want store.ErrNotFound", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM users WHERE lower\\(email\\) = lower\\(\\$1\\)").
		WithArgs("Amira@Example.co.uk").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("usr-u1", "amira@example.co.uk", "Amira", "admin", nil, nil, "$2a$10$h", now))

	u, err := queryGetUserByEmail(context.Background(), db, "Amira@Example.co.uk")
	if err != nil {
		t.Fatalf("queryGetUserByEmail: %v", err)
	}
	if u.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want admin", u.Role)
	}
}

func TestMarkNotificationsRead_All(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("UPDATE notifications SET read = TRUE WHERE user_id = \\$1").
		WithArgs("usr-u1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	if err := queryMarkNotificationsRead(context.Background(), db, "usr-u1", ""); err != nil {
		t.Fatalf("queryMarkNotificationsRead: %v", err)
	}
}

func TestMarkNotificationsRead_SingleNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("UPDATE notifications SET read = TRUE WHERE user_id = \\$1 AND id = \\$2").
		WithArgs("usr-u1", "ntf-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := queryMarkNotificationsRead(context.Background(), db, "usr-u1", "ntf-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want store.ErrNotFound", err)
	}
}

func TestGetStats(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"users", "tickets", "documents", "pending"}).
			AddRow(10, 25, 7, 3))

	stats, err := queryGetStats(context.Background(), db)
	if err != nil {
		t.Fatalf("queryGetStats: %v", err)
	}
	if stats.TotalUsers != 10 || stats.PendingTickets != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestGetCompanyByUser_WithSubscription(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM companies WHERE user_id = \\$1").
		WithArgs("usr-u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "number", "status", "incorporated_at", "created_at"}).
			AddRow("co-1", "usr-u1", "Misk Trading Ltd", "12345678", "active", now, now))
	mock.ExpectQuery("SELECT .+ FROM subscriptions WHERE company_id = \\$1").
		WithArgs("co-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "plan", "price", "status", "started_at", "renewal_date"}).
			AddRow("sub-1", "co-1", "professional", 2900, "active", now, now.AddDate(1, 0, 0)))

	c, err := queryGetCompany(context.Background(), db, `WHERE user_id = $1`, "usr-u1")
	if err != nil {
		t.Fatalf("queryGetCompany: %v", err)
	}
	if c.Subscription == nil || c.Subscription.Plan != model.PlanProfessional {
		t.Errorf("Subscription = %+v", c.Subscription)
	}
}

func TestGetCompanyByUser_NoSubscription(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM companies WHERE user_id = \\$1").
		WithArgs("usr-u2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "number", "status", "incorporated_at", "created_at"}).
			AddRow("co-2", "usr-u2", "New Venture Ltd", nil, "pending", nil, now))
	mock.ExpectQuery("SELECT .+ FROM subscriptions WHERE company_id = \\$1").
		WithArgs("co-2").
		WillReturnError(sql.ErrNoRows)

	c, err := queryGetCompany(context.Background(), db, `WHERE user_id = $1`, "usr-u2")
	if err != nil {
		t.Fatalf("queryGetCompany: %v", err)
	}
	if c.Subscription != nil {
		t.Errorf("expected nil Subscription, got %+v", c.Subscription)
	}
}
