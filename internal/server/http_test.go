package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shirkaty/portal/internal/auth"
	"github.com/shirkaty/portal/internal/blob"
	"github.com/shirkaty/portal/internal/events"
	"github.com/shirkaty/portal/internal/model"
	"github.com/shirkaty/portal/internal/store"
)

// mockStore is an in-memory store.Store for handler tests.
type mockStore struct {
	users         map[string]*model.User
	companies     map[string]*model.Company
	subscriptions map[string]*model.Subscription // keyed by company ID
	tickets       map[string]*model.Ticket
	messages      map[string][]*model.Message
	notifications map[string]*model.Notification
	documents     map[string]*model.Document
	transactions  map[string]*model.Transaction
	txnUpdates    map[string][]*model.TransactionUpdate
}

func newMockStore() *mockStore {
	return &mockStore{
		users:         make(map[string]*model.User),
		companies:     make(map[string]*model.Company),
		subscriptions: make(map[string]*model.Subscription),
		tickets:       make(map[string]*model.Ticket),
		messages:      make(map[string][]*model.Message),
		notifications: make(map[string]*model.Notification),
		documents:     make(map[string]*model.Document),
		transactions:  make(map[string]*model.Transaction),
		txnUpdates:    make(map[string][]*model.TransactionUpdate),
	}
}

func (m *mockStore) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return store.ErrAlreadyExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockStore) GetUser(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (m *mockStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) ListUsers(_ context.Context, filter model.UserFilter) ([]*model.User, int, error) {
	var result []*model.User
	for _, u := range m.users {
		if filter.Search != "" && !strings.Contains(u.Email, filter.Search) && !strings.Contains(u.Name, filter.Search) {
			continue
		}
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (m *mockStore) UpdateUser(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockStore) CreateCompany(_ context.Context, company *model.Company) error {
	m.companies[company.ID] = company
	return nil
}

func (m *mockStore) GetCompany(_ context.Context, id string) (*model.Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *c
	clone.Subscription = m.subscriptions[c.ID]
	return &clone, nil
}

func (m *mockStore) GetCompanyByUser(_ context.Context, userID string) (*model.Company, error) {
	for _, c := range m.companies {
		if c.UserID == userID {
			clone := *c
			clone.Subscription = m.subscriptions[c.ID]
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) ListCompanies(_ context.Context) ([]*model.Company, error) {
	var result []*model.Company
	for _, c := range m.companies {
		clone := *c
		clone.Subscription = m.subscriptions[c.ID]
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) UpdateCompany(_ context.Context, company *model.Company) error {
	if _, ok := m.companies[company.ID]; !ok {
		return store.ErrNotFound
	}
	m.companies[company.ID] = company
	return nil
}

func (m *mockStore) UpsertSubscription(_ context.Context, sub *model.Subscription) error {
	m.subscriptions[sub.CompanyID] = sub
	return nil
}

func (m *mockStore) CreateTicket(_ context.Context, ticket *model.Ticket) error {
	m.tickets[ticket.ID] = ticket
	return nil
}

func (m *mockStore) GetTicket(_ context.Context, id string) (*model.Ticket, error) {
	tk, ok := m.tickets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *tk
	clone.MessageCount = len(m.messages[id])
	return &clone, nil
}

func (m *mockStore) ListTickets(_ context.Context, filter model.TicketFilter) ([]*model.Ticket, int, error) {
	var result []*model.Ticket
outer:
	for _, tk := range m.tickets {
		if filter.UserID != "" && tk.UserID != filter.UserID {
			continue
		}
		if len(filter.Status) > 0 {
			for _, st := range filter.Status {
				if tk.Status == st {
					clone := *tk
					result = append(result, &clone)
					continue outer
				}
			}
			continue
		}
		clone := *tk
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, len(result), nil
}

func (m *mockStore) UpdateTicket(_ context.Context, ticket *model.Ticket) error {
	if _, ok := m.tickets[ticket.ID]; !ok {
		return store.ErrNotFound
	}
	m.tickets[ticket.ID] = ticket
	return nil
}

func (m *mockStore) DeleteTicket(_ context.Context, id string) error {
	if _, ok := m.tickets[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.tickets, id)
	delete(m.messages, id)
	return nil
}

func (m *mockStore) AddMessage(_ context.Context, msg *model.Message) error {
	m.messages[msg.TicketID] = append(m.messages[msg.TicketID], msg)
	return nil
}

func (m *mockStore) GetMessages(_ context.Context, ticketID string) ([]*model.Message, error) {
	return m.messages[ticketID], nil
}

func (m *mockStore) CreateNotification(_ context.Context, n *model.Notification) error {
	m.notifications[n.ID] = n
	return nil
}

func (m *mockStore) ListNotifications(_ context.Context, filter model.NotificationFilter) ([]*model.Notification, error) {
	var result []*model.Notification
	for _, n := range m.notifications {
		if n.UserID != filter.UserID {
			continue
		}
		if filter.UnreadOnly && n.Read {
			continue
		}
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockStore) MarkNotificationsRead(_ context.Context, userID, id string) error {
	if id != "" {
		n, ok := m.notifications[id]
		if !ok || n.UserID != userID {
			return store.ErrNotFound
		}
		n.Read = true
		return nil
	}
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (m *mockStore) CreateDocument(_ context.Context, doc *model.Document) error {
	m.documents[doc.ID] = doc
	return nil
}

func (m *mockStore) GetDocument(_ context.Context, id string) (*model.Document, error) {
	d, ok := m.documents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return d, nil
}

func (m *mockStore) ListDocuments(_ context.Context, filter model.DocumentFilter) ([]*model.Document, int, error) {
	var result []*model.Document
	for _, d := range m.documents {
		if filter.UserID != "" && d.UserID != filter.UserID {
			continue
		}
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (m *mockStore) UpdateDocument(_ context.Context, doc *model.Document) error {
	if _, ok := m.documents[doc.ID]; !ok {
		return store.ErrNotFound
	}
	m.documents[doc.ID] = doc
	return nil
}

func (m *mockStore) CreateTransaction(_ context.Context, txn *model.Transaction) error {
	m.transactions[txn.ID] = txn
	return nil
}

func (m *mockStore) GetTransaction(_ context.Context, id string) (*model.Transaction, error) {
	t, ok := m.transactions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return t, nil
}

func (m *mockStore) ListTransactions(_ context.Context, filter model.TransactionFilter) ([]*model.Transaction, int, error) {
	var result []*model.Transaction
	for _, t := range m.transactions {
		if filter.UserID != "" && t.UserID != filter.UserID {
			continue
		}
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (m *mockStore) UpdateTransaction(_ context.Context, txn *model.Transaction) error {
	if _, ok := m.transactions[txn.ID]; !ok {
		return store.ErrNotFound
	}
	m.transactions[txn.ID] = txn
	return nil
}

func (m *mockStore) AddTransactionUpdate(_ context.Context, upd *model.TransactionUpdate) error {
	m.txnUpdates[upd.TransactionID] = append(m.txnUpdates[upd.TransactionID], upd)
	return nil
}

func (m *mockStore) GetTransactionUpdates(_ context.Context, transactionID string) ([]*model.TransactionUpdate, error) {
	return m.txnUpdates[transactionID], nil
}

func (m *mockStore) GetStats(_ context.Context) (*model.Stats, error) {
	pending := 0
	for _, tk := range m.tickets {
		if tk.Status == model.TicketPending {
			pending++
		}
	}
	return &model.Stats{
		TotalUsers:     len(m.users),
		TotalTickets:   len(m.tickets),
		TotalDocuments: len(m.documents),
		PendingTickets: pending,
	}, nil
}

func (m *mockStore) Close() error { return nil }

// --- test harness ---

func testTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", "shirkaty", time.Hour)
}

// newTestServer creates a PortalServer over a mock store, a noop publisher,
// and in-memory blob storage.
func newTestServer() (*PortalServer, *mockStore, *blob.MemoryStorage, http.Handler) {
	ms := newMockStore()
	bs := blob.NewMemoryStorage()
	s := NewPortalServer(ms, &events.NoopPublisher{}, testTokenManager(), bs, nil)
	return s, ms, bs, s.NewHTTPHandler()
}

// seedUser inserts a user with a known password and returns a valid token.
func seedUser(t *testing.T, s *PortalServer, ms *mockStore, id, email string, role model.Role) string {
	t.Helper()
	hash, err := auth.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}
	user := &model.User{
		ID:           id,
		Email:        email,
		Name:         "Test " + id,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
		PasswordHash: hash,
	}
	if err := ms.CreateUser(context.Background(), user); err != nil {
		t.Fatal(err)
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

// doJSON performs an HTTP request with an optional JSON body and bearer
// token and returns the recorder.
func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// requireStatus asserts the recorder has the expected HTTP status code.
func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected status %d, got %d; body: %s", code, rec.Code, rec.Body.String())
	}
}

// decodeJSON decodes the recorder's response body into v.
func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
