package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// testHandler captures the incoming request details and returns a canned response.
type testHandler struct {
	// captured from the request
	method      string
	path        string
	query       string
	body        string
	contentType string
	authz       string

	// canned response
	statusCode   int
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	h.query = r.URL.RawQuery
	h.contentType = r.Header.Get("Content-Type")
	h.authz = r.Header.Get("Authorization")
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		h.body = string(data)
	}

	w.Header().Set("Content-Type", "application/json")
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if h.responseBody != "" {
		_, _ = w.Write([]byte(h.responseBody))
	}
}

// newTestClient creates an HTTPClient pointed at a test server with the given handler.
func newTestClient(h http.Handler, token string) (*HTTPClient, *httptest.Server) {
	srv := httptest.NewServer(h)
	c := NewHTTPClient(srv.URL, token)
	return c, srv
}

func TestHTTPClient_SignIn(t *testing.T) {
	h := &testHandler{
		responseBody: `{
			"token": "tok-xyz",
			"expires_at": 1767225600,
			"user": {
				"id": "usr-abc",
				"email": "amina@example.com",
				"name": "Amina",
				"role": "user",
				"created_at": "2026-01-15T10:00:00Z"
			}
		}`,
	}
	c, srv := newTestClient(h, "")
	defer srv.Close()

	resp, err := c.SignIn(context.Background(), "amina@example.com", "s3cret")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	if h.method != http.MethodPost {
		t.Errorf("method = %q, want POST", h.method)
	}
	if h.path != "/v1/auth/signin" {
		t.Errorf("path = %q, want /v1/auth/signin", h.path)
	}

	var reqBody map[string]string
	if err := json.Unmarshal([]byte(h.body), &reqBody); err != nil {
		t.Fatalf("unmarshaling request body: %v", err)
	}
	if reqBody["email"] != "amina@example.com" {
		t.Errorf("email = %q", reqBody["email"])
	}
	if reqBody["password"] != "s3cret" {
		t.Errorf("password = %q", reqBody["password"])
	}

	if resp.Token != "tok-xyz" {
		t.Errorf("token = %q, want tok-xyz", resp.Token)
	}
	if resp.User == nil || resp.User.Email != "amina@example.com" {
		t.Errorf("user = %+v", resp.User)
	}
}

func TestHTTPClient_SignIn_InvalidCredential(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusUnauthorized,
		responseBody: `{"error": "invalid email or password"}`,
	}
	c, srv := newTestClient(h, "")
	defer srv.Close()

	_, err := c.SignIn(context.Background(), "amina@example.com", "wrong")
	if err == nil {
		t.Fatal("SignIn() error = nil, want APIError")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid email or password" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestHTTPClient_CreateTicket(t *testing.T) {
	h := &testHandler{
		responseBody: `{
			"id": "tk-abc",
			"user_id": "usr-abc",
			"subject": "Company number missing",
			"description": "The certificate has no number",
			"status": "pending",
			"priority": "high",
			"created_at": "2026-01-15T10:00:00Z",
			"updated_at": "2026-01-15T10:00:00Z"
		}`,
	}
	c, srv := newTestClient(h, "tok-xyz")
	defer srv.Close()

	ticket, err := c.CreateTicket(context.Background(), &CreateTicketRequest{
		Subject:     "Company number missing",
		Description: "The certificate has no number",
		Priority:    "high",
	})
	if err != nil {
		t.Fatalf("CreateTicket() error = %v", err)
	}

	if h.method != http.MethodPost || h.path != "/v1/tickets" {
		t.Errorf("request = %s %s, want POST /v1/tickets", h.method, h.path)
	}
	if h.authz != "Bearer tok-xyz" {
		t.Errorf("authorization = %q, want Bearer tok-xyz", h.authz)
	}
	if ticket.ID != "tk-abc" || ticket.Status != "pending" {
		t.Errorf("ticket = %+v", ticket)
	}
}

func TestHTTPClient_ListTickets_Query(t *testing.T) {
	h := &testHandler{responseBody: `{"tickets": [], "total": 0}`}
	c, srv := newTestClient(h, "tok")
	defer srv.Close()

	_, err := c.ListTickets(context.Background(), &ListTicketsRequest{
		Status:   []string{"pending", "in_progress"},
		Priority: []string{"urgent"},
		Search:   "certificate",
		Limit:    10,
		Offset:   20,
	})
	if err != nil {
		t.Fatalf("ListTickets() error = %v", err)
	}

	for _, want := range []string{
		"status=pending%2Cin_progress",
		"priority=urgent",
		"search=certificate",
		"limit=10",
		"offset=20",
	} {
		if !strings.Contains(h.query, want) {
			t.Errorf("query %q missing %q", h.query, want)
		}
	}
}

func TestHTTPClient_GetTicket_PathEscape(t *testing.T) {
	h := &testHandler{
		responseBody: `{"id": "tk-1", "subject": "x", "status": "pending", "priority": "low"}`,
	}
	c, srv := newTestClient(h, "tok")
	defer srv.Close()

	if _, err := c.GetTicket(context.Background(), "tk-1"); err != nil {
		t.Fatalf("GetTicket() error = %v", err)
	}
	if h.path != "/v1/tickets/tk-1" {
		t.Errorf("path = %q", h.path)
	}
}

func TestHTTPClient_AddMessage(t *testing.T) {
	h := &testHandler{
		responseBody: `{
			"id": "msg-1",
			"ticket_id": "tk-1",
			"sender_id": "usr-abc",
			"body": "any update?",
			"is_admin": false,
			"created_at": "2026-01-15T10:00:00Z"
		}`,
	}
	c, srv := newTestClient(h, "tok")
	defer srv.Close()

	msg, err := c.AddMessage(context.Background(), "tk-1", "any update?")
	if err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}
	if h.path != "/v1/tickets/tk-1/messages" {
		t.Errorf("path = %q", h.path)
	}
	if msg.Body != "any update?" || msg.IsAdmin {
		t.Errorf("message = %+v", msg)
	}
}

func TestHTTPClient_MarkNotificationRead(t *testing.T) {
	h := &testHandler{statusCode: http.StatusNoContent}
	c, srv := newTestClient(h, "tok")
	defer srv.Close()

	if err := c.MarkNotificationRead(context.Background(), "ntf-1"); err != nil {
		t.Fatalf("MarkNotificationRead() error = %v", err)
	}
	if h.path != "/v1/notifications/read" {
		t.Errorf("path = %q", h.path)
	}
	if !strings.Contains(h.body, `"id":"ntf-1"`) {
		t.Errorf("body = %q", h.body)
	}
}

func TestHTTPClient_MarkAllNotificationsRead(t *testing.T) {
	h := &testHandler{statusCode: http.StatusNoContent}
	c, srv := newTestClient(h, "tok")
	defer srv.Close()

	if err := c.MarkAllNotificationsRead(context.Background()); err != nil {
		t.Fatalf("MarkAllNotificationsRead() error = %v", err)
	}
	if strings.Contains(h.body, `"id"`) {
		t.Errorf("body = %q, want no id field", h.body)
	}
}

func TestHTTPClient_UploadDocument(t *testing.T) {
	h := &testHandler{
		statusCode: http.StatusCreated,
		responseBody: `{
			"id": "doc-1",
			"user_id": "usr-abc",
			"name": "Certificate of Incorporation",
			"type": "certificate",
			"status": "completed",
			"created_at": "2026-01-15T10:00:00Z"
		}`,
	}
	c, srv := newTestClient(h, "tok")
	defer srv.Close()

	doc, err := c.UploadDocument(context.Background(), "Certificate of Incorporation", "certificate", "cert.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("UploadDocument() error = %v", err)
	}
	if !strings.HasPrefix(h.contentType, "multipart/form-data") {
		t.Errorf("content-type = %q, want multipart/form-data", h.contentType)
	}
	if !strings.Contains(h.body, "%PDF-1.4") {
		t.Error("request body missing file content")
	}
	if doc.ID != "doc-1" {
		t.Errorf("document = %+v", doc)
	}
}

func TestHTTPClient_DownloadDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 body"))
	}))
	defer srv.Close()
	c := NewHTTPClient(srv.URL, "tok")

	data, err := c.DownloadDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("DownloadDocument() error = %v", err)
	}
	if string(data) != "%PDF-1.4 body" {
		t.Errorf("data = %q", data)
	}
}

func TestHTTPClient_GetStats(t *testing.T) {
	h := &testHandler{
		responseBody: `{"total_users": 12, "total_tickets": 40, "total_documents": 7, "pending_tickets": 3}`,
	}
	c, srv := newTestClient(h, "admin-tok")
	defer srv.Close()

	stats, err := c.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if h.path != "/v1/admin/stats" {
		t.Errorf("path = %q", h.path)
	}
	if stats.TotalUsers != 12 || stats.PendingTickets != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestHTTPClient_ErrorWithoutJSONBody(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusInternalServerError,
		responseBody: `boom`,
	}
	c, srv := newTestClient(h, "tok")
	defer srv.Close()

	_, err := c.Health(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Message != "boom" {
		t.Errorf("message = %q, want raw body", apiErr.Message)
	}
}

func TestHTTPClient_SetToken(t *testing.T) {
	h := &testHandler{responseBody: `{"status": "ok"}`}
	c, srv := newTestClient(h, "")
	defer srv.Close()

	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if h.authz != "" {
		t.Errorf("authorization = %q, want empty before SetToken", h.authz)
	}

	c.SetToken("fresh")
	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if h.authz != "Bearer fresh" {
		t.Errorf("authorization = %q, want Bearer fresh", h.authz)
	}
}
