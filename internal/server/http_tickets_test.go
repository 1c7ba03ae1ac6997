package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/shirkaty/portal/internal/model"
)

func TestTicketCreateRoundTrip(t *testing.T) {
	s, ms, _, handler := newTestServer()
	token := seedUser(t, s, ms, "usr-1", "omar@example.com", model.RoleUser)

	rec := doJSON(t, handler, "POST", "/v1/tickets", token, map[string]string{
		"subject":     "تأخر استخراج الشهادة",
		"description": "لم تصلني شهادة التأسيس بعد",
		"category":    "documents",
	})
	requireStatus(t, rec, http.StatusCreated)

	var created model.Ticket
	decodeJSON(t, rec, &created)
	if created.ID == "" {
		t.Fatal("expected a ticket id")
	}
	if created.Status != model.TicketPending {
		t.Fatalf("new tickets start pending, got %q", created.Status)
	}
	if created.Priority != model.PriorityMedium {
		t.Fatalf("expected default medium priority, got %q", created.Priority)
	}

	// Fetching it back returns the same record.
	rec = doJSON(t, handler, "GET", "/v1/tickets/"+created.ID, token, nil)
	requireStatus(t, rec, http.StatusOK)

	var fetched model.Ticket
	decodeJSON(t, rec, &fetched)
	if fetched.ID != created.ID || fetched.Subject != created.Subject || fetched.Description != created.Description {
		t.Fatalf("round trip mismatch: created %+v, fetched %+v", created, fetched)
	}
}

func TestTicketCreateRequiresSubject(t *testing.T) {
	s, ms, _, handler := newTestServer()
	token := seedUser(t, s, ms, "usr-1", "omar@example.com", model.RoleUser)

	rec := doJSON(t, handler, "POST", "/v1/tickets", token, map[string]string{
		"description": "no subject",
	})
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestTicketListScopedToOwner(t *testing.T) {
	s, ms, _, handler := newTestServer()
	tokenA := seedUser(t, s, ms, "usr-a", "a@example.com", model.RoleUser)
	tokenB := seedUser(t, s, ms, "usr-b", "b@example.com", model.RoleUser)

	rec := doJSON(t, handler, "POST", "/v1/tickets", tokenA, map[string]string{
		"subject":     "mine",
		"description": "belongs to a",
	})
	requireStatus(t, rec, http.StatusCreated)

	var listResp struct {
		Tickets []*model.Ticket `json:"tickets"`
		Total   int             `json:"total"`
	}
	rec = doJSON(t, handler, "GET", "/v1/tickets", tokenA, nil)
	requireStatus(t, rec, http.StatusOK)
	decodeJSON(t, rec, &listResp)
	if listResp.Total != 1 {
		t.Fatalf("owner should see 1 ticket, got %d", listResp.Total)
	}

	rec = doJSON(t, handler, "GET", "/v1/tickets", tokenB, nil)
	requireStatus(t, rec, http.StatusOK)
	decodeJSON(t, rec, &listResp)
	if listResp.Total != 0 {
		t.Fatalf("other users should see 0 tickets, got %d", listResp.Total)
	}
}

func TestTicketGetByNonOwnerIsNotFound(t *testing.T) {
	s, ms, _, handler := newTestServer()
	tokenA := seedUser(t, s, ms, "usr-a", "a@example.com", model.RoleUser)
	tokenB := seedUser(t, s, ms, "usr-b", "b@example.com", model.RoleUser)

	rec := doJSON(t, handler, "POST", "/v1/tickets", tokenA, map[string]string{
		"subject":     "private",
		"description": "belongs to a",
	})
	requireStatus(t, rec, http.StatusCreated)
	var created model.Ticket
	decodeJSON(t, rec, &created)

	// 404, not 403, so ids are not probeable.
	rec = doJSON(t, handler, "GET", "/v1/tickets/"+created.ID, tokenB, nil)
	requireStatus(t, rec, http.StatusNotFound)
}

func TestTicketUpdateStatusSetsResolvedAt(t *testing.T) {
	s, ms, _, handler := newTestServer()
	token := seedUser(t, s, ms, "usr-1", "omar@example.com", model.RoleUser)

	rec := doJSON(t, handler, "POST", "/v1/tickets", token, map[string]string{
		"subject":     "resolve me",
		"description": "soon closed",
	})
	requireStatus(t, rec, http.StatusCreated)
	var created model.Ticket
	decodeJSON(t, rec, &created)

	rec = doJSON(t, handler, "PATCH", "/v1/tickets/"+created.ID, token, map[string]string{
		"status": "resolved",
	})
	requireStatus(t, rec, http.StatusOK)

	var updated model.Ticket
	decodeJSON(t, rec, &updated)
	if updated.Status != model.TicketResolved {
		t.Fatalf("expected resolved, got %q", updated.Status)
	}
	if updated.ResolvedAt == nil {
		t.Fatal("expected resolved_at to be set")
	}
}

func TestTicketAssignRequiresAdmin(t *testing.T) {
	s, ms, _, handler := newTestServer()
	token := seedUser(t, s, ms, "usr-1", "omar@example.com", model.RoleUser)

	rec := doJSON(t, handler, "POST", "/v1/tickets", token, map[string]string{
		"subject":     "assign me",
		"description": "needs triage",
	})
	requireStatus(t, rec, http.StatusCreated)
	var created model.Ticket
	decodeJSON(t, rec, &created)

	rec = doJSON(t, handler, "PATCH", "/v1/tickets/"+created.ID, token, map[string]string{
		"assigned_to": "usr-admin",
	})
	requireStatus(t, rec, http.StatusForbidden)
}

func TestTicketMessages(t *testing.T) {
	s, ms, _, handler := newTestServer()
	token := seedUser(t, s, ms, "usr-1", "omar@example.com", model.RoleUser)

	rec := doJSON(t, handler, "POST", "/v1/tickets", token, map[string]string{
		"subject":     "conversation",
		"description": "initial report",
	})
	requireStatus(t, rec, http.StatusCreated)
	var created model.Ticket
	decodeJSON(t, rec, &created)

	rec = doJSON(t, handler, "POST", "/v1/tickets/"+created.ID+"/messages", token, map[string]string{
		"body": "هل من جديد؟",
	})
	requireStatus(t, rec, http.StatusCreated)

	var msg model.Message
	decodeJSON(t, rec, &msg)
	if msg.IsAdmin {
		t.Fatal("customer messages must not be flagged admin")
	}
	if msg.SenderID != "usr-1" {
		t.Fatalf("unexpected sender %q", msg.SenderID)
	}

	rec = doJSON(t, handler, "GET", "/v1/tickets/"+created.ID+"/messages", token, nil)
	requireStatus(t, rec, http.StatusOK)
	var msgResp struct {
		Messages []*model.Message `json:"messages"`
	}
	decodeJSON(t, rec, &msgResp)
	if len(msgResp.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgResp.Messages))
	}

	// Empty bodies are rejected.
	rec = doJSON(t, handler, "POST", "/v1/tickets/"+created.ID+"/messages", token, map[string]string{
		"body": "   ",
	})
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestTicketDelete(t *testing.T) {
	s, ms, _, handler := newTestServer()
	token := seedUser(t, s, ms, "usr-1", "omar@example.com", model.RoleUser)

	rec := doJSON(t, handler, "POST", "/v1/tickets", token, map[string]string{
		"subject":     "delete me",
		"description": "no longer needed",
	})
	requireStatus(t, rec, http.StatusCreated)
	var created model.Ticket
	decodeJSON(t, rec, &created)

	rec = doJSON(t, handler, "DELETE", "/v1/tickets/"+created.ID, token, nil)
	requireStatus(t, rec, http.StatusNoContent)

	if _, err := ms.GetTicket(context.Background(), created.ID); err == nil {
		t.Fatal("ticket should be gone after delete")
	}
}
