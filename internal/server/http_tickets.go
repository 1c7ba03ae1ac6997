package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shirkaty/portal/internal/events"
	"github.com/shirkaty/portal/internal/idgen"
	"github.com/shirkaty/portal/internal/model"
	"github.com/shirkaty/portal/internal/store"
)

type createTicketInput struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

type updateTicketInput struct {
	Subject     *string `json:"subject"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssignedTo  *string `json:"assigned_to"`
}

// handleCreateTicket handles POST /v1/tickets.
func (s *PortalServer) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	var in createTicketInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	priority := model.TicketPriority(in.Priority)
	if in.Priority == "" {
		priority = model.PriorityMedium
	}

	id, err := idgen.Generate(idgen.PrefixTicket)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate id")
		return
	}
	now := time.Now().UTC()
	ticket := &model.Ticket{
		ID:          id,
		UserID:      identity.UserID,
		Subject:     strings.TrimSpace(in.Subject),
		Description: strings.TrimSpace(in.Description),
		Status:      model.TicketPending,
		Priority:    priority,
		Category:    in.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := model.ValidateTicket(ticket); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.CreateTicket(r.Context(), ticket); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create ticket")
		return
	}

	s.publish(r.Context(), events.TopicTicketCreated, events.TicketCreated{Ticket: ticket})
	writeJSON(w, http.StatusCreated, ticket)
}

// handleListTickets handles GET /v1/tickets. Standard users only see their
// own tickets; admins see everything via /v1/admin/tickets.
func (s *PortalServer) handleListTickets(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	filter := ticketFilterFromQuery(r)
	filter.UserID = identity.UserID

	tickets, total, err := s.store.ListTickets(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tickets")
		return
	}
	if tickets == nil {
		tickets = []*model.Ticket{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tickets": tickets,
		"total":   total,
	})
}

func ticketFilterFromQuery(r *http.Request) model.TicketFilter {
	q := r.URL.Query()
	filter := model.TicketFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	if v := q.Get("status"); v != "" {
		for _, st := range strings.Split(v, ",") {
			filter.Status = append(filter.Status, model.TicketStatus(st))
		}
	}
	if v := q.Get("priority"); v != "" {
		for _, p := range strings.Split(v, ",") {
			filter.Priority = append(filter.Priority, model.TicketPriority(p))
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}
	return filter
}

// getOwnedTicket fetches a ticket and checks the caller may see it. Admins
// may see any ticket.
func (s *PortalServer) getOwnedTicket(w http.ResponseWriter, r *http.Request) (*model.Ticket, bool) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return nil, false
	}
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return nil, false
	}

	ticket, err := s.store.GetTicket(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "ticket not found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get ticket")
		return nil, false
	}
	if identity.Role != model.RoleAdmin && ticket.UserID != identity.UserID {
		// Report not-found rather than forbidden so ticket ids are not
		// probeable.
		writeError(w, http.StatusNotFound, "ticket not found")
		return nil, false
	}
	return ticket, true
}

// handleGetTicket handles GET /v1/tickets/{id}.
func (s *PortalServer) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, ok := s.getOwnedTicket(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// handleUpdateTicket handles PATCH /v1/tickets/{id}.
func (s *PortalServer) handleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	ticket, ok := s.getOwnedTicket(w, r)
	if !ok {
		return
	}
	identity, _ := identityFrom(r.Context())

	var in updateTicketInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	changes := map[string]any{}
	if in.Subject != nil {
		ticket.Subject = *in.Subject
		changes["subject"] = *in.Subject
	}
	if in.Description != nil {
		ticket.Description = *in.Description
		changes["description"] = *in.Description
	}
	if in.Status != nil {
		status := model.TicketStatus(*in.Status)
		if !status.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		ticket.Status = status
		changes["status"] = status
		if status == model.TicketResolved || status == model.TicketClosed {
			now := time.Now().UTC()
			ticket.ResolvedAt = &now
		}
	}
	if in.Priority != nil {
		priority := model.TicketPriority(*in.Priority)
		if !priority.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid priority")
			return
		}
		ticket.Priority = priority
		changes["priority"] = priority
	}
	if in.AssignedTo != nil {
		if identity.Role != model.RoleAdmin {
			writeError(w, http.StatusForbidden, "only admins can assign tickets")
			return
		}
		ticket.AssignedTo = *in.AssignedTo
		changes["assigned_to"] = *in.AssignedTo
	}
	if len(changes) == 0 {
		writeJSON(w, http.StatusOK, ticket)
		return
	}
	ticket.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTicket(r.Context(), ticket); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "ticket not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update ticket")
		return
	}

	s.publish(r.Context(), events.TopicTicketUpdated, events.TicketUpdated{Ticket: ticket, Changes: changes})
	writeJSON(w, http.StatusOK, ticket)
}

// handleDeleteTicket handles DELETE /v1/tickets/{id}.
func (s *PortalServer) handleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	ticket, ok := s.getOwnedTicket(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteTicket(r.Context(), ticket.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "ticket not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete ticket")
		return
	}

	s.publish(r.Context(), events.TopicTicketDeleted, events.TicketDeleted{
		TicketID: ticket.ID,
		UserID:   ticket.UserID,
	})
	w.WriteHeader(http.StatusNoContent)
}

// handleAddMessage handles POST /v1/tickets/{id}/messages.
func (s *PortalServer) handleAddMessage(w http.ResponseWriter, r *http.Request) {
	ticket, ok := s.getOwnedTicket(w, r)
	if !ok {
		return
	}
	identity, _ := identityFrom(r.Context())

	var in struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(in.Body) == "" {
		writeError(w, http.StatusBadRequest, "body is required")
		return
	}

	msg, err := s.appendMessage(r, ticket, identity.UserID, in.Body, identity.Role == model.RoleAdmin)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add message")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// appendMessage inserts a ticket message and publishes the feed event.
func (s *PortalServer) appendMessage(r *http.Request, ticket *model.Ticket, senderID, body string, isAdmin bool) (*model.Message, error) {
	id, err := idgen.Generate(idgen.PrefixMessage)
	if err != nil {
		return nil, err
	}
	msg := &model.Message{
		ID:        id,
		TicketID:  ticket.ID,
		SenderID:  senderID,
		Body:      body,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AddMessage(r.Context(), msg); err != nil {
		return nil, err
	}
	s.publish(r.Context(), events.TopicMessageAdded, events.MessageAdded{Message: msg})
	return msg, nil
}

// handleGetMessages handles GET /v1/tickets/{id}/messages.
func (s *PortalServer) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	ticket, ok := s.getOwnedTicket(w, r)
	if !ok {
		return
	}

	messages, err := s.store.GetMessages(r.Context(), ticket.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get messages")
		return
	}
	if messages == nil {
		messages = []*model.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}
