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

// Arabic notification strings sent when the support team replies to a
// ticket. The portal is Arabic-first; these match the customer-facing copy.
const (
	replyNotificationTitle = "رد جديد على تذكرتك"
	replyNotificationBody  = "تم الرد على تذكرتك من قبل فريق الدعم"
)

// handleAdminStats handles GET /v1/admin/stats.
func (s *PortalServer) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleAdminListUsers handles GET /v1/admin/users.
func (s *PortalServer) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.UserFilter{Search: q.Get("search")}
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

	users, total, err := s.store.ListUsers(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"total": total,
	})
}

// handleAdminListTickets handles GET /v1/admin/tickets: every ticket, with
// the owner's account details joined in.
func (s *PortalServer) handleAdminListTickets(w http.ResponseWriter, r *http.Request) {
	filter := ticketFilterFromQuery(r)

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

// handleAdminReply handles POST /v1/admin/tickets/{id}/reply. Beyond adding
// the message, a reply moves a pending ticket to in_progress and drops an
// Arabic notification in the owner's bell menu.
func (s *PortalServer) handleAdminReply(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

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

	ticket, err := s.store.GetTicket(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "ticket not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get ticket")
		return
	}

	msg, err := s.appendMessage(r, ticket, identity.UserID, in.Body, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add reply")
		return
	}

	if ticket.Status == model.TicketPending {
		ticket.Status = model.TicketInProgress
		ticket.UpdatedAt = time.Now().UTC()
		if err := s.store.UpdateTicket(r.Context(), ticket); err != nil {
			s.logger.Warn("failed to move ticket to in_progress", "ticket_id", ticket.ID, "error", err)
		} else {
			s.publish(r.Context(), events.TopicTicketUpdated, events.TicketUpdated{
				Ticket:  ticket,
				Changes: map[string]any{"status": model.TicketInProgress},
			})
		}
	}

	s.notifyUser(r, ticket.UserID, replyNotificationTitle, replyNotificationBody, model.NotifyInfo)

	writeJSON(w, http.StatusCreated, msg)
}

// notifyUser drops a notification in a user's bell menu, best-effort.
func (s *PortalServer) notifyUser(r *http.Request, userID, title, body string, kind model.NotificationKind) {
	id, err := idgen.Generate(idgen.PrefixNotification)
	if err != nil {
		s.logger.Warn("failed to generate notification id", "error", err)
		return
	}
	n := &model.Notification{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Body:      body,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateNotification(r.Context(), n); err != nil {
		s.logger.Warn("failed to create notification", "user_id", userID, "error", err)
		return
	}
	s.publish(r.Context(), events.TopicNotificationCreated, events.NotificationCreated{Notification: n})
}

// handleAdminListDocuments handles GET /v1/admin/documents.
func (s *PortalServer) handleAdminListDocuments(w http.ResponseWriter, r *http.Request) {
	var filter model.DocumentFilter
	if v := r.URL.Query().Get("status"); v != "" {
		for _, st := range strings.Split(v, ",") {
			filter.Status = append(filter.Status, model.DocumentStatus(st))
		}
	}

	documents, _, err := s.store.ListDocuments(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if documents == nil {
		documents = []*model.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": documents})
}

// handleAdminUpdateDocument handles PATCH /v1/admin/documents/{id},
// typically flipping a pending request to completed once the paperwork is
// produced.
func (s *PortalServer) handleAdminUpdateDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in struct {
		Status *string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	doc, err := s.store.GetDocument(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get document")
		return
	}

	changes := map[string]any{}
	if in.Status != nil {
		status := model.DocumentStatus(*in.Status)
		if !status.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		doc.Status = status
		changes["status"] = status
	}
	if len(changes) == 0 {
		writeJSON(w, http.StatusOK, doc)
		return
	}

	if err := s.store.UpdateDocument(r.Context(), doc); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update document")
		return
	}

	s.publish(r.Context(), events.TopicDocumentUpdated, events.DocumentUpdated{Document: doc, Changes: changes})
	writeJSON(w, http.StatusOK, doc)
}

// handleAdminListCompanies handles GET /v1/admin/companies.
func (s *PortalServer) handleAdminListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.store.ListCompanies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list companies")
		return
	}
	if companies == nil {
		companies = []*model.Company{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": companies})
}

// handleAdminUpdateCompany handles PATCH /v1/admin/companies/{id}: the back
// office records progress on the formation (registration number, status,
// incorporation date).
func (s *PortalServer) handleAdminUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in struct {
		Name           *string `json:"name"`
		Number         *string `json:"number"`
		Status         *string `json:"status"`
		IncorporatedAt *string `json:"incorporated_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	company, err := s.store.GetCompany(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get company")
		return
	}

	changes := map[string]any{}
	if in.Name != nil {
		company.Name = *in.Name
		changes["name"] = *in.Name
	}
	if in.Number != nil {
		company.Number = *in.Number
		changes["number"] = *in.Number
	}
	if in.Status != nil {
		status := model.CompanyStatus(*in.Status)
		if !status.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		company.Status = status
		changes["status"] = status
	}
	if in.IncorporatedAt != nil {
		inc, err := time.Parse("2006-01-02", *in.IncorporatedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "incorporated_at must be YYYY-MM-DD")
			return
		}
		company.IncorporatedAt = &inc
		changes["incorporated_at"] = inc
	}
	if len(changes) == 0 {
		writeJSON(w, http.StatusOK, company)
		return
	}

	if err := s.store.UpdateCompany(r.Context(), company); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update company")
		return
	}

	s.publish(r.Context(), events.TopicCompanyUpdated, events.CompanyUpdated{Company: company, Changes: changes})
	writeJSON(w, http.StatusOK, company)
}

// handleAdminSetSubscription handles PUT /v1/admin/companies/{id}/subscription.
func (s *PortalServer) handleAdminSetSubscription(w http.ResponseWriter, r *http.Request) {
	companyID := r.PathValue("id")
	if companyID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in struct {
		Plan        string `json:"plan"`
		Price       int64  `json:"price"`
		Status      string `json:"status"`
		RenewalDate string `json:"renewal_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	plan := model.Plan(in.Plan)
	if !plan.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid plan")
		return
	}
	status := model.SubscriptionStatus(in.Status)
	if in.Status == "" {
		status = model.SubscriptionActive
	}
	if !status.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	company, err := s.store.GetCompany(r.Context(), companyID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get company")
		return
	}

	id, err := idgen.Generate(idgen.PrefixSubscription)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate id")
		return
	}
	now := time.Now().UTC()
	sub := &model.Subscription{
		ID:          id,
		CompanyID:   company.ID,
		Plan:        plan,
		Price:       in.Price,
		Status:      status,
		StartedAt:   now,
		RenewalDate: now.AddDate(1, 0, 0),
	}
	if in.RenewalDate != "" {
		renewal, err := time.Parse("2006-01-02", in.RenewalDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "renewal_date must be YYYY-MM-DD")
			return
		}
		sub.RenewalDate = renewal
	}

	if err := s.store.UpsertSubscription(r.Context(), sub); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to set subscription")
		return
	}

	company.Subscription = sub
	s.publish(r.Context(), events.TopicCompanyUpdated, events.CompanyUpdated{
		Company: company,
		Changes: map[string]any{"subscription": sub},
	})
	writeJSON(w, http.StatusOK, sub)
}

// handleAdminCreateTransaction handles POST /v1/admin/transactions.
func (s *PortalServer) handleAdminCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID      string `json:"user_id"`
		Type        string `json:"type"`
		Amount      int64  `json:"amount"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	txnType := model.TransactionType(in.Type)
	if !txnType.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid type")
		return
	}
	if in.Amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}

	if _, err := s.store.GetUser(r.Context(), in.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to look up user")
		return
	}

	id, err := idgen.Generate(idgen.PrefixTransaction)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate id")
		return
	}
	reference, err := idgen.Reference()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate reference")
		return
	}

	now := time.Now().UTC()
	txn := &model.Transaction{
		ID:          id,
		UserID:      in.UserID,
		Type:        txnType,
		Status:      model.TxnPending,
		Amount:      in.Amount,
		Description: in.Description,
		Reference:   reference,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTransaction(r.Context(), txn); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	s.publish(r.Context(), events.TopicTransactionCreated, events.TransactionCreated{Transaction: txn})
	writeJSON(w, http.StatusCreated, txn)
}

// handleAdminUpdateTransaction handles PATCH /v1/admin/transactions/{id}.
// A status change is also appended to the transaction's update timeline.
func (s *PortalServer) handleAdminUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in struct {
		Status      *string `json:"status"`
		Amount      *int64  `json:"amount"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	txn, err := s.store.GetTransaction(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get transaction")
		return
	}

	changes := map[string]any{}
	var statusChanged bool
	if in.Status != nil {
		status := model.TransactionStatus(*in.Status)
		if !status.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		statusChanged = status != txn.Status
		txn.Status = status
		changes["status"] = status
		if status == model.TxnCompleted {
			now := time.Now().UTC()
			txn.CompletedAt = &now
		}
	}
	if in.Amount != nil {
		if *in.Amount < 0 {
			writeError(w, http.StatusBadRequest, "amount must not be negative")
			return
		}
		txn.Amount = *in.Amount
		changes["amount"] = *in.Amount
	}
	if in.Description != nil {
		txn.Description = *in.Description
		changes["description"] = *in.Description
	}
	if len(changes) == 0 {
		writeJSON(w, http.StatusOK, txn)
		return
	}
	txn.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTransaction(r.Context(), txn); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update transaction")
		return
	}

	var update *model.TransactionUpdate
	if statusChanged {
		updateID, idErr := idgen.Generate(idgen.PrefixTransaction)
		if idErr == nil {
			update = &model.TransactionUpdate{
				ID:            updateID,
				TransactionID: txn.ID,
				Status:        txn.Status,
				CreatedBy:     identity.UserID,
				CreatedAt:     time.Now().UTC(),
			}
			if err := s.store.AddTransactionUpdate(r.Context(), update); err != nil {
				s.logger.Warn("failed to append transaction update", "transaction_id", txn.ID, "error", err)
				update = nil
			}
		}
	}

	s.publish(r.Context(), events.TopicTransactionUpdated, events.TransactionUpdated{Transaction: txn, Update: update})
	writeJSON(w, http.StatusOK, txn)
}

// handleAdminAddTransactionUpdate handles POST /v1/admin/transactions/{id}/updates:
// a freeform progress note on the timeline.
func (s *PortalServer) handleAdminAddTransactionUpdate(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(in.Note) == "" {
		writeError(w, http.StatusBadRequest, "note is required")
		return
	}

	txn, err := s.store.GetTransaction(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get transaction")
		return
	}

	updateID, err := idgen.Generate(idgen.PrefixTransaction)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate id")
		return
	}
	update := &model.TransactionUpdate{
		ID:            updateID,
		TransactionID: txn.ID,
		Status:        txn.Status,
		Note:          in.Note,
		CreatedBy:     identity.UserID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.AddTransactionUpdate(r.Context(), update); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add update")
		return
	}

	s.publish(r.Context(), events.TopicTransactionUpdated, events.TransactionUpdated{Transaction: txn, Update: update})
	writeJSON(w, http.StatusCreated, update)
}

// handleAdminCreateNotification handles POST /v1/admin/notifications.
func (s *PortalServer) handleAdminCreateNotification(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID string `json:"user_id"`
		Title  string `json:"title"`
		Body   string `json:"body"`
		Kind   string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.UserID == "" || strings.TrimSpace(in.Title) == "" {
		writeError(w, http.StatusBadRequest, "user_id and title are required")
		return
	}
	kind := model.NotificationKind(in.Kind)
	if in.Kind == "" {
		kind = model.NotifyInfo
	}
	if !kind.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid kind")
		return
	}

	if _, err := s.store.GetUser(r.Context(), in.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to look up user")
		return
	}

	id, err := idgen.Generate(idgen.PrefixNotification)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate id")
		return
	}
	n := &model.Notification{
		ID:        id,
		UserID:    in.UserID,
		Title:     in.Title,
		Body:      in.Body,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateNotification(r.Context(), n); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create notification")
		return
	}

	s.publish(r.Context(), events.TopicNotificationCreated, events.NotificationCreated{Notification: n})
	writeJSON(w, http.StatusCreated, n)
}
