package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shirkaty/portal/internal/model"
	"github.com/shirkaty/portal/internal/store"
)

// handleListTransactions handles GET /v1/transactions, scoped to the caller.
func (s *PortalServer) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	filter := model.TransactionFilter{UserID: identity.UserID}
	if v := r.URL.Query().Get("status"); v != "" {
		for _, st := range strings.Split(v, ",") {
			filter.Status = append(filter.Status, model.TransactionStatus(st))
		}
	}

	transactions, _, err := s.store.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if transactions == nil {
		transactions = []*model.Transaction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": transactions})
}

// handleGetTransaction handles GET /v1/transactions/{id}, returning the
// transaction with its update timeline.
func (s *PortalServer) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
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

	txn, err := s.store.GetTransaction(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get transaction")
		return
	}
	if identity.Role != model.RoleAdmin && txn.UserID != identity.UserID {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	updates, err := s.store.GetTransactionUpdates(r.Context(), txn.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get transaction updates")
		return
	}
	txn.Updates = updates

	writeJSON(w, http.StatusOK, txn)
}
