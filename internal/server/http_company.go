package server

import (
	"errors"
	"net/http"

	"github.com/shirkaty/portal/internal/store"
)

// handleGetCompany handles GET /v1/company: the caller's company joined with
// its subscription. Users without a company (no formation started) get 404.
func (s *PortalServer) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	company, err := s.store.GetCompanyByUser(r.Context(), identity.UserID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no company on file")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get company")
		return
	}
	writeJSON(w, http.StatusOK, company)
}
