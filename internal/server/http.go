package server

import (
	"encoding/json"
	"net/http"
)

// NewHTTPHandler returns an http.Handler with all routes registered. Routes
// other than health, signup, signin, and reset require a valid bearer token;
// /v1/admin/ routes require the admin role.
func (s *PortalServer) NewHTTPHandler() http.Handler {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /v1/auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /v1/auth/signin", s.handleSignIn)
	mux.HandleFunc("POST /v1/auth/signout", s.handleSignOut)
	mux.HandleFunc("POST /v1/auth/refresh", s.handleRefresh)
	mux.HandleFunc("POST /v1/auth/reset", s.handlePasswordReset)
	mux.HandleFunc("GET /v1/auth/me", s.handleMe)
	mux.HandleFunc("PATCH /v1/auth/me", s.handleUpdateMe)

	// Tickets
	mux.HandleFunc("POST /v1/tickets", s.handleCreateTicket)
	mux.HandleFunc("GET /v1/tickets", s.handleListTickets)
	mux.HandleFunc("GET /v1/tickets/{id}", s.handleGetTicket)
	mux.HandleFunc("PATCH /v1/tickets/{id}", s.handleUpdateTicket)
	mux.HandleFunc("DELETE /v1/tickets/{id}", s.handleDeleteTicket)
	mux.HandleFunc("POST /v1/tickets/{id}/messages", s.handleAddMessage)
	mux.HandleFunc("GET /v1/tickets/{id}/messages", s.handleGetMessages)

	// Notifications
	mux.HandleFunc("GET /v1/notifications", s.handleListNotifications)
	mux.HandleFunc("POST /v1/notifications/read", s.handleMarkNotificationsRead)

	// Company
	mux.HandleFunc("GET /v1/company", s.handleGetCompany)

	// Documents
	mux.HandleFunc("GET /v1/documents", s.handleListDocuments)
	mux.HandleFunc("POST /v1/documents", s.handleRequestDocument)
	mux.HandleFunc("POST /v1/documents/upload", s.handleUploadDocument)
	mux.HandleFunc("GET /v1/documents/{id}", s.handleGetDocument)
	mux.HandleFunc("GET /v1/documents/{id}/file", s.handleDownloadDocument)

	// Transactions
	mux.HandleFunc("GET /v1/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /v1/transactions/{id}", s.handleGetTransaction)

	// Admin back office
	mux.HandleFunc("GET /v1/admin/stats", s.handleAdminStats)
	mux.HandleFunc("GET /v1/admin/users", s.handleAdminListUsers)
	mux.HandleFunc("GET /v1/admin/tickets", s.handleAdminListTickets)
	mux.HandleFunc("POST /v1/admin/tickets/{id}/reply", s.handleAdminReply)
	mux.HandleFunc("GET /v1/admin/documents", s.handleAdminListDocuments)
	mux.HandleFunc("PATCH /v1/admin/documents/{id}", s.handleAdminUpdateDocument)
	mux.HandleFunc("GET /v1/admin/companies", s.handleAdminListCompanies)
	mux.HandleFunc("PATCH /v1/admin/companies/{id}", s.handleAdminUpdateCompany)
	mux.HandleFunc("PUT /v1/admin/companies/{id}/subscription", s.handleAdminSetSubscription)
	mux.HandleFunc("POST /v1/admin/transactions", s.handleAdminCreateTransaction)
	mux.HandleFunc("PATCH /v1/admin/transactions/{id}", s.handleAdminUpdateTransaction)
	mux.HandleFunc("POST /v1/admin/transactions/{id}/updates", s.handleAdminAddTransactionUpdate)
	mux.HandleFunc("POST /v1/admin/notifications", s.handleAdminCreateNotification)

	// Change feed + health
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/health", s.handleHealth)

	return s.authMiddleware(mux)
}

// handleHealth handles GET /v1/health.
func (s *PortalServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
