package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shirkaty/portal/internal/events"
	"github.com/shirkaty/portal/internal/model"
	"github.com/shirkaty/portal/internal/store"
)

// handleListNotifications handles GET /v1/notifications. The unread count is
// always computed over the full set, regardless of the unread filter.
func (s *PortalServer) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifications, err := s.store.ListNotifications(r.Context(), model.NotificationFilter{
		UserID:     identity.UserID,
		UnreadOnly: unreadOnly,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []*model.Notification{}
	}

	unread := 0
	if unreadOnly {
		unread = len(notifications)
	} else {
		for _, n := range notifications {
			if !n.Read {
				unread++
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": notifications,
		"unread":        unread,
	})
}

// handleMarkNotificationsRead handles POST /v1/notifications/read. An empty
// or missing id marks every notification of the caller as read.
func (s *PortalServer) handleMarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	var in struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.store.MarkNotificationsRead(r.Context(), identity.UserID, in.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}

	s.publish(r.Context(), events.TopicNotificationRead, events.NotificationRead{
		UserID:         identity.UserID,
		NotificationID: in.ID,
	})
	w.WriteHeader(http.StatusNoContent)
}
