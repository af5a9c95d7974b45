package handlers

import (
	"net/http"
	"strings"

	"github.com/ctheara/event-notification-service/internal/database"
)

// GetNotification retrieves the audit record for one (event, subscription)
// pair.
func (h *Handlers) GetNotification(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requireQueryParam(w, r, "event_id")
	if !ok {
		return
	}
	subscriptionID, ok := requireQueryParam(w, r, "subscription_id")
	if !ok {
		return
	}

	rec, err := h.db.GetNotification(r.Context(), eventID, subscriptionID)
	if handleStorageError(w, err, "Notification", eventID+"/"+subscriptionID) {
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// ListNotifications retrieves audit records, optionally filtered by
// event_id, subscription_id, and status.
func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	filter := database.NotificationFilter{
		EventID:        r.URL.Query().Get("event_id"),
		SubscriptionID: r.URL.Query().Get("subscription_id"),
		Status:         strings.ToUpper(r.URL.Query().Get("status")),
	}
	if filter.Status != "" && filter.Status != database.StatusSent && filter.Status != database.StatusFailed {
		http.Error(w, "status must be one of: SENT, FAILED", http.StatusBadRequest)
		return
	}

	limit, offset := parsePagination(r)

	records, err := h.db.ListNotifications(r.Context(), filter, limit, offset)
	if handleStorageError(w, err, "Notifications", "") {
		return
	}

	writeJSON(w, http.StatusOK, records)
}
