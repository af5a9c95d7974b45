package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ctheara/event-notification-service/internal/channel"
	"github.com/ctheara/event-notification-service/internal/database"
	"github.com/ctheara/event-notification-service/internal/events"
)

// SubscriptionRequest carries the caller-controlled subscription fields,
// shared by create and update.
type SubscriptionRequest struct {
	EventType      string `json:"eventType"`
	SeverityFilter string `json:"severityFilter"`
	Channel        string `json:"channel"`
	Target         string `json:"target"`

	// Active defaults to true when omitted on create.
	Active *bool `json:"active,omitempty"`
}

// validateSubscriptionRequest normalizes and validates the shared fields.
// Returns false after writing an error response when validation fails.
func validateSubscriptionRequest(w http.ResponseWriter, req *SubscriptionRequest) bool {
	req.EventType = events.NormalizeEventType(req.EventType)
	req.SeverityFilter = events.NormalizeSeverity(req.SeverityFilter)
	req.Channel = events.NormalizeChannel(req.Channel)

	if req.EventType == "" {
		http.Error(w, "eventType is required", http.StatusBadRequest)
		return false
	}
	if !events.ValidSeverity(req.SeverityFilter) {
		http.Error(w, "severityFilter must be one of: LOW, MEDIUM, HIGH, CRITICAL", http.StatusBadRequest)
		return false
	}
	if !events.ValidChannel(req.Channel) {
		http.Error(w, "channel must be one of: EMAIL, WEBHOOK", http.StatusBadRequest)
		return false
	}

	switch req.Channel {
	case events.ChannelEmail:
		if !channel.IsValidEmail(req.Target) {
			http.Error(w, "target must be a valid email address", http.StatusBadRequest)
			return false
		}
	case events.ChannelWebhook:
		if !channel.IsValidURL(req.Target) {
			http.Error(w, "target must be an http or https URL", http.StatusBadRequest)
			return false
		}
	}
	return true
}

// CreateSubscription registers a new subscription.
func (h *Handlers) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req SubscriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateSubscriptionRequest(w, &req) {
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	sub := &database.Subscription{
		SubscriptionID: uuid.NewString(),
		EventType:      req.EventType,
		SeverityFilter: req.SeverityFilter,
		Channel:        req.Channel,
		Target:         req.Target,
		Active:         active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.db.CreateSubscription(r.Context(), sub); handleStorageError(w, err, "Subscription", sub.SubscriptionID) {
		return
	}

	slog.Info("Subscription created",
		"subscription_id", sub.SubscriptionID,
		"event_type", sub.EventType,
		"channel", sub.Channel)

	writeJSON(w, http.StatusCreated, sub)
}

// GetSubscription retrieves a subscription by ID.
func (h *Handlers) GetSubscription(w http.ResponseWriter, r *http.Request) {
	subscriptionID, ok := requireQueryParam(w, r, "subscription_id")
	if !ok {
		return
	}

	sub, err := h.db.GetSubscription(r.Context(), subscriptionID)
	if handleStorageError(w, err, "Subscription", subscriptionID) {
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

// ListSubscriptions retrieves subscriptions, optionally filtered by
// event_type.
func (h *Handlers) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	eventType := events.NormalizeEventType(r.URL.Query().Get("event_type"))
	limit, offset := parsePagination(r)

	subs, err := h.db.ListSubscriptions(r.Context(), eventType, limit, offset)
	if handleStorageError(w, err, "Subscriptions", "") {
		return
	}

	writeJSON(w, http.StatusOK, subs)
}

// UpdateSubscription replaces a subscription's filter, channel, and target.
func (h *Handlers) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	subscriptionID, ok := requireQueryParam(w, r, "subscription_id")
	if !ok {
		return
	}

	var req SubscriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateSubscriptionRequest(w, &req) {
		return
	}

	ctx := r.Context()

	current, err := h.db.GetSubscription(ctx, subscriptionID)
	if handleStorageError(w, err, "Subscription", subscriptionID) {
		return
	}

	active := current.Active
	if req.Active != nil {
		active = *req.Active
	}

	sub := &database.Subscription{
		SubscriptionID: subscriptionID,
		EventType:      req.EventType,
		SeverityFilter: req.SeverityFilter,
		Channel:        req.Channel,
		Target:         req.Target,
		Active:         active,
	}
	if err := h.db.UpdateSubscription(ctx, sub); handleStorageError(w, err, "Subscription", subscriptionID) {
		return
	}

	updated, err := h.db.GetSubscription(ctx, subscriptionID)
	if handleStorageError(w, err, "Subscription", subscriptionID) {
		return
	}

	slog.Info("Subscription updated", "subscription_id", subscriptionID)
	writeJSON(w, http.StatusOK, updated)
}

// ToggleSubscriptionRequest represents a request to flip a subscription's
// active flag.
type ToggleSubscriptionRequest struct {
	Active bool `json:"active"`
}

// ToggleSubscriptionActive enables or disables a subscription without
// touching its filter or target.
func (h *Handlers) ToggleSubscriptionActive(w http.ResponseWriter, r *http.Request) {
	subscriptionID, ok := requireQueryParam(w, r, "subscription_id")
	if !ok {
		return
	}

	var req ToggleSubscriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	if err := h.db.SetSubscriptionActive(ctx, subscriptionID, req.Active); handleStorageError(w, err, "Subscription", subscriptionID) {
		return
	}

	sub, err := h.db.GetSubscription(ctx, subscriptionID)
	if handleStorageError(w, err, "Subscription", subscriptionID) {
		return
	}

	slog.Info("Subscription toggled",
		"subscription_id", subscriptionID,
		"active", req.Active)
	writeJSON(w, http.StatusOK, sub)
}

// DeleteSubscription removes a subscription. Past notification records for
// it are kept; they describe attempts that actually happened.
func (h *Handlers) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	subscriptionID, ok := requireQueryParam(w, r, "subscription_id")
	if !ok {
		return
	}

	if err := h.db.DeleteSubscription(r.Context(), subscriptionID); handleStorageError(w, err, "Subscription", subscriptionID) {
		return
	}

	slog.Info("Subscription deleted", "subscription_id", subscriptionID)
	w.WriteHeader(http.StatusNoContent)
}
