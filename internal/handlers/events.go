package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ctheara/event-notification-service/internal/events"
)

// IngestEventRequest represents a publisher's event submission.
type IngestEventRequest struct {
	EventType string                     `json:"eventType"`
	Severity  string                     `json:"severity"`
	Title     string                     `json:"title"`
	Details   map[string]json.RawMessage `json:"details,omitempty"`
}

// IngestEvent accepts an event submission, assigns its identity, and
// publishes it to the incoming events topic. The dispatcher picks it up from
// there; nothing is written to the database on this path.
func (h *Handlers) IngestEvent(w http.ResponseWriter, r *http.Request) {
	var req IngestEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ev := &events.Event{
		EventID:    uuid.NewString(),
		EventType:  events.NormalizeEventType(req.EventType),
		Severity:   events.NormalizeSeverity(req.Severity),
		Title:      req.Title,
		Details:    req.Details,
		ReceivedAt: time.Now().UTC(),
		Status:     events.StatusPending,
	}

	if ev.EventType == "" {
		http.Error(w, "eventType is required", http.StatusBadRequest)
		return
	}
	if !events.ValidSeverity(ev.Severity) {
		http.Error(w, "severity must be one of: LOW, MEDIUM, HIGH, CRITICAL", http.StatusBadRequest)
		return
	}
	if ev.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	if err := h.publisher.Publish(r.Context(), ev); err != nil {
		slog.Error("Failed to publish event", "error", err, "event_id", ev.EventID)
		h.recorder.RecordError()
		http.Error(w, "Failed to queue event", http.StatusBadGateway)
		return
	}
	h.recorder.RecordPublished()

	slog.Info("Event accepted",
		"event_id", ev.EventID,
		"event_type", ev.EventType,
		"severity", ev.Severity)

	writeJSON(w, http.StatusAccepted, ev)
}

// GetEvent retrieves a processed event by ID.
func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requireQueryParam(w, r, "event_id")
	if !ok {
		return
	}

	rec, err := h.db.GetEvent(r.Context(), eventID)
	if handleStorageError(w, err, "Event", eventID) {
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// ListEvents retrieves processed events, newest first.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	records, err := h.db.ListEvents(r.Context(), limit, offset)
	if handleStorageError(w, err, "Events", "") {
		return
	}

	writeJSON(w, http.StatusOK, records)
}
