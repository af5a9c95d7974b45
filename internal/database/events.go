package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ctheara/event-notification-service/internal/events"
)

// marshalDetails serializes the opaque details bag for the JSONB column.
// Returns nil for an empty bag so the column stays NULL.
func marshalDetails(details map[string]json.RawMessage) ([]byte, error) {
	if len(details) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event details: %w", err)
	}
	return data, nil
}

// unmarshalDetails deserializes the details column. Corrupt JSON is logged
// and dropped rather than failing the read.
func unmarshalDetails(detailsJSON sql.NullString, warnAttrs ...any) map[string]json.RawMessage {
	if !detailsJSON.Valid || detailsJSON.String == "" {
		return nil
	}

	var details map[string]json.RawMessage
	if err := json.Unmarshal([]byte(detailsJSON.String), &details); err != nil {
		slog.Warn("Failed to unmarshal details JSON", append([]any{"error", err}, warnAttrs...)...)
		return nil
	}
	return details
}

// MarkEventProcessed persists an event with PROCESSED status and the given
// processing timestamp. The write is an upsert: queue redelivery reprocesses
// the same event and overwrites the previous row instead of failing on the
// primary key.
func (db *DB) MarkEventProcessed(ctx context.Context, ev *events.Event, processedAt time.Time) error {
	details, err := marshalDetails(ev.Details)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO events (event_id, event_type, severity, title, details, received_at, status, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO UPDATE SET
			status = EXCLUDED.status,
			processed_at = EXCLUDED.processed_at
	`
	_, err = db.conn.ExecContext(ctx, query,
		ev.EventID,
		ev.EventType,
		ev.Severity,
		ev.Title,
		details,
		ev.ReceivedAt,
		events.StatusProcessed,
		processedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

// GetEvent retrieves a persisted event by ID.
func (db *DB) GetEvent(ctx context.Context, eventID string) (*EventRecord, error) {
	query := `
		SELECT event_id, event_type, severity, title, details, received_at, status, processed_at
		FROM events
		WHERE event_id = $1
	`
	var (
		rec         EventRecord
		detailsJSON sql.NullString
		processedAt sql.NullTime
	)
	err := db.conn.QueryRowContext(ctx, query, eventID).Scan(
		&rec.EventID,
		&rec.EventType,
		&rec.Severity,
		&rec.Title,
		&detailsJSON,
		&rec.ReceivedAt,
		&rec.Status,
		&processedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("event not found: %s", eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	rec.Details = unmarshalDetails(detailsJSON, "event_id", rec.EventID)
	if processedAt.Valid {
		rec.ProcessedAt = &processedAt.Time
	}
	return &rec, nil
}

// ListEvents retrieves persisted events, newest first.
func (db *DB) ListEvents(ctx context.Context, limit, offset int) ([]EventRecord, error) {
	query := `
		SELECT event_id, event_type, severity, title, details, received_at, status, processed_at
		FROM events
		ORDER BY received_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := db.conn.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	records := []EventRecord{}
	for rows.Next() {
		var (
			rec         EventRecord
			detailsJSON sql.NullString
			processedAt sql.NullTime
		)
		if err := rows.Scan(
			&rec.EventID,
			&rec.EventType,
			&rec.Severity,
			&rec.Title,
			&detailsJSON,
			&rec.ReceivedAt,
			&rec.Status,
			&processedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		rec.Details = unmarshalDetails(detailsJSON, "event_id", rec.EventID)
		if processedAt.Valid {
			rec.ProcessedAt = &processedAt.Time
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}
	return records, nil
}
