package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// RecordAttempt writes the audit record for one delivery attempt. The write
// is keyed by (event_id, subscription_id) and idempotent: reprocessing the
// same event overwrites the prior outcome for the pair instead of appending
// a duplicate row.
func (db *DB) RecordAttempt(ctx context.Context, rec *NotificationRecord) error {
	query := `
		INSERT INTO notifications (event_id, subscription_id, channel, target, status, error_message, attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id, subscription_id) DO UPDATE SET
			channel = EXCLUDED.channel,
			target = EXCLUDED.target,
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message,
			attempted_at = EXCLUDED.attempted_at
	`
	var errorMessage sql.NullString
	if rec.ErrorMessage != "" {
		errorMessage = sql.NullString{String: rec.ErrorMessage, Valid: true}
	}

	_, err := db.conn.ExecContext(ctx, query,
		rec.EventID,
		rec.SubscriptionID,
		rec.Channel,
		rec.Target,
		rec.Status,
		errorMessage,
		rec.AttemptedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record delivery attempt: %w", err)
	}
	return nil
}

// GetNotification retrieves the audit record for one (event, subscription)
// pair.
func (db *DB) GetNotification(ctx context.Context, eventID, subscriptionID string) (*NotificationRecord, error) {
	query := `
		SELECT event_id, subscription_id, channel, target, status, error_message, attempted_at
		FROM notifications
		WHERE event_id = $1 AND subscription_id = $2
	`
	var (
		rec          NotificationRecord
		errorMessage sql.NullString
	)
	err := db.conn.QueryRowContext(ctx, query, eventID, subscriptionID).Scan(
		&rec.EventID,
		&rec.SubscriptionID,
		&rec.Channel,
		&rec.Target,
		&rec.Status,
		&errorMessage,
		&rec.AttemptedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("notification not found: %s/%s", eventID, subscriptionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	rec.ErrorMessage = errorMessage.String
	return &rec, nil
}

// NotificationFilter narrows ListNotifications. Empty fields are ignored.
type NotificationFilter struct {
	EventID        string
	SubscriptionID string
	Status         string
}

// ListNotifications retrieves audit records matching the filter, newest
// first.
func (db *DB) ListNotifications(ctx context.Context, filter NotificationFilter, limit, offset int) ([]NotificationRecord, error) {
	var (
		conditions []string
		args       []any
	)
	addCondition := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, column+" = $"+strconv.Itoa(len(args)))
	}
	addCondition("event_id", filter.EventID)
	addCondition("subscription_id", filter.SubscriptionID)
	addCondition("status", filter.Status)

	query := `
		SELECT event_id, subscription_id, channel, target, status, error_message, attempted_at
		FROM notifications
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit)
	query += " ORDER BY attempted_at DESC LIMIT $" + strconv.Itoa(len(args))
	args = append(args, offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	records := []NotificationRecord{}
	for rows.Next() {
		var (
			rec          NotificationRecord
			errorMessage sql.NullString
		)
		if err := rows.Scan(
			&rec.EventID,
			&rec.SubscriptionID,
			&rec.Channel,
			&rec.Target,
			&rec.Status,
			&errorMessage,
			&rec.AttemptedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		rec.ErrorMessage = errorMessage.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notification rows: %w", err)
	}
	return records, nil
}
