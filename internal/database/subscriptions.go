package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// subscriptionColumns is the column list shared by subscription queries.
const subscriptionColumns = `subscription_id, event_type, severity_filter, channel, target, active, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*Subscription, error) {
	var sub Subscription
	err := row.Scan(
		&sub.SubscriptionID,
		&sub.EventType,
		&sub.SeverityFilter,
		&sub.Channel,
		&sub.Target,
		&sub.Active,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateSubscription inserts a new subscription.
func (db *DB) CreateSubscription(ctx context.Context, sub *Subscription) error {
	query := `
		INSERT INTO subscriptions (subscription_id, event_type, severity_filter, channel, target, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := db.conn.ExecContext(ctx, query,
		sub.SubscriptionID,
		sub.EventType,
		sub.SeverityFilter,
		sub.Channel,
		sub.Target,
		sub.Active,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("subscription already exists: %s", sub.SubscriptionID)
			}
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// GetSubscription retrieves a subscription by ID.
func (db *DB) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE subscription_id = $1
	`
	sub, err := scanSubscription(db.conn.QueryRowContext(ctx, query, subscriptionID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("subscription not found: %s", subscriptionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// GetSubscriptionsByEventType retrieves every subscription registered for an
// event type, active and inactive alike. Matching is exact on the normalized
// type; eligibility filtering happens downstream. An empty result is a
// normal outcome.
func (db *DB) GetSubscriptionsByEventType(ctx context.Context, eventType string) ([]Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE event_type = $1
		ORDER BY created_at
	`
	rows, err := db.conn.QueryContext(ctx, query, eventType)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions by event type: %w", err)
	}
	defer rows.Close()

	subs := []Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscription rows: %w", err)
	}
	return subs, nil
}

// ListSubscriptions retrieves subscriptions with optional event type
// filtering, newest first.
func (db *DB) ListSubscriptions(ctx context.Context, eventType string, limit, offset int) ([]Subscription, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if eventType != "" {
		query := `
			SELECT ` + subscriptionColumns + `
			FROM subscriptions
			WHERE event_type = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`
		rows, err = db.conn.QueryContext(ctx, query, eventType, limit, offset)
	} else {
		query := `
			SELECT ` + subscriptionColumns + `
			FROM subscriptions
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`
		rows, err = db.conn.QueryContext(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscription rows: %w", err)
	}
	return subs, nil
}

// UpdateSubscription updates a subscription's filter, channel, and target.
func (db *DB) UpdateSubscription(ctx context.Context, sub *Subscription) error {
	query := `
		UPDATE subscriptions
		SET event_type = $2, severity_filter = $3, channel = $4, target = $5, active = $6, updated_at = NOW()
		WHERE subscription_id = $1
	`
	result, err := db.conn.ExecContext(ctx, query,
		sub.SubscriptionID,
		sub.EventType,
		sub.SeverityFilter,
		sub.Channel,
		sub.Target,
		sub.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("subscription not found: %s", sub.SubscriptionID)
	}
	return nil
}

// SetSubscriptionActive enables or disables a subscription without touching
// its filter or target.
func (db *DB) SetSubscriptionActive(ctx context.Context, subscriptionID string, active bool) error {
	query := `
		UPDATE subscriptions
		SET active = $2, updated_at = NOW()
		WHERE subscription_id = $1
	`
	result, err := db.conn.ExecContext(ctx, query, subscriptionID, active)
	if err != nil {
		return fmt.Errorf("failed to set subscription active: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("subscription not found: %s", subscriptionID)
	}
	return nil
}

// DeleteSubscription removes a subscription.
func (db *DB) DeleteSubscription(ctx context.Context, subscriptionID string) error {
	query := `DELETE FROM subscriptions WHERE subscription_id = $1`
	result, err := db.conn.ExecContext(ctx, query, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("subscription not found: %s", subscriptionID)
	}
	return nil
}
