package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/bus"
)

// MaxDeliveryAttempts bounds how often the dispatcher retries a notification.
const MaxDeliveryAttempts = 3

const notificationColumns = `id, user_id, kind, title, body, link, read, delivered, attempts, last_error, created_at`

// AddNotification stores an undelivered, unread notification.
func (db *DB) AddNotification(ctx context.Context, in *Notification) (*Notification, error) {
	n := *in
	if n.ID == "" {
		n.ID = newID()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = db.millis()
	}
	n.Read, n.Delivered, n.Attempts, n.LastError = false, false, 0, ""
	if err := db.schema.Validate(CollNotifications, &n); err != nil {
		return nil, err
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, 0, '', ?)`,
		n.ID, n.UserID, n.Kind, n.Title, n.Body, n.Link, n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	db.publish(CollNotifications, n.ID, bus.OpCreated, n.ID, n.UserID)
	return &n, nil
}

// ListNotifications returns a user's notifications, newest first.
func (db *DB) ListNotifications(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	return db.queryNotifications(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
}

// PendingNotifications returns undelivered notifications that still have
// attempts left, oldest first.
func (db *DB) PendingNotifications(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return db.queryNotifications(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE delivered = 0 AND attempts < ?
		ORDER BY created_at ASC LIMIT ?`, MaxDeliveryAttempts, limit)
}

// MarkNotificationRead flags a notification as seen by its user.
func (db *DB) MarkNotificationRead(ctx context.Context, id string) error {
	return db.updateNotification(ctx, id, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
}

// MarkNotificationDelivered records a successful delivery.
func (db *DB) MarkNotificationDelivered(ctx context.Context, id string) error {
	return db.updateNotification(ctx, id,
		`UPDATE notifications SET delivered = 1, attempts = attempts + 1, last_error = '' WHERE id = ?`, id)
}

// MarkNotificationFailed records a failed attempt; after MaxDeliveryAttempts
// the notification stops being pending.
func (db *DB) MarkNotificationFailed(ctx context.Context, id, reason string) error {
	return db.updateNotification(ctx, id,
		`UPDATE notifications SET attempts = attempts + 1, last_error = ? WHERE id = ?`, reason, id)
}

func (db *DB) updateNotification(ctx context.Context, id, query string, args ...any) error {
	var userID string
	err := db.QueryRowContext(ctx, `SELECT user_id FROM notifications WHERE id = ?`, id).Scan(&userID)
	if err == sql.ErrNoRows {
		return apperr.NotFound("notification %q", id)
	}
	if err != nil {
		return fmt.Errorf("load notification: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	db.publish(CollNotifications, id, bus.OpUpdated, id, userID)
	return nil
}

func (db *DB) queryNotifications(ctx context.Context, query string, args ...any) ([]Notification, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.Link, &n.Read, &n.Delivered,
			&n.Attempts, &n.LastError, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
