package store

import (
	"context"
	"fmt"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/bus"
)

// SaveTemplate inserts or replaces a message template.
func (db *DB) SaveTemplate(ctx context.Context, in *MessageTemplate) (*MessageTemplate, error) {
	t := *in
	op := bus.OpUpdated
	if t.ID == "" {
		t.ID = newID()
		op = bus.OpCreated
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = db.millis()
	}
	if err := db.schema.Validate(CollMessageTemplates, &t); err != nil {
		return nil, err
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO message_templates (id, owner_id, title, body, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			body = excluded.body`,
		t.ID, t.OwnerID, t.Title, t.Body, t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}
	db.publish(CollMessageTemplates, t.ID, op, t.ID, t.OwnerID)
	return &t, nil
}

// ListTemplates returns the templates owned by ownerID in creation order.
func (db *DB) ListTemplates(ctx context.Context, ownerID string) ([]MessageTemplate, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, owner_id, title, body, created_at
		FROM message_templates WHERE owner_id = ? ORDER BY created_at ASC, id ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []MessageTemplate{}
	for rows.Next() {
		var t MessageTemplate
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Body, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTemplate removes a template.
func (db *DB) DeleteTemplate(ctx context.Context, id string) error {
	var owner string
	if err := db.QueryRowContext(ctx, `SELECT owner_id FROM message_templates WHERE id = ?`, id).Scan(&owner); err != nil {
		return apperr.NotFound("template %q", id)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM message_templates WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	db.publish(CollMessageTemplates, id, bus.OpDeleted, id, owner)
	return nil
}
