package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/bus"
)

const conversationColumns = `id, participant_a, participant_b, participant_details,
	last_message, last_message_at, job_id, created_at`

// CreateConversation stores a new conversation and its per-participant unread
// counters. Nothing prevents a second conversation between the same pair.
func (db *DB) CreateConversation(ctx context.Context, in *Conversation) (*Conversation, error) {
	c := *in
	if c.ID == "" {
		c.ID = newID()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = db.millis()
	}
	if c.LastMessageTimestamp == 0 {
		c.LastMessageTimestamp = c.CreatedAt
	}
	if c.ParticipantDetails == nil {
		c.ParticipantDetails = map[string]Participant{}
	}
	unread := make(map[string]int, len(c.Participants))
	for _, p := range c.Participants {
		unread[p] = c.UnreadCount[p]
	}
	c.UnreadCount = unread
	if err := db.schema.Validate(CollConversations, &c); err != nil {
		return nil, err
	}

	details, err := json.Marshal(c.ParticipantDetails)
	if err != nil {
		return nil, fmt.Errorf("encode participant details: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO conversations (id, participant_a, participant_b, participant_details, last_message, last_message_at, job_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Participants[0], c.Participants[1], string(details), c.LastMessage, c.LastMessageTimestamp, c.JobID, c.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	for _, p := range c.Participants {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO conversation_unread (conversation_id, user_id, count) VALUES (?, ?, ?)`,
			c.ID, p, c.UnreadCount[p]); err != nil {
			return nil, fmt.Errorf("insert unread counter: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	db.publish(CollConversations, c.ID, bus.OpCreated, c.ID, c.Participants[0], c.Participants[1])
	return &c, nil
}

// GetConversation returns a conversation by id, or nil if it does not exist.
func (db *DB) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	row := db.QueryRowContext(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = ?`, id)
	c, err := db.scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := db.loadUnread(ctx, []*Conversation{c}); err != nil {
		return nil, err
	}
	return c, nil
}

// ListConversationsForUser returns every conversation userID takes part in,
// most recently active first.
func (db *DB) ListConversationsForUser(ctx context.Context, userID string) ([]Conversation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE participant_a = ? OR participant_b = ?
		ORDER BY last_message_at DESC, created_at DESC`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ptrs []*Conversation
	for rows.Next() {
		c, err := db.scanConversation(rows)
		if err != nil {
			return nil, err
		}
		ptrs = append(ptrs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := db.loadUnread(ctx, ptrs); err != nil {
		return nil, err
	}

	out := make([]Conversation, 0, len(ptrs))
	for _, c := range ptrs {
		out = append(out, *c)
	}
	return out, nil
}

// FindConversationBetween returns the oldest conversation between a and b in
// either order, or nil.
func (db *DB) FindConversationBetween(ctx context.Context, a, b string) (*Conversation, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE (participant_a = ? AND participant_b = ?) OR (participant_a = ? AND participant_b = ?)
		ORDER BY created_at ASC
		LIMIT 1`, a, b, b, a)
	c, err := db.scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := db.loadUnread(ctx, []*Conversation{c}); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateConversationLast sets the preview and activity timestamp. Concurrent
// senders race; the last write wins.
func (db *DB) UpdateConversationLast(ctx context.Context, id, text string, ts int64) error {
	a, b, err := db.participantsOf(ctx, id)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx,
		`UPDATE conversations SET last_message = ?, last_message_at = ? WHERE id = ?`,
		text, ts, id); err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	db.publish(CollConversations, id, bus.OpUpdated, id, a, b)
	return nil
}

// UpdateParticipantDetails merges details into the stored participant map.
// Entries for users outside the conversation are rejected.
func (db *DB) UpdateParticipantDetails(ctx context.Context, id string, details map[string]Participant) error {
	c, err := db.GetConversation(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.NotFound("conversation %q", id)
	}
	for uid, p := range details {
		if !c.HasParticipant(uid) {
			return apperr.Invalid("participant details rejected", fmt.Sprintf("%s: not a participant of %s", uid, id))
		}
		c.ParticipantDetails[uid] = p
	}
	if err := db.schema.Validate(CollConversations, c); err != nil {
		return err
	}
	raw, err := json.Marshal(c.ParticipantDetails)
	if err != nil {
		return fmt.Errorf("encode participant details: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`UPDATE conversations SET participant_details = ? WHERE id = ?`, string(raw), id); err != nil {
		return fmt.Errorf("update participant details: %w", err)
	}
	db.publish(CollConversations, id, bus.OpUpdated, id, c.Participants[0], c.Participants[1])
	return nil
}

// IncrementUnread atomically adds one to userID's unread counter.
func (db *DB) IncrementUnread(ctx context.Context, id, userID string) error {
	return db.writeUnread(ctx, id, userID, `
		INSERT INTO conversation_unread (conversation_id, user_id, count) VALUES (?, ?, 1)
		ON CONFLICT(conversation_id, user_id) DO UPDATE SET count = count + 1`)
}

// ResetUnread sets userID's unread counter to zero.
func (db *DB) ResetUnread(ctx context.Context, id, userID string) error {
	return db.writeUnread(ctx, id, userID, `
		INSERT INTO conversation_unread (conversation_id, user_id, count) VALUES (?, ?, 0)
		ON CONFLICT(conversation_id, user_id) DO UPDATE SET count = 0`)
}

func (db *DB) writeUnread(ctx context.Context, id, userID, query string) error {
	a, b, err := db.participantsOf(ctx, id)
	if err != nil {
		return err
	}
	if userID != a && userID != b {
		return apperr.Invalid("unread counter rejected", fmt.Sprintf("%s: not a participant of %s", userID, id))
	}
	if _, err := db.ExecContext(ctx, query, id, userID); err != nil {
		return fmt.Errorf("write unread counter: %w", err)
	}
	db.publish(CollConversations, id, bus.OpUpdated, id, a, b)
	return nil
}

func (db *DB) participantsOf(ctx context.Context, id string) (string, string, error) {
	var a, b string
	err := db.QueryRowContext(ctx,
		`SELECT participant_a, participant_b FROM conversations WHERE id = ?`, id).Scan(&a, &b)
	if err == sql.ErrNoRows {
		return "", "", apperr.NotFound("conversation %q", id)
	}
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}

func (db *DB) scanConversation(r rowScanner) (*Conversation, error) {
	var (
		c       Conversation
		a, b    string
		details string
	)
	if err := r.Scan(&c.ID, &a, &b, &details, &c.LastMessage, &c.LastMessageTimestamp, &c.JobID, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Participants = []string{a, b}
	c.ParticipantDetails = db.parseParticipantDetails(details)
	c.UnreadCount = map[string]int{a: 0, b: 0}
	return &c, nil
}

// parseParticipantDetails decodes the stored participant map. A column that
// fails its schema reads as empty so that repair-on-read can refill it.
func (db *DB) parseParticipantDetails(raw string) map[string]Participant {
	out := map[string]Participant{}
	if raw == "" {
		return out
	}
	if err := db.schema.ValidateJSON("participantDetails", []byte(raw)); err != nil {
		return out
	}
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}

func (db *DB) loadUnread(ctx context.Context, convs []*Conversation) error {
	if len(convs) == 0 {
		return nil
	}
	byID := make(map[string]*Conversation, len(convs))
	args := make([]any, 0, len(convs))
	for _, c := range convs {
		byID[c.ID] = c
		args = append(args, c.ID)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")
	rows, err := db.QueryContext(ctx,
		`SELECT conversation_id, user_id, count FROM conversation_unread WHERE conversation_id IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return fmt.Errorf("load unread counters: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var (
			convID, userID string
			count          int
		)
		if err := rows.Scan(&convID, &userID, &count); err != nil {
			return err
		}
		if c, ok := byID[convID]; ok {
			c.UnreadCount[userID] = count
		}
	}
	return rows.Err()
}
