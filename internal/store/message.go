package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/bus"
)

const messageColumns = `id, conversation_id, sender_id, receiver_id, content, timestamp, read,
	attachment_url, attachment_type, attachment_name`

// AddMessage stores a message. A zero Timestamp is replaced with the server
// clock. Sender and receiver must be the conversation's two participants.
func (db *DB) AddMessage(ctx context.Context, in *Message) (*Message, error) {
	m := *in
	if m.ID == "" {
		m.ID = newID()
	}
	if m.Timestamp == 0 {
		m.Timestamp = db.millis()
	}
	if err := db.schema.Validate(CollMessages, &m); err != nil {
		return nil, err
	}
	if m.SenderID == m.ReceiverID {
		return nil, apperr.Invalid("message rejected", "receiverId: must differ from senderId")
	}
	a, b, err := db.participantsOf(ctx, m.ConversationID)
	if err != nil {
		return nil, err
	}
	var details []string
	for field, uid := range map[string]string{"senderId": m.SenderID, "receiverId": m.ReceiverID} {
		if uid != a && uid != b {
			details = append(details, fmt.Sprintf("%s: %s is not a participant of %s", field, uid, m.ConversationID))
		}
	}
	if len(details) > 0 {
		return nil, apperr.Invalid("message rejected", details...)
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content, timestamp, read, attachment_url, attachment_type, attachment_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.SenderID, m.ReceiverID, m.Content, m.Timestamp, m.Read,
		m.AttachmentURL, m.AttachmentType, m.AttachmentName); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	db.publish(CollMessages, m.ID, bus.OpCreated, m.ConversationID, m.SenderID, m.ReceiverID)
	return &m, nil
}

// GetMessage returns a message by id, or nil.
func (db *DB) GetMessage(ctx context.Context, id string) (*Message, error) {
	m, err := scanMessage(db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMessages returns every message of a conversation, oldest first. Equal
// timestamps keep insertion order.
func (db *DB) ListMessages(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = ?
		ORDER BY timestamp ASC, rowid ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	msgs := []Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

// MarkMessageRead flips read to true. Marking an already read message is a
// no-op and publishes nothing.
func (db *DB) MarkMessageRead(ctx context.Context, id string) error {
	var convID, sender, receiver string
	err := db.QueryRowContext(ctx,
		`SELECT conversation_id, sender_id, receiver_id FROM messages WHERE id = ?`, id).
		Scan(&convID, &sender, &receiver)
	if err == sql.ErrNoRows {
		return apperr.NotFound("message %q", id)
	}
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE messages SET read = 1 WHERE id = ? AND read = 0`, id)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		db.publish(CollMessages, id, bus.OpUpdated, convID, sender, receiver)
	}
	return nil
}

// SearchMessages runs a full-text query over the messages userID sent or
// received, optionally scoped to one conversation, newest first. An empty
// userID searches every message.
func (db *DB) SearchMessages(ctx context.Context, query, userID, conversationID string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	match := ftsQuery(query)
	if match == "" {
		return []SearchResult{}, nil
	}

	q := `
		SELECT m.id, m.conversation_id, m.sender_id, m.receiver_id, m.content, m.timestamp, m.read,
			m.attachment_url, m.attachment_type, m.attachment_name,
			snippet(messages_fts, '[', ']', '...', -1, 12)
		FROM messages_fts
		JOIN messages m ON m.rowid = messages_fts.docid
		WHERE messages_fts MATCH ?`
	args := []any{match}
	if userID != "" {
		q += ` AND (m.sender_id = ? OR m.receiver_id = ?)`
		args = append(args, userID, userID)
	}
	if conversationID != "" {
		q += ` AND m.conversation_id = ?`
		args = append(args, conversationID)
	}
	q += ` ORDER BY m.timestamp DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		m := &r.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Timestamp, &m.Read,
			&m.AttachmentURL, &m.AttachmentType, &m.AttachmentName, &r.Snippet); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ftsQuery quotes every term so user input cannot inject FTS operators.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ReplaceAll(t, `"`, "")
		if strings.IndexFunc(t, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) < 0 {
			continue
		}
		quoted = append(quoted, `"`+t+`"`)
	}
	return strings.Join(quoted, " ")
}

func scanMessage(r rowScanner) (*Message, error) {
	var m Message
	if err := r.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Timestamp, &m.Read,
		&m.AttachmentURL, &m.AttachmentType, &m.AttachmentName); err != nil {
		return nil, err
	}
	return &m, nil
}
