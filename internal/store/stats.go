package store

import "context"

// Stats counts documents in the main collections.
func (db *DB) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM conversations),
			(SELECT COUNT(*) FROM messages),
			(SELECT COUNT(*) FROM applications),
			(SELECT COUNT(*) FROM jobs),
			(SELECT COUNT(*) FROM users)`).
		Scan(&s.Conversations, &s.Messages, &s.Applications, &s.Jobs, &s.Users)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
