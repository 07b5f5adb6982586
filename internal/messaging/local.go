package messaging

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matheus3301/jobboard/internal/blob"
	"github.com/matheus3301/jobboard/internal/bus"
	"github.com/matheus3301/jobboard/internal/directory"
	"github.com/matheus3301/jobboard/internal/livequery"
	"github.com/matheus3301/jobboard/internal/metrics"
	"github.com/matheus3301/jobboard/internal/store"
	"go.uber.org/zap"
)

// Local is the in-process Backend: the daemon's API layer and tests use it
// directly over the store, bus and object storage.
type Local struct {
	db     *store.DB
	bus    *bus.Bus
	blobs  blob.Storage
	dir    *directory.Directory
	logger *zap.Logger
}

// NewLocal wires a Backend over the daemon's components. dir may be nil, in
// which case user and profile reads go straight to the store.
func NewLocal(db *store.DB, b *bus.Bus, blobs blob.Storage, dir *directory.Directory, logger *zap.Logger) *Local {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Local{db: db, bus: b, blobs: blobs, dir: dir, logger: logger}
}

var _ Backend = (*Local)(nil)

func (l *Local) GetConversation(ctx context.Context, id string) (*store.Conversation, error) {
	return l.db.GetConversation(ctx, id)
}

func (l *Local) CreateConversation(ctx context.Context, c *store.Conversation) (*store.Conversation, error) {
	return l.db.CreateConversation(ctx, c)
}

func (l *Local) UpdateConversationLast(ctx context.Context, id, text string, ts int64) error {
	return l.db.UpdateConversationLast(ctx, id, text, ts)
}

func (l *Local) UpdateParticipantDetails(ctx context.Context, id string, details map[string]store.Participant) error {
	return l.db.UpdateParticipantDetails(ctx, id, details)
}

func (l *Local) IncrementUnread(ctx context.Context, id, userID string) error {
	return l.db.IncrementUnread(ctx, id, userID)
}

func (l *Local) ResetUnread(ctx context.Context, id, userID string) error {
	return l.db.ResetUnread(ctx, id, userID)
}

// WatchConversations pushes the user's conversations, newest activity first.
func (l *Local) WatchConversations(ctx context.Context, userID string) (<-chan []store.Conversation, error) {
	return livequery.Watch(ctx, l.bus, store.CollConversations, livequery.KeyMatch(userID),
		func(ctx context.Context) ([]store.Conversation, error) {
			return l.db.ListConversationsForUser(ctx, userID)
		}, l.logger), nil
}

func (l *Local) AddMessage(ctx context.Context, m *store.Message) (*store.Message, error) {
	return l.db.AddMessage(ctx, m)
}

func (l *Local) MarkMessageRead(ctx context.Context, id string) error {
	return l.db.MarkMessageRead(ctx, id)
}

// WatchMessages pushes a conversation's messages, oldest first.
func (l *Local) WatchMessages(ctx context.Context, conversationID string) (<-chan []store.Message, error) {
	return livequery.Watch(ctx, l.bus, store.CollMessages, livequery.KeyMatch(conversationID),
		func(ctx context.Context) ([]store.Message, error) {
			return l.db.ListMessages(ctx, conversationID)
		}, l.logger), nil
}

func (l *Local) GetUser(ctx context.Context, id string) (*store.User, error) {
	if l.dir != nil {
		return l.dir.GetUser(ctx, id)
	}
	return l.db.GetUser(ctx, id)
}

func (l *Local) GetCandidateProfile(ctx context.Context, userID string) (*store.CandidateProfile, error) {
	if l.dir != nil {
		return l.dir.GetCandidateProfile(ctx, userID)
	}
	return l.db.GetCandidateProfile(ctx, userID)
}

func (l *Local) GetJob(ctx context.Context, id string) (*store.Job, error) {
	return l.db.GetJob(ctx, id)
}

func (l *Local) ListTemplates(ctx context.Context, ownerID string) ([]store.MessageTemplate, error) {
	return l.db.ListTemplates(ctx, ownerID)
}

func (l *Local) AddNotification(ctx context.Context, n *store.Notification) (*store.Notification, error) {
	return l.db.AddNotification(ctx, n)
}

func (l *Local) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if l.blobs == nil {
		return "", fmt.Errorf("no blob storage configured")
	}
	url, err := l.blobs.Put(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	metrics.Uploads.WithLabelValues(blob.KindOf(key)).Inc()
	metrics.UploadBytes.Add(float64(len(data)))
	return url, nil
}
