// Package messaging holds the per-page view-models: Thread for one open
// conversation and Inbox for the signed-in user's conversation list.
package messaging

import (
	"context"

	"github.com/matheus3301/jobboard/internal/store"
)

// Backend is the document and object store as the view-models see it. Point
// reads return (nil, nil) for a missing document. Watch calls push the full
// result set on every relevant change until ctx is done.
type Backend interface {
	GetConversation(ctx context.Context, id string) (*store.Conversation, error)
	CreateConversation(ctx context.Context, c *store.Conversation) (*store.Conversation, error)
	UpdateConversationLast(ctx context.Context, id, text string, ts int64) error
	UpdateParticipantDetails(ctx context.Context, id string, details map[string]store.Participant) error
	IncrementUnread(ctx context.Context, id, userID string) error
	ResetUnread(ctx context.Context, id, userID string) error
	WatchConversations(ctx context.Context, userID string) (<-chan []store.Conversation, error)

	AddMessage(ctx context.Context, m *store.Message) (*store.Message, error)
	MarkMessageRead(ctx context.Context, id string) error
	WatchMessages(ctx context.Context, conversationID string) (<-chan []store.Message, error)

	GetUser(ctx context.Context, id string) (*store.User, error)
	GetCandidateProfile(ctx context.Context, userID string) (*store.CandidateProfile, error)
	GetJob(ctx context.Context, id string) (*store.Job, error)
	ListTemplates(ctx context.Context, ownerID string) ([]store.MessageTemplate, error)
	AddNotification(ctx context.Context, n *store.Notification) (*store.Notification, error)

	// Upload stores data under key and returns its public URL.
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}
