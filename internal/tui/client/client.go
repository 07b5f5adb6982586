// Package client is the daemon's gRPC client. It satisfies
// messaging.Backend so the view-models run unchanged over the socket.
package client

import (
	"context"
	"fmt"

	"github.com/matheus3301/jobboard/internal/messaging"
	"github.com/matheus3301/jobboard/internal/rpc"
	"github.com/matheus3301/jobboard/internal/store"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var _ messaging.Backend = (*Client)(nil)

// Client wraps gRPC connections to the daemon.
type Client struct {
	conn          *grpc.ClientConn
	Daemon        *rpc.DaemonClient
	Conversations *rpc.ConversationClient
	Messages      *rpc.MessageClient
	Directory     *rpc.DirectoryClient
	Applications  *rpc.ApplicationClient
	Storage       *rpc.StorageClient
}

// New dials the daemon's Unix domain socket and returns typed service clients.
func New(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.CallContentSubtype(rpc.CodecName),
			grpc.MaxCallRecvMsgSize(rpc.MaxMessageSize),
			grpc.MaxCallSendMsgSize(rpc.MaxMessageSize),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}

	return &Client{
		conn:          conn,
		Daemon:        rpc.NewDaemonClient(conn),
		Conversations: rpc.NewConversationClient(conn),
		Messages:      rpc.NewMessageClient(conn),
		Directory:     rpc.NewDirectoryClient(conn),
		Applications:  rpc.NewApplicationClient(conn),
		Storage:       rpc.NewStorageClient(conn),
	}, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) GetConversation(ctx context.Context, id string) (*store.Conversation, error) {
	return c.Conversations.Get(ctx, id)
}

func (c *Client) CreateConversation(ctx context.Context, conv *store.Conversation) (*store.Conversation, error) {
	return c.Conversations.Create(ctx, conv)
}

func (c *Client) UpdateConversationLast(ctx context.Context, id, text string, ts int64) error {
	return c.Conversations.UpdateLast(ctx, id, text, ts)
}

func (c *Client) UpdateParticipantDetails(ctx context.Context, id string, details map[string]store.Participant) error {
	return c.Conversations.UpdateParticipantDetails(ctx, id, details)
}

func (c *Client) IncrementUnread(ctx context.Context, id, userID string) error {
	return c.Conversations.IncrementUnread(ctx, id, userID)
}

func (c *Client) ResetUnread(ctx context.Context, id, userID string) error {
	return c.Conversations.ResetUnread(ctx, id, userID)
}

func (c *Client) WatchConversations(ctx context.Context, userID string) (<-chan []store.Conversation, error) {
	stream, err := c.Conversations.Watch(ctx, userID)
	if err != nil {
		return nil, err
	}
	return pump(ctx, stream, func(l *rpc.ConversationList) []store.Conversation { return l.Conversations }), nil
}

func (c *Client) AddMessage(ctx context.Context, m *store.Message) (*store.Message, error) {
	return c.Messages.Add(ctx, m)
}

func (c *Client) MarkMessageRead(ctx context.Context, id string) error {
	return c.Messages.MarkRead(ctx, id)
}

func (c *Client) WatchMessages(ctx context.Context, conversationID string) (<-chan []store.Message, error) {
	stream, err := c.Messages.Watch(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return pump(ctx, stream, func(l *rpc.MessageList) []store.Message { return l.Messages }), nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*store.User, error) {
	return c.Directory.GetUser(ctx, id)
}

func (c *Client) GetCandidateProfile(ctx context.Context, userID string) (*store.CandidateProfile, error) {
	return c.Directory.GetProfile(ctx, userID)
}

func (c *Client) GetJob(ctx context.Context, id string) (*store.Job, error) {
	return c.Directory.GetJob(ctx, id)
}

func (c *Client) ListTemplates(ctx context.Context, ownerID string) ([]store.MessageTemplate, error) {
	return c.Directory.ListTemplates(ctx, ownerID)
}

func (c *Client) AddNotification(ctx context.Context, n *store.Notification) (*store.Notification, error) {
	return c.Directory.AddNotification(ctx, n)
}

func (c *Client) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	return c.Storage.Upload(ctx, key, contentType, data)
}

// pump forwards stream snapshots to an unbuffered channel that closes when
// the stream ends or ctx is done.
func pump[S, T any](ctx context.Context, stream rpc.ClientStream[S], pick func(*S) T) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for {
			msg, err := stream.Recv()
			if err != nil {
				return
			}
			select {
			case out <- pick(msg):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
