package rpc

import (
	"context"

	"github.com/matheus3301/jobboard/internal/store"
	"google.golang.org/grpc"
)

const conversationService = "jobboard.v1.ConversationService"

type ConversationServer interface {
	Get(context.Context, *IDRequest) (*store.Conversation, error)
	Create(context.Context, *store.Conversation) (*store.Conversation, error)
	ListForUser(context.Context, *UserRequest) (*ConversationList, error)
	UpdateLast(context.Context, *UpdateLastRequest) (*Empty, error)
	UpdateParticipantDetails(context.Context, *DetailsRequest) (*Empty, error)
	IncrementUnread(context.Context, *UnreadRequest) (*Empty, error)
	ResetUnread(context.Context, *UnreadRequest) (*Empty, error)
	Watch(*UserRequest, ServerStream[ConversationList]) error
}

var ConversationServiceDesc = grpc.ServiceDesc{
	ServiceName: conversationService,
	HandlerType: (*ConversationServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(conversationService, "Get", ConversationServer.Get),
		unary(conversationService, "Create", ConversationServer.Create),
		unary(conversationService, "ListForUser", ConversationServer.ListForUser),
		unary(conversationService, "UpdateLast", ConversationServer.UpdateLast),
		unary(conversationService, "UpdateParticipantDetails", ConversationServer.UpdateParticipantDetails),
		unary(conversationService, "IncrementUnread", ConversationServer.IncrementUnread),
		unary(conversationService, "ResetUnread", ConversationServer.ResetUnread),
	},
	Streams: []grpc.StreamDesc{
		serverStreaming("Watch", ConversationServer.Watch),
	},
	Metadata: "jobboard/v1/conversation",
}

func RegisterConversationServer(s grpc.ServiceRegistrar, srv ConversationServer) {
	s.RegisterService(&ConversationServiceDesc, srv)
}

type ConversationClient struct {
	cc grpc.ClientConnInterface
}

func NewConversationClient(cc grpc.ClientConnInterface) *ConversationClient {
	return &ConversationClient{cc: cc}
}

func (c *ConversationClient) method(name string) string {
	return "/" + conversationService + "/" + name
}

// Get returns nil, nil when the conversation does not exist.
func (c *ConversationClient) Get(ctx context.Context, id string) (*store.Conversation, error) {
	return invokeDoc[store.Conversation](ctx, c.cc, c.method("Get"), &IDRequest{ID: id})
}

func (c *ConversationClient) Create(ctx context.Context, in *store.Conversation) (*store.Conversation, error) {
	return invoke[store.Conversation](ctx, c.cc, c.method("Create"), in)
}

func (c *ConversationClient) ListForUser(ctx context.Context, userID string) ([]store.Conversation, error) {
	out, err := invoke[ConversationList](ctx, c.cc, c.method("ListForUser"), &UserRequest{UserID: userID})
	if err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

func (c *ConversationClient) UpdateLast(ctx context.Context, id, text string, ts int64) error {
	_, err := invoke[Empty](ctx, c.cc, c.method("UpdateLast"), &UpdateLastRequest{ID: id, Text: text, Timestamp: ts})
	return err
}

func (c *ConversationClient) UpdateParticipantDetails(ctx context.Context, id string, details map[string]store.Participant) error {
	_, err := invoke[Empty](ctx, c.cc, c.method("UpdateParticipantDetails"), &DetailsRequest{ID: id, Details: details})
	return err
}

func (c *ConversationClient) IncrementUnread(ctx context.Context, id, userID string) error {
	_, err := invoke[Empty](ctx, c.cc, c.method("IncrementUnread"), &UnreadRequest{ID: id, UserID: userID})
	return err
}

func (c *ConversationClient) ResetUnread(ctx context.Context, id, userID string) error {
	_, err := invoke[Empty](ctx, c.cc, c.method("ResetUnread"), &UnreadRequest{ID: id, UserID: userID})
	return err
}

// Watch streams a fresh snapshot of the user's conversations after every
// relevant change. The first snapshot arrives immediately.
func (c *ConversationClient) Watch(ctx context.Context, userID string) (ClientStream[ConversationList], error) {
	return openStream[ConversationList](ctx, c.cc, &ConversationServiceDesc.Streams[0], c.method("Watch"), &UserRequest{UserID: userID})
}
