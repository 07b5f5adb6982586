package rpc

import (
	"context"

	"github.com/matheus3301/jobboard/internal/store"
	"google.golang.org/grpc"
)

const messageService = "jobboard.v1.MessageService"

type MessageServer interface {
	Add(context.Context, *store.Message) (*store.Message, error)
	List(context.Context, *IDRequest) (*MessageList, error)
	MarkRead(context.Context, *IDRequest) (*Empty, error)
	Search(context.Context, *SearchRequest) (*SearchResponse, error)
	Watch(*IDRequest, ServerStream[MessageList]) error
}

var MessageServiceDesc = grpc.ServiceDesc{
	ServiceName: messageService,
	HandlerType: (*MessageServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(messageService, "Add", MessageServer.Add),
		unary(messageService, "List", MessageServer.List),
		unary(messageService, "MarkRead", MessageServer.MarkRead),
		unary(messageService, "Search", MessageServer.Search),
	},
	Streams: []grpc.StreamDesc{
		serverStreaming("Watch", MessageServer.Watch),
	},
	Metadata: "jobboard/v1/message",
}

func RegisterMessageServer(s grpc.ServiceRegistrar, srv MessageServer) {
	s.RegisterService(&MessageServiceDesc, srv)
}

type MessageClient struct {
	cc grpc.ClientConnInterface
}

func NewMessageClient(cc grpc.ClientConnInterface) *MessageClient {
	return &MessageClient{cc: cc}
}

func (c *MessageClient) method(name string) string {
	return "/" + messageService + "/" + name
}

func (c *MessageClient) Add(ctx context.Context, in *store.Message) (*store.Message, error) {
	return invoke[store.Message](ctx, c.cc, c.method("Add"), in)
}

func (c *MessageClient) List(ctx context.Context, conversationID string) ([]store.Message, error) {
	out, err := invoke[MessageList](ctx, c.cc, c.method("List"), &IDRequest{ID: conversationID})
	if err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *MessageClient) MarkRead(ctx context.Context, id string) error {
	_, err := invoke[Empty](ctx, c.cc, c.method("MarkRead"), &IDRequest{ID: id})
	return err
}

func (c *MessageClient) Search(ctx context.Context, req *SearchRequest) ([]store.SearchResult, error) {
	out, err := invoke[SearchResponse](ctx, c.cc, c.method("Search"), req)
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Watch streams the conversation's messages, oldest first, after every
// change to them.
func (c *MessageClient) Watch(ctx context.Context, conversationID string) (ClientStream[MessageList], error) {
	return openStream[MessageList](ctx, c.cc, &MessageServiceDesc.Streams[0], c.method("Watch"), &IDRequest{ID: conversationID})
}
