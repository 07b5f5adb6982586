package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/store"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

type fakeConversations struct {
	convs map[string]*store.Conversation
	reset []string
}

func (f *fakeConversations) Get(_ context.Context, req *IDRequest) (*store.Conversation, error) {
	c, ok := f.convs[req.ID]
	if !ok {
		return nil, apperr.NotFound("conversation %q", req.ID)
	}
	return c, nil
}

func (f *fakeConversations) Create(_ context.Context, c *store.Conversation) (*store.Conversation, error) {
	if len(c.Participants) != 2 {
		return nil, apperr.Invalid("conversation needs two participants")
	}
	c.ID = "c-new"
	return c, nil
}

func (f *fakeConversations) ListForUser(context.Context, *UserRequest) (*ConversationList, error) {
	return &ConversationList{}, nil
}

func (f *fakeConversations) UpdateLast(context.Context, *UpdateLastRequest) (*Empty, error) {
	return &Empty{}, nil
}

func (f *fakeConversations) UpdateParticipantDetails(context.Context, *DetailsRequest) (*Empty, error) {
	return &Empty{}, nil
}

func (f *fakeConversations) IncrementUnread(context.Context, *UnreadRequest) (*Empty, error) {
	return &Empty{}, nil
}

func (f *fakeConversations) ResetUnread(_ context.Context, req *UnreadRequest) (*Empty, error) {
	f.reset = append(f.reset, req.ID+"/"+req.UserID)
	return &Empty{}, nil
}

func (f *fakeConversations) Watch(req *UserRequest, stream ServerStream[ConversationList]) error {
	for i := 0; i < 2; i++ {
		snap := &ConversationList{Conversations: []store.Conversation{{ID: "c1", LastMessage: req.UserID}}}
		if err := stream.Send(snap); err != nil {
			return err
		}
	}
	return nil
}

func dial(t *testing.T, register func(*grpc.Server)) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		return resp, ToStatus(err)
	}))
	register(srv)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestConversationRoundTrip(t *testing.T) {
	fake := &fakeConversations{convs: map[string]*store.Conversation{
		"c1": {ID: "c1", Participants: []string{"u1", "u2"}, LastMessage: "hi"},
	}}
	conn := dial(t, func(s *grpc.Server) { RegisterConversationServer(s, fake) })
	client := NewConversationClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := client.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.LastMessage != "hi" || len(got.Participants) != 2 {
		t.Fatalf("Get = %+v", got)
	}

	missing, err := client.Get(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("Get(missing) = %v, %v; want nil, nil", missing, err)
	}

	if err := client.ResetUnread(ctx, "c1", "u2"); err != nil {
		t.Fatalf("ResetUnread: %v", err)
	}
	if len(fake.reset) != 1 || fake.reset[0] != "c1/u2" {
		t.Errorf("reset = %v", fake.reset)
	}
}

func TestErrorCodesSurviveTransport(t *testing.T) {
	conn := dial(t, func(s *grpc.Server) { RegisterConversationServer(s, &fakeConversations{}) })
	client := NewConversationClient(conn)

	_, err := client.Create(context.Background(), &store.Conversation{Participants: []string{"u1"}})
	if !apperr.Is(err, apperr.CodeInvalid) {
		t.Fatalf("Create err = %v, want INVALID", err)
	}
}

func TestWatchStream(t *testing.T) {
	conn := dial(t, func(s *grpc.Server) { RegisterConversationServer(s, &fakeConversations{}) })
	client := NewConversationClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Watch(ctx, "u1")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	count := 0
	for {
		snap, err := stream.Recv()
		if err != nil {
			break
		}
		count++
		if len(snap.Conversations) != 1 || snap.Conversations[0].LastMessage != "u1" {
			t.Fatalf("snapshot = %+v", snap)
		}
	}
	if count != 2 {
		t.Errorf("received %d snapshots, want 2", count)
	}
}

func TestStatusConversion(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Code
	}{
		{"not found", apperr.NotFound("x"), apperr.CodeNotFound},
		{"denied", apperr.PermissionDenied("x"), apperr.CodePermissionDenied},
		{"invalid", apperr.Invalid("x"), apperr.CodeInvalid},
		{"unavailable", apperr.Unavailable("x", nil), apperr.CodeUnavailable},
		{"plain", context.Canceled, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			back := FromStatus(ToStatus(tt.err))
			if tt.want == "" {
				if back != context.Canceled {
					t.Fatalf("got %v, want context.Canceled", back)
				}
				return
			}
			if got := apperr.CodeOf(back); got != tt.want {
				t.Errorf("code = %s, want %s", got, tt.want)
			}
		})
	}
	if ToStatus(nil) != nil || FromStatus(nil) != nil {
		t.Error("nil should convert to nil")
	}
}
