package api

import (
	"context"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/messaging"
	"github.com/matheus3301/jobboard/internal/rpc"
	"github.com/matheus3301/jobboard/internal/store"
)

// ConversationService implements the ConversationService gRPC service.
type ConversationService struct {
	local *messaging.Local
	db    *store.DB
}

// NewConversationService creates a new conversation service backed by the store.
func NewConversationService(local *messaging.Local, db *store.DB) *ConversationService {
	return &ConversationService{local: local, db: db}
}

func (s *ConversationService) Get(ctx context.Context, req *rpc.IDRequest) (*store.Conversation, error) {
	c, err := s.local.GetConversation(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("conversation %q not found", req.ID)
	}
	return c, nil
}

func (s *ConversationService) Create(ctx context.Context, req *store.Conversation) (*store.Conversation, error) {
	return s.local.CreateConversation(ctx, req)
}

func (s *ConversationService) ListForUser(ctx context.Context, req *rpc.UserRequest) (*rpc.ConversationList, error) {
	if req.UserID == "" {
		return nil, apperr.Invalid("user id is required")
	}
	convs, err := s.db.ListConversationsForUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return &rpc.ConversationList{Conversations: convs}, nil
}

func (s *ConversationService) UpdateLast(ctx context.Context, req *rpc.UpdateLastRequest) (*rpc.Empty, error) {
	if err := s.local.UpdateConversationLast(ctx, req.ID, req.Text, req.Timestamp); err != nil {
		return nil, err
	}
	return &rpc.Empty{}, nil
}

func (s *ConversationService) UpdateParticipantDetails(ctx context.Context, req *rpc.DetailsRequest) (*rpc.Empty, error) {
	if err := s.local.UpdateParticipantDetails(ctx, req.ID, req.Details); err != nil {
		return nil, err
	}
	return &rpc.Empty{}, nil
}

func (s *ConversationService) IncrementUnread(ctx context.Context, req *rpc.UnreadRequest) (*rpc.Empty, error) {
	if err := s.local.IncrementUnread(ctx, req.ID, req.UserID); err != nil {
		return nil, err
	}
	return &rpc.Empty{}, nil
}

func (s *ConversationService) ResetUnread(ctx context.Context, req *rpc.UnreadRequest) (*rpc.Empty, error) {
	if err := s.local.ResetUnread(ctx, req.ID, req.UserID); err != nil {
		return nil, err
	}
	return &rpc.Empty{}, nil
}

func (s *ConversationService) Watch(req *rpc.UserRequest, stream rpc.ServerStream[rpc.ConversationList]) error {
	if req.UserID == "" {
		return rpc.ToStatus(apperr.Invalid("user id is required"))
	}
	ch, err := s.local.WatchConversations(stream.Context(), req.UserID)
	if err != nil {
		return rpc.ToStatus(err)
	}
	for snap := range ch {
		if err := stream.Send(&rpc.ConversationList{Conversations: snap}); err != nil {
			return err
		}
	}
	return nil
}
