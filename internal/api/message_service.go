package api

import (
	"context"
	"strings"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/messaging"
	"github.com/matheus3301/jobboard/internal/rpc"
	"github.com/matheus3301/jobboard/internal/store"
)

const defaultSearchLimit = 50

// MessageService implements the MessageService gRPC service.
type MessageService struct {
	local *messaging.Local
	db    *store.DB
}

// NewMessageService creates a new message service backed by the store.
func NewMessageService(local *messaging.Local, db *store.DB) *MessageService {
	return &MessageService{local: local, db: db}
}

func (s *MessageService) Add(ctx context.Context, req *store.Message) (*store.Message, error) {
	return s.local.AddMessage(ctx, req)
}

func (s *MessageService) List(ctx context.Context, req *rpc.IDRequest) (*rpc.MessageList, error) {
	msgs, err := s.db.ListMessages(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &rpc.MessageList{Messages: msgs}, nil
}

func (s *MessageService) MarkRead(ctx context.Context, req *rpc.IDRequest) (*rpc.Empty, error) {
	if err := s.local.MarkMessageRead(ctx, req.ID); err != nil {
		return nil, err
	}
	return &rpc.Empty{}, nil
}

func (s *MessageService) Search(ctx context.Context, req *rpc.SearchRequest) (*rpc.SearchResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, apperr.Invalid("search query is required")
	}
	if req.UserID == "" {
		return nil, apperr.Invalid("user id is required")
	}
	limit := defaultSearchLimit
	if req.Limit > 0 {
		limit = req.Limit
	}
	results, err := s.db.SearchMessages(ctx, req.Query, req.UserID, req.ConversationID, limit)
	if err != nil {
		return nil, err
	}
	return &rpc.SearchResponse{Results: results}, nil
}

func (s *MessageService) Watch(req *rpc.IDRequest, stream rpc.ServerStream[rpc.MessageList]) error {
	if req.ID == "" {
		return rpc.ToStatus(apperr.Invalid("conversation id is required"))
	}
	ch, err := s.local.WatchMessages(stream.Context(), req.ID)
	if err != nil {
		return rpc.ToStatus(err)
	}
	for snap := range ch {
		if err := stream.Send(&rpc.MessageList{Messages: snap}); err != nil {
			return err
		}
	}
	return nil
}
