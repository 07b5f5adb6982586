package api

import (
	"context"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/applications"
	"github.com/matheus3301/jobboard/internal/rpc"
	"github.com/matheus3301/jobboard/internal/store"
)

// ApplicationService implements the ApplicationService gRPC service.
type ApplicationService struct {
	apps *applications.Service
}

// NewApplicationService creates a new application service.
func NewApplicationService(apps *applications.Service) *ApplicationService {
	return &ApplicationService{apps: apps}
}

func (s *ApplicationService) Get(ctx context.Context, req *rpc.IDRequest) (*store.Application, error) {
	a, err := s.apps.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("application %q not found", req.ID)
	}
	return a, nil
}

func (s *ApplicationService) Create(ctx context.Context, req *store.Application) (*store.Application, error) {
	return s.apps.Create(ctx, req)
}

func (s *ApplicationService) ListForJob(ctx context.Context, req *rpc.IDRequest) (*rpc.ApplicationList, error) {
	apps, err := s.apps.ListForJob(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &rpc.ApplicationList{Applications: apps}, nil
}

func (s *ApplicationService) SetStatus(ctx context.Context, req *rpc.SetStatusRequest) (*store.Application, error) {
	return s.apps.SetStatus(ctx, req.ID, req.Status)
}

func (s *ApplicationService) AddNote(ctx context.Context, req *rpc.NoteRequest) (*store.Application, error) {
	return s.apps.AddNote(ctx, req.ID, req.Note)
}

func (s *ApplicationService) ScheduleInterview(ctx context.Context, req *rpc.InterviewRequest) (*store.Application, error) {
	return s.apps.ScheduleInterview(ctx, req.ID, req.Interview)
}

func (s *ApplicationService) RequestMatch(ctx context.Context, req *rpc.IDRequest) (*store.Application, error) {
	return s.apps.RequestMatch(ctx, req.ID)
}
