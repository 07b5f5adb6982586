package api

import (
	"context"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/directory"
	"github.com/matheus3301/jobboard/internal/rpc"
	"github.com/matheus3301/jobboard/internal/store"
)

const defaultNotificationLimit = 50

// DirectoryService implements the DirectoryService gRPC service: users,
// candidate profiles, jobs, templates and notifications.
type DirectoryService struct {
	dir *directory.Directory
	db  *store.DB
}

// NewDirectoryService creates a new directory service.
func NewDirectoryService(dir *directory.Directory, db *store.DB) *DirectoryService {
	return &DirectoryService{dir: dir, db: db}
}

func (s *DirectoryService) GetUser(ctx context.Context, req *rpc.IDRequest) (*store.User, error) {
	u, err := s.dir.GetUser(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user %q not found", req.ID)
	}
	return u, nil
}

func (s *DirectoryService) UpsertUser(ctx context.Context, req *store.User) (*rpc.Empty, error) {
	if err := s.dir.UpsertUser(ctx, req); err != nil {
		return nil, err
	}
	return &rpc.Empty{}, nil
}

func (s *DirectoryService) GetProfile(ctx context.Context, req *rpc.IDRequest) (*store.CandidateProfile, error) {
	p, err := s.dir.GetCandidateProfile(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("candidate profile %q not found", req.ID)
	}
	return p, nil
}

func (s *DirectoryService) UpsertProfile(ctx context.Context, req *store.CandidateProfile) (*rpc.Empty, error) {
	if err := s.dir.UpsertCandidateProfile(ctx, req); err != nil {
		return nil, err
	}
	return &rpc.Empty{}, nil
}

func (s *DirectoryService) SetAvatar(ctx context.Context, req *rpc.AvatarRequest) (*rpc.UploadResponse, error) {
	if len(req.Data) == 0 {
		return nil, apperr.Invalid("avatar is empty")
	}
	url, err := s.dir.SetAvatar(ctx, req.UserID, req.ContentType, req.Data)
	if err != nil {
		return nil, err
	}
	return &rpc.UploadResponse{URL: url}, nil
}

func (s *DirectoryService) GetJob(ctx context.Context, req *rpc.IDRequest) (*store.Job, error) {
	j, err := s.db.GetJob(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, apperr.NotFound("job %q not found", req.ID)
	}
	return j, nil
}

func (s *DirectoryService) UpsertJob(ctx context.Context, req *store.Job) (*store.Job, error) {
	return s.db.UpsertJob(ctx, req)
}

func (s *DirectoryService) ListJobs(ctx context.Context, req *rpc.UserRequest) (*rpc.JobList, error) {
	jobs, err := s.db.ListJobsByRecruiter(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return &rpc.JobList{Jobs: jobs}, nil
}

func (s *DirectoryService) SetJobStatus(ctx context.Context, req *rpc.SetStatusRequest) (*rpc.Empty, error) {
	if err := s.db.SetJobStatus(ctx, req.ID, req.Status); err != nil {
		return nil, err
	}
	return &rpc.Empty{}, nil
}

func (s *DirectoryService) ListTemplates(ctx context.Context, req *rpc.UserRequest) (*rpc.TemplateList, error) {
	ts, err := s.db.ListTemplates(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return &rpc.TemplateList{Templates: ts}, nil
}

func (s *DirectoryService) SaveTemplate(ctx context.Context, req *store.MessageTemplate) (*store.MessageTemplate, error) {
	return s.db.SaveTemplate(ctx, req)
}

func (s *DirectoryService) DeleteTemplate(ctx context.Context, req *rpc.IDRequest) (*rpc.Empty, error) {
	if err := s.db.DeleteTemplate(ctx, req.ID); err != nil {
		return nil, err
	}
	return &rpc.Empty{}, nil
}

func (s *DirectoryService) ListNotifications(ctx context.Context, req *rpc.UserRequest) (*rpc.NotificationList, error) {
	limit := defaultNotificationLimit
	if req.Limit > 0 {
		limit = req.Limit
	}
	ns, err := s.db.ListNotifications(ctx, req.UserID, limit)
	if err != nil {
		return nil, err
	}
	return &rpc.NotificationList{Notifications: ns}, nil
}

func (s *DirectoryService) AddNotification(ctx context.Context, req *store.Notification) (*store.Notification, error) {
	return s.db.AddNotification(ctx, req)
}

func (s *DirectoryService) MarkNotificationRead(ctx context.Context, req *rpc.IDRequest) (*rpc.Empty, error) {
	if err := s.db.MarkNotificationRead(ctx, req.ID); err != nil {
		return nil, err
	}
	return &rpc.Empty{}, nil
}
