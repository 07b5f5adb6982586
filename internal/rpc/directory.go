package rpc

import (
	"context"

	"github.com/matheus3301/jobboard/internal/store"
	"google.golang.org/grpc"
)

const directoryService = "jobboard.v1.DirectoryService"

type DirectoryServer interface {
	GetUser(context.Context, *IDRequest) (*store.User, error)
	UpsertUser(context.Context, *store.User) (*Empty, error)
	GetProfile(context.Context, *IDRequest) (*store.CandidateProfile, error)
	UpsertProfile(context.Context, *store.CandidateProfile) (*Empty, error)
	SetAvatar(context.Context, *AvatarRequest) (*UploadResponse, error)
	GetJob(context.Context, *IDRequest) (*store.Job, error)
	UpsertJob(context.Context, *store.Job) (*store.Job, error)
	ListJobs(context.Context, *UserRequest) (*JobList, error)
	SetJobStatus(context.Context, *SetStatusRequest) (*Empty, error)
	ListTemplates(context.Context, *UserRequest) (*TemplateList, error)
	SaveTemplate(context.Context, *store.MessageTemplate) (*store.MessageTemplate, error)
	DeleteTemplate(context.Context, *IDRequest) (*Empty, error)
	ListNotifications(context.Context, *UserRequest) (*NotificationList, error)
	AddNotification(context.Context, *store.Notification) (*store.Notification, error)
	MarkNotificationRead(context.Context, *IDRequest) (*Empty, error)
}

var DirectoryServiceDesc = grpc.ServiceDesc{
	ServiceName: directoryService,
	HandlerType: (*DirectoryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(directoryService, "GetUser", DirectoryServer.GetUser),
		unary(directoryService, "UpsertUser", DirectoryServer.UpsertUser),
		unary(directoryService, "GetProfile", DirectoryServer.GetProfile),
		unary(directoryService, "UpsertProfile", DirectoryServer.UpsertProfile),
		unary(directoryService, "SetAvatar", DirectoryServer.SetAvatar),
		unary(directoryService, "GetJob", DirectoryServer.GetJob),
		unary(directoryService, "UpsertJob", DirectoryServer.UpsertJob),
		unary(directoryService, "ListJobs", DirectoryServer.ListJobs),
		unary(directoryService, "SetJobStatus", DirectoryServer.SetJobStatus),
		unary(directoryService, "ListTemplates", DirectoryServer.ListTemplates),
		unary(directoryService, "SaveTemplate", DirectoryServer.SaveTemplate),
		unary(directoryService, "DeleteTemplate", DirectoryServer.DeleteTemplate),
		unary(directoryService, "ListNotifications", DirectoryServer.ListNotifications),
		unary(directoryService, "AddNotification", DirectoryServer.AddNotification),
		unary(directoryService, "MarkNotificationRead", DirectoryServer.MarkNotificationRead),
	},
	Metadata: "jobboard/v1/directory",
}

func RegisterDirectoryServer(s grpc.ServiceRegistrar, srv DirectoryServer) {
	s.RegisterService(&DirectoryServiceDesc, srv)
}

type DirectoryClient struct {
	cc grpc.ClientConnInterface
}

func NewDirectoryClient(cc grpc.ClientConnInterface) *DirectoryClient {
	return &DirectoryClient{cc: cc}
}

func (c *DirectoryClient) method(name string) string {
	return "/" + directoryService + "/" + name
}

func (c *DirectoryClient) GetUser(ctx context.Context, id string) (*store.User, error) {
	return invokeDoc[store.User](ctx, c.cc, c.method("GetUser"), &IDRequest{ID: id})
}

func (c *DirectoryClient) UpsertUser(ctx context.Context, u *store.User) error {
	_, err := invoke[Empty](ctx, c.cc, c.method("UpsertUser"), u)
	return err
}

func (c *DirectoryClient) GetProfile(ctx context.Context, userID string) (*store.CandidateProfile, error) {
	return invokeDoc[store.CandidateProfile](ctx, c.cc, c.method("GetProfile"), &IDRequest{ID: userID})
}

func (c *DirectoryClient) UpsertProfile(ctx context.Context, p *store.CandidateProfile) error {
	_, err := invoke[Empty](ctx, c.cc, c.method("UpsertProfile"), p)
	return err
}

func (c *DirectoryClient) SetAvatar(ctx context.Context, userID, contentType string, data []byte) (string, error) {
	out, err := invoke[UploadResponse](ctx, c.cc, c.method("SetAvatar"), &AvatarRequest{UserID: userID, ContentType: contentType, Data: data})
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *DirectoryClient) GetJob(ctx context.Context, id string) (*store.Job, error) {
	return invokeDoc[store.Job](ctx, c.cc, c.method("GetJob"), &IDRequest{ID: id})
}

func (c *DirectoryClient) UpsertJob(ctx context.Context, j *store.Job) (*store.Job, error) {
	return invoke[store.Job](ctx, c.cc, c.method("UpsertJob"), j)
}

// ListJobs returns a recruiter's postings, newest first.
func (c *DirectoryClient) ListJobs(ctx context.Context, recruiterID string) ([]store.Job, error) {
	out, err := invoke[JobList](ctx, c.cc, c.method("ListJobs"), &UserRequest{UserID: recruiterID})
	if err != nil {
		return nil, err
	}
	return out.Jobs, nil
}

func (c *DirectoryClient) SetJobStatus(ctx context.Context, id, status string) error {
	_, err := invoke[Empty](ctx, c.cc, c.method("SetJobStatus"), &SetStatusRequest{ID: id, Status: status})
	return err
}

func (c *DirectoryClient) ListTemplates(ctx context.Context, ownerID string) ([]store.MessageTemplate, error) {
	out, err := invoke[TemplateList](ctx, c.cc, c.method("ListTemplates"), &UserRequest{UserID: ownerID})
	if err != nil {
		return nil, err
	}
	return out.Templates, nil
}

func (c *DirectoryClient) SaveTemplate(ctx context.Context, t *store.MessageTemplate) (*store.MessageTemplate, error) {
	return invoke[store.MessageTemplate](ctx, c.cc, c.method("SaveTemplate"), t)
}

func (c *DirectoryClient) DeleteTemplate(ctx context.Context, id string) error {
	_, err := invoke[Empty](ctx, c.cc, c.method("DeleteTemplate"), &IDRequest{ID: id})
	return err
}

func (c *DirectoryClient) ListNotifications(ctx context.Context, userID string, limit int) ([]store.Notification, error) {
	out, err := invoke[NotificationList](ctx, c.cc, c.method("ListNotifications"), &UserRequest{UserID: userID, Limit: limit})
	if err != nil {
		return nil, err
	}
	return out.Notifications, nil
}

func (c *DirectoryClient) AddNotification(ctx context.Context, n *store.Notification) (*store.Notification, error) {
	return invoke[store.Notification](ctx, c.cc, c.method("AddNotification"), n)
}

func (c *DirectoryClient) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := invoke[Empty](ctx, c.cc, c.method("MarkNotificationRead"), &IDRequest{ID: id})
	return err
}
