package rpc

import (
	"context"

	"github.com/matheus3301/jobboard/internal/store"
	"google.golang.org/grpc"
)

const applicationService = "jobboard.v1.ApplicationService"

type ApplicationServer interface {
	Get(context.Context, *IDRequest) (*store.Application, error)
	Create(context.Context, *store.Application) (*store.Application, error)
	ListForJob(context.Context, *IDRequest) (*ApplicationList, error)
	SetStatus(context.Context, *SetStatusRequest) (*store.Application, error)
	AddNote(context.Context, *NoteRequest) (*store.Application, error)
	ScheduleInterview(context.Context, *InterviewRequest) (*store.Application, error)
	RequestMatch(context.Context, *IDRequest) (*store.Application, error)
}

var ApplicationServiceDesc = grpc.ServiceDesc{
	ServiceName: applicationService,
	HandlerType: (*ApplicationServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(applicationService, "Get", ApplicationServer.Get),
		unary(applicationService, "Create", ApplicationServer.Create),
		unary(applicationService, "ListForJob", ApplicationServer.ListForJob),
		unary(applicationService, "SetStatus", ApplicationServer.SetStatus),
		unary(applicationService, "AddNote", ApplicationServer.AddNote),
		unary(applicationService, "ScheduleInterview", ApplicationServer.ScheduleInterview),
		unary(applicationService, "RequestMatch", ApplicationServer.RequestMatch),
	},
	Metadata: "jobboard/v1/application",
}

func RegisterApplicationServer(s grpc.ServiceRegistrar, srv ApplicationServer) {
	s.RegisterService(&ApplicationServiceDesc, srv)
}

type ApplicationClient struct {
	cc grpc.ClientConnInterface
}

func NewApplicationClient(cc grpc.ClientConnInterface) *ApplicationClient {
	return &ApplicationClient{cc: cc}
}

func (c *ApplicationClient) method(name string) string {
	return "/" + applicationService + "/" + name
}

func (c *ApplicationClient) Get(ctx context.Context, id string) (*store.Application, error) {
	return invokeDoc[store.Application](ctx, c.cc, c.method("Get"), &IDRequest{ID: id})
}

func (c *ApplicationClient) Create(ctx context.Context, a *store.Application) (*store.Application, error) {
	return invoke[store.Application](ctx, c.cc, c.method("Create"), a)
}

func (c *ApplicationClient) ListForJob(ctx context.Context, jobID string) ([]store.Application, error) {
	out, err := invoke[ApplicationList](ctx, c.cc, c.method("ListForJob"), &IDRequest{ID: jobID})
	if err != nil {
		return nil, err
	}
	return out.Applications, nil
}

func (c *ApplicationClient) SetStatus(ctx context.Context, id, status string) (*store.Application, error) {
	return invoke[store.Application](ctx, c.cc, c.method("SetStatus"), &SetStatusRequest{ID: id, Status: status})
}

func (c *ApplicationClient) AddNote(ctx context.Context, id string, n store.Note) (*store.Application, error) {
	return invoke[store.Application](ctx, c.cc, c.method("AddNote"), &NoteRequest{ID: id, Note: n})
}

func (c *ApplicationClient) ScheduleInterview(ctx context.Context, id string, iv *store.Interview) (*store.Application, error) {
	return invoke[store.Application](ctx, c.cc, c.method("ScheduleInterview"), &InterviewRequest{ID: id, Interview: iv})
}

func (c *ApplicationClient) RequestMatch(ctx context.Context, id string) (*store.Application, error) {
	return invoke[store.Application](ctx, c.cc, c.method("RequestMatch"), &IDRequest{ID: id})
}
