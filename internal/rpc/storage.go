package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const storageService = "jobboard.v1.StorageService"

type StorageServer interface {
	Upload(context.Context, *UploadRequest) (*UploadResponse, error)
}

var StorageServiceDesc = grpc.ServiceDesc{
	ServiceName: storageService,
	HandlerType: (*StorageServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(storageService, "Upload", StorageServer.Upload),
	},
	Metadata: "jobboard/v1/storage",
}

func RegisterStorageServer(s grpc.ServiceRegistrar, srv StorageServer) {
	s.RegisterService(&StorageServiceDesc, srv)
}

type StorageClient struct {
	cc grpc.ClientConnInterface
}

func NewStorageClient(cc grpc.ClientConnInterface) *StorageClient {
	return &StorageClient{cc: cc}
}

// Upload stores data under key and returns its public URL.
func (c *StorageClient) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	out, err := invoke[UploadResponse](ctx, c.cc, "/"+storageService+"/Upload", &UploadRequest{Key: key, ContentType: contentType, Data: data})
	if err != nil {
		return "", err
	}
	return out.URL, nil
}
