package api

import (
	"context"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/blob"
	"github.com/matheus3301/jobboard/internal/messaging"
	"github.com/matheus3301/jobboard/internal/rpc"
)

// StorageService implements the StorageService gRPC service.
type StorageService struct {
	local *messaging.Local
}

// NewStorageService creates a new upload service.
func NewStorageService(local *messaging.Local) *StorageService {
	return &StorageService{local: local}
}

func (s *StorageService) Upload(ctx context.Context, req *rpc.UploadRequest) (*rpc.UploadResponse, error) {
	if !blob.ValidKey(req.Key) {
		return nil, apperr.Invalid("invalid object key", req.Key)
	}
	if len(req.Data) == 0 {
		return nil, apperr.Invalid("upload is empty")
	}
	url, err := s.local.Upload(ctx, req.Key, req.ContentType, req.Data)
	if err != nil {
		return nil, apperr.Unavailable("upload failed", err)
	}
	return &rpc.UploadResponse{URL: url}, nil
}
