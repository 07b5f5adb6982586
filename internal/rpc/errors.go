package rpc

import (
	"context"
	"errors"

	"github.com/matheus3301/jobboard/internal/apperr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToStatus converts an error returned by a service into a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codeFor(apperr.CodeOf(err)), err.Error())
}

// FromStatus converts a gRPC status error back into an apperr error carrying
// the server's message.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	msg := st.Message()
	switch st.Code() {
	case codes.NotFound:
		return &apperr.Error{Code: apperr.CodeNotFound, Message: msg}
	case codes.PermissionDenied:
		return &apperr.Error{Code: apperr.CodePermissionDenied, Message: msg}
	case codes.InvalidArgument:
		return &apperr.Error{Code: apperr.CodeInvalid, Message: msg}
	case codes.Unavailable:
		return &apperr.Error{Code: apperr.CodeUnavailable, Message: msg, Retryable: true, Err: err}
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	}
	return &apperr.Error{Code: apperr.CodeInternal, Message: msg, Err: err}
}

func codeFor(c apperr.Code) codes.Code {
	switch c {
	case apperr.CodeNotFound:
		return codes.NotFound
	case apperr.CodePermissionDenied:
		return codes.PermissionDenied
	case apperr.CodeInvalid:
		return codes.InvalidArgument
	case apperr.CodeUnavailable:
		return codes.Unavailable
	}
	return codes.Internal
}

func isNotFound(err error) bool {
	return apperr.Is(err, apperr.CodeNotFound)
}
