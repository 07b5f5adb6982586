package rpc

import (
	"context"
	"io"

	"google.golang.org/grpc"
)

// MaxMessageSize bounds a single message, uploads included.
const MaxMessageSize = 32 << 20

// ServerStream is the sending side of a server-streaming call.
type ServerStream[T any] interface {
	Send(*T) error
	Context() context.Context
}

type serverStream[T any] struct {
	grpc.ServerStream
}

func (s serverStream[T]) Send(m *T) error {
	return s.ServerStream.SendMsg(m)
}

// ClientStream is the receiving side of a server-streaming call. Recv
// returns io.EOF when the server ends the stream.
type ClientStream[T any] interface {
	Recv() (*T, error)
}

type clientStream[T any] struct {
	grpc.ClientStream
}

func (s clientStream[T]) Recv() (*T, error) {
	m := new(T)
	if err := s.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// unary builds a method descriptor from a method expression such as
// ConversationServer.Get.
func unary[S, Req, Resp any](service, name string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	full := "/" + service + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// serverStreaming builds a stream descriptor for a call with one request and
// a stream of responses.
func serverStreaming[S, Req, Resp any](name string, call func(S, *Req, ServerStream[Resp]) error) grpc.StreamDesc {
	return grpc.StreamDesc{
		StreamName:    name,
		ServerStreams: true,
		Handler: func(srv any, ss grpc.ServerStream) error {
			in := new(Req)
			if err := ss.RecvMsg(in); err != nil {
				return err
			}
			return call(srv.(S), in, serverStream[Resp]{ss})
		},
	}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, grpc.CallContentSubtype(CodecName)); err != nil {
		return nil, FromStatus(err)
	}
	return out, nil
}

// invokeDoc is invoke for point reads: NotFound becomes (nil, nil).
func invokeDoc[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any) (*Resp, error) {
	out, err := invoke[Resp](ctx, cc, method, in)
	if isNotFound(err) {
		return nil, nil
	}
	return out, err
}

func openStream[Resp any](ctx context.Context, cc grpc.ClientConnInterface, desc *grpc.StreamDesc, method string, in any) (ClientStream[Resp], error) {
	s, err := cc.NewStream(ctx, desc, method, grpc.CallContentSubtype(CodecName))
	if err != nil {
		return nil, FromStatus(err)
	}
	if err := s.SendMsg(in); err != nil {
		if err == io.EOF {
			_, err = clientStream[Resp]{s}.Recv()
		}
		return nil, FromStatus(err)
	}
	if err := s.CloseSend(); err != nil {
		return nil, FromStatus(err)
	}
	return clientStream[Resp]{s}, nil
}
