package daemon

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/matheus3301/jobboard/internal/api"
	"github.com/matheus3301/jobboard/internal/instance"
	"github.com/matheus3301/jobboard/internal/rpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Server manages the gRPC server lifecycle for an instance daemon.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	socketPath string
	logger     *zap.Logger
}

// Services groups the handlers registered on the server.
type Services struct {
	Daemon        rpc.DaemonServer
	Conversations rpc.ConversationServer
	Messages      rpc.MessageServer
	Directory     rpc.DirectoryServer
	Applications  rpc.ApplicationServer
	Storage       rpc.StorageServer
}

// NewServer creates a gRPC server bound to the instance's Unix domain socket.
func NewServer(
	p Params,
	logger *zap.Logger,
	daemonSvc *api.DaemonService,
	conversationSvc *api.ConversationService,
	messageSvc *api.MessageService,
	directorySvc *api.DirectoryService,
	applicationSvc *api.ApplicationService,
	storageSvc *api.StorageService,
) (*Server, error) {
	socketPath := p.SocketPath
	if socketPath == "" {
		socketPath = instance.SocketPath(p.Instance)
	}
	return Listen(socketPath, logger, Services{
		Daemon:        daemonSvc,
		Conversations: conversationSvc,
		Messages:      messageSvc,
		Directory:     directorySvc,
		Applications:  applicationSvc,
		Storage:       storageSvc,
	})
}

// Listen binds socketPath and registers every non-nil service.
func Listen(socketPath string, logger *zap.Logger, svcs Services) (*Server, error) {
	// Clean stale socket if it exists.
	if _, err := os.Stat(socketPath); err == nil {
		_ = os.Remove(socketPath)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listen unix socket: %w", err)
	}

	// Set socket permissions to 0600.
	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}

	srv := grpc.NewServer(
		grpc.MaxRecvMsgSize(rpc.MaxMessageSize),
		grpc.MaxSendMsgSize(rpc.MaxMessageSize),
		grpc.ChainUnaryInterceptor(api.UnaryInterceptor(logger)),
		grpc.ChainStreamInterceptor(api.StreamInterceptor(logger)),
	)
	if svcs.Daemon != nil {
		rpc.RegisterDaemonServer(srv, svcs.Daemon)
	}
	if svcs.Conversations != nil {
		rpc.RegisterConversationServer(srv, svcs.Conversations)
	}
	if svcs.Messages != nil {
		rpc.RegisterMessageServer(srv, svcs.Messages)
	}
	if svcs.Directory != nil {
		rpc.RegisterDirectoryServer(srv, svcs.Directory)
	}
	if svcs.Applications != nil {
		rpc.RegisterApplicationServer(srv, svcs.Applications)
	}
	if svcs.Storage != nil {
		rpc.RegisterStorageServer(srv, svcs.Storage)
	}

	return &Server{
		grpcServer: srv,
		listener:   listener,
		socketPath: socketPath,
		logger:     logger,
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins serving gRPC requests. Blocks until stopped.
func (s *Server) Start() error {
	s.logger.Info("gRPC server starting", zap.String("socket", s.socketPath))
	return s.grpcServer.Serve(s.listener)
}

// Stop performs a graceful shutdown and removes the socket file.
func (s *Server) Stop(_ context.Context) {
	s.logger.Info("gRPC server stopping")
	s.grpcServer.GracefulStop()
	_ = os.Remove(s.socketPath)
}
