package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xtding233/sticker-gacha/internal/logger"
	"github.com/xtding233/sticker-gacha/internal/session"
)

// Server serves the pull service and the standard health service.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
}

// NewServer listens on addr and registers the services.
func NewServer(addr string, sessions *session.Manager) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return NewServerWithListener(lis, sessions), nil
}

// NewServerWithListener is NewServer on an existing listener.
func NewServerWithListener(lis net.Listener, sessions *session.Manager) *Server {
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(requestIDInterceptor))
	healthServer := health.NewServer()
	RegisterPullServiceServer(grpcServer, NewPullService(sessions))
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{listener: lis, grpcServer: grpcServer, health: healthServer}
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string { return s.listener.Addr().String() }

// Serve runs until ctx is cancelled, then stops gracefully.
func (s *Server) Serve(ctx context.Context) error {
	slog.Info("gRPC server listening", "addr", s.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

func requestIDInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx = logger.WithRequestID(ctx, logger.GenerateRequestID())
	resp, err := handler(ctx, req)
	log := logger.FromContext(ctx)
	if err != nil {
		log.Info("gRPC call failed", "method", info.FullMethod, "error", err)
	} else {
		log.Debug("gRPC call completed", "method", info.FullMethod)
	}
	return resp, err
}
