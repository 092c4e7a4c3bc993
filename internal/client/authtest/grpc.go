package authtest

import (
	"context"
	"net"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dmitrijs2005/taskboard/internal/common"
)

// DialGRPC serves the standard health service in-process, guarded by the
// same bearer check as the HTTP endpoints, and returns a connection to it.
func (s *Server) DialGRPC(t testing.TB, opts ...grpc.DialOption) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(grpc.UnaryInterceptor(s.accessTokenInterceptor))
	healthpb.RegisterHealthServer(gs, health.NewServer())

	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	opts = append([]grpc.DialOption{
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient("passthrough:///bufnet", opts...)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func (s *Server) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(strings.ToLower(common.AuthorizationHeaderName)); len(values) > 0 {
			header = values[0]
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{Method: "GRPC", Path: info.FullMethod, Authorization: header})
	valid := s.access
	s.mu.Unlock()

	token, ok := strings.CutPrefix(header, common.BearerScheme+" ")
	if !ok || token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	if valid == "" || token != valid {
		return nil, status.Error(codes.Unauthenticated, "token expired")
	}

	return handler(ctx, req)
}
