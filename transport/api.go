package transport

import (
	"net"

	"shop-lab/auth"
	"shop-lab/services"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// APIServer hosts the request/response side: a gRPC server carrying the
// JWT interceptor and a health endpoint for probes. The generated API
// stubs (account, catalog, orders) register against Mount; they live
// with the platform's proto definitions, outside this repository.
type APIServer struct {
	server   *grpc.Server
	services services.Container
}

func NewAPIServer(tokens *auth.TokenManager, container services.Container) *APIServer {
	s := grpc.NewServer(grpc.UnaryInterceptor(auth.UnaryInterceptor(tokens)))
	healthpb.RegisterHealthServer(s, health.NewServer())
	return &APIServer{server: s, services: container}
}

// Mount lets the API layer register its generated service
// implementations, wired to the engine's services.
func (a *APIServer) Mount(register func(s *grpc.Server, c services.Container)) {
	register(a.server, a.services)
}

func (a *APIServer) Serve(listener net.Listener) error {
	return a.server.Serve(listener)
}

func (a *APIServer) GracefulStop() {
	a.server.GracefulStop()
}
