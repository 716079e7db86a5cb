package supervisor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/buildinfo"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
)

// HealthServiceName is the gRPC health service reported by the device.
const HealthServiceName = "wildlife.supervisor"

// StatusSource is read by the status handlers.
type StatusSource interface {
	Status() Status
}

type healthHandler struct {
	src StatusSource
}

// NewHealthHandler serves the loop status as JSON. The response is 200 for
// ok and degraded and 503 when the network is down.
func NewHealthHandler(src StatusSource) http.Handler {
	return &healthHandler{src: src}
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	type resp struct {
		Status string            `json:"status"`
		Loop   Status            `json:"loop"`
		Build  map[string]string `json:"build"`
	}
	st := h.src.Status()
	out := resp{Loop: st, Build: buildinfo.Info()}

	switch st.Health {
	case entities.HealthFullyConnected:
		out.Status = "ok"
	case entities.HealthNetworkOnlyRetrying:
		out.Status = "degraded"
	default:
		out.Status = "down"
	}

	w.Header().Set("Content-Type", "application/json")
	if out.Status == "down" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(out)
}

// GRPCHealth mirrors HealthStatus onto the standard gRPC health service.
type GRPCHealth struct {
	srv *health.Server
}

func NewGRPCHealth() *GRPCHealth {
	g := &GRPCHealth{srv: health.NewServer()}
	g.Update(entities.HealthUnknown)
	return g
}

// Update is meant to be passed to WithHealthListener.
func (g *GRPCHealth) Update(h entities.HealthStatus) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if h == entities.HealthFullyConnected {
		st = healthpb.HealthCheckResponse_SERVING
	}
	g.srv.SetServingStatus(HealthServiceName, st)
	g.srv.SetServingStatus("", st)
}

func (g *GRPCHealth) Server() healthpb.HealthServer { return g.srv }

// StatusServer exposes /healthz, /metrics and optionally gRPC health.
type StatusServer struct {
	httpAddr string
	grpcAddr string
	http     *http.Server
	grpc     *grpc.Server
	logger   *slog.Logger
}

func NewStatusServer(httpAddr, grpcAddr string, src StatusSource, gatherer prometheus.Gatherer, gh *GRPCHealth, logger *slog.Logger) *StatusServer {
	mux := http.NewServeMux()
	mux.Handle("/healthz", NewHealthHandler(src))
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s := &StatusServer{
		httpAddr: httpAddr,
		grpcAddr: grpcAddr,
		logger:   logger,
		http: &http.Server{
			Addr:              httpAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
	if grpcAddr != "" && gh != nil {
		s.grpc = grpc.NewServer()
		healthpb.RegisterHealthServer(s.grpc, gh.Server())
	}
	return s
}

// Start launches the listeners in background goroutines.
func (s *StatusServer) Start() error {
	if s.httpAddr != "" {
		go func() {
			s.logger.Info("status http listening", "addr", s.httpAddr)
			if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("status http stopped", "error", err)
			}
		}()
	}
	if s.grpc != nil {
		lis, err := net.Listen("tcp", s.grpcAddr)
		if err != nil {
			return err
		}
		go func() {
			s.logger.Info("status grpc listening", "addr", s.grpcAddr)
			if err := s.grpc.Serve(lis); err != nil {
				s.logger.Error("status grpc stopped", "error", err)
			}
		}()
	}
	return nil
}

func (s *StatusServer) Shutdown(ctx context.Context) {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
	if s.httpAddr != "" {
		_ = s.http.Shutdown(ctx)
	}
}
