package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/config"
)

// Serve builds a supervisor over hw, starts the status listeners and runs
// the loop until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config, hw Hardware, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := NewMetrics(reg)
	gh := NewGRPCHealth()

	sup, err := New(ConfigFrom(cfg), hw, logger,
		WithMetrics(metrics),
		WithHealthListener(gh.Update))
	if err != nil {
		return err
	}

	status := NewStatusServer(cfg.Status.HTTPAddr, cfg.Status.GRPCAddr, sup, reg, gh, logger.With("component", "status"))
	if err := status.Start(); err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		status.Shutdown(sctx)
	}()

	return sup.Run(ctx)
}
