package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/buildinfo"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/config"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/messages"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/services/processor"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (built-in defaults when none is found)")
	flag.Parse()

	cfg := config.Default()
	path, err := config.FindConfig(*configPath)
	switch {
	case err == nil:
		if cfg, err = config.Load(path); err != nil {
			slog.Error("config load failed", "path", path, "error", err)
			os.Exit(1)
		}
	case errors.Is(err, config.ErrNoConfig):
		cfg.ApplyEnv()
	default:
		slog.Error("config not found", "error", err)
		os.Exit(1)
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		slog.Error("bad log level", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stderr, level, cfg.LogFormat)
	logger.Info(buildinfo.String("wildlife-processor"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pc := cfg.Processor
	if err := os.MkdirAll(pc.CaptureDir, 0o755); err != nil {
		logger.Error("capture dir", "dir", pc.CaptureDir, "error", err)
		os.Exit(1)
	}
	store, err := processor.NewStore(pc.DatabasePath)
	if err != nil {
		logger.Error("store open failed", "path", pc.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := processor.Deps{
		Recorder:   processor.NewCameraRecorder(pc.CaptureDir, time.Duration(pc.RecordSec)*time.Second),
		Classifier: processor.NewCommandClassifier(pc.Classifier),
		Store:      store,
		Metrics:    processor.NewMetrics(reg),
	}
	if len(pc.Classifier) == 0 {
		logger.Warn("no classifier configured, every capture is stored as a false positive")
	}
	if pc.Ntfy.Topic != "" {
		deps.Notifier = processor.NewNtfyNotifier(pc.Ntfy.Server, pc.Ntfy.Topic, logger.With("component", "ntfy"))
	}

	var telemetry *processor.TelemetryWriter
	if pc.Influx.URL != "" {
		client := influxdb2.NewClient(pc.Influx.URL, pc.Influx.Token)
		defer client.Close()
		telemetry = processor.NewTelemetryWriter(client.WriteAPI(pc.Influx.Org, pc.Influx.Bucket), cfg.Broker.ClientID, logger.With("component", "influx"))
		deps.Telemetry = telemetry
		logger.Info("influx telemetry enabled", "url", pc.Influx.URL, "bucket", pc.Influx.Bucket)
	}

	svc := processor.NewService(deps, time.Duration(pc.CooldownSec)*time.Second, logger)

	sub := processor.NewSubscriber(processor.SubscriberConfig{
		BrokerURL: cfg.Broker.URL(),
		Username:  cfg.Broker.Username,
		Password:  cfg.Broker.Password,
		ClientID:  cfg.Broker.ProcessorClientID,
		Topic:     messages.TriggerTopic,
	}, func(p []byte) { svc.HandleTrigger(ctx, p) }, logger.With("component", "mqtt"))
	if err := sub.Start(ctx); err != nil {
		logger.Error("subscriber start failed", "error", err)
		os.Exit(1)
	}

	mux := processor.NewMux(store, pc.CaptureDir, processor.NewHealthHandler(sub, svc, telemetry), reg, logger)
	srv := &http.Server{Addr: pc.HTTPAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("dashboard listening", "addr", pc.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = sub.Stop(shutdownCtx)
	svc.Wait()
	telemetry.Flush()
}
