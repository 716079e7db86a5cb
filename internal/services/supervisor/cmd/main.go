package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/buildinfo"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/config"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/hardware"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/hardware/wifi"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/services/supervisor"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/pkg/broker"
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
	logger.Info(buildinfo.String("wildlife-supervisor"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	board, err := hardware.Open(cfg, logger)
	if err != nil {
		logger.Error("hardware init failed", "error", err)
		os.Exit(1)
	}
	defer board.Close()

	session := broker.NewSession(broker.ConfigFrom(cfg.Broker), logger.With("component", "broker"))
	defer session.Close()
	radio := wifi.New(cfg.Network.Interface, logger.With("component", "wifi"))

	hw := supervisor.Hardware{
		Network:     radio,
		Session:     session,
		Environment: board,
		Motion:      board.Motion,
		MotionLED:   board.MotionLED,
		StatusLED:   board.StatusLED,
	}
	if err := supervisor.Serve(ctx, cfg, hw, logger); err != nil {
		logger.Error("supervisor failed", "error", err)
		os.Exit(1)
	}
}
