// Command sensor-sim runs the supervisor loop against simulated radio,
// sensors and LEDs while publishing to a real broker.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/config"
	sensorSimulator "github.com/ParamBansrow/Wildlife-Monitoring-System/internal/sensor-simulator"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/services/supervisor"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/pkg/broker"
)

func main() {
	// define flags
	configPath := flag.String("config", "", "path to config.yaml")
	clientID := flag.String("client-id", "wildlife_sensor_sim", "MQTT client ID")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	motionEvery := flag.Duration("motion-every", 30*time.Second, "mean time between motion episodes")
	motionHold := flag.Duration("motion-hold", 4*time.Second, "mean motion episode length")
	dropRate := flag.Float64("wifi-drop", 0.0005, "per-poll probability the wifi drops")
	dropout := flag.Float64("climate-dropout", 0.05, "probability a climate read fails")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			slog.Error("config load failed", "error", err)
			os.Exit(1)
		}
	} else {
		cfg.ApplyEnv()
	}
	cfg.Broker.ClientID = *clientID
	if cfg.Network.SSID == "" {
		cfg.Network.SSID = "simulated"
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	logger := config.NewLogger(os.Stderr, level, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	radio := sensorSimulator.NewRadio(*seed, *dropRate, 5, logger)
	session := broker.NewSession(broker.ConfigFrom(cfg.Broker), logger.With("component", "broker"))
	defer session.Close()
	motion := sensorSimulator.NewMotionSensor(logger)
	go motion.Start(ctx, *seed, *motionEvery, *motionHold)

	hw := supervisor.Hardware{
		Network:     radio,
		Session:     sensorSimulator.NewGatedSession(session, radio),
		Environment: sensorSimulator.NewDataGenerator(*seed, 18, 65, *dropout),
		Motion:      motion,
		MotionLED:   sensorSimulator.NewLED("motion", logger),
		StatusLED:   sensorSimulator.NewLED("status", logger),
	}
	if err := supervisor.Serve(ctx, cfg, hw, logger); err != nil {
		logger.Error("simulator failed", "error", err)
		os.Exit(1)
	}
}
