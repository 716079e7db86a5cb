// Package hardware assembles the device's GPIO lines and sensor probes.
package hardware

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/config"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/hardware/battery"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/hardware/climate"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/hardware/gpio"
)

type climateSource interface {
	Temperature() float64
	Humidity() float64
	Close() error
}

// Board reads the physical sensors: temperature, humidity, battery, light.
type Board struct {
	chip      *gpio.Chip
	climate   climateSource
	battery   *battery.Reader
	Motion    *gpio.Input
	Light     *gpio.Input
	MotionLED *gpio.Output
	StatusLED *gpio.Output
}

// Open requests all lines. A missing climate probe is tolerated and reads
// as NaN so snapshots degrade instead of the device refusing to start.
func Open(cfg *config.Config, logger *slog.Logger) (*Board, error) {
	chip, err := gpio.Open(cfg.Pins.Chip, logger.With("component", "gpio"))
	if err != nil {
		return nil, err
	}
	b := &Board{chip: chip}
	fail := func(err error) (*Board, error) {
		return nil, errors.Join(err, chip.Close())
	}

	if b.Motion, err = chip.Input(cfg.Pins.Motion, false, false); err != nil {
		return fail(fmt.Errorf("motion: %w", err))
	}
	if b.Light, err = chip.Input(cfg.Pins.Light, true, cfg.Pins.LightActiveLow); err != nil {
		return fail(fmt.Errorf("light: %w", err))
	}
	if b.MotionLED, err = chip.Output(cfg.Pins.MotionLED); err != nil {
		return fail(fmt.Errorf("motion led: %w", err))
	}
	if b.StatusLED, err = chip.Output(cfg.Pins.StatusLED); err != nil {
		return fail(fmt.Errorf("status led: %w", err))
	}

	b.battery = battery.New(cfg.Sensors.Battery.Path, logger.With("component", "battery"))
	probe, err := climate.Open(cfg.Sensors.Climate, logger.With("component", "climate"))
	if err != nil {
		logger.Warn("climate probe unavailable, readings will be zero", "error", err)
	} else {
		b.climate = probe
	}
	return b, nil
}

func (b *Board) Temperature() float64 {
	if b.climate == nil {
		return math.NaN()
	}
	return b.climate.Temperature()
}

func (b *Board) Humidity() float64 {
	if b.climate == nil {
		return math.NaN()
	}
	return b.climate.Humidity()
}

func (b *Board) BatteryRaw() int { return b.battery.BatteryRaw() }

func (b *Board) LightState() int { return b.Light.Level() }

func (b *Board) Close() error {
	var errs []error
	if b.climate != nil {
		errs = append(errs, b.climate.Close())
	}
	errs = append(errs, b.chip.Close())
	return errors.Join(errs...)
}
