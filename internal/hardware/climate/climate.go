// Package climate reads an RS-485 Modbus-RTU temperature/humidity probe.
package climate

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/config"
)

// Input register layout of the probe: signed tenths.
const (
	regTemperature uint16 = 1
	regHumidity    uint16 = 2
)

type registerReader interface {
	ReadInputRegisters(address, quantity uint16) ([]byte, error)
}

// Probe reads one value per call and reports NaN on any failure.
type Probe struct {
	mu      sync.Mutex
	handler *modbus.RTUClientHandler
	client  registerReader
	logger  *slog.Logger
}

func Open(cfg config.ClimateConfig, logger *slog.Logger) (*Probe, error) {
	h := modbus.NewRTUClientHandler(cfg.Port)
	h.BaudRate = cfg.BaudRate
	h.DataBits = 8
	h.Parity = "N"
	h.StopBits = 1
	h.SlaveId = byte(cfg.SlaveID)
	if cfg.TimeoutMS > 0 {
		h.Timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("open climate probe %s: %w", cfg.Port, err)
	}
	return &Probe{handler: h, client: modbus.NewClient(h), logger: logger}, nil
}

func (p *Probe) Temperature() float64 { return p.readTenths(regTemperature, "temperature") }

func (p *Probe) Humidity() float64 { return p.readTenths(regHumidity, "humidity") }

func (p *Probe) readTenths(reg uint16, name string) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, err := p.client.ReadInputRegisters(reg, 1)
	if err != nil {
		p.logger.Debug("climate register read failed", "register", name, "error", err)
		return math.NaN()
	}
	if len(b) < 2 {
		p.logger.Debug("climate register short read", "register", name, "bytes", len(b))
		return math.NaN()
	}
	return float64(int16(binary.BigEndian.Uint16(b))) / 10
}

func (p *Probe) Close() error {
	if p.handler == nil {
		return nil
	}
	return p.handler.Close()
}
