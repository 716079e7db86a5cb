package climate

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
)

type fakeRegisters map[uint16][]byte

func (f fakeRegisters) ReadInputRegisters(address, quantity uint16) ([]byte, error) {
	b, ok := f[address]
	if !ok {
		return nil, errors.New("modbus: exception '2' (illegal data address)")
	}
	return b, nil
}

func newProbe(regs fakeRegisters) *Probe {
	return &Probe{client: regs, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestProbe_Reads(t *testing.T) {
	p := newProbe(fakeRegisters{
		1: {0x00, 0xE1}, // 225 -> 22.5
		2: {0x02, 0x58}, // 600 -> 60.0
	})
	if got := p.Temperature(); got != 22.5 {
		t.Errorf("Temperature() = %v, want 22.5", got)
	}
	if got := p.Humidity(); got != 60 {
		t.Errorf("Humidity() = %v, want 60", got)
	}
}

func TestProbe_NegativeTemperature(t *testing.T) {
	p := newProbe(fakeRegisters{1: {0xFF, 0x9C}}) // -100 -> -10.0
	if got := p.Temperature(); got != -10 {
		t.Errorf("Temperature() = %v, want -10", got)
	}
}

func TestProbe_FailuresAreNaN(t *testing.T) {
	p := newProbe(fakeRegisters{2: {0x01}})
	if !math.IsNaN(p.Temperature()) {
		t.Error("missing register should read NaN")
	}
	if !math.IsNaN(p.Humidity()) {
		t.Error("short read should read NaN")
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
