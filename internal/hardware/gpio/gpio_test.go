package gpio

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeLine struct {
	value  int
	err    error
	writes []int
}

func (f *fakeLine) Value() (int, error) { return f.value, f.err }

func (f *fakeLine) SetValue(v int) error {
	f.writes = append(f.writes, v)
	return f.err
}

func TestInput_High(t *testing.T) {
	tests := []struct {
		name      string
		line      *fakeLine
		activeLow bool
		want      bool
	}{
		{"high", &fakeLine{value: 1}, false, true},
		{"low", &fakeLine{value: 0}, false, false},
		{"active low asserted", &fakeLine{value: 0}, true, true},
		{"active low idle", &fakeLine{value: 1}, true, false},
		{"read error is low", &fakeLine{value: 1, err: errors.New("EIO")}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &Input{line: tt.line, activeLow: tt.activeLow, logger: testLogger}
			if got := in.High(); got != tt.want {
				t.Errorf("High() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInput_Level(t *testing.T) {
	in := &Input{line: &fakeLine{value: 1}, logger: testLogger}
	if in.Level() != 1 {
		t.Error("Level() should be 1 for a high line")
	}
}

func TestOutput_Set(t *testing.T) {
	line := &fakeLine{}
	out := &Output{line: line, logger: testLogger}
	out.Set(true)
	out.Set(false)
	if len(line.writes) != 2 || line.writes[0] != 1 || line.writes[1] != 0 {
		t.Errorf("writes = %v, want [1 0]", line.writes)
	}

	line.err = errors.New("EBUSY")
	out.Set(true) // logged, not fatal
}
