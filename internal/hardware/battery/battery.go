// Package battery reads the raw battery ADC value from an IIO sysfs channel.
package battery

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Reader returns the raw ADC count; 0 when the channel cannot be read.
type Reader struct {
	path   string
	logger *slog.Logger
}

func New(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

func (r *Reader) BatteryRaw() int {
	b, err := os.ReadFile(r.path)
	if err != nil {
		r.logger.Debug("battery read failed", "path", r.path, "error", err)
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		r.logger.Debug("battery value malformed", "path", r.path, "error", err)
		return 0
	}
	return n
}
