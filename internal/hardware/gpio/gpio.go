// Package gpio exposes character-device GPIO lines as simple digital inputs
// and outputs.
package gpio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	gpiod "github.com/warthog618/go-gpiocdev"
)

const consumer = "wildlife"

type lineReader interface {
	Value() (int, error)
}

type lineWriter interface {
	SetValue(int) error
}

// Chip owns the requested lines of one gpiochip.
type Chip struct {
	mu     sync.Mutex
	chip   *gpiod.Chip
	lines  []*gpiod.Line
	logger *slog.Logger
}

func Open(name string, logger *slog.Logger) (*Chip, error) {
	chip, err := gpiod.NewChip(name, gpiod.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open chip %s: %w", name, err)
	}
	return &Chip{chip: chip, logger: logger}, nil
}

// Input requests offset as an input. activeLow inverts the reported level.
func (c *Chip) Input(offset int, pullUp, activeLow bool) (*Input, error) {
	opts := []gpiod.LineReqOption{gpiod.AsInput}
	if pullUp {
		opts = append(opts, gpiod.WithPullUp)
	}
	line, err := c.request(offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("request input %d: %w", offset, err)
	}
	return &Input{line: line, offset: offset, activeLow: activeLow, logger: c.logger}, nil
}

// Output requests offset as an output driven low.
func (c *Chip) Output(offset int) (*Output, error) {
	line, err := c.request(offset, gpiod.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output %d: %w", offset, err)
	}
	return &Output{line: line, offset: offset, logger: c.logger}, nil
}

func (c *Chip) request(offset int, opts ...gpiod.LineReqOption) (*gpiod.Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	line, err := c.chip.RequestLine(offset, opts...)
	if err != nil {
		return nil, err
	}
	c.lines = append(c.lines, line)
	return line, nil
}

// Close releases every requested line and the chip.
func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for _, l := range c.lines {
		errs = append(errs, l.Close())
	}
	c.lines = nil
	errs = append(errs, c.chip.Close())
	return errors.Join(errs...)
}

// Input is a digital input. Read errors report LOW.
type Input struct {
	line      lineReader
	offset    int
	activeLow bool
	logger    *slog.Logger
}

func (i *Input) High() bool {
	v, err := i.line.Value()
	if err != nil {
		i.logger.Warn("gpio read failed", "offset", i.offset, "error", err)
		return false
	}
	return (v != 0) != i.activeLow
}

// Level reads the input as 0 or 1.
func (i *Input) Level() int {
	if i.High() {
		return 1
	}
	return 0
}

// Output is a digital output. Write errors are logged.
type Output struct {
	line   lineWriter
	offset int
	logger *slog.Logger
}

func (o *Output) Set(on bool) {
	v := 0
	if on {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		o.logger.Warn("gpio write failed", "offset", o.offset, "error", err)
	}
}
