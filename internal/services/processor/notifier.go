package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
)

func mkCB(name string, fails uint32, open, interval time.Duration, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: interval,
		Timeout:  open,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= fails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// NtfyNotifier pushes detections to an ntfy topic, attaching the frame when
// one exists. Repeated failures open the breaker and later pushes are
// skipped until it half-opens.
type NtfyNotifier struct {
	url    string
	client *http.Client
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

func NewNtfyNotifier(server, topic string, logger *slog.Logger) *NtfyNotifier {
	return &NtfyNotifier{
		url:    strings.TrimRight(server, "/") + "/" + topic,
		client: &http.Client{Timeout: 15 * time.Second},
		cb:     mkCB("ntfy", 3, time.Minute, 5*time.Minute, logger),
		logger: logger,
	}
}

func (n *NtfyNotifier) Notify(ctx context.Context, c entities.Capture) error {
	_, err := n.cb.Execute(func() (interface{}, error) {
		return nil, n.send(ctx, c)
	})
	if err != nil {
		return fmt.Errorf("ntfy: %w", err)
	}
	n.logger.Info("notification sent", "class", c.Classification)
	return nil
}

func (n *NtfyNotifier) send(ctx context.Context, c entities.Capture) error {
	title := "Animal Detected: " + c.Classification
	message := fmt.Sprintf("Confidence: %.1f%%", c.Confidence*100)

	var body io.Reader = strings.NewReader(message)
	method := http.MethodPost
	var filename string
	if c.FramePath != "" {
		if img, err := os.ReadFile(c.FramePath); err == nil {
			body = bytes.NewReader(img)
			method = http.MethodPut
			filename = filepath.Base(c.FramePath)
		} else {
			n.logger.Warn("frame unreadable, sending text only", "path", c.FramePath, "error", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, n.url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Title", title)
	req.Header.Set("Tags", "paw_prints")
	if filename != "" {
		req.Header.Set("Filename", filename)
		req.Header.Set("Message", message)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}
