// Package wifi controls the Wi-Fi radio through NetworkManager's nmcli.
package wifi

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
)

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Radio drives one Wi-Fi interface through NetworkManager.
type Radio struct {
	iface   string
	run     Runner
	timeout time.Duration
	logger  *slog.Logger

	mu          sync.Mutex
	associating bool
}

func New(iface string, logger *slog.Logger) *Radio {
	return &Radio{iface: iface, run: execRunner, timeout: 2 * time.Second, logger: logger}
}

// State reports connected when nmcli lists the interface as "connected".
func (r *Radio) State() entities.NetworkState {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	out, err := r.run(ctx, "nmcli", "-t", "-f", "DEVICE,STATE", "device")
	if err != nil {
		r.logger.Debug("nmcli device query failed", "error", err)
		return entities.NetworkDisconnected
	}
	return parseDeviceState(out, r.iface)
}

func parseDeviceState(out []byte, iface string) entities.NetworkState {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		dev, state, ok := strings.Cut(sc.Text(), ":")
		if ok && dev == iface && state == "connected" {
			return entities.NetworkConnected
		}
	}
	return entities.NetworkDisconnected
}

// BeginAssociation starts an nmcli connect in the background and returns.
// A second call while one is in flight is ignored.
func (r *Radio) BeginAssociation(ctx context.Context, creds entities.Credentials) error {
	if creds.SSID == "" {
		return fmt.Errorf("wifi: no ssid configured")
	}
	r.mu.Lock()
	if r.associating {
		r.mu.Unlock()
		return nil
	}
	r.associating = true
	r.mu.Unlock()

	args := []string{"device", "wifi", "connect", creds.SSID}
	if creds.Password != "" {
		args = append(args, "password", creds.Password)
	}
	args = append(args, "ifname", r.iface)

	go func() {
		defer func() {
			r.mu.Lock()
			r.associating = false
			r.mu.Unlock()
		}()
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if _, err := r.run(cctx, "nmcli", args...); err != nil {
			r.logger.Warn("nmcli connect failed", "ssid", creds.SSID, "error", err)
		}
	}()
	return nil
}
