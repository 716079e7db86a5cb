package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
)

func TestDeriveHealth(t *testing.T) {
	tests := []struct {
		net  entities.NetworkState
		sess entities.SessionState
		want entities.HealthStatus
	}{
		{entities.NetworkDisconnected, entities.SessionDisconnected, entities.HealthNoNetwork},
		{entities.NetworkDisconnected, entities.SessionConnected, entities.HealthNoNetwork},
		{entities.NetworkConnected, entities.SessionDisconnected, entities.HealthNetworkOnlyRetrying},
		{entities.NetworkConnected, entities.SessionConnected, entities.HealthFullyConnected},
	}
	for _, tt := range tests {
		t.Run(tt.net.String()+"/"+tt.sess.String(), func(t *testing.T) {
			if got := DeriveHealth(tt.net, tt.sess); got != tt.want {
				t.Errorf("DeriveHealth(%v, %v) = %v, want %v", tt.net, tt.sess, got, tt.want)
			}
		})
	}
}

type healthRig struct {
	net   *fakeNetwork
	sess  *fakeSession
	out   *recordingOutput
	timer *instantTimer
	m     *HealthMachine
	mtr   *Metrics
}

func newHealthRig(net *fakeNetwork, sess *fakeSession) *healthRig {
	out := &recordingOutput{}
	timer := &instantTimer{}
	mtr := NewMetrics(prometheus.NewRegistry())
	m := NewHealthMachine(net, sess, NewIndicator(out, newManualClock(), 750*time.Millisecond), HealthConfig{
		Credentials:         entities.Credentials{SSID: "trailcam", Password: "pw"},
		AssociationAttempts: 20,
		AssociationDelay:    100 * time.Millisecond,
	}, discardLogger(), mtr)
	m.timer = timer
	return &healthRig{net: net, sess: sess, out: out, timer: timer, m: m, mtr: mtr}
}

func TestHealthMachine_FullyConnected(t *testing.T) {
	rig := newHealthRig(&fakeNetwork{state: entities.NetworkConnected}, &fakeSession{connected: true})

	if got := rig.m.Step(context.Background()); got != entities.HealthFullyConnected {
		t.Fatalf("Step() = %v, want FullyConnected", got)
	}
	if !rig.out.last() {
		t.Error("status LED should be on")
	}
	if rig.sess.connectCalls != 0 || rig.net.begins != 0 {
		t.Error("no recovery action expected when fully connected")
	}
	if v := testutil.ToFloat64(rig.mtr.Health); v != float64(entities.HealthFullyConnected) {
		t.Errorf("health gauge = %v", v)
	}
}

func TestHealthMachine_SessionRetry(t *testing.T) {
	rig := newHealthRig(&fakeNetwork{state: entities.NetworkConnected},
		&fakeSession{connectErr: errors.New("connection refused")})

	for i := 0; i < 3; i++ {
		if got := rig.m.Step(context.Background()); got != entities.HealthNetworkOnlyRetrying {
			t.Fatalf("Step() = %v, want NetworkOnlyRetrying", got)
		}
	}
	if rig.sess.connectCalls != 3 {
		t.Errorf("Connect called %d times, want one per step", rig.sess.connectCalls)
	}
	if rig.m.signal.Mode() != entities.SignalBlinkSlow {
		t.Errorf("indicator mode = %v, want blink_slow", rig.m.signal.Mode())
	}
	if v := testutil.ToFloat64(rig.mtr.SessionConnects.WithLabelValues("failed")); v != 3 {
		t.Errorf("failed connects = %v, want 3", v)
	}

	rig.sess.connectOK = true
	if got := rig.m.Step(context.Background()); got != entities.HealthNetworkOnlyRetrying {
		t.Fatalf("status is recorded before the connect attempt, got %v", got)
	}
	if got := rig.m.Step(context.Background()); got != entities.HealthFullyConnected {
		t.Fatalf("Step() after reconnect = %v, want FullyConnected", got)
	}
}

func TestHealthMachine_AssociationExhausted(t *testing.T) {
	rig := newHealthRig(&fakeNetwork{connectAfter: -1}, &fakeSession{})

	if got := rig.m.Step(context.Background()); got != entities.HealthNoNetwork {
		t.Fatalf("Step() = %v, want NoNetwork", got)
	}
	res := rig.m.LastAssociation()
	if res.Connected || res.Attempts != 20 {
		t.Errorf("association = %+v, want 20 failed attempts", res)
	}
	if len(rig.timer.waits) != 19 {
		t.Errorf("waited %d times, want 19", len(rig.timer.waits))
	}
	for _, d := range rig.timer.waits {
		if d != 100*time.Millisecond {
			t.Fatalf("inter-attempt delay %v, want 100ms", d)
		}
	}
	// off, 20 fast toggles, forced off
	if len(rig.out.history) != 22 {
		t.Errorf("status LED written %d times, want 22", len(rig.out.history))
	}
	if rig.out.last() {
		t.Error("status LED should end off")
	}
	if rig.net.creds.SSID != "trailcam" {
		t.Errorf("credentials not passed: %+v", rig.net.creds)
	}
	if v := testutil.ToFloat64(rig.mtr.AssociationFailures); v != 1 {
		t.Errorf("association failures = %v, want 1", v)
	}
}

func TestHealthMachine_AssociationSucceeds(t *testing.T) {
	rig := newHealthRig(&fakeNetwork{connectAfter: 2}, &fakeSession{})

	rig.m.Step(context.Background())
	res := rig.m.LastAssociation()
	if !res.Connected || res.Attempts != 3 {
		t.Errorf("association = %+v, want connected on attempt 3", res)
	}
	if rig.sess.connectCalls != 0 {
		t.Error("session connect belongs to the next step")
	}
}

func TestHealthMachine_SingleAttempt(t *testing.T) {
	rig := newHealthRig(&fakeNetwork{connectAfter: -1}, &fakeSession{})
	rig.m.cfg.AssociationAttempts = 1

	res := rig.m.Associate(context.Background())
	if res.Attempts != 1 || len(rig.timer.waits) != 0 {
		t.Errorf("attempts=%d waits=%d, want 1 and 0", res.Attempts, len(rig.timer.waits))
	}
}

func TestHealthMachine_AssociationHonoursCancel(t *testing.T) {
	rig := newHealthRig(&fakeNetwork{connectAfter: -1}, &fakeSession{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := rig.m.Associate(ctx)
	if res.Connected || res.Attempts >= 20 {
		t.Errorf("association = %+v, want early stop", res)
	}
}
