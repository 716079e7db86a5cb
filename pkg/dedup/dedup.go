// Package dedup remembers recently admitted delivery keys so a message the
// broker hands over twice is acted on once.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Window is a bounded set of keys, each forgotten ttl after admission.
type Window struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	now     func() time.Time
	expires map[string]time.Time
}

// New returns a Window holding at most max keys; non-positive arguments
// fall back to one minute and 1024 keys.
func New(ttl time.Duration, max int) *Window {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if max <= 0 {
		max = 1024
	}
	return &Window{ttl: ttl, max: max, now: time.Now, expires: make(map[string]time.Time)}
}

// Key derives a delivery key from a transport id and the message body.
func Key(id string, payload []byte) string {
	h := sha256.New()
	h.Write([]byte(id))
	h.Write([]byte{0})
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// Admit reports whether key is new to the window and, if so, remembers it.
// The empty key is always admitted and never stored.
func (w *Window) Admit(key string) bool {
	if key == "" {
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if exp, ok := w.expires[key]; ok && now.Before(exp) {
		return false
	}
	w.expires[key] = now.Add(w.ttl)
	if len(w.expires) > w.max {
		w.evict(now)
	}
	return true
}

// Len is the number of keys currently held.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.expires)
}

// evict drops expired keys, then the soonest-expiring ones until under max.
func (w *Window) evict(now time.Time) {
	for k, exp := range w.expires {
		if !now.Before(exp) {
			delete(w.expires, k)
		}
	}
	for len(w.expires) > w.max {
		var oldest string
		var at time.Time
		for k, exp := range w.expires {
			if oldest == "" || exp.Before(at) {
				oldest, at = k, exp
			}
		}
		delete(w.expires, oldest)
	}
}
