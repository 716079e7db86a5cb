package dedup

import (
	"testing"
	"time"
)

func TestWindow_Admit(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	w := New(5*time.Second, 10)
	w.now = func() time.Time { return now }

	k := Key("7", []byte(`{"temp":22.5,"humidity":60.0,"battery":512,"light_state":1}`))
	if !w.Admit(k) {
		t.Fatal("first delivery should be admitted")
	}
	if w.Admit(k) {
		t.Fatal("redelivery inside the window should be refused")
	}
	now = now.Add(6 * time.Second)
	if !w.Admit(k) {
		t.Fatal("delivery after the window should be admitted")
	}
	if !w.Admit("") || !w.Admit("") {
		t.Error("the empty key is always admitted")
	}
	if w.Len() != 1 {
		t.Errorf("Len() = %d, want 1", w.Len())
	}
}

func TestWindow_Bounded(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	w := New(time.Minute, 2)
	w.now = func() time.Time { return now }

	for _, k := range []string{"a", "b", "c"} {
		w.Admit(k)
		now = now.Add(time.Second)
	}
	if w.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", w.Len())
	}
	if !w.Admit("a") {
		t.Error("the soonest-expiring key should have been evicted")
	}
	if w.Admit("c") {
		t.Error("the newest key should still be held")
	}
}

func TestKey(t *testing.T) {
	p := []byte("payload")
	if Key("1", p) == Key("2", p) {
		t.Error("different ids must give different keys")
	}
	if Key("1", p) != Key("1", p) {
		t.Error("keys must be stable")
	}
	if Key("1", []byte("23")) == Key("12", []byte("3")) {
		t.Error("id and payload must not run together")
	}
}
