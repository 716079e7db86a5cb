package processor

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "captures.db"))
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_InsertAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)

	inputs := []entities.Capture{
		{Timestamp: base, Classification: "bird", Confidence: 0.91, VideoPath: "/c/a.mp4", Temperature: 12.5, Humidity: 80, Battery: 700, LightState: 1},
		{Timestamp: base.Add(time.Minute), Classification: entities.FalsePositive, VideoPath: "/c/b.mp4"},
		{Timestamp: base.Add(2 * time.Minute), Classification: "bear", Confidence: 0.55, VideoPath: "/c/c.mp4", FramePath: "/c/c.jpg"},
	}
	for _, c := range inputs {
		got, err := s.Insert(ctx, c)
		if err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
		if got.ID == "" {
			t.Error("Insert() should assign an ID")
		}
	}

	all, err := s.Recent(ctx, 10, false)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Recent() returned %d rows, want 3", len(all))
	}
	if all[0].Classification != "bear" || all[2].Classification != "bird" {
		t.Errorf("order = %s, %s, %s; want newest first", all[0].Classification, all[1].Classification, all[2].Classification)
	}
	if !all[2].Timestamp.Equal(base) || all[2].Temperature != 12.5 || all[2].Battery != 700 {
		t.Errorf("round trip mismatch: %+v", all[2])
	}
	if all[0].FramePath != "/c/c.jpg" {
		t.Errorf("FramePath = %q", all[0].FramePath)
	}

	animals, err := s.Recent(ctx, 10, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(animals) != 2 {
		t.Errorf("animals only returned %d rows, want 2", len(animals))
	}

	limited, _ := s.Recent(ctx, 1, false)
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d rows", len(limited))
	}

	counts, err := s.CountByClass(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts["bird"] != 1 || counts[entities.FalsePositive] != 1 {
		t.Errorf("counts = %v", counts)
	}
}
