package processor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
)

type recordedCall struct {
	name string
	args []string
}

func scriptedRunner(calls *[]recordedCall, out []byte, failOn string) Runner {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, recordedCall{name, args})
		if name == failOn {
			return nil, errors.New(name + ": exit status 1")
		}
		return out, nil
	}
}

func TestCameraRecorder_Record(t *testing.T) {
	var calls []recordedCall
	dir := t.TempDir()
	r := NewCameraRecorder(dir, 10*time.Second)
	r.run = scriptedRunner(&calls, nil, "")

	got, err := r.Record(context.Background(), "cap1")
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if got != filepath.Join(dir, "cap1.mp4") {
		t.Errorf("Record() = %q", got)
	}
	if len(calls) != 2 || calls[0].name != "rpicam-vid" || calls[1].name != "ffmpeg" {
		t.Fatalf("calls = %+v", calls)
	}
	if !strings.Contains(strings.Join(calls[0].args, " "), "-t 10000 --width 1280 --height 720") {
		t.Errorf("rpicam-vid args = %v", calls[0].args)
	}
}

func TestCameraRecorder_RecordFailure(t *testing.T) {
	var calls []recordedCall
	r := NewCameraRecorder(t.TempDir(), time.Second)
	r.run = scriptedRunner(&calls, nil, "rpicam-vid")

	if _, err := r.Record(context.Background(), "cap1"); err == nil {
		t.Fatal("Record() should fail when the camera fails")
	}
	if len(calls) != 1 {
		t.Errorf("ffmpeg must not run after a camera failure, calls = %d", len(calls))
	}
}

func TestCameraRecorder_ExtractFrame(t *testing.T) {
	var calls []recordedCall
	r := NewCameraRecorder("/captures", time.Second)
	r.run = scriptedRunner(&calls, nil, "")

	got, err := r.ExtractFrame(context.Background(), "/captures/cap1.mp4", "cap1")
	if err != nil || got != "/captures/cap1.jpg" {
		t.Fatalf("ExtractFrame() = %q, %v", got, err)
	}
	if strings.Join(calls[0].args, " ") != "-y -loglevel error -i /captures/cap1.mp4 -frames:v 1 /captures/cap1.jpg" {
		t.Errorf("ffmpeg args = %v", calls[0].args)
	}
}

func TestCommandClassifier(t *testing.T) {
	var calls []recordedCall
	c := NewCommandClassifier([]string{"detect", "--model", "yolov8n.pt"})
	c.run = scriptedRunner(&calls, []byte(`[{"class":"person","confidence":0.99},{"class":"deer","confidence":0.7},{"class":"bird","confidence":0.62}]`), "")

	dets, err := c.Classify(context.Background(), "/c/f.jpg")
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if len(dets) != 3 {
		t.Fatalf("got %d detections", len(dets))
	}
	if want := "--model yolov8n.pt /c/f.jpg"; strings.Join(calls[0].args, " ") != want {
		t.Errorf("args = %v, want %s", calls[0].args, want)
	}
	label, conf := BestAnimal(dets)
	if label != "Bird" || conf != 0.62 {
		t.Errorf("BestAnimal() = %s %v, want Bird 0.62", label, conf)
	}
}

func TestCommandClassifier_Unconfigured(t *testing.T) {
	dets, err := NewCommandClassifier(nil).Classify(context.Background(), "f.jpg")
	if err != nil || dets != nil {
		t.Errorf("Classify() = %v, %v; want nil, nil", dets, err)
	}
}

func TestBestAnimal(t *testing.T) {
	tests := []struct {
		name      string
		dets      []entities.Detection
		wantLabel string
		wantConf  float64
	}{
		{"none", nil, entities.FalsePositive, 0},
		{"no animals", []entities.Detection{{Class: "car", Confidence: 0.9}}, entities.FalsePositive, 0},
		{"highest wins", []entities.Detection{{Class: "cat", Confidence: 0.4}, {Class: "dog", Confidence: 0.8}}, "Dog", 0.8},
		{"label capitalised", []entities.Detection{{Class: "elephant", Confidence: 0.5}}, "Elephant", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, conf := BestAnimal(tt.dets)
			if label != tt.wantLabel || conf != tt.wantConf {
				t.Errorf("BestAnimal() = %s %v, want %s %v", label, conf, tt.wantLabel, tt.wantConf)
			}
		})
	}
}
