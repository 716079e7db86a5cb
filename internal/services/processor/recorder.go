package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Runner executes an external command.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && len(ee.Stderr) > 0 {
			return out, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(ee.Stderr)))
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// CameraRecorder records clips with rpicam-vid and rewraps them with ffmpeg.
type CameraRecorder struct {
	Dir      string
	Duration time.Duration
	Width    int
	Height   int
	run      Runner
}

func NewCameraRecorder(dir string, duration time.Duration) *CameraRecorder {
	return &CameraRecorder{Dir: dir, Duration: duration, Width: 1280, Height: 720, run: execRunner}
}

// Record captures one clip named base and returns the mp4 path.
func (r *CameraRecorder) Record(ctx context.Context, base string) (string, error) {
	raw := filepath.Join(r.Dir, base+".h264")
	mp4 := filepath.Join(r.Dir, base+".mp4")

	if _, err := r.run(ctx, "rpicam-vid",
		"-t", strconv.FormatInt(r.Duration.Milliseconds(), 10),
		"--width", strconv.Itoa(r.Width),
		"--height", strconv.Itoa(r.Height),
		"--nopreview",
		"-o", raw); err != nil {
		return "", fmt.Errorf("record: %w", err)
	}
	defer os.Remove(raw)

	if _, err := r.run(ctx, "ffmpeg", "-y", "-loglevel", "error",
		"-framerate", "30", "-i", raw, "-c:v", "copy", mp4); err != nil {
		return "", fmt.Errorf("rewrap: %w", err)
	}
	return mp4, nil
}

// ExtractFrame writes the first frame of video as base.jpg.
func (r *CameraRecorder) ExtractFrame(ctx context.Context, video, base string) (string, error) {
	jpg := filepath.Join(r.Dir, base+".jpg")
	if _, err := r.run(ctx, "ffmpeg", "-y", "-loglevel", "error",
		"-i", video, "-frames:v", "1", jpg); err != nil {
		return "", fmt.Errorf("extract frame: %w", err)
	}
	return jpg, nil
}
