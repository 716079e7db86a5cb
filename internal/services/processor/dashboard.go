package processor

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/buildinfo"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
)

// CaptureLister is the read side of the capture log.
type CaptureLister interface {
	Recent(ctx context.Context, limit int, animalsOnly bool) ([]entities.Capture, error)
	CountByClass(ctx context.Context) (map[string]int, error)
}

// CaptureView is a capture as served to the dashboard.
type CaptureView struct {
	entities.Capture
	WebVideoPath string `json:"web_video_path"`
	WebFramePath string `json:"web_frame_path,omitempty"`
}

type listParams struct {
	Limit       int
	AnimalsOnly bool
	TimeoutMS   int
}

func parseList(r *http.Request) listParams {
	q := r.URL.Query()
	get := func(k string, def, min, max int) int {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				if n < min {
					return min
				}
				if max > 0 && n > max {
					return max
				}
				return n
			}
		}
		return def
	}
	animals := strings.TrimSpace(q.Get("animals"))
	return listParams{
		Limit:       get("limit", 50, 1, 500),
		AnimalsOnly: animals == "1" || strings.EqualFold(animals, "true"),
		TimeoutMS:   get("timeout_ms", 2000, 200, 5000),
	}
}

// NewCapturesHandler serves GET /api/captures?limit=50[&animals=1], newest first.
func NewCapturesHandler(store CaptureLister) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := parseList(r)
		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(p.TimeoutMS)*time.Millisecond)
		defer cancel()

		caps, err := store.Recent(ctx, p.Limit, p.AnimalsOnly)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Error", "store-query-error")
			_, _ = w.Write([]byte("[]"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(views(caps))
	})
}

func views(caps []entities.Capture) []CaptureView {
	out := make([]CaptureView, 0, len(caps))
	for _, c := range caps {
		v := CaptureView{Capture: c, WebVideoPath: filepath.Base(c.VideoPath)}
		if c.FramePath != "" {
			v.WebFramePath = filepath.Base(c.FramePath)
		}
		out = append(out, v)
	}
	return out
}

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"pct": func(f float64) string { return strconv.FormatFloat(f*100, 'f', 1, 64) + "%" },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Wildlife Captures</title>
<style>
body{font-family:sans-serif;margin:2em;background:#f4f4f0}
.capture{background:#fff;border-radius:6px;padding:1em;margin-bottom:1em}
.capture.animal h2{color:#2e6b2e}
video{max-width:640px;width:100%}
</style>
</head>
<body>
<h1>Wildlife Captures</h1>
{{if not .}}<p>No captures yet.</p>{{end}}
{{range .}}
<div class="capture{{if .IsAnimal}} animal{{end}}">
<h2>{{.Classification}}{{if .IsAnimal}} ({{pct .Confidence}}){{end}}</h2>
<p>{{.Timestamp.Local.Format "2006-01-02 15:04:05"}} &middot; {{printf "%.1f" .Temperature}}&deg;C &middot; {{printf "%.1f" .Humidity}}% RH &middot; battery {{.Battery}} &middot; {{if eq .LightState 1}}day{{else}}night{{end}}</p>
<video controls preload="none"{{with .WebFramePath}} poster="/captures/{{.}}"{{end}}>
<source src="/captures/{{.WebVideoPath}}" type="video/mp4">
</video>
</div>
{{end}}
</body>
</html>
`))

// NewIndexHandler renders every capture, newest first, with its clip.
func NewIndexHandler(store CaptureLister, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caps, err := store.Recent(r.Context(), -1, false)
		if err != nil {
			logger.Error("index query failed", "error", err)
			http.Error(w, "capture log unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTmpl.Execute(w, views(caps)); err != nil {
			logger.Warn("index render failed", "error", err)
		}
	})
}

// NewStatsHandler serves GET /api/stats: capture counts per class.
func NewStatsHandler(store CaptureLister) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counts, err := store.CountByClass(r.Context())
		if err != nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(counts)
	})
}

// NewCaptureFileHandler serves GET /captures/{file} from dir. Only plain
// .mp4 and .jpg names are served.
func NewCaptureFileHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("file")
		ext := strings.ToLower(filepath.Ext(name))
		if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || (ext != ".mp4" && ext != ".jpg") {
			http.NotFound(w, r)
			return
		}
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, path)
	})
}

type healthHandler struct {
	sub    interface{ Connected() bool }
	svc    *Service
	writer *TelemetryWriter
}

// NewHealthHandler reports broker connectivity, capture activity and the
// age of the last telemetry error.
func NewHealthHandler(sub interface{ Connected() bool }, svc *Service, w *TelemetryWriter) http.Handler {
	return &healthHandler{sub: sub, svc: svc, writer: w}
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	type status struct {
		Status          string            `json:"status"`
		MQTTConnected   bool              `json:"mqtt_connected"`
		Capturing       bool              `json:"capturing"`
		LastWriteErrorS float64           `json:"last_write_error_age_sec"`
		Build           map[string]string `json:"build"`
	}
	st := status{
		MQTTConnected:   h.sub != nil && h.sub.Connected(),
		Capturing:       h.svc != nil && h.svc.Busy(),
		LastWriteErrorS: h.writer.LastErrorAge().Seconds(),
		Build:           buildinfo.Info(),
	}
	switch {
	case st.MQTTConnected && h.writer.LastErrorAge() > 30*time.Second:
		st.Status = "ok"
	case st.MQTTConnected:
		st.Status = "degraded"
	default:
		st.Status = "down"
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}

// NewMux wires the dashboard routes.
func NewMux(store CaptureLister, captureDir string, health http.Handler, gatherer prometheus.Gatherer, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /{$}", NewIndexHandler(store, logger))
	mux.Handle("GET /api/captures", NewCapturesHandler(store))
	mux.Handle("GET /api/stats", NewStatsHandler(store))
	mux.Handle("GET /captures/{file}", NewCaptureFileHandler(captureDir))
	mux.Handle("/healthz", health)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}
