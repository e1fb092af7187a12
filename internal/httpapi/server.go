package httpapi

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"webvideo/internal/frame"
	"webvideo/internal/input"
	"webvideo/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Status() types.StatusResponse
	Ready() bool
	LatestFrame(panel string) (*frame.Frame, error)
	Reload(panel string) error
	ShowDevTools(panel string) error
	ClearCookies() error
	// Screen returns a copy of the host canvas.
	Screen() *image.RGBA
	// DispatchInput feeds a host input event and reports whether it reached
	// the host's own handlers.
	DispatchInput(ev input.Event) bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/panels/{name}/frame.png", func(w http.ResponseWriter, r *http.Request) {
		f, err := svc.LatestFrame(chi.URLParam(r, "name"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if f == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "no frame yet")
			return
		}
		writePNG(w, f.Image())
	})

	r.Get("/screen.png", func(w http.ResponseWriter, r *http.Request) {
		screen := svc.Screen()
		if screen == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "no screen")
			return
		}
		writePNG(w, screen)
	})

	r.Post("/panels/{name}/reload", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if err := svc.Reload(name); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, types.ActionResponse{Action: "reload", Panel: name})
	})

	r.Post("/panels/{name}/devtools", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if err := svc.ShowDevTools(name); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, types.ActionResponse{Action: "devtools", Panel: name})
	})

	r.Post("/cookies/clear", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearCookies(); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, types.ActionResponse{Action: "clear_cookies"})
	})

	r.Post("/input", func(w http.ResponseWriter, r *http.Request) {
		var ev input.Event
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
		if err := dec.Decode(&ev); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid input event")
			return
		}
		if ev.Kind == "" {
			writeJSONError(w, http.StatusBadRequest, "missing kind")
			return
		}
		delivered := svc.DispatchInput(ev)
		writeJSON(w, http.StatusOK, types.InputResponse{Captured: !delivered})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func corsOptions() cors.Options {
	methods := corsAllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	headers := corsAllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Content-Type"}
	}
	return cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: methods,
		AllowedHeaders: headers,
		MaxAge:         300,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

// writePNG encodes img before writing so an encoder failure can still
// produce a JSON error.
func writePNG(w http.ResponseWriter, img image.Image) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode png")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
