// Package server exposes atlas building over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/piwi3910/atlaspack/internal/engine"
	"github.com/piwi3910/atlaspack/internal/export"
	"github.com/piwi3910/atlaspack/internal/intake"
	"github.com/piwi3910/atlaspack/internal/model"
)

// DefaultMaxUpload bounds the size of one multipart request.
const DefaultMaxUpload = 256 << 20

// Server handles atlas requests. Each request runs its own build; builds
// share no mutable state.
type Server struct {
	Settings  model.Settings // Defaults for fields a request leaves out
	Solver    engine.Solver  // nil means the default solver
	Logger    *log.Logger
	MaxUpload int64
}

// New creates a server with the given default settings.
func New(settings model.Settings, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		Settings:  settings,
		Logger:    logger,
		MaxUpload: DefaultMaxUpload,
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/atlas", s.handleAtlas)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.Logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"app":     model.AppName,
		"version": model.Version,
	})
}

// handleAtlas accepts a multipart form with one or more "images" files and
// optional maxSize, allowFlipping, padding and powerOfTwo fields, and
// responds with a zip of every page image and metadata file.
func (s *Server) handleAtlas(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	settings, err := s.settingsFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := settings.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	images, err := s.imagesFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := []engine.Option{engine.WithLogger(s.Logger)}
	if s.Solver != nil {
		opts = append(opts, engine.WithSolver(s.Solver))
	}
	result, err := engine.New(settings, opts...).Build(images)
	if err != nil {
		s.Logger.Error("build failed", "err", err, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := export.WriteArchive(&buf, result, settings); err != nil {
		s.Logger.Error("archive failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", settings.FilePrefix+".zip"))
	w.Header().Set("X-Atlas-Pages", strconv.Itoa(len(result.Pages)))
	w.Header().Set("X-Atlas-Rejected", strconv.Itoa(len(result.Rejected)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// settingsFromForm overlays the request's optional fields on the defaults.
func (s *Server) settingsFromForm(r *http.Request) (model.Settings, error) {
	settings := s.Settings

	if v := r.FormValue("maxSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return settings, fmt.Errorf("invalid maxSize %q", v)
		}
		settings.MaxSize = n
	}
	if v := r.FormValue("padding"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return settings, fmt.Errorf("invalid padding %q", v)
		}
		settings.Padding = n
	}
	if v := r.FormValue("allowFlipping"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return settings, fmt.Errorf("invalid allowFlipping %q", v)
		}
		settings.AllowFlipping = b
	}
	if v := r.FormValue("powerOfTwo"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return settings, fmt.Errorf("invalid powerOfTwo %q", v)
		}
		settings.PowerOfTwo = b
	}
	return settings, nil
}

// imagesFromForm decodes every uploaded "images" file.
func (s *Server) imagesFromForm(r *http.Request) ([]model.SourceImage, error) {
	files := r.MultipartForm.File["images"]
	images := make([]model.SourceImage, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %q: %w", fh.Filename, err)
		}
		img, err := intake.Decode(fh.Filename, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return intake.Uniquify(images, s.Logger), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
