// Package web serves the Clean and Analyze dashboards and their JSON API.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/KaramelBytes/tidyloom/internal/chart"
	"github.com/KaramelBytes/tidyloom/internal/session"
)

const sessionCookie = "tidyloom_session"

// Options carries the request limits and chart settings of the dashboards.
type Options struct {
	MaxUploadBytes int64
	PreviewRows    int
	Chart          chart.Options
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{MaxUploadBytes: 200 << 20, PreviewRows: 5, Chart: chart.DefaultOptions()}
}

type Handler struct {
	Sessions *session.Manager
	Options  Options
	Logger   *slog.Logger
}

func NewHandler(sessions *session.Manager, opt Options, logger *slog.Logger) *Handler {
	if opt.MaxUploadBytes <= 0 {
		opt.MaxUploadBytes = DefaultOptions().MaxUploadBytes
	}
	if opt.PreviewRows <= 0 {
		opt.PreviewRows = DefaultOptions().PreviewRows
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Sessions: sessions, Options: opt, Logger: logger.With("component", "web")}
}

// NewRouter wires the middleware stack and every route.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Group(func(r chi.Router) {
		r.Use(h.withSession)
		MountRoutes(r, h)
	})
	return r
}

func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/clean", http.StatusSeeOther)
	})

	r.Get("/clean", h.CleanPage)
	r.Post("/clean/upload", h.CleanUpload)
	r.Post("/clean/apply", h.CleanApply)
	r.Post("/clean/reset", h.CleanReset)

	r.Get("/analyze", h.AnalyzePage)
	r.Post("/analyze/upload", h.AnalyzeUpload)

	r.Get("/download/{format}", h.Download)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/profile", h.APIProfile)
		r.Post("/clean/{op}", h.APIClean)
		r.Get("/chart/{kind}", h.APIChart)
	})
}

// Health reports liveness and the number of live sessions.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{"status": "ok", "sessions": h.Sessions.Len()})
}

type sessionKey struct{}

// withSession attaches the caller's session, creating one and setting the
// cookie when the request carries none or an expired one.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(sessionCookie); err == nil {
			id = c.Value
		}
		s, created := h.Sessions.GetOrCreate(id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    s.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	s, _ := r.Context().Value(sessionKey{}).(*session.Session)
	return s
}

// requestLogger logs one line per request once it has completed.
func requestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
			)
		})
	}
}
