// Package server exposes the plugin store over HTTP for the web UI
// and companion tools.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ledmatrix/matrixstore/internal/installer"
	"github.com/ledmatrix/matrixstore/internal/registry"
)

// Server wires the installer and registry store into the HTTP API.
// The toggle/remove callbacks keep it decoupled from the host config
// singleton.
type Server struct {
	Installer *installer.Installer
	Store     *registry.Store
	Log       *zap.Logger

	// SetEnabled flips a plugin's enabled flag in the host config.
	SetEnabled func(id string, enabled bool) error
	// RemoveConfig drops a plugin's config block on uninstall.
	RemoveConfig func(id string) error
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/registry", s.handleRegistry)
		r.Get("/registry/search", s.handleSearch)

		r.Route("/plugins", func(r chi.Router) {
			r.Get("/", s.handleInstalled)
			r.Post("/install", s.handleInstall)
			r.Post("/install-url", s.handleInstallURL)
			r.Post("/{id}/uninstall", s.handleUninstall)
			r.Post("/{id}/toggle", s.handleToggle)
			r.Post("/{id}/update", s.handleUpdate)
		})
	})

	return r
}

// ListenAndServe runs the API until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.Log.Info("API listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)))
	})
}

// httpStatusFor maps the installer/registry error taxonomy onto
// response codes so the UI can present actionable messages.
func httpStatusFor(err error) int {
	var notFound *registry.NotFoundError
	var integrity *registry.IntegrityError
	var validation *installer.ValidationError
	var retrieval *installer.RetrievalError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &integrity):
		return http.StatusConflict
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	case errors.As(err, &retrieval):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
