package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledmatrix/matrixstore/internal/installer"
	"github.com/ledmatrix/matrixstore/internal/registry"
	"github.com/ledmatrix/matrixstore/internal/search"
)

type installRequest struct {
	ID      string `json:"id"`
	Version string `json:"version,omitempty"`
}

type installURLRequest struct {
	URL string `json:"url"`
}

type toggleRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleRegistry(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Store.Load()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeSuccess(w, "", doc)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter 'q'")
		return
	}

	doc, err := s.Store.Load()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeSuccess(w, "", search.FuzzySearch(doc, query))
}

func (s *Server) handleInstalled(w http.ResponseWriter, r *http.Request) {
	records, err := s.Installer.Installed()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeSuccess(w, "", records)
}

func (s *Server) handleInstall(w http.ResponseWriter, r *http.Request) {
	var req installRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"id\": ..., \"version\": ...}")
		return
	}
	if req.Version == "" {
		req.Version = registry.VersionLatest
	}

	doc, err := s.Store.Load()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	rec, err := s.Installer.InstallFromRegistry(r.Context(), doc, req.ID, req.Version)
	if err != nil {
		writeError(w, httpStatusFor(err), err.Error())
		return
	}

	msg := fmt.Sprintf("installed %s %s", rec.ID, rec.Version)
	if len(rec.DependencyErrors) > 0 {
		msg += " (with dependency errors)"
	}
	writeSuccess(w, msg, rec)
}

func (s *Server) handleInstallURL(w http.ResponseWriter, r *http.Request) {
	var req installURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"url\": ...}")
		return
	}

	rec, err := s.Installer.Install(r.Context(), req.URL, installOptions(s, r))
	if err != nil {
		writeError(w, httpStatusFor(err), err.Error())
		return
	}

	writeSuccess(w, fmt.Sprintf("installed %s %s", rec.ID, rec.Version), rec)
}

func (s *Server) handleUninstall(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.Installer.Uninstall(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	// Drop the config block too: uninstall leaves no traces behind
	if s.RemoveConfig != nil {
		if err := s.RemoveConfig(id); err != nil {
			writeError(w, http.StatusInternalServerError,
				fmt.Sprintf("plugin removed but config cleanup failed: %v", err))
			return
		}
	}

	writeSuccess(w, fmt.Sprintf("uninstalled %s", id), nil)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "body must be {\"enabled\": true|false}")
		return
	}

	if _, err := s.Installer.Get(id); err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("plugin '%s' is not installed", id))
		return
	}

	if s.SetEnabled != nil {
		if err := s.SetEnabled(id, req.Enabled); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	state := "disabled"
	if req.Enabled {
		state = "enabled"
	}
	writeSuccess(w, fmt.Sprintf("%s %s", state, id), nil)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.Installer.Get(id); err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("plugin '%s' is not installed", id))
		return
	}

	doc, err := s.Store.Load()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	rec, err := s.Installer.InstallFromRegistry(r.Context(), doc, id, registry.VersionLatest)
	if err != nil {
		writeError(w, httpStatusFor(err), err.Error())
		return
	}

	writeSuccess(w, fmt.Sprintf("updated %s to %s", rec.ID, rec.Version), rec)
}

// installOptions builds Options for an arbitrary-URL install; the
// registry is still consulted for dependencies when available.
func installOptions(s *Server, r *http.Request) (opts installer.Options) {
	if doc, err := s.Store.Load(); err == nil {
		opts.Registry = doc
	}
	return opts
}
