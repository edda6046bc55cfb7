package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// File is the manifest filename required at the plugin root
	File = "plugin.json"
)

// Manifest represents the plugin.json structure every plugin ships
type Manifest struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Description  string   `json:"description,omitempty"`
	Author       *Author  `json:"author,omitempty"`
	Repository   string   `json:"repository,omitempty"`
	License      string   `json:"license,omitempty"`
	Category     string   `json:"category,omitempty"`
	EntryPoint   string   `json:"entry_point"`
	DisplayModes []string `json:"display_modes,omitempty"`
	// Dependencies lists other plugin ids installed alongside this
	// one. Installation of dependencies is best-effort.
	Dependencies []string `json:"dependencies,omitempty"`
	MatrixMin    string   `json:"matrix_min,omitempty"`
}

// Author represents the plugin author information
type Author struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`
}

// ValidationError reports a missing or malformed manifest.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid manifest %s: %s", e.Path, e.Reason)
	}
	return "invalid manifest: " + e.Reason
}

// Load reads and validates the manifest at the root of a plugin
// directory. A missing file is a *ValidationError, not a bare
// filesystem error, so installers can treat it as fatal validation.
func Load(pluginDir string) (*Manifest, error) {
	path := filepath.Join(pluginDir, File)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ValidationError{Path: path, Reason: "manifest file not found"}
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ValidationError{Path: path, Reason: "malformed JSON: " + err.Error()}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks the minimum required declarations.
func (m *Manifest) Validate() error {
	switch {
	case m.ID == "":
		return &ValidationError{Reason: "missing id"}
	case m.Name == "":
		return &ValidationError{Reason: "missing name"}
	case m.Version == "":
		return &ValidationError{Reason: "missing version"}
	case m.EntryPoint == "":
		return &ValidationError{Reason: "missing entry_point"}
	}
	return nil
}

// DefaultMode returns the first declared display mode, or "" when
// the plugin declares none.
func (m *Manifest) DefaultMode() string {
	if len(m.DisplayModes) == 0 {
		return ""
	}
	return m.DisplayModes[0]
}
