package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Store manages the local registry cache file.
type Store struct {
	mu   sync.RWMutex
	path string
}

var (
	store     *Store
	storeOnce sync.Once
)

// NewStore creates a store backed by the given cache path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// GetStore returns the singleton store backed by the default cache path.
func GetStore(path string) *Store {
	storeOnce.Do(func() {
		store = NewStore(path)
	})
	return store
}

// Load reads the cached registry document. A missing cache file is
// reported as such so callers can trigger a fetch.
func (s *Store) Load() (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("registry cache not found, run 'matrixstore registry refresh' first: %w", err)
		}
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse registry document: %w", err)
	}

	return &doc, nil
}

// Save writes the registry document to the cache file.
func (s *Store) Save(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Fetch downloads the registry document from the given URL and
// validates it before returning.
func Fetch(ctx context.Context, url string) (*Document, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch registry: %s returned %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse registry document: %w", err)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Validate checks the document's structural invariants: unique ids,
// latest_version present in versions, and templates carrying the
// {version} placeholder.
func (d *Document) Validate() error {
	seen := make(map[string]bool, len(d.Plugins))

	for i := range d.Plugins {
		e := &d.Plugins[i]

		if e.ID == "" {
			return &IntegrityError{Plugin: e.Name, Detail: "missing id"}
		}
		if seen[e.ID] {
			return &IntegrityError{Plugin: e.ID, Detail: "duplicate id in registry"}
		}
		seen[e.ID] = true

		if e.Repo == "" {
			return &IntegrityError{Plugin: e.ID, Detail: "missing repo URL"}
		}

		if e.DownloadURLTemplate != "" && !strings.Contains(e.DownloadURLTemplate, versionPlaceholder) {
			return &IntegrityError{Plugin: e.ID, Detail: "download_url_template has no {version} placeholder"}
		}

		if e.LatestVersion != "" && e.FindVersion(e.LatestVersion) == nil {
			return &IntegrityError{
				Plugin: e.ID,
				Detail: fmt.Sprintf("latest_version '%s' is not in the versions list", e.LatestVersion),
			}
		}
	}

	return nil
}
