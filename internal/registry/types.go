package registry

// Document is the top-level plugin registry structure (plugins.json)
type Document struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"last_updated"`
	Plugins     []Entry `json:"plugins"`
}

// Entry represents a single plugin in the registry
type Entry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Repo        string   `json:"repo"`
	// DownloadURLTemplate, when present, must contain the {version}
	// placeholder. A version record's explicit download_url still
	// wins over the template.
	DownloadURLTemplate string          `json:"download_url_template,omitempty"`
	LatestVersion       string          `json:"latest_version"`
	Versions            []VersionRecord `json:"versions"`
	Verified            bool            `json:"verified,omitempty"`
	LastUpdated         string          `json:"last_updated,omitempty"`
}

// VersionRecord describes one released version of a plugin.
// Version strings are opaque: "1.0.4" and "v1.0.4" are distinct, the
// registry producer is responsible for consistency.
type VersionRecord struct {
	Version     string `json:"version"`
	MatrixMin   string `json:"matrix_min,omitempty"` // minimum host version
	Released    string `json:"released,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
}

// FindVersion returns the record matching the exact version string,
// or nil when the version is not listed.
func (e *Entry) FindVersion(version string) *VersionRecord {
	for i := range e.Versions {
		if e.Versions[i].Version == version {
			return &e.Versions[i]
		}
	}
	return nil
}

// Find returns the entry with the given id, or nil.
func (d *Document) Find(id string) *Entry {
	for i := range d.Plugins {
		if d.Plugins[i].ID == id {
			return &d.Plugins[i]
		}
	}
	return nil
}
