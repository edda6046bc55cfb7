package registry

import (
	"errors"
	"path/filepath"
	"testing"
)

func validDoc() *Document {
	return &Document{
		Version:     "1",
		LastUpdated: "2026-05-01T00:00:00Z",
		Plugins:     []Entry{*testEntry()},
	}
}

func TestValidateAcceptsWellFormedDocument(t *testing.T) {
	if err := validDoc().Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestValidateRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Document)
	}{
		{"missing id", func(d *Document) { d.Plugins[0].ID = "" }},
		{"duplicate id", func(d *Document) { d.Plugins = append(d.Plugins, d.Plugins[0]) }},
		{"missing repo", func(d *Document) { d.Plugins[0].Repo = "" }},
		{"template without placeholder", func(d *Document) {
			d.Plugins[0].DownloadURLTemplate = "https://cdn.example.com/fixed.zip"
		}},
		{"latest not in versions", func(d *Document) { d.Plugins[0].LatestVersion = "2.0.0" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDoc()
			tt.mutate(doc)

			err := doc.Validate()
			var ie *IntegrityError
			if !errors.As(err, &ie) {
				t.Fatalf("expected IntegrityError, got %v", err)
			}
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "plugins.json")
	s := NewStore(path)

	if _, err := s.Load(); err == nil {
		t.Fatalf("Load should fail before the first Save")
	}

	want := validDoc()
	if err := s.Save(want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(got.Plugins) != 1 || got.Plugins[0].ID != "clock-simple" {
		t.Fatalf("round trip lost data: %+v", got)
	}
	if got.Plugins[0].LatestVersion != "1.0.4" {
		t.Fatalf("round trip changed latest_version: %s", got.Plugins[0].LatestVersion)
	}
}
