package installer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ledmatrix/matrixstore/internal/registry"
)

// fakeGit plays the clone and pull sides of the git client. Its
// cloneFn writes files into destPath on success; returning an error
// pushes the installer onto the archive fallback. The isRepo and
// hasUpdates fields script the fast-forward path.
type fakeGit struct {
	cloneFn func(destPath string) error
	lastURL string
	lastTag string

	isRepo     bool
	hasUpdates bool
	pullErr    error
	pulled     bool
}

func (g *fakeGit) Clone(ctx context.Context, url, destPath, tag string) error {
	g.lastURL, g.lastTag = url, tag
	if g.cloneFn == nil {
		return errors.New("clone unsupported")
	}
	err := g.cloneFn(destPath)
	if err != nil {
		// Mirror the real client: a failed clone removes the checkout
		os.RemoveAll(destPath)
	}
	return err
}

func (g *fakeGit) Pull(ctx context.Context, repoPath string) error {
	g.pulled = true
	return g.pullErr
}

func (g *fakeGit) CurrentCommit(repoPath string) (string, error) { return "", nil }

func (g *fakeGit) HasUpdates(ctx context.Context, repoPath string) (bool, error) {
	return g.hasUpdates, nil
}

func (g *fakeGit) IsRepository(path string) bool { return g.isRepo }

func manifestJSON(id, version string, deps ...string) string {
	m := fmt.Sprintf(`{"id": %q, "name": "Plugin %s", "version": %q, "entry_point": %q`, id, id, version, id)
	if len(deps) > 0 {
		m += `, "dependencies": [`
		for i, d := range deps {
			if i > 0 {
				m += ", "
			}
			m += fmt.Sprintf("%q", d)
		}
		m += `]`
	}
	return m + `}`
}

// cloneWriting returns a cloneFn dropping the given files at the
// checkout root.
func cloneWriting(files map[string]string) func(string) error {
	return func(dest string) error {
		for name, content := range files {
			path := filepath.Join(dest, name)
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return err
			}
		}
		return nil
	}
}

func newTestInstaller(t *testing.T, git *fakeGit) *Installer {
	t.Helper()
	root := t.TempDir()
	return New(filepath.Join(root, "plugins"), filepath.Join(root, "staging"), git, nil)
}

func TestInstallFromClone(t *testing.T) {
	git := &fakeGit{cloneFn: cloneWriting(map[string]string{
		"plugin.json": manifestJSON("clock-simple", "1.0.4"),
		"clock.py":    "print('tick')",
	})}
	in := newTestInstaller(t, git)

	rec, err := in.Install(context.Background(), "https://github.com/x/y", Options{Version: "1.0.4"})
	if err != nil {
		t.Fatalf("Install returned error: %v", err)
	}

	if rec.ID != "clock-simple" || rec.Version != "1.0.4" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if git.lastTag != "v1.0.4" {
		t.Fatalf("clone must pin the v-prefixed tag, got %q", git.lastTag)
	}
	if _, err := os.Stat(filepath.Join(rec.Path, "clock.py")); err != nil {
		t.Fatalf("plugin content missing after install: %v", err)
	}
}

func TestInstallMissingManifestLeavesNoResidue(t *testing.T) {
	git := &fakeGit{cloneFn: cloneWriting(map[string]string{
		"readme.md": "no manifest here",
	})}
	in := newTestInstaller(t, git)

	_, err := in.Install(context.Background(), "https://github.com/x/y", Options{})

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	for _, dir := range []string{in.PluginsDir, in.StagingDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("reading %s: %v", dir, err)
		}
		if len(entries) != 0 {
			t.Fatalf("failed install left residue in %s: %v", dir, entries)
		}
	}
}

func TestInstallExpectedIDMismatch(t *testing.T) {
	git := &fakeGit{cloneFn: cloneWriting(map[string]string{
		"plugin.json": manifestJSON("impostor", "1.0.0"),
	})}
	in := newTestInstaller(t, git)

	_, err := in.Install(context.Background(), "https://github.com/x/y", Options{ExpectedID: "clock-simple"})

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(in.PluginsDir, "impostor")); !os.IsNotExist(statErr) {
		t.Fatalf("mismatched plugin must not be placed")
	}
}

// zipArchive builds a zip with entries under a wrapper directory, the
// shape GitHub's refs/tags archives have.
func zipArchive(t *testing.T, wrapper string, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(wrapper + "/" + name)
		if err != nil {
			t.Fatalf("creating zip entry: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func TestInstallArchiveFallback(t *testing.T) {
	archive := zipArchive(t, "y-1.0.4", map[string]string{
		"plugin.json": manifestJSON("clock-simple", "1.0.4"),
		"clock.py":    "print('tick')",
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	// Clone always fails, forcing the archive path
	in := newTestInstaller(t, &fakeGit{})

	rec, err := in.Install(context.Background(), srv.URL+"/archive/refs/tags/v1.0.4.zip", Options{})
	if err != nil {
		t.Fatalf("Install returned error: %v", err)
	}

	// The wrapper directory must be flattened away
	if _, err := os.Stat(filepath.Join(rec.Path, "plugin.json")); err != nil {
		t.Fatalf("manifest not at plugin root: %v", err)
	}
	if _, err := os.Stat(filepath.Join(rec.Path, "clock.py")); err != nil {
		t.Fatalf("content not at plugin root: %v", err)
	}
}

func TestInstallRetrievalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	in := newTestInstaller(t, &fakeGit{})

	_, err := in.Install(context.Background(), srv.URL+"/gone.zip", Options{})

	var re *RetrievalError
	if !errors.As(err, &re) {
		t.Fatalf("expected RetrievalError, got %v", err)
	}
	if re.CloneErr == nil || re.FetchErr == nil {
		t.Fatalf("RetrievalError must carry both causes: %+v", re)
	}
}

func TestReinstallOverwrites(t *testing.T) {
	git := &fakeGit{cloneFn: cloneWriting(map[string]string{
		"plugin.json": manifestJSON("clock-simple", "1.0.3"),
		"old.txt":     "old",
	})}
	in := newTestInstaller(t, git)

	if _, err := in.Install(context.Background(), "https://github.com/x/y", Options{}); err != nil {
		t.Fatalf("first install: %v", err)
	}

	git.cloneFn = cloneWriting(map[string]string{
		"plugin.json": manifestJSON("clock-simple", "1.0.4"),
		"new.txt":     "new",
	})

	rec, err := in.Install(context.Background(), "https://github.com/x/y", Options{})
	if err != nil {
		t.Fatalf("second install: %v", err)
	}
	if rec.Version != "1.0.4" {
		t.Fatalf("reinstall kept old version: %s", rec.Version)
	}

	if _, err := os.Stat(filepath.Join(rec.Path, "old.txt")); !os.IsNotExist(err) {
		t.Fatalf("old content must be gone after reinstall")
	}

	entries, err := os.ReadDir(in.PluginsDir)
	if err != nil {
		t.Fatalf("reading plugins dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one plugin directory, got %d", len(entries))
	}
}

func TestInstallFromRegistryResolvesLatest(t *testing.T) {
	git := &fakeGit{cloneFn: cloneWriting(map[string]string{
		"plugin.json": manifestJSON("clock-simple", "1.0.4"),
	})}
	in := newTestInstaller(t, git)

	doc := &registry.Document{Plugins: []registry.Entry{{
		ID:            "clock-simple",
		Name:          "Simple Clock",
		Repo:          "https://github.com/x/y",
		LatestVersion: "1.0.4",
		Versions:      []registry.VersionRecord{{Version: "1.0.4"}},
	}}}

	rec, err := in.InstallFromRegistry(context.Background(), doc, "clock-simple", registry.VersionLatest)
	if err != nil {
		t.Fatalf("InstallFromRegistry returned error: %v", err)
	}
	if rec.Version != "1.0.4" {
		t.Fatalf("unexpected version: %s", rec.Version)
	}
	if git.lastTag != "v1.0.4" {
		t.Fatalf("latest must resolve to a pinned tag, got %q", git.lastTag)
	}
	if git.lastURL != "https://github.com/x/y/archive/refs/tags/v1.0.4.zip" {
		t.Fatalf("unexpected resolved URL: %s", git.lastURL)
	}
}

func TestInstallFromRegistryUnknownPlugin(t *testing.T) {
	in := newTestInstaller(t, &fakeGit{})
	doc := &registry.Document{}

	_, err := in.InstallFromRegistry(context.Background(), doc, "nope", registry.VersionLatest)

	var nf *registry.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDependenciesAreBestEffort(t *testing.T) {
	git := &fakeGit{cloneFn: cloneWriting(map[string]string{
		"plugin.json": manifestJSON("weather", "2.0.0", "fontpack"),
	})}
	in := newTestInstaller(t, git)

	// fontpack is not in the registry, so its install must fail
	// without failing the weather install
	doc := &registry.Document{Plugins: []registry.Entry{{
		ID:            "weather",
		Name:          "Weather",
		Repo:          "https://github.com/x/weather",
		LatestVersion: "2.0.0",
		Versions:      []registry.VersionRecord{{Version: "2.0.0"}},
	}}}

	rec, err := in.InstallFromRegistry(context.Background(), doc, "weather", "2.0.0")
	if err != nil {
		t.Fatalf("install must survive dependency failure: %v", err)
	}
	if len(rec.DependencyErrors) != 1 {
		t.Fatalf("expected one dependency error, got %v", rec.DependencyErrors)
	}
	if _, err := os.Stat(filepath.Join(in.PluginsDir, "weather", "plugin.json")); err != nil {
		t.Fatalf("plugin must stay installed despite dependency failure: %v", err)
	}
}

func TestPullFastForwardsCheckout(t *testing.T) {
	git := &fakeGit{cloneFn: cloneWriting(map[string]string{
		"plugin.json": manifestJSON("clock-simple", "1.0.4"),
	})}
	in := newTestInstaller(t, git)

	if _, err := in.Install(context.Background(), "https://github.com/x/y", Options{}); err != nil {
		t.Fatalf("install: %v", err)
	}

	git.isRepo = true
	git.hasUpdates = true

	updated, err := in.Pull(context.Background(), "clock-simple")
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	if !updated {
		t.Fatalf("a checkout with remote commits must report updated")
	}
	if !git.pulled {
		t.Fatalf("Pull must delegate to the git client")
	}
}

func TestPullSkipsNonCheckout(t *testing.T) {
	git := &fakeGit{}
	in := newTestInstaller(t, git)

	updated, err := in.Pull(context.Background(), "clock-simple")
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	if updated || git.pulled {
		t.Fatalf("a non-checkout directory must be left alone")
	}
}

func TestPullAlreadyCurrent(t *testing.T) {
	git := &fakeGit{isRepo: true}
	in := newTestInstaller(t, git)

	updated, err := in.Pull(context.Background(), "clock-simple")
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	if updated || git.pulled {
		t.Fatalf("an up-to-date checkout must not be pulled")
	}
}

func TestPullSurfacesFailure(t *testing.T) {
	git := &fakeGit{isRepo: true, hasUpdates: true, pullErr: errors.New("remote hung up")}
	in := newTestInstaller(t, git)

	if _, err := in.Pull(context.Background(), "clock-simple"); err == nil {
		t.Fatalf("a failing pull must surface its error")
	}
}

func TestUninstall(t *testing.T) {
	git := &fakeGit{cloneFn: cloneWriting(map[string]string{
		"plugin.json": manifestJSON("clock-simple", "1.0.4"),
	})}
	in := newTestInstaller(t, git)

	if _, err := in.Install(context.Background(), "https://github.com/x/y", Options{}); err != nil {
		t.Fatalf("install: %v", err)
	}

	if err := in.Uninstall("clock-simple"); err != nil {
		t.Fatalf("Uninstall returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(in.PluginsDir, "clock-simple")); !os.IsNotExist(err) {
		t.Fatalf("plugin directory must be gone")
	}

	if err := in.Uninstall("clock-simple"); err == nil {
		t.Fatalf("uninstalling a missing plugin must fail")
	}
}

func TestInstalledSkipsInvalidDirectories(t *testing.T) {
	git := &fakeGit{cloneFn: cloneWriting(map[string]string{
		"plugin.json": manifestJSON("clock-simple", "1.0.4"),
	})}
	in := newTestInstaller(t, git)

	if _, err := in.Install(context.Background(), "https://github.com/x/y", Options{}); err != nil {
		t.Fatalf("install: %v", err)
	}

	// A stray directory without a manifest must be skipped, not fatal
	if err := os.MkdirAll(filepath.Join(in.PluginsDir, "broken"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	records, err := in.Installed()
	if err != nil {
		t.Fatalf("Installed returned error: %v", err)
	}
	if len(records) != 1 || records[0].ID != "clock-simple" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestInstalledEmptyWhenDirMissing(t *testing.T) {
	in := newTestInstaller(t, &fakeGit{})

	records, err := in.Installed()
	if err != nil {
		t.Fatalf("Installed returned error: %v", err)
	}
	if records != nil {
		t.Fatalf("expected nil records for a missing plugins dir, got %+v", records)
	}
}
