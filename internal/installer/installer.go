package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ledmatrix/matrixstore/internal/gitx"
	"github.com/ledmatrix/matrixstore/internal/manifest"
	"github.com/ledmatrix/matrixstore/internal/registry"
)

// Options tune a single install.
type Options struct {
	// ExpectedID, when set, must match the retrieved manifest's id.
	ExpectedID string
	// Version pins the clone to the matching "v<version>" tag. The
	// archive fallback ignores it: the resolved URL already encodes
	// the version.
	Version string
	// Registry enables best-effort dependency installation. Nil
	// skips dependencies entirely.
	Registry *registry.Document
}

// Record describes an installed plugin, derived from the filesystem
// rather than any persisted row.
type Record struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Version  string             `json:"version"`
	Path     string             `json:"path"`
	Manifest *manifest.Manifest `json:"-"`
	// DependencyErrors collects best-effort dependency failures.
	// The plugin itself is installed even when these are non-empty.
	DependencyErrors []string `json:"dependency_errors,omitempty"`
}

// Installer retrieves, validates and places plugin content.
type Installer struct {
	PluginsDir string
	StagingDir string

	git gitx.Client
	log *zap.Logger
}

// New creates an installer. A nil logger is replaced with a no-op
// logger so CLI callers don't have to wire one.
func New(pluginsDir, stagingDir string, git gitx.Client, log *zap.Logger) *Installer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Installer{
		PluginsDir: pluginsDir,
		StagingDir: stagingDir,
		git:        git,
		log:        log,
	}
}

// InstallFromRegistry resolves a plugin id and version against the
// registry document and installs the resolved artifact. The manifest
// id must match the registry id.
func (in *Installer) InstallFromRegistry(ctx context.Context, doc *registry.Document, id, version string) (*Record, error) {
	entry := doc.Find(id)
	if entry == nil {
		return nil, &registry.NotFoundError{Plugin: id}
	}

	url, err := registry.Resolve(entry, version)
	if err != nil {
		return nil, err
	}

	resolved := version
	if resolved == registry.VersionLatest {
		resolved = entry.LatestVersion
	}

	return in.Install(ctx, url, Options{
		ExpectedID: id,
		Version:    resolved,
		Registry:   doc,
	})
}

// Install retrieves the content at url into a staging directory,
// validates its manifest, and atomically places it under the plugins
// directory. Failures before placement leave no partial state
// behind. Re-installing an existing id overwrites it; no concurrent
// reader observes a half-replaced directory.
func (in *Installer) Install(ctx context.Context, url string, opts Options) (*Record, error) {
	if err := os.MkdirAll(in.StagingDir, 0755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(in.PluginsDir, 0755); err != nil {
		return nil, err
	}

	stage, err := os.MkdirTemp(in.StagingDir, "install-*")
	if err != nil {
		return nil, err
	}

	placed := false
	defer func() {
		if !placed {
			os.RemoveAll(stage)
		}
	}()

	if err := in.retrieve(ctx, url, stage, opts.Version); err != nil {
		return nil, err
	}

	man, err := manifest.Load(stage)
	if err != nil {
		return nil, &ValidationError{URL: url, Err: err}
	}

	if opts.ExpectedID != "" && man.ID != opts.ExpectedID {
		return nil, &ValidationError{
			URL:    url,
			Reason: fmt.Sprintf("manifest id '%s' does not match expected id '%s'", man.ID, opts.ExpectedID),
		}
	}

	final := filepath.Join(in.PluginsDir, man.ID)
	if err := in.place(stage, final); err != nil {
		return nil, err
	}
	placed = true

	in.log.Info("plugin installed",
		zap.String("id", man.ID),
		zap.String("version", man.Version),
		zap.String("path", final))

	rec := &Record{
		ID:       man.ID,
		Name:     man.Name,
		Version:  man.Version,
		Path:     final,
		Manifest: man,
	}

	in.installDependencies(ctx, rec, opts.Registry)

	return rec, nil
}

// retrieve fills stage with the plugin content: clone-capable
// transport first for faster incremental updates, then a plain
// archive download of the same URL.
func (in *Installer) retrieve(ctx context.Context, url, stage, version string) error {
	tag := ""
	if version != "" {
		tag = version
		if !strings.HasPrefix(tag, "v") {
			tag = "v" + tag
		}
	}

	cloneErr := in.git.Clone(ctx, url, stage, tag)
	if cloneErr == nil {
		return nil
	}

	// The failed clone may have removed the staging directory
	if err := os.MkdirAll(stage, 0755); err != nil {
		return err
	}

	in.log.Debug("clone failed, falling back to archive download",
		zap.String("url", url), zap.Error(cloneErr))

	if fetchErr := fetchArchive(ctx, url, stage); fetchErr != nil {
		return &RetrievalError{URL: url, CloneErr: cloneErr, FetchErr: fetchErr}
	}

	return nil
}

// place moves validated content into the final plugin directory with
// a rename swap, so the host's discovery scan never sees a
// half-written plugin. Falls back to a copy when staging and plugins
// directories are on different filesystems.
func (in *Installer) place(stage, final string) error {
	var displaced string
	if _, err := os.Stat(final); err == nil {
		displaced = final + ".old-" + randomSuffix(8)
		if err := os.Rename(final, displaced); err != nil {
			return fmt.Errorf("failed to displace previous installation: %w", err)
		}
	}

	if err := os.Rename(stage, final); err != nil {
		// Cross-device fallback: copy then remove the stage
		if copyErr := CopyDir(stage, final); copyErr != nil {
			os.RemoveAll(final)
			if displaced != "" {
				os.Rename(displaced, final)
			}
			return fmt.Errorf("failed to place plugin: %w", copyErr)
		}
		os.RemoveAll(stage)
	}

	if displaced != "" {
		os.RemoveAll(displaced)
	}

	return nil
}

// installDependencies installs the plugin's declared dependencies
// from the registry. Best-effort and non-transactional: failures are
// recorded on the Record and logged, never rolled back.
func (in *Installer) installDependencies(ctx context.Context, rec *Record, doc *registry.Document) {
	if doc == nil || len(rec.Manifest.Dependencies) == 0 {
		return
	}

	for _, dep := range rec.Manifest.Dependencies {
		if dep == rec.ID {
			continue
		}
		if _, err := in.Get(dep); err == nil {
			continue // already installed
		}

		if _, err := in.InstallFromRegistry(ctx, doc, dep, registry.VersionLatest); err != nil {
			depErr := &DependencyError{Plugin: rec.ID, Dependency: dep, Err: err}
			rec.DependencyErrors = append(rec.DependencyErrors, depErr.Error())
			in.log.Warn("dependency install failed",
				zap.String("plugin", rec.ID),
				zap.String("dependency", dep),
				zap.Error(err))
		}
	}
}

// Pull fast-forwards the plugin's git checkout in place. updated
// reports whether new commits were applied. Plugins whose directory
// is not a git checkout are left alone with updated=false; callers
// fall back to a full reinstall for those.
func (in *Installer) Pull(ctx context.Context, id string) (updated bool, err error) {
	dir := filepath.Join(in.PluginsDir, id)
	if !in.git.IsRepository(dir) {
		return false, nil
	}

	hasUpdates, err := in.git.HasUpdates(ctx, dir)
	if err != nil {
		return false, err
	}
	if !hasUpdates {
		return false, nil
	}

	if err := in.git.Pull(ctx, dir); err != nil {
		return false, err
	}

	// The checkout must still carry a valid manifest after the pull
	if _, err := manifest.Load(dir); err != nil {
		return false, &ValidationError{URL: dir, Err: err}
	}

	in.log.Info("plugin fast-forwarded", zap.String("id", id))
	return true, nil
}

// Uninstall removes the plugin directory. The caller is responsible
// for dropping the plugin's host config block so no traces remain.
func (in *Installer) Uninstall(id string) error {
	dir := filepath.Join(in.PluginsDir, id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("plugin '%s' is not installed", id)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove plugin '%s': %w", id, err)
	}

	in.log.Info("plugin uninstalled", zap.String("id", id))
	return nil
}

// Get returns the record for an installed plugin id.
func (in *Installer) Get(id string) (*Record, error) {
	dir := filepath.Join(in.PluginsDir, id)

	man, err := manifest.Load(dir)
	if err != nil {
		return nil, err
	}

	return &Record{
		ID:       man.ID,
		Name:     man.Name,
		Version:  man.Version,
		Path:     dir,
		Manifest: man,
	}, nil
}

// Installed scans the plugins directory and returns a record per
// valid installation, sorted by id. Directories without a valid
// manifest are skipped with a log entry, never fatal.
func (in *Installer) Installed() ([]Record, error) {
	entries, err := os.ReadDir(in.PluginsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var records []Record
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		rec, err := in.Get(e.Name())
		if err != nil {
			in.log.Warn("skipping invalid plugin directory",
				zap.String("dir", e.Name()), zap.Error(err))
			continue
		}
		records = append(records, *rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}
