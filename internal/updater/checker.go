// Package updater keeps the local registry cache current and
// reports installed plugins that have newer releases.
package updater

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ledmatrix/matrixstore/internal/installer"
	"github.com/ledmatrix/matrixstore/internal/registry"
)

// UpdateInfo pairs an installed plugin with the newer registry
// version available for it.
type UpdateInfo struct {
	ID        string
	Installed string
	Latest    string
}

// Checker handles registry sync and update checking.
type Checker struct {
	store *registry.Store
	inst  *installer.Installer
	url   string
	log   *zap.Logger
}

// NewChecker creates a checker syncing from the given registry URL.
func NewChecker(store *registry.Store, inst *installer.Installer, url string, log *zap.Logger) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{store: store, inst: inst, url: url, log: log}
}

// Sync fetches the published registry document, validates it and
// replaces the local cache.
func (c *Checker) Sync(ctx context.Context) (*registry.Document, error) {
	doc, err := registry.Fetch(ctx, c.url)
	if err != nil {
		return nil, err
	}
	if err := c.store.Save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// CheckInstalled compares every installed plugin against the
// registry and returns those with a newer latest_version. Version
// strings are opaque: any difference from latest counts as an
// update.
func (c *Checker) CheckInstalled(doc *registry.Document) ([]UpdateInfo, error) {
	records, err := c.inst.Installed()
	if err != nil {
		return nil, err
	}

	var updates []UpdateInfo
	for _, rec := range records {
		entry := doc.Find(rec.ID)
		if entry == nil || entry.LatestVersion == "" {
			continue
		}
		if entry.LatestVersion != rec.Version {
			updates = append(updates, UpdateInfo{
				ID:        rec.ID,
				Installed: rec.Version,
				Latest:    entry.LatestVersion,
			})
		}
	}

	return updates, nil
}

// Untracked returns installed plugins that have no registry entry.
// These are URL installs; the only way to update them is pulling
// their git checkouts.
func (c *Checker) Untracked(doc *registry.Document) ([]installer.Record, error) {
	records, err := c.inst.Installed()
	if err != nil {
		return nil, err
	}

	var out []installer.Record
	for _, rec := range records {
		if doc.Find(rec.ID) == nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Run syncs on the given interval until ctx is cancelled. Failures
// are logged and retried next cycle; the cached document keeps
// serving in the meantime.
func (c *Checker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		doc, err := c.Sync(ctx)
		if err != nil {
			c.log.Warn("registry sync failed", zap.Error(err))
		} else {
			updates, err := c.CheckInstalled(doc)
			if err != nil {
				c.log.Warn("update check failed", zap.Error(err))
			}
			for _, u := range updates {
				c.log.Info("plugin update available",
					zap.String("id", u.ID),
					zap.String("installed", u.Installed),
					zap.String("latest", u.Latest))
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
