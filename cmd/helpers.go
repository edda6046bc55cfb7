package cmd

import (
	"context"
	"fmt"

	"github.com/ledmatrix/matrixstore/internal/config"
	"github.com/ledmatrix/matrixstore/internal/gitx"
	"github.com/ledmatrix/matrixstore/internal/installer"
	"github.com/ledmatrix/matrixstore/internal/registry"
)

// newInstaller wires an installer from the host config. CLI paths
// run without a logger; serve attaches one.
func newInstaller() *installer.Installer {
	cfg := config.Get()
	return installer.New(cfg.PluginsDir, config.StagingDir(), gitx.NewClient(), nil)
}

// registryStore returns the store backed by the local cache file.
func registryStore() *registry.Store {
	return registry.GetStore(config.RegistryCachePath())
}

// registryURL returns the configured registry document URL.
func registryURL() string {
	return config.Get().RegistryURL
}

// loadRegistry returns the cached registry document, fetching it
// from the configured URL when no cache exists yet.
func loadRegistry(ctx context.Context) (*registry.Document, error) {
	store := registryStore()

	doc, err := store.Load()
	if err == nil {
		return doc, nil
	}

	doc, fetchErr := registry.Fetch(ctx, config.Get().RegistryURL)
	if fetchErr != nil {
		return nil, fmt.Errorf("no usable registry: %w", fetchErr)
	}
	if saveErr := store.Save(doc); saveErr != nil {
		return nil, saveErr
	}
	return doc, nil
}
