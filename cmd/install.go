package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ledmatrix/matrixstore/internal/config"
	"github.com/ledmatrix/matrixstore/internal/i18n"
	"github.com/ledmatrix/matrixstore/internal/installer"
	"github.com/ledmatrix/matrixstore/internal/registry"
)

var (
	installFromURL string
	installEnable  bool
)

var installCmd = &cobra.Command{
	Use:   "install <plugin-id>[@<version>]",
	Short: "Install a plugin from the registry",
	Long: `Install a plugin from the registry, optionally pinned to a version.

Example:
  matrixstore install clock-simple
  matrixstore install clock-simple@1.0.4
  matrixstore install --url https://github.com/x/y/archive/refs/tags/v1.0.0.zip`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVar(&installFromURL, "url", "", "install from an arbitrary git or archive URL")
	installCmd.Flags().BoolVar(&installEnable, "enable", false, "enable the plugin after installing")
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	inst := newInstaller()

	var rec *installer.Record
	var err error

	switch {
	case installFromURL != "":
		var opts installer.Options
		if doc, regErr := loadRegistry(ctx); regErr == nil {
			opts.Registry = doc
		}
		rec, err = inst.Install(ctx, installFromURL, opts)

	case len(args) == 1:
		id, version := parsePluginArg(args[0])
		var doc *registry.Document
		doc, err = loadRegistry(ctx)
		if err != nil {
			return err
		}
		rec, err = inst.InstallFromRegistry(ctx, doc, id, version)

	default:
		return fmt.Errorf("either a plugin id or --url is required")
	}

	if err != nil {
		var nf *registry.NotFoundError
		if errors.As(err, &nf) && nf.Version == "" {
			return errors.New(i18n.T("PluginNotFound", map[string]any{"Plugin": nf.Plugin}))
		}
		return err
	}

	fmt.Println(i18n.T("InstallSuccess", map[string]any{
		"Plugin":  rec.ID,
		"Version": rec.Version,
	}))

	if len(rec.DependencyErrors) > 0 {
		fmt.Println(i18n.T("InstallDependencyWarning", nil))
		for _, depErr := range rec.DependencyErrors {
			fmt.Printf("  ! %s\n", depErr)
		}
	}

	if installEnable {
		if err := config.SetPluginEnabled(rec.ID, true); err != nil {
			return err
		}
		fmt.Println(i18n.T("PluginEnabled", map[string]any{"Plugin": rec.ID}))
	}

	return nil
}

// parsePluginArg parses "id" or "id@version"; a bare id means latest.
func parsePluginArg(arg string) (string, string) {
	if id, version, ok := strings.Cut(arg, "@"); ok && version != "" {
		return id, version
	}
	return arg, registry.VersionLatest
}
