package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledmatrix/matrixstore/internal/config"
	"github.com/ledmatrix/matrixstore/internal/i18n"
	"github.com/ledmatrix/matrixstore/internal/registry"
	"github.com/ledmatrix/matrixstore/internal/updater"
)

var registryDryRun bool

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect, validate and refresh the registry",
}

var registryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List every plugin in the registry",
	RunE:  runRegistryShow,
}

var registrySyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Re-fetch the registry document from its source",
	RunE:  runRegistrySync,
}

var registryValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the cached registry for integrity errors",
	RunE:  runRegistryValidate,
}

var registryRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Check upstream GitHub repos for new plugin releases",
	Long: `For every registry entry, query the upstream repository for new
releases (falling back to tags) and amend the cached document:
new versions are prepended and latest_version advances. Intended
for registry maintainers.`,
	RunE: runRegistryRefresh,
}

func init() {
	registryRefreshCmd.Flags().BoolVar(&registryDryRun, "dry-run", false, "report changes without writing them")

	registryCmd.AddCommand(registryShowCmd)
	registryCmd.AddCommand(registrySyncCmd)
	registryCmd.AddCommand(registryValidateCmd)
	registryCmd.AddCommand(registryRefreshCmd)
}

func runRegistryShow(cmd *cobra.Command, args []string) error {
	doc, err := loadRegistry(cmd.Context())
	if err != nil {
		return err
	}

	for _, e := range doc.Plugins {
		badge := " "
		if e.Verified {
			badge = "*"
		}
		fmt.Printf("%s %-24s %-10s %s\n", badge, e.ID, e.LatestVersion, e.Name)
		if verbose {
			fmt.Printf("  %s\n", e.Repo)
			for _, v := range e.Versions {
				fmt.Printf("    %-10s released %s\n", v.Version, v.Released)
			}
		}
	}

	return nil
}

func runRegistrySync(cmd *cobra.Command, args []string) error {
	checker := updater.NewChecker(registryStore(), newInstaller(), registryURL(), nil)

	doc, err := checker.Sync(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println(i18n.T("RegistryValid", map[string]any{"Count": len(doc.Plugins)}))
	return nil
}

func runRegistryValidate(cmd *cobra.Command, args []string) error {
	doc, err := loadRegistry(cmd.Context())
	if err != nil {
		return err
	}

	if err := doc.Validate(); err != nil {
		return err
	}

	fmt.Println(i18n.T("RegistryValid", map[string]any{"Count": len(doc.Plugins)}))
	return nil
}

func runRegistryRefresh(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	doc, err := loadRegistry(ctx)
	if err != nil {
		return err
	}

	updates, errs := registry.Refresh(ctx, doc, config.Get().GitHubToken(), registryDryRun)
	for _, e := range errs {
		fmt.Printf("  ! %v\n", e)
	}

	if len(updates) == 0 {
		fmt.Println(i18n.T("RegistryUpToDate", nil))
		return nil
	}

	for _, u := range updates {
		fmt.Println(i18n.T("UpdateAvailable", map[string]any{
			"Plugin": u.ID,
			"From":   u.From,
			"To":     u.To,
		}))
	}

	if registryDryRun {
		return nil
	}

	if err := registryStore().Save(doc); err != nil {
		return err
	}

	fmt.Println(i18n.T("RegistryRefreshed", map[string]any{"Count": len(updates)}))
	return nil
}
