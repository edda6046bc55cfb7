package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledmatrix/matrixstore/internal/config"
	"github.com/ledmatrix/matrixstore/internal/i18n"
	"github.com/ledmatrix/matrixstore/internal/registry"
	"github.com/ledmatrix/matrixstore/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the registry interactively",
	Long: `Open an interactive browser over the plugin registry. Toggle
plugins with Tab to mark them for install or uninstall, then confirm
with Enter.`,
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	doc, err := loadRegistry(ctx)
	if err != nil {
		return err
	}

	inst := newInstaller()
	records, err := inst.Installed()
	if err != nil {
		return err
	}
	installed := make(map[string]bool, len(records))
	for _, rec := range records {
		installed[rec.ID] = true
	}

	cfg := config.Get()
	items := make([]tui.Item, 0, len(doc.Plugins))
	for _, entry := range doc.Plugins {
		items = append(items, tui.Item{
			Entry:     entry,
			Installed: installed[entry.ID],
			Enabled:   cfg.Plugin(entry.ID).Enabled,
			Selected:  installed[entry.ID],
		})
	}

	result, err := tui.Run(items)
	if err != nil {
		return err
	}
	if result.Cancelled {
		return nil
	}
	if len(result.ToInstall) == 0 && len(result.ToUninstall) == 0 {
		fmt.Println(i18n.T("BrowseNothingSelected", nil))
		return nil
	}

	for _, item := range result.ToInstall {
		rec, err := inst.InstallFromRegistry(ctx, doc, item.Entry.ID, registry.VersionLatest)
		if err != nil {
			fmt.Printf("  ! %s: %v\n", item.Entry.ID, err)
			continue
		}
		fmt.Println(i18n.T("InstallSuccess", map[string]any{
			"Plugin":  rec.ID,
			"Version": rec.Version,
		}))
	}

	for _, item := range result.ToUninstall {
		if err := inst.Uninstall(item.Entry.ID); err != nil {
			fmt.Printf("  ! %s: %v\n", item.Entry.ID, err)
			continue
		}
		if err := config.RemovePlugin(item.Entry.ID); err != nil {
			return err
		}
		fmt.Println(i18n.T("UninstallSuccess", map[string]any{"Plugin": item.Entry.ID}))
	}

	return nil
}
