package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledmatrix/matrixstore/internal/i18n"
	"github.com/ledmatrix/matrixstore/internal/registry"
	"github.com/ledmatrix/matrixstore/internal/updater"
)

var updateCheckOnly bool

var updateCmd = &cobra.Command{
	Use:   "update [plugin-id]",
	Short: "Update installed plugins to their latest versions",
	Long: `Update one installed plugin, or all of them when no id is given.
The registry cache is re-synced first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&updateCheckOnly, "check", false, "only report available updates")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	inst := newInstaller()

	checker := updater.NewChecker(registryStore(), inst, registryURL(), nil)
	doc, err := checker.Sync(ctx)
	if err != nil {
		// A stale cache still allows updating
		doc, err = loadRegistry(ctx)
		if err != nil {
			return err
		}
	}

	updates, err := checker.CheckInstalled(doc)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		updates = filterUpdates(updates, args[0])
	}

	for _, u := range updates {
		fmt.Println(i18n.T("UpdateAvailable", map[string]any{
			"Plugin": u.ID,
			"From":   u.Installed,
			"To":     u.Latest,
		}))

		if updateCheckOnly {
			continue
		}

		rec, err := inst.InstallFromRegistry(ctx, doc, u.ID, registry.VersionLatest)
		if err != nil {
			fmt.Printf("  ! %s: %v\n", u.ID, err)
			continue
		}
		fmt.Println(i18n.T("UpdateApplied", map[string]any{
			"Plugin":  rec.ID,
			"Version": rec.Version,
		}))
	}

	// URL installs have no registry entry; their git checkouts are
	// fast-forwarded in place instead of reinstalled.
	pulled := 0
	if !updateCheckOnly {
		untracked, err := checker.Untracked(doc)
		if err != nil {
			return err
		}
		for _, rec := range untracked {
			if len(args) == 1 && rec.ID != args[0] {
				continue
			}
			updated, err := inst.Pull(ctx, rec.ID)
			if err != nil {
				fmt.Printf("  ! %s: %v\n", rec.ID, err)
				continue
			}
			if updated {
				fmt.Println(i18n.T("PluginPulled", map[string]any{"Plugin": rec.ID}))
				pulled++
			}
		}
	}

	if len(updates) == 0 && pulled == 0 {
		fmt.Println(i18n.T("RegistryUpToDate", nil))
	}

	return nil
}

func filterUpdates(updates []updater.UpdateInfo, id string) []updater.UpdateInfo {
	var out []updater.UpdateInfo
	for _, u := range updates {
		if u.ID == id {
			out = append(out, u)
		}
	}
	return out
}
