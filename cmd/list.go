package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledmatrix/matrixstore/internal/config"
	"github.com/ledmatrix/matrixstore/internal/gitx"
	"github.com/ledmatrix/matrixstore/internal/i18n"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show installed plugins",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	inst := newInstaller()

	records, err := inst.Installed()
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println(i18n.T("NoPluginsInstalled", nil))
		return nil
	}

	cfg := config.Get()
	git := gitx.NewClient()
	for _, rec := range records {
		state := "disabled"
		if cfg.Plugin(rec.ID).Enabled {
			state = "enabled"
		}
		fmt.Printf("%-24s %-10s %s\n", rec.ID, rec.Version, state)
		if verbose {
			fmt.Printf("  %s\n", rec.Path)
			if git.IsRepository(rec.Path) {
				if commit, err := git.CurrentCommit(rec.Path); err == nil {
					if len(commit) > 12 {
						commit = commit[:12]
					}
					fmt.Printf("  commit %s\n", commit)
				}
			}
		}
	}

	return nil
}
