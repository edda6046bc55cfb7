package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledmatrix/matrixstore/internal/config"
	"github.com/ledmatrix/matrixstore/internal/i18n"
)

var uninstallCmd = &cobra.Command{
	Use:     "uninstall <plugin-id>",
	Aliases: []string{"remove", "rm"},
	Short:   "Remove an installed plugin",
	Long: `Remove an installed plugin's directory and its settings block
from the host configuration. Nothing of the plugin survives.`,
	Args: cobra.ExactArgs(1),
	RunE: runUninstall,
}

func runUninstall(cmd *cobra.Command, args []string) error {
	id := args[0]

	inst := newInstaller()
	if err := inst.Uninstall(id); err != nil {
		return err
	}

	if err := config.RemovePlugin(id); err != nil {
		return fmt.Errorf("plugin removed but config cleanup failed: %w", err)
	}

	fmt.Println(i18n.T("UninstallSuccess", map[string]any{"Plugin": id}))
	return nil
}
