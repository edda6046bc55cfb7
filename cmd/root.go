package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool

	rootCmd = &cobra.Command{
		Use:           "matrixstore",
		Short:         "Plugin store and host for LED matrix displays",
		SilenceErrors: true,
		Long: `matrixstore manages display plugins for LED matrix panels.

It keeps a local copy of the plugin registry, installs plugins from
it (or from any git/archive URL), and runs the rotation host that
drives installed plugins on the matrix.

Commands:
  install      Install a plugin from the registry or a URL
  uninstall    Remove an installed plugin
  list         Show installed plugins
  search       Search the plugin registry
  browse       Browse the registry interactively
  update       Update installed plugins to their latest versions
  registry     Inspect, validate and refresh the registry
  config       Enable/disable plugins and manage settings
  serve        Run the HTTP API and the display rotation loop`,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
