package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledmatrix/matrixstore/internal/config"
	"github.com/ledmatrix/matrixstore/internal/i18n"
	"github.com/ledmatrix/matrixstore/internal/manifest"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Enable/disable plugins and manage settings",
}

var configEnableCmd = &cobra.Command{
	Use:   "enable <plugin-id>",
	Short: "Enable an installed plugin",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setEnabled(args[0], true) },
}

var configDisableCmd = &cobra.Command{
	Use:   "disable <plugin-id>",
	Short: "Disable a plugin without removing it",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setEnabled(args[0], false) },
}

var configSetCmd = &cobra.Command{
	Use:   "set <plugin-id> <key> <json-value>",
	Short: "Set a plugin setting",
	Long: `Set a plugin setting. The value is parsed as JSON, so strings need
quoting:

  matrixstore config set clock-simple timezone '"America/New_York"'
  matrixstore config set clock-simple show_seconds true

The value is checked against the plugin's config.schema.json when it
ships one.`,
	Args: cobra.ExactArgs(3),
	RunE: runConfigSet,
}

var configShowCmd = &cobra.Command{
	Use:   "show <plugin-id>",
	Short: "Show a plugin's settings block",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigShow,
}

var configLocaleCmd = &cobra.Command{
	Use:   "locale [locale]",
	Short: "Show or set the CLI locale",
	Long: `Show the configured locale, or set it. "auto" follows the system
locale:

  matrixstore config locale
  matrixstore config locale en-US
  matrixstore config locale auto`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigLocale,
}

func init() {
	configCmd.AddCommand(configEnableCmd)
	configCmd.AddCommand(configDisableCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configLocaleCmd)
}

func setEnabled(id string, enabled bool) error {
	inst := newInstaller()
	if _, err := inst.Get(id); err != nil {
		return errors.New(i18n.T("PluginNotInstalled", map[string]any{"Plugin": id}))
	}

	if err := config.SetPluginEnabled(id, enabled); err != nil {
		return err
	}

	msg := "PluginDisabled"
	if enabled {
		msg = "PluginEnabled"
	}
	fmt.Println(i18n.T(msg, map[string]any{"Plugin": id}))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	id, key, rawValue := args[0], args[1], args[2]

	inst := newInstaller()
	rec, err := inst.Get(id)
	if err != nil {
		return errors.New(i18n.T("PluginNotInstalled", map[string]any{"Plugin": id}))
	}

	var value any
	if err := json.Unmarshal([]byte(rawValue), &value); err != nil {
		return fmt.Errorf("value must be valid JSON (quote strings): %w", err)
	}

	pc := config.Get().Plugin(id)
	settings := make(map[string]any, len(pc.Settings)+1)
	for k, v := range pc.Settings {
		settings[k] = v
	}
	settings[key] = value

	// Validate the whole block against the plugin's schema before
	// committing the change
	if err := manifest.ValidateSettings(rec.Path, id, settings); err != nil {
		return err
	}

	return config.SetPluginSettings(id, settings)
}

func runConfigLocale(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println(config.GetLocale())
		return nil
	}

	locale := args[0]
	if err := config.SetLocale(locale); err != nil {
		return err
	}
	i18n.SetLocale(locale)

	fmt.Println(i18n.T("LocaleSet", map[string]any{"Locale": locale}))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	id := args[0]

	pc := config.Get().Plugin(id)
	data, err := json.MarshalIndent(pc, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}
