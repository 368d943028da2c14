package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netapi-network/netapi/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.netapi/settings.json.

Settings provide defaults for global flags:
  - inventory:      Inventory file (-i)
  - default_device: Device used when -d is not specified
  - output:         table, json or yaml
  - log_level:      Log level when -v is not given

Examples:
  netapi settings show
  netapi settings set default_device leaf1
  netapi settings set inventory /etc/netapi/inventory.yaml
  netapi settings clear`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		if structured() {
			return printStructured(s)
		}

		fmt.Fprintf(app.out, "Settings file: %s\n\n", settings.DefaultSettingsPath())

		t := newTable("SETTING", "VALUE")
		printSetting := func(name, value string) {
			if value == "" {
				value = "(not set)"
			}
			t.Row(name, value)
		}
		printSetting("inventory", s.Inventory)
		printSetting("default_device", s.DefaultDevice)
		printSetting("output", s.Output)
		printSetting("log_level", s.LogLevel)
		t.Flush()
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Long: `Set a persistent setting value.

Examples:
  netapi settings set default_device leaf1
  netapi settings set output yaml
  netapi settings set log_level info`,
	Args: cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return settings.Keys(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveDefault
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}
		if err := s.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Fprintf(app.out, "%s set to: %s\n", args[0], args[1])
		return nil
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := &settings.Settings{}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Fprintln(app.out, green("Settings cleared."))
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsClearCmd)
}
