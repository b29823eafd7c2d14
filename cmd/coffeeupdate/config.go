package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/coffeeauras/coffeeupdate/internal/userconfig"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage coffeeupdate configuration",
	Long: `Manage coffeeupdate configuration settings.

Configuration is stored in config.toml under $COFFEE_HOME, which defaults
to the coffeeupdate folder in your user config directory.

Available settings:
  addons_path  World of Warcraft AddOns folder

Examples:
  coffeeupdate config get addons_path
  coffeeupdate config set addons_path "/Applications/World of Warcraft"`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get the current value of a configuration setting.

Available keys:
  addons_path  World of Warcraft AddOns folder`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]

		cfg, err := loadUserConfig()
		if err != nil {
			return err
		}

		value, ok := cfg.Get(key)
		if !ok {
			fmt.Fprintf(os.Stderr, "Available keys:\n")
			printAvailableKeys()
			return &usageError{err: fmt.Errorf("unknown config key: %s", key)}
		}

		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. An empty value clears the setting.

Available keys:
  addons_path  World of Warcraft AddOns folder

Examples:
  coffeeupdate config set addons_path "D:\World of Warcraft\_retail_"
  coffeeupdate config set addons_path ""`,
	Args: usageArgs(cobra.ExactArgs(2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := args[1]

		cfg, err := loadUserConfig()
		if err != nil {
			return err
		}

		if err := cfg.Set(key, value); err != nil {
			fmt.Fprintf(os.Stderr, "Available keys:\n")
			printAvailableKeys()
			return &usageError{err: err}
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		stored, _ := cfg.Get(key)
		fmt.Printf("%s = %s\n", key, stored)
		return nil
	},
}

func printAvailableKeys() {
	keys := userconfig.AvailableKeys()
	var sortedKeys []string
	for k := range keys {
		sortedKeys = append(sortedKeys, k)
	}
	sort.Strings(sortedKeys)

	for _, k := range sortedKeys {
		fmt.Fprintf(os.Stderr, "  %s - %s\n", k, keys[k])
	}
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
