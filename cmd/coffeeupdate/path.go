package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coffeeauras/coffeeupdate/internal/addonpath"
	"github.com/coffeeauras/coffeeupdate/internal/userconfig"
)

var pathDetect bool

var pathCmd = &cobra.Command{
	Use:   "path [dir]",
	Short: "Show or set the World of Warcraft AddOns folder",
	Long: `Show the configured AddOns folder, or set it.

Any of the game folder, its _retail_ folder, the Interface folder or the
AddOns folder itself is accepted and stored as the AddOns folder.

Examples:
  coffeeupdate path
  coffeeupdate path "C:\Program Files (x86)\World of Warcraft"
  coffeeupdate path --detect`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadUserConfig()
		if err != nil {
			return err
		}

		var dir string
		switch {
		case len(args) == 1:
			dir = args[0]
		case pathDetect:
			dir = addonpath.Locate()
			if dir == "" {
				return errors.New("no World of Warcraft installation found in the usual locations")
			}
		default:
			printPathState(cfg)
			return nil
		}

		if err := cfg.Set(userconfig.KeyAddOnsPath, dir); err != nil {
			return &usageError{err: err}
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		printInfof("Add-ons path set to %s\n", cfg.AddOnsPath)
		return nil
	},
}

func init() {
	pathCmd.Flags().BoolVar(&pathDetect, "detect", false, "Search the usual install locations for the game")
}

func printPathState(cfg *userconfig.Config) {
	switch cfg.PathState() {
	case addonpath.StateNotSet:
		fmt.Println("Add-ons path is not set. Run 'coffeeupdate path <dir>' to set it.")
	case addonpath.StateInvalid:
		fmt.Printf("%s (invalid: not a World of Warcraft AddOns folder)\n", cfg.AddOnsPath)
	default:
		fmt.Println(cfg.AddOnsPath)
	}
}
