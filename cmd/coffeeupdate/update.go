package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/coffeeauras/coffeeupdate/internal/update"
)

var updateForce bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Install or update every out-of-date add-on",
	Long: `Fetch the add-on manifest and install every add-on whose installed
version differs from the published one. Add-ons that fail to download or
install are reported and skipped; the rest are still updated.

The manifest is reused for a few minutes between runs unless --force is given.

Examples:
  coffeeupdate update
  coffeeupdate update --force`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadUserConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		updater, err := newUpdater(true, update.WithEventSink(printEvent))
		if err != nil {
			return err
		}

		result, err := updater.UpdateAll(ctx, cfg.AddOnsPath, updateForce)
		if err != nil {
			return err
		}
		if !result.Success() {
			return &updateFailedError{result: result}
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().BoolVarP(&updateForce, "force", "f", false, "Fetch the manifest even if a recent copy is cached")
}

// printEvent writes one progress line per update event. Failures go to
// stderr and are shown even in quiet mode.
func printEvent(e update.Event) {
	switch e.Kind {
	case update.EventManifestFailed:
		// Reported through the returned error.
	case update.EventAddOnFailed:
		fmt.Fprintln(os.Stderr, e.String())
	case update.EventUpToDate:
		if verboseFlag || debugFlag {
			printInfo(e.String())
		}
	default:
		printInfo(e.String())
	}
}

// updateFailedError summarizes a pass in which some add-ons failed. The
// individual failures were already printed as they happened.
type updateFailedError struct {
	result *update.Result
}

func (e *updateFailedError) Error() string {
	return fmt.Sprintf("%d add-on(s) failed to update", len(e.result.Failed))
}

func (e *updateFailedError) Unwrap() error {
	return e.result.Err()
}
