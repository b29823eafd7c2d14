package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coffeeauras/coffeeupdate/internal/addon"
	"github.com/coffeeauras/coffeeupdate/internal/progress"
)

var (
	statusForce bool
	statusJSON  bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which add-ons are out of date",
	Long: `Compare the installed add-ons with the published manifest without
changing anything.

Examples:
  coffeeupdate status
  coffeeupdate status --json`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadUserConfig()
		if err != nil {
			return err
		}

		updater, err := newUpdater(false)
		if err != nil {
			return err
		}

		spinner := progress.NewSpinner(os.Stderr)
		if !quietFlag && !statusJSON {
			spinner.Start("Fetching add-on manifest...")
		}
		states, err := updater.PreviewStates(context.Background(), cfg.AddOnsPath, statusForce)
		spinner.Stop()
		if err != nil {
			return err
		}

		if statusJSON {
			printJSON(statusReport(states))
			return nil
		}

		if cfg.AddOnsPath == "" {
			fmt.Fprintln(os.Stderr, "Warning: add-ons path is not set; showing every add-on as not installed")
		}
		printStatusTable(states)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVarP(&statusForce, "force", "f", false, "Fetch the manifest even if a recent copy is cached")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
}

// addOnStatus is the JSON form of one install state.
type addOnStatus struct {
	Name      string `json:"name"`
	Installed string `json:"installed,omitempty"`
	Available string `json:"available"`
	Change    string `json:"change"`
	UpToDate  bool   `json:"up_to_date"`
}

func statusReport(states []addon.InstallState) []addOnStatus {
	report := make([]addOnStatus, 0, len(states))
	for _, s := range states {
		entry := addOnStatus{
			Name:      s.Name(),
			Available: s.Remote.Version,
			Change:    s.Change().String(),
			UpToDate:  s.IsUpdated(),
		}
		if s.IsInstalled() {
			entry.Installed = s.Local.Version
		}
		report = append(report, entry)
	}
	return report
}

func printStatusTable(states []addon.InstallState) {
	if len(states) == 0 {
		fmt.Println("The manifest lists no add-ons.")
		return
	}

	outdated := 0
	fmt.Printf("%-28s  %-12s  %-12s  %s\n", "ADD-ON", "INSTALLED", "AVAILABLE", "STATUS")
	for _, entry := range statusReport(states) {
		installed := entry.Installed
		if installed == "" {
			installed = "-"
		}
		if !entry.UpToDate {
			outdated++
		}
		fmt.Printf("%-28s  %-12s  %-12s  %s\n", entry.Name, installed, entry.Available, entry.Change)
	}

	if outdated == 0 {
		fmt.Println("\nAll add-ons are up to date.")
		return
	}
	fmt.Printf("\n%d add-on(s) need an update. Run 'coffeeupdate update' to install them.\n", outdated)
}
