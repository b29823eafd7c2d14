package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coffeeauras/coffeeupdate/internal/buildinfo"
	"github.com/coffeeauras/coffeeupdate/internal/log"
)

// Global output flags
var (
	quietFlag   bool
	verboseFlag bool
	debugFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "coffeeupdate",
	Short: "Keep Coffee Auras add-ons up to date",
	Long: `coffeeupdate keeps the Coffee Auras World of Warcraft add-ons in sync with
the published manifest.

It compares the version in each installed add-on's .toc file with the
manifest and replaces every add-on whose version differs.`,
	Version:       buildinfo.Version(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetDefault(log.NewText(os.Stderr, determineLogLevel()))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Only print errors")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Print informational log messages")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Print debug log messages")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
}

// determineLogLevel picks the log level from flags, then COFFEE_* env vars.
// Debug wins over verbose, and verbose over quiet. The default is WARN.
func determineLogLevel() slog.Level {
	switch {
	case debugFlag:
		return slog.LevelDebug
	case verboseFlag:
		return slog.LevelInfo
	case quietFlag:
		return slog.LevelError
	case isTruthy(os.Getenv("COFFEE_DEBUG")):
		return slog.LevelDebug
	case isTruthy(os.Getenv("COFFEE_VERBOSE")):
		return slog.LevelInfo
	case isTruthy(os.Getenv("COFFEE_QUIET")):
		return slog.LevelError
	}
	return slog.LevelWarn
}

func isTruthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		exitWithCode(exitCodeFor(err))
	}
}
