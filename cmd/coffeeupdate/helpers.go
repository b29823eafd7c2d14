package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/coffeeauras/coffeeupdate/internal/config"
	"github.com/coffeeauras/coffeeupdate/internal/errmsg"
	"github.com/coffeeauras/coffeeupdate/internal/install"
	"github.com/coffeeauras/coffeeupdate/internal/log"
	"github.com/coffeeauras/coffeeupdate/internal/progress"
	"github.com/coffeeauras/coffeeupdate/internal/reconcile"
	"github.com/coffeeauras/coffeeupdate/internal/registry"
	"github.com/coffeeauras/coffeeupdate/internal/update"
	"github.com/coffeeauras/coffeeupdate/internal/userconfig"
)

// lockFileName is the update lock inside the coffeeupdate home directory.
const lockFileName = "update.lock"

// errCtx is filled in once the user config is loaded so errors can name the
// configured folder.
var errCtx errmsg.ErrorContext

// printInfo prints an informational message unless quiet mode is enabled
func printInfo(a ...interface{}) {
	if !quietFlag {
		fmt.Println(a...)
	}
}

// printInfof prints a formatted informational message unless quiet mode is enabled
func printInfof(format string, a ...interface{}) {
	if !quietFlag {
		fmt.Printf(format, a...)
	}
}

// printJSON marshals the given value to JSON and prints it to stdout
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		exitWithCode(ExitGeneral)
	}
}

// printError prints an error to stderr with suggestions if available.
func printError(err error) {
	errmsg.Fprint(os.Stderr, err, &errCtx)
}

// loadUserConfig loads config.toml and records the add-ons path for error
// messages.
func loadUserConfig() (*userconfig.Config, error) {
	cfg, err := userconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	errCtx.AddOnsPath = cfg.AddOnsPath
	return cfg, nil
}

// homeConfig resolves the coffeeupdate home and creates its directories.
func homeConfig() (*config.Config, error) {
	home, err := config.DefaultConfig()
	if err != nil {
		return nil, err
	}
	if err := home.EnsureDirectories(); err != nil {
		return nil, err
	}
	return home, nil
}

// newManifestCache returns the on-disk manifest cache in front of reg.
func newManifestCache(home *config.Config, reg registry.ManifestSource, logger log.Logger) *registry.ManifestCache {
	return registry.NewManifestCache(reg,
		registry.WithCacheLogger(logger),
		registry.WithCacheFile(home.ManifestCacheFile),
	)
}

// newUpdater wires the registry, manifest cache, reconciler and installer
// into an Updater.
func newUpdater(showProgress bool, opts ...update.Option) (*update.Updater, error) {
	home, err := homeConfig()
	if err != nil {
		return nil, err
	}

	logger := log.Default()
	reg := registry.New("", registry.WithLogger(logger))
	manifests := newManifestCache(home, reg, logger)

	installOpts := []install.Option{install.WithLogger(logger)}
	if showProgress && !quietFlag && progress.ShouldShowProgress() {
		installOpts = append(installOpts, install.WithProgress(os.Stderr))
	}

	opts = append([]update.Option{
		update.WithLogger(logger),
		update.WithLockFile(filepath.Join(home.HomeDir, lockFileName)),
	}, opts...)

	return update.New(
		manifests,
		reg,
		reconcile.New(reconcile.WithLogger(logger)),
		install.New(installOpts...),
		opts...,
	), nil
}
