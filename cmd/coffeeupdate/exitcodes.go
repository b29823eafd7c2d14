package main

import (
	"errors"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/coffeeauras/coffeeupdate/internal/registry"
	"github.com/coffeeauras/coffeeupdate/internal/update"
)

// Exit codes for different error types.
// These enable scripts to distinguish between failure modes.
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0

	// ExitGeneral indicates a general error
	ExitGeneral = 1

	// ExitUsage indicates invalid arguments or usage error
	ExitUsage = 2

	// ExitPathNotSet indicates no add-ons folder is configured
	ExitPathNotSet = 3

	// ExitManifestUnavailable indicates the manifest was missing or unusable
	ExitManifestUnavailable = 4

	// ExitNetwork indicates a network error
	ExitNetwork = 5

	// ExitInstallFailed indicates at least one add-on failed to install
	ExitInstallFailed = 6

	// ExitUpdateInProgress indicates another process holds the update lock
	ExitUpdateInProgress = 7
)

// usageError marks bad flags or arguments.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// usageArgs wraps a cobra argument validator so its errors map to ExitUsage.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// exitCodeFor maps an error returned by a command to an exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *usageError
	if errors.As(err, &usageErr) {
		return ExitUsage
	}

	switch {
	case errors.Is(err, update.ErrAddOnsPathNotSet):
		return ExitPathNotSet
	case errors.Is(err, update.ErrUpdateInProgress):
		return ExitUpdateInProgress
	}

	// Checked before registry errors: a bundle download failure is an
	// install failure of that add-on, not a failed pass.
	var failure update.Failure
	if errors.As(err, &failure) {
		return ExitInstallFailed
	}

	var regErr *registry.RegistryError
	if errors.As(err, &regErr) {
		switch regErr.Type {
		case registry.ErrTypeNetwork, registry.ErrTypeTimeout, registry.ErrTypeDNS,
			registry.ErrTypeConnection, registry.ErrTypeTLS:
			return ExitNetwork
		default:
			return ExitManifestUnavailable
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ExitNetwork
	}

	return ExitGeneral
}

// exitWithCode exits with the specified exit code
func exitWithCode(code int) {
	os.Exit(code)
}
