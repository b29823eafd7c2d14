package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/coffeeauras/coffeeupdate/internal/addon"
	"github.com/coffeeauras/coffeeupdate/internal/install"
	"github.com/coffeeauras/coffeeupdate/internal/registry"
	"github.com/coffeeauras/coffeeupdate/internal/update"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestExitCodeFor(t *testing.T) {
	bundleFailure := update.Failure{
		AddOn: addon.Metadata{Name: "Foo", Version: "1"},
		Verb:  "install",
		Err:   &registry.RegistryError{Type: registry.ErrTypeNotFound, AddOn: "Foo"},
	}
	rootFailure := update.Failure{
		AddOn: addon.Metadata{Name: "Bar", Version: "2"},
		Verb:  "update",
		Err:   &install.BundleRootError{AddOn: "Bar", Found: []string{"Baz"}},
	}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", errors.New("boom"), ExitGeneral},
		{"usage", &usageError{err: errors.New("accepts 1 arg(s)")}, ExitUsage},
		{"path not set", update.ErrAddOnsPathNotSet, ExitPathNotSet},
		{"update in progress", update.ErrUpdateInProgress, ExitUpdateInProgress},
		{"manifest not found", fmt.Errorf("failed to get add-on manifest: %w",
			&registry.RegistryError{Type: registry.ErrTypeNotFound}), ExitManifestUnavailable},
		{"manifest invalid", &registry.RegistryError{Type: registry.ErrTypeValidation}, ExitManifestUnavailable},
		{"manifest dns", &registry.RegistryError{Type: registry.ErrTypeDNS}, ExitNetwork},
		{"manifest timeout", &registry.RegistryError{Type: registry.ErrTypeTimeout}, ExitNetwork},
		{"raw net error", timeoutErr{}, ExitNetwork},
		{"bundle 404 is install failure", errors.Join(bundleFailure), ExitInstallFailed},
		{"partial pass", &updateFailedError{result: &update.Result{
			Failed: []update.Failure{bundleFailure, rootFailure},
		}}, ExitInstallFailed},
		{"canceled", context.Canceled, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestUpdateFailedError(t *testing.T) {
	err := &updateFailedError{result: &update.Result{
		Failed: []update.Failure{{
			AddOn: addon.Metadata{Name: "Bar", Version: "2"},
			Verb:  "update",
			Err:   &install.BundleRootError{AddOn: "Bar", Found: []string{"Baz"}},
		}},
	}}

	if got := err.Error(); got != "1 add-on(s) failed to update" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, install.ErrInvalidBundle) {
		t.Error("expected errors.Is to reach the install error")
	}
}
