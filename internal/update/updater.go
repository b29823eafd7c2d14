// Package update runs update passes: fetch the manifest, compare it with the
// installed add-ons and install whatever differs.
package update

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coffeeauras/coffeeupdate/internal/addon"
	"github.com/coffeeauras/coffeeupdate/internal/install"
	"github.com/coffeeauras/coffeeupdate/internal/log"
	"github.com/coffeeauras/coffeeupdate/internal/registry"
)

var (
	// ErrAddOnsPathNotSet is returned by UpdateAll when no add-ons root is configured.
	ErrAddOnsPathNotSet = errors.New("add-ons path is not set")

	// ErrUpdateInProgress is returned when another process holds the update lock.
	ErrUpdateInProgress = errors.New("another update is already running")
)

// ManifestProvider returns the current manifest. *registry.ManifestCache
// implements it.
type ManifestProvider interface {
	Get(ctx context.Context, force bool) (*addon.Manifest, error)
}

// StateComputer pairs manifest entries with installed add-ons.
// *reconcile.Reconciler implements it.
type StateComputer interface {
	ComputeStates(root string, m *addon.Manifest) []addon.InstallState
}

// BundleInstaller installs a downloaded bundle. *install.Installer implements it.
type BundleInstaller interface {
	Install(root string, b *addon.Bundle) error
}

// Failure records one add-on that could not be installed.
type Failure struct {
	AddOn addon.Metadata
	Verb  string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", f.Verb, f.AddOn, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result summarizes an update pass.
type Result struct {
	Installed []addon.Metadata
	UpToDate  []addon.Metadata
	Failed    []Failure
}

// Success reports whether every out-of-date add-on was installed.
func (r *Result) Success() bool {
	return len(r.Failed) == 0
}

// Err joins every failure, or returns nil on success.
func (r *Result) Err() error {
	if r.Success() {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Updater coordinates the manifest cache, reconciler, bundle source and
// installer. One pass runs at a time; callers must not run UpdateAll
// concurrently on the same Updater.
type Updater struct {
	manifests ManifestProvider
	bundles   registry.BundleSource
	states    StateComputer
	installer BundleInstaller

	logger   log.Logger
	sink     func(Event)
	events   *EventLog
	lockPath string
	now      func() time.Time
}

// Option configures an Updater.
type Option func(*Updater)

// WithLogger sets the updater logger.
func WithLogger(l log.Logger) Option {
	return func(u *Updater) {
		u.logger = l
	}
}

// WithEventSink calls fn synchronously for every event.
func WithEventSink(fn func(Event)) Option {
	return func(u *Updater) {
		u.sink = fn
	}
}

// WithEventLog records events in l instead of a private log.
func WithEventLog(l *EventLog) Option {
	return func(u *Updater) {
		u.events = l
	}
}

// WithLockFile makes UpdateAll hold an exclusive lock on path for the whole
// pass, failing with ErrUpdateInProgress when another process has it.
func WithLockFile(path string) Option {
	return func(u *Updater) {
		u.lockPath = path
	}
}

// New creates an Updater.
func New(manifests ManifestProvider, bundles registry.BundleSource, states StateComputer, installer BundleInstaller, opts ...Option) *Updater {
	u := &Updater{
		manifests: manifests,
		bundles:   bundles,
		states:    states,
		installer: installer,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = log.OrDefault(u.logger)
	if u.events == nil {
		u.events = NewEventLog()
	}
	return u
}

// Events returns the updater's event log.
func (u *Updater) Events() *EventLog {
	return u.events
}

// PreviewStates fetches the manifest (through the cache) and returns the
// install state of every add-on without changing anything on disk. An empty
// root reports every add-on as not installed.
func (u *Updater) PreviewStates(ctx context.Context, root string, force bool) ([]addon.InstallState, error) {
	manifest, err := u.manifests.Get(ctx, force)
	if err != nil {
		u.logger.Error("failed to get add-on manifest while computing install states", "error", err)
		return nil, fmt.Errorf("failed to get add-on manifest: %w", err)
	}
	return u.states.ComputeStates(root, manifest), nil
}

// UpdateAll installs every add-on whose local version differs from the
// manifest. A failed download or install, or a manifest entry that cannot be
// installed, is recorded on the Result and the pass moves on. The returned error is non-nil only when the pass could not
// run at all: no root, lock held, manifest unavailable, or ctx canceled.
func (u *Updater) UpdateAll(ctx context.Context, root string, force bool) (*Result, error) {
	if root == "" {
		return nil, ErrAddOnsPathNotSet
	}

	if u.lockPath != "" {
		lock := install.NewFileLock(u.lockPath)
		if err := lock.TryLock(); err != nil {
			if errors.Is(err, install.ErrLockBusy) {
				return nil, ErrUpdateInProgress
			}
			return nil, err
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				u.logger.Warn("failed to release update lock", "path", u.lockPath, "error", err)
			}
		}()
	}

	u.emit(Event{Kind: EventPassStarted})

	manifest, err := u.manifests.Get(ctx, force)
	if err != nil {
		u.logger.Error("failed to get add-on manifest while attempting to update add-ons", "error", err)
		u.emit(Event{Kind: EventManifestFailed, Err: err})
		return nil, fmt.Errorf("failed to get add-on manifest: %w", err)
	}

	result := &Result{}
	seen := make(map[string]bool)
	for _, state := range u.states.ComputeStates(root, manifest) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		remote := state.Remote
		if seen[remote.Name] {
			u.logger.Warn("add-on is listed more than once in the manifest", "addon", remote.Name, "version", remote.Version)
		}
		seen[remote.Name] = true

		if err := remote.Validate(); err != nil {
			verb := state.Verb()
			u.logger.Error("skipping unusable manifest entry", "addon", remote.Name, "version", remote.Version, "error", err)
			result.Failed = append(result.Failed, Failure{AddOn: remote, Verb: verb, Err: err})
			u.emit(Event{Kind: EventAddOnFailed, AddOn: remote.Name, Version: remote.Version, Verb: verb, Err: err})
			continue
		}

		if state.IsUpdated() {
			result.UpToDate = append(result.UpToDate, remote)
			u.emit(Event{Kind: EventUpToDate, AddOn: remote.Name, Version: remote.Version})
			continue
		}

		verb := state.Verb()
		u.logger.Info("starting add-on "+verb, "addon", remote.Name, "version", remote.Version)
		u.emit(Event{Kind: EventAddOnStarted, AddOn: remote.Name, Version: remote.Version, Verb: verb})

		if err := u.installOne(ctx, root, remote); err != nil {
			u.logger.Error("add-on "+verb+" failed", "addon", remote.Name, "version", remote.Version, "error", err)
			result.Failed = append(result.Failed, Failure{AddOn: remote, Verb: verb, Err: err})
			u.emit(Event{Kind: EventAddOnFailed, AddOn: remote.Name, Version: remote.Version, Verb: verb, Err: err})
			continue
		}

		u.logger.Info("add-on "+verb+" successful", "addon", remote.Name, "version", remote.Version)
		result.Installed = append(result.Installed, remote)
		u.emit(Event{Kind: EventAddOnInstalled, AddOn: remote.Name, Version: remote.Version, Verb: verb})
	}

	u.emit(Event{Kind: EventPassFinished, Failed: len(result.Failed)})
	return result, nil
}

func (u *Updater) installOne(ctx context.Context, root string, meta addon.Metadata) error {
	bundle, err := u.bundles.FetchBundle(ctx, meta)
	if err != nil {
		return fmt.Errorf("failed to fetch bundle: %w", err)
	}
	return u.installer.Install(root, bundle)
}

func (u *Updater) emit(e Event) {
	e.Time = u.now()
	u.events.Append(e)
	if u.sink != nil {
		u.sink(e)
	}
}
