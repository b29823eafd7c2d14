// Package reconcile pairs the remote manifest with what is installed locally.
package reconcile

import (
	"github.com/coffeeauras/coffeeupdate/internal/addon"
	"github.com/coffeeauras/coffeeupdate/internal/local"
	"github.com/coffeeauras/coffeeupdate/internal/log"
)

// MetadataLoader reads installed metadata. *local.Loader implements it.
type MetadataLoader interface {
	Load(root, name string) (*addon.Metadata, local.Status)
}

// Reconciler computes install states. It performs no writes.
type Reconciler struct {
	loader MetadataLoader
	logger log.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLoader replaces the default on-disk loader.
func WithLoader(l MetadataLoader) Option {
	return func(r *Reconciler) {
		r.loader = l
	}
}

// WithLogger sets the reconciler logger.
func WithLogger(l log.Logger) Option {
	return func(r *Reconciler) {
		r.logger = l
	}
}

// New creates a Reconciler backed by a local.Loader unless WithLoader is given.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = log.OrDefault(r.logger)
	if r.loader == nil {
		r.loader = local.NewLoader(local.WithLogger(r.logger))
	}
	return r
}

// ComputeStates returns one InstallState per manifest entry, in manifest
// order. An add-on whose descriptor cannot be read counts as not installed,
// and so does an entry whose name is not a plain directory name.
func (r *Reconciler) ComputeStates(root string, m *addon.Manifest) []addon.InstallState {
	if m == nil {
		return nil
	}

	states := make([]addon.InstallState, 0, len(m.AddOns))
	for _, remote := range m.AddOns {
		if err := remote.Validate(); err != nil {
			r.logger.Warn("skipping local lookup for unusable manifest entry", "addon", remote.Name, "error", err)
			states = append(states, addon.NewInstallState(nil, remote))
			continue
		}

		meta, status := r.loader.Load(root, remote.Name)
		switch status {
		case local.StatusFound:
		case local.StatusError:
			r.logger.Warn("installed add-on has no readable version, treating as missing", "addon", remote.Name)
			meta = nil
		default:
			meta = nil
		}

		state := addon.NewInstallState(meta, remote)
		r.logger.Debug("reconciled add-on",
			"addon", remote.Name,
			"remote", remote.Version,
			"installed", state.IsInstalled(),
			"updated", state.IsUpdated())
		states = append(states, state)
	}
	return states
}
