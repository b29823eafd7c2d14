package addon

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// InstallState pairs the manifest entry for an add-on with whatever is
// installed locally under the same name.
type InstallState struct {
	Local  *Metadata
	Remote Metadata
}

// NewInstallState builds an InstallState. It panics when local is present but
// names a different add-on than remote.
func NewInstallState(local *Metadata, remote Metadata) InstallState {
	if local != nil && local.Name != remote.Name {
		panic(fmt.Sprintf("addon: local add-on %q does not match remote add-on %q", local.Name, remote.Name))
	}
	if local != nil {
		copied := *local
		local = &copied
	}
	return InstallState{Local: local, Remote: remote}
}

// Name returns the add-on name.
func (s InstallState) Name() string {
	return s.Remote.Name
}

// IsInstalled reports whether a local copy was found.
func (s InstallState) IsInstalled() bool {
	return s.Local != nil
}

// IsUpdated reports whether the local version string equals the remote one.
// Versions are compared as opaque strings: "v1.0" and "1.0" differ.
func (s InstallState) IsUpdated() bool {
	return s.Local != nil && s.Local.Version == s.Remote.Version
}

// Change describes what an update pass will do to an add-on. It is only a
// label for display; IsUpdated alone decides whether anything is installed.
type Change int

const (
	// ChangeNone means the local version matches the manifest.
	ChangeNone Change = iota
	// ChangeInstall means the add-on is not installed locally.
	ChangeInstall
	// ChangeUpgrade means both versions are semantic and remote is newer.
	ChangeUpgrade
	// ChangeDowngrade means both versions are semantic and remote is older.
	ChangeDowngrade
	// ChangeReplace means the versions differ but cannot be ordered.
	ChangeReplace
)

var changeNames = map[Change]string{
	ChangeNone:      "up to date",
	ChangeInstall:   "install",
	ChangeUpgrade:   "upgrade",
	ChangeDowngrade: "downgrade",
	ChangeReplace:   "replace",
}

func (c Change) String() string {
	if s, ok := changeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Change(%d)", int(c))
}

// Change classifies the pending action for this add-on.
func (s InstallState) Change() Change {
	switch {
	case !s.IsInstalled():
		return ChangeInstall
	case s.IsUpdated():
		return ChangeNone
	}

	local, err := semver.NewVersion(s.Local.Version)
	if err != nil {
		return ChangeReplace
	}
	remote, err := semver.NewVersion(s.Remote.Version)
	if err != nil {
		return ChangeReplace
	}

	switch local.Compare(remote) {
	case -1:
		return ChangeUpgrade
	case 1:
		return ChangeDowngrade
	default:
		// Textually different but semantically equal ("v1.0" vs "1.0").
		return ChangeReplace
	}
}

// Verb returns "update" for an installed add-on and "install" otherwise.
func (s InstallState) Verb() string {
	if s.IsInstalled() {
		return "update"
	}
	return "install"
}
