// Package addon defines the add-on data model shared by the registry,
// reconciler, installer and updater.
package addon

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Metadata identifies one published or installed add-on. Name is the
// identity; it is also the add-on's directory name under the AddOns folder.
type Metadata struct {
	Name    string `json:"Name"`
	Version string `json:"Version"`
}

func (m Metadata) String() string {
	return fmt.Sprintf("%s-%s", m.Name, m.Version)
}

// Validate reports whether m names something the installer can act on: both
// fields set and Name usable as a single directory name.
func (m Metadata) Validate() error {
	switch {
	case m.Name == "":
		return errors.New("add-on has no name")
	case m.Version == "":
		return fmt.Errorf("add-on %s has no version", m.Name)
	case strings.ContainsAny(m.Name, `/\`) || m.Name == "." || m.Name == "..":
		return fmt.Errorf("add-on name %q is not a plain directory name", m.Name)
	}
	return nil
}

// Manifest is the remote-published list of add-ons. A manifest is a snapshot:
// callers replace it wholesale and never modify it in place.
type Manifest struct {
	AddOns []Metadata `json:"AddOns"`
}

// Bundle is a downloaded add-on archive. Data is consumed exactly once by the
// installer, which is also responsible for closing it.
type Bundle struct {
	Metadata Metadata
	Data     io.ReadCloser

	// Size is the advertised archive length in bytes, or -1 when unknown.
	Size int64
}
