// Package local reads the metadata of add-ons installed on disk.
package local

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/coffeeauras/coffeeupdate/internal/addon"
	"github.com/coffeeauras/coffeeupdate/internal/log"
	"github.com/coffeeauras/coffeeupdate/internal/toc"
)

// Status is the outcome of a Load call.
type Status int

const (
	// StatusFound means a descriptor with a version was read.
	StatusFound Status = iota
	// StatusNotFound means the add-ons root is unset or the add-on directory is absent.
	StatusNotFound
	// StatusError means the add-on directory exists but no descriptor yields a version.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not found"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// descriptorSuffixes lists descriptor filename suffixes in probe order.
var descriptorSuffixes = []string{".toc", "_Mainline.toc", "_Standard.toc"}

// DescriptorNames returns the descriptor filenames probed for name, in order.
func DescriptorNames(name string) []string {
	names := make([]string, len(descriptorSuffixes))
	for i, suffix := range descriptorSuffixes {
		names[i] = name + suffix
	}
	return names
}

// Loader locates and parses installed add-on descriptors.
type Loader struct {
	logger log.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for probe diagnostics.
func WithLogger(l log.Logger) Option {
	return func(ld *Loader) {
		ld.logger = l
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	ld := &Loader{}
	for _, opt := range opts {
		opt(ld)
	}
	ld.logger = log.OrDefault(ld.logger)
	return ld
}

// Load reads the installed metadata for name under root.
func (ld *Loader) Load(root, name string) (*addon.Metadata, Status) {
	if root == "" {
		ld.logger.Debug("add-ons path not set", "addon", name)
		return nil, StatusNotFound
	}

	dir := filepath.Join(root, name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		ld.logger.Debug("add-on directory not found", "addon", name, "path", dir)
		return nil, StatusNotFound
	}

	for _, file := range DescriptorNames(name) {
		path := filepath.Join(dir, file)
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				ld.logger.Warn("failed to read descriptor", "addon", name, "path", path, "error", err)
			}
			continue
		}

		text := string(data)
		version := toc.ExtractVersion(text)
		if version == "" {
			ld.logger.Warn("descriptor has no version", "addon", name, "path", path)
			continue
		}

		fields := toc.Fields(text)
		ld.logger.Debug("loaded add-on metadata",
			"addon", name,
			"version", version,
			"title", fields["Title"],
			"interface", fields["Interface"],
			"path", path)
		return &addon.Metadata{Name: name, Version: version}, StatusFound
	}

	ld.logger.Warn("no usable descriptor for installed add-on", "addon", name, "path", dir)
	return nil, StatusError
}
