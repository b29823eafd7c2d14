// Package install unpacks downloaded add-on bundles into the AddOns folder.
package install

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"

	"github.com/coffeeauras/coffeeupdate/internal/addon"
	"github.com/coffeeauras/coffeeupdate/internal/log"
	"github.com/coffeeauras/coffeeupdate/internal/progress"
)

const (
	// archiveFile is the spooled download inside the staging directory.
	archiveFile = "bundle.zip"

	// extractDir receives the archive contents inside the staging directory.
	extractDir = "extract"
)

// ErrInvalidBundle is matched by every error caused by the archive contents
// rather than by the local filesystem.
var ErrInvalidBundle = errors.New("invalid add-on bundle")

// BundleRootError reports an archive whose top level is not exactly one
// folder named after the add-on.
type BundleRootError struct {
	AddOn string
	Found []string // distinct top-level names, in archive order
}

func (e *BundleRootError) Error() string {
	return fmt.Sprintf("bundle for %s must contain a single root folder named %s, found: %s",
		e.AddOn, e.AddOn, strings.Join(e.Found, ", "))
}

// Is makes errors.Is(err, ErrInvalidBundle) true.
func (e *BundleRootError) Is(target error) bool {
	return target == ErrInvalidBundle
}

// Installer replaces add-on folders with the contents of downloaded bundles.
type Installer struct {
	tempDir     string
	progressOut io.Writer
	logger      log.Logger

	rename func(oldpath, newpath string) error
}

// Option configures an Installer.
type Option func(*Installer)

// WithTempDir sets where staging directories are created. The default is
// os.TempDir().
func WithTempDir(dir string) Option {
	return func(in *Installer) {
		in.tempDir = dir
	}
}

// WithProgress draws a download progress bar on w while spooling bundles.
func WithProgress(w io.Writer) Option {
	return func(in *Installer) {
		in.progressOut = w
	}
}

// WithLogger sets the installer logger.
func WithLogger(l log.Logger) Option {
	return func(in *Installer) {
		in.logger = l
	}
}

// New creates an Installer.
func New(opts ...Option) *Installer {
	in := &Installer{rename: os.Rename}
	for _, opt := range opts {
		opt(in)
	}
	in.logger = log.OrDefault(in.logger)
	return in
}

// Install writes bundle b to root/{name}, replacing any existing folder.
// It consumes and closes b.Data. The staging directory is always removed,
// and root is left untouched when the archive is rejected.
func (in *Installer) Install(root string, b *addon.Bundle) error {
	if b == nil || b.Data == nil {
		return errors.New("no bundle data to install")
	}
	defer b.Data.Close()

	if err := b.Metadata.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}

	name := b.Metadata.Name
	if root == "" {
		return fmt.Errorf("cannot install %s: add-ons path not set", name)
	}

	tempDir := in.tempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	staging := filepath.Join(tempDir, fmt.Sprintf("%s-install-%s", name, uuid.NewString()))
	if err := os.MkdirAll(staging, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			in.logger.Warn("failed to remove staging directory", "path", staging, "error", err)
		}
	}()
	in.logger.Info("staging add-on bundle", "addon", name, "version", b.Metadata.Version, "path", staging)

	archivePath := filepath.Join(staging, archiveFile)
	if err := in.spool(b, archivePath); err != nil {
		return err
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: cannot read archive for %s: %v", ErrInvalidBundle, name, err)
	}
	defer zr.Close()

	archiveRoot, err := bundleRoot(name, zr.File)
	if err != nil {
		return err
	}

	dest := filepath.Join(staging, extractDir)
	if err := in.extract(zr.File, dest); err != nil {
		return fmt.Errorf("failed to extract %s: %w", name, err)
	}

	source := filepath.Join(dest, archiveRoot)
	if info, err := os.Stat(source); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s root %q is not a folder", ErrInvalidBundle, name, archiveRoot)
	}

	target := filepath.Join(root, name)
	if err := in.replace(source, target); err != nil {
		return fmt.Errorf("failed to install %s: %w", name, err)
	}

	in.logger.Info("installed add-on", "addon", name, "version", b.Metadata.Version, "path", target)
	return nil
}

// spool copies the bundle stream to path.
func (in *Installer) spool(b *addon.Bundle, path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}

	var w io.Writer = f
	var pw *progress.Writer
	if in.progressOut != nil {
		pw = progress.NewWriter(f, b.Size, in.progressOut, b.Metadata.String())
		w = pw
	}

	n, err := io.Copy(w, b.Data)
	if pw != nil {
		pw.Finish()
	}
	closeErr := f.Close()

	if err != nil {
		return fmt.Errorf("failed to download bundle for %s: %w", b.Metadata.Name, err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to write archive file: %w", closeErr)
	}
	if b.Size > 0 && n != b.Size {
		return fmt.Errorf("bundle for %s truncated: got %d of %d bytes", b.Metadata.Name, n, b.Size)
	}

	in.logger.Debug("spooled bundle", "addon", b.Metadata.Name, "bytes", n)
	return nil
}

// bundleRoot returns the archive's single top-level name. Entry names are
// split on both separators since archives built on Windows may use '\'.
func bundleRoot(name string, files []*zip.File) (string, error) {
	var roots []string
	seen := make(map[string]bool)
	for _, f := range files {
		root := f.Name
		if i := strings.IndexAny(root, `/\`); i >= 0 {
			root = root[:i]
		}
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}

	if len(roots) != 1 || !strings.EqualFold(roots[0], name) {
		return "", &BundleRootError{AddOn: name, Found: roots}
	}
	return roots[0], nil
}

// extract writes every archive entry below dest.
func (in *Installer) extract(files []*zip.File, dest string) error {
	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("failed to create extraction directory: %w", err)
	}

	for _, f := range files {
		entry := strings.ReplaceAll(f.Name, `\`, "/")
		target := filepath.Join(dest, filepath.FromSlash(entry))

		if !isPathWithinDirectory(target, dest) {
			return fmt.Errorf("%w: entry escapes destination directory: %s", ErrInvalidBundle, f.Name)
		}

		if strings.HasSuffix(entry, "/") || f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create parent directory: %w", err)
		}
		if err := writeEntry(f, target); err != nil {
			return err
		}
		in.logger.Debug("extracted entry", "entry", f.Name, "path", target)
	}
	return nil
}

func writeEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %v", ErrInvalidBundle, f.Name, err)
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", f.Name, err)
	}
	return out.Close()
}

// isPathWithinDirectory checks if targetPath is safely contained within basePath
func isPathWithinDirectory(targetPath, basePath string) bool {
	absTarget, err := filepath.Abs(targetPath)
	if err != nil {
		return false
	}
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return false
	}

	// The separator keeps /tmp/foo from matching /tmp/foobar.
	return absTarget == absBase || strings.HasPrefix(absTarget, absBase+string(os.PathSeparator))
}
