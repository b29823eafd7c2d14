package install

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// replace swaps target for the extracted tree at source. The new tree is
// first moved (or, across filesystems, copied) to a hidden sibling of target
// so the final swap is a rename within the add-ons folder.
func (in *Installer) replace(source, target string) error {
	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("failed to create add-ons directory: %w", err)
	}

	pending := filepath.Join(parent, fmt.Sprintf(".%s-%s", filepath.Base(target), uuid.NewString()))
	if err := in.rename(source, pending); err != nil {
		if !isCrossDevice(err) {
			return fmt.Errorf("failed to move extracted files: %w", err)
		}
		in.logger.Debug("staging directory is on another filesystem, copying", "from", source, "to", pending)
		if err := copyDir(source, pending); err != nil {
			_ = os.RemoveAll(pending)
			return fmt.Errorf("failed to copy extracted files: %w", err)
		}
	}

	if err := os.RemoveAll(target); err != nil {
		_ = os.RemoveAll(pending)
		return fmt.Errorf("failed to remove existing %s: %w", target, err)
	}
	if err := os.Rename(pending, target); err != nil {
		_ = os.RemoveAll(pending)
		return fmt.Errorf("failed to move add-on into place: %w", err)
	}
	return nil
}

// copyDir recursively copies a directory. Symlinks are not expected in
// extracted bundles and are copied as the files they point to.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}

	return nil
}

// copyFile copies a single file
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
