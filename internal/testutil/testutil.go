package testutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/coffeeauras/coffeeupdate/internal/addon"
)

// ZipEntry is one archive member. Names use forward slashes; a name ending
// in "/" is written as a directory entry.
type ZipEntry struct {
	Name string
	Body string
}

// Zip builds an in-memory zip archive from entries, in order.
func Zip(t *testing.T, entries ...ZipEntry) []byte {
	t.Helper()
	data, err := BuildZip(entries...)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// BuildZip is Zip for callers without a *testing.T, such as godog steps.
func BuildZip(entries ...ZipEntry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to add zip entry %s: %w", e.Name, err)
		}
		if strings.HasSuffix(e.Name, "/") {
			continue
		}
		if _, err := w.Write([]byte(e.Body)); err != nil {
			return nil, fmt.Errorf("failed to write zip entry %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// AddOnEntries returns the members of a well-formed bundle rooted at root:
// a descriptor named after the add-on with the given version plus a Core.lua.
func AddOnEntries(root, name, version string) []ZipEntry {
	return []ZipEntry{
		{Name: root + "/"},
		{Name: root + "/" + name + ".toc", Body: "## Title: " + name + "\n## Version: " + version + "\n"},
		{Name: root + "/Core.lua", Body: "-- " + name + " " + version + "\n"},
	}
}

// AddOnZip builds a well-formed bundle for name containing a descriptor with
// the given version plus a Core.lua file.
func AddOnZip(t *testing.T, name, version string) []byte {
	t.Helper()
	return Zip(t, AddOnEntries(name, name, version)...)
}

// WriteAddOn creates {root}/{name}/{tocFile} with the given content and
// returns the add-on directory.
func WriteAddOn(t *testing.T, root, name, tocFile, content string) string {
	t.Helper()

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create add-on dir: %v", err)
	}
	if tocFile != "" {
		if err := os.WriteFile(filepath.Join(dir, tocFile), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", tocFile, err)
		}
	}
	return dir
}

// AddOnsRoot creates a temporary .../World of Warcraft/_retail_/Interface/AddOns
// directory and returns it.
func AddOnsRoot(t *testing.T) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "World of Warcraft", "_retail_", "Interface", "AddOns")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatalf("failed to create add-ons root: %v", err)
	}
	return root
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// Bundle wraps archive bytes as a downloaded bundle.
func Bundle(name, version string, data []byte) *addon.Bundle {
	return &addon.Bundle{
		Metadata: addon.Metadata{Name: name, Version: version},
		Data:     io.NopCloser(bytes.NewReader(data)),
		Size:     int64(len(data)),
	}
}
