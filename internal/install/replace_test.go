package install

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coffeeauras/coffeeupdate/internal/testutil"
)

func TestReplace_RenameFailureLeavesTarget(t *testing.T) {
	root := testutil.AddOnsRoot(t)
	testutil.WriteAddOn(t, root, "Foo", "Foo.toc", "## Version: 1\n")

	in := New(WithTempDir(t.TempDir()))
	in.rename = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: errors.New("permission denied")}
	}

	err := in.Install(root, testutil.Bundle("Foo", "2", testutil.AddOnZip(t, "Foo", "2")))
	require.Error(t, err)
	require.Equal(t, "## Version: 1\n", testutil.ReadFile(t, filepath.Join(root, "Foo", "Foo.toc")))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "a", "b"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "top.txt"), []byte("top"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a", "b", "deep.txt"), []byte("deep"), 0600))

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, copyDir(src, dst))

	require.Equal(t, "top", testutil.ReadFile(t, filepath.Join(dst, "top.txt")))
	require.Equal(t, "deep", testutil.ReadFile(t, filepath.Join(dst, "a", "b", "deep.txt")))
}

func TestReplace_CreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Interface", "AddOns")
	in := New(WithTempDir(t.TempDir()))

	require.NoError(t, in.Install(root, testutil.Bundle("Foo", "1", testutil.AddOnZip(t, "Foo", "1"))))
	require.FileExists(t, filepath.Join(root, "Foo", "Foo.toc"))
}
