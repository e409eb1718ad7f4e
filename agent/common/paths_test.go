package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates(t *testing.T) (string, []string) {
	root := t.TempDir()
	return root, []string{
		filepath.Join(root, "a", "Programs"),
		filepath.Join(root, "b", "Programs"),
		filepath.Join(root, "b", "Program Files"),
	}
}

func TestResolveOnlySecondCandidateExists(t *testing.T) {
	_, parents := candidates(t)
	require.NoError(t, os.MkdirAll(parents[1], 0o755))

	dir, err := NewFolderResolver(parents).Resolve("Netbird")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(parents[1], "Netbird"), dir)
	assert.DirExists(t, dir)
	assert.NoDirExists(t, parents[0])
	assert.NoDirExists(t, parents[2])
}

func TestResolvePrefersExistingAppFolder(t *testing.T) {
	_, parents := candidates(t)
	require.NoError(t, os.MkdirAll(parents[0], 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(parents[2], "RustDesk"), 0o755))

	dir, err := NewFolderResolver(parents).Resolve("RustDesk")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parents[2], "RustDesk"), dir)
	assert.NoDirExists(t, filepath.Join(parents[0], "RustDesk"))
}

func TestResolveIsStableForTheRun(t *testing.T) {
	_, parents := candidates(t)
	require.NoError(t, os.MkdirAll(parents[1], 0o755))

	r := NewFolderResolver(parents)
	first, err := r.Resolve("Netbird")
	require.NoError(t, err)

	// a better candidate showing up later does not move the folder
	require.NoError(t, os.MkdirAll(filepath.Join(parents[0], "Netbird"), 0o755))
	second, err := r.Resolve("Netbird")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveNoCandidate(t *testing.T) {
	_, parents := candidates(t)

	_, err := NewFolderResolver(parents).Resolve("Netbird")
	require.ErrorIs(t, err, ErrNoInstallFolder)
}

func TestInstallParents(t *testing.T) {
	p := HostPaths{WorkDir: filepath.Join(string(filepath.Separator), "work"), WindowsDir: filepath.Join(string(filepath.Separator), "Windows")}
	root := driveRoot(p.WorkDir)

	assert.Equal(t, []string{
		filepath.Join(root, "Programs"),
		filepath.Join(root, "Programs"),
		filepath.Join(root, "Program Files"),
	}, p.InstallParents())
}
