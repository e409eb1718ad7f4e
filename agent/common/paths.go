package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrNoInstallFolder = errors.New("can't find a suitable install destination")

// HostPaths are the well-known locations the installer reads and writes
type HostPaths struct {
	WindowsDir string // %SystemRoot%
	AppData    string // roaming app data of the invoking user
	WorkDir    string // directory searched for local installer packages
	TempDir    string
}

func DetectHostPaths() (HostPaths, error) {
	winDir := os.Getenv("SystemRoot")
	if winDir == "" {
		winDir = os.Getenv("WINDIR")
	}
	if winDir == "" {
		winDir = `C:\Windows`
	}

	appData, err := os.UserConfigDir()
	if err != nil {
		return HostPaths{}, fmt.Errorf("failed to resolve app data folder: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return HostPaths{}, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	return HostPaths{
		WindowsDir: winDir,
		AppData:    appData,
		WorkDir:    wd,
		TempDir:    os.TempDir(),
	}, nil
}

// InstallParents lists candidate parent folders for application installs, most preferred first
func (p HostPaths) InstallParents() []string {
	workDrive := driveRoot(p.WorkDir)
	winDrive := driveRoot(p.WindowsDir)
	return []string{
		filepath.Join(workDrive, "Programs"),
		filepath.Join(winDrive, "Programs"),
		filepath.Join(winDrive, "Program Files"),
	}
}

func driveRoot(path string) string {
	return filepath.VolumeName(path) + string(filepath.Separator)
}

// FolderResolver picks an install folder per application and remembers it for the run
type FolderResolver struct {
	parents  []string
	resolved map[string]string
}

func NewFolderResolver(parents []string) *FolderResolver {
	return &FolderResolver{parents: parents, resolved: make(map[string]string)}
}

// Resolve prefers an existing <parent>\<app> folder; otherwise it creates the
// app folder under the first parent that exists.
func (f *FolderResolver) Resolve(app string) (string, error) {
	if dir, ok := f.resolved[app]; ok {
		return dir, nil
	}

	for _, parent := range f.parents {
		dir := filepath.Join(parent, app)
		if DirExists(dir) {
			f.resolved[app] = dir
			return dir, nil
		}
	}

	for _, parent := range f.parents {
		if !DirExists(parent) {
			continue
		}
		dir := filepath.Join(parent, app)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", dir, err)
		}
		f.resolved[app] = dir
		return dir, nil
	}

	return "", fmt.Errorf("%w for %s", ErrNoInstallFolder, app)
}
