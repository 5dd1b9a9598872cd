package infra

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	AppName = "housing-go"

	// DefaultConfigPath is read when --config is not given, if it exists.
	DefaultConfigPath = "configs/config.yaml"

	localWorkspace = "_workspace"
	lockFile       = "instance.lock"
)

// ResolveWorkspace returns override when set, otherwise GetWorkspaceDir().
func ResolveWorkspace(override string) string {
	if override != "" {
		return override
	}
	return GetWorkspaceDir()
}

// GetWorkspaceDir returns the root for runs: ./_workspace when present,
// else $XDG_DATA_HOME/housing-go, else ~/.local/share/housing-go.
func GetWorkspaceDir() string {
	if _, err := os.Stat(localWorkspace); err == nil {
		return localWorkspace
	}
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return localWorkspace
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// EnsureDir creates path and its parents.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// CreateLockFile claims workDir for one writer. The returned func releases it.
func CreateLockFile(workDir string) (func(), error) {
	if err := EnsureDir(workDir); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	lockPath := filepath.Join(workDir, lockFile)

	// O_EXCL creation is the lock
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("workspace %s is in use (remove %s if no run is active)", workDir, lockPath)
		}
		return nil, fmt.Errorf("failed to lock workspace: %w", err)
	}
	fmt.Fprintf(f, "%d", os.Getpid())
	f.Close()

	return func() { os.Remove(lockPath) }, nil
}
