// Package instance locates the on-disk state of a named daemon instance.
package instance

import (
	"os"
	"path/filepath"
)

// HomeEnv overrides the base directory, mainly for tests and containers.
const HomeEnv = "JOBBOARD_HOME"

// BaseDir returns $JOBBOARD_HOME, or ~/.jobboard.
func BaseDir() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".jobboard")
}

// Dir returns the instance-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "instances", name)
}

// SocketPath returns the UDS socket path for an instance.
func SocketPath(name string) string {
	return filepath.Join(Dir(name), "daemon.sock")
}

// LockPath returns the lock file path for an instance.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// DBPath returns the document store path.
func DBPath(name string) string {
	return filepath.Join(Dir(name), "jobboard.db")
}

// BlobDir returns the root of the local object store.
func BlobDir(name string) string {
	return filepath.Join(Dir(name), "blobs")
}

// LogDir returns the log directory for an instance.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the daemon log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "jobboardd.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnvPath returns the optional dotenv file read before environment overrides.
func EnvPath() string {
	return filepath.Join(BaseDir(), ".env")
}

// EnsureDir creates the instance directory tree with owner-only permissions.
func EnsureDir(name string) error {
	for _, d := range []string{Dir(name), LogDir(name), BlobDir(name)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
