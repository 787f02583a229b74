// Package paths provides XDG-compliant path resolution for the fetcher.
//
// Resolution order:
// 1. APTB_HOME (portable root) → $APTB_HOME/{config,data,state}
// 2. XDG env vars → $XDG_*_HOME/aptwitchbot
// 3. Platform defaults → ~/.config/aptwitchbot, ~/.local/share/aptwitchbot, etc.
package paths

import (
	"os"
	"path/filepath"
)

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if aptbHome := os.Getenv("APTB_HOME"); aptbHome != "" {
		return filepath.Join(aptbHome, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

// getDataHome returns the base data home directory.
func getDataHome() string {
	if aptbHome := os.Getenv("APTB_HOME"); aptbHome != "" {
		return filepath.Join(aptbHome, "data")
	}
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return xdgDataHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "share")
	}
	return ""
}

// getStateHome returns the base state home directory.
func getStateHome() string {
	if aptbHome := os.Getenv("APTB_HOME"); aptbHome != "" {
		return filepath.Join(aptbHome, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

// ConfigDir returns the fetcher configuration directory.
// Used for config files like aptwitchbot.yml.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "aptwitchbot")
}

// DataDir returns the fetcher data directory.
// Used for durable per-host data such as the client UUID cache.
func DataDir() string {
	base := getDataHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "aptwitchbot")
}

// StateDir returns the fetcher state directory.
// Used for the state document, logs, and the PID file.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "aptwitchbot")
}

// StateFilePath returns the default path of the published state document.
func StateFilePath() string {
	return filepath.Join(StateDir(), "state.json")
}

// LogFilePath returns the default path of the fetcher log.
func LogFilePath() string {
	return filepath.Join(StateDir(), "fetcher.log")
}

// UUIDFilePath returns the default path of the per-host client UUID cache.
func UUIDFilePath() string {
	return filepath.Join(DataDir(), "uuid.json")
}

// PidFilePath returns the default path of the fetcher PID file.
func PidFilePath() string {
	return filepath.Join(StateDir(), "apfetcher.pid")
}

// EnsureDirs creates all fetcher directories if they don't exist.
func EnsureDirs() error {
	dirs := []string{
		ConfigDir(),
		DataDir(),
		StateDir(),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
