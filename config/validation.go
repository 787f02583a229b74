package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lovenityjade/APTwitchBot/errors"
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Archipelago == nil {
		return errors.ConfigInvalid("missing 'archipelago' section")
	}

	if c.Archipelago.SlotName == "" {
		return errors.ConfigValidation("archipelago.slot_name", "cannot be empty")
	}
	if c.Archipelago.Game == "" {
		return errors.ConfigValidation("archipelago.game", "cannot be empty")
	}
	if c.Archipelago.Port < 1 || c.Archipelago.Port > 65535 {
		return errors.ConfigValidation("archipelago.port",
			fmt.Sprintf("must be between 1 and 65535, got %d", c.Archipelago.Port)).
			WithDetail("port", c.Archipelago.Port)
	}
	if c.Archipelago.ItemsHandling != nil {
		if ih := *c.Archipelago.ItemsHandling; ih < 0 || ih > 7 {
			return errors.ConfigValidation("archipelago.items_handling",
				fmt.Sprintf("must be between 0 and 7, got %d", ih)).
				WithDetail("items_handling", ih)
		}
	}

	if c.Fetcher.FlushInterval < 0 {
		return errors.ConfigValidation("fetcher.flush_interval", "cannot be negative")
	}
	if c.Fetcher.PollIntervalMs < 0 {
		return errors.ConfigValidation("fetcher.poll_interval_ms", "cannot be negative")
	}

	pathFields := map[string]string{
		"paths.state_file":  c.Paths.StateFile,
		"paths.fetcher_log": c.Paths.FetcherLog,
		"paths.uuid_file":   c.Paths.UUIDFile,
		"paths.pid_file":    c.Paths.PidFile,
	}
	for field, path := range pathFields {
		if err := validatePath(field, path); err != nil {
			return err
		}
	}

	return nil
}

// validatePath validates that a path is appropriate for the current OS
func validatePath(fieldName, path string) error {
	if path == "" {
		return nil
	}

	// Check for Windows absolute paths on Unix systems
	if runtime.GOOS != "windows" && filepath.IsAbs(path) && strings.Contains(path, "\\") {
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("%s contains Windows-style path on Unix system", fieldName)).
			WithDetail("path", path)
	}

	// Check for Unix absolute paths on Windows systems
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//") {
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("%s contains Unix-style path on Windows system", fieldName)).
			WithDetail("path", path)
	}

	return nil
}
