package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/lovenityjade/APTwitchBot/pkg/paths"
)

//go:generate sh -c "cd .. && go run ./tools/config-schema-generator/"

// ArchipelagoConfig holds the connection settings for the upstream server.
type ArchipelagoConfig struct {
	Host          string   `yaml:"host,omitempty" toml:"host,omitempty" json:"host,omitempty" jsonschema:"description=Archipelago server hostname (default: localhost)" jsonschema_extras:"x-priority=1,x-important=true"`
	Port          int      `yaml:"port,omitempty" toml:"port,omitempty" json:"port,omitempty" jsonschema:"description=Archipelago server port (default: 38281)" jsonschema_extras:"x-priority=2,x-important=true"`
	SlotName      string   `yaml:"slot_name" toml:"slot_name" json:"slot_name" jsonschema:"required,description=Slot name to authenticate as" jsonschema_extras:"x-priority=3,x-important=true"`
	Game          string   `yaml:"game" toml:"game" json:"game" jsonschema:"required,description=Game of the slot being tracked" jsonschema_extras:"x-priority=4,x-important=true"`
	Password      string   `yaml:"password,omitempty" toml:"password,omitempty" json:"password,omitempty" jsonschema:"description=Room password, if the room requires one"`
	ItemsHandling *int     `yaml:"items_handling,omitempty" toml:"items_handling,omitempty" json:"items_handling,omitempty" jsonschema:"description=Items handling flags sent on connect (default: 7)"`
	Tags          []string `yaml:"tags,omitempty" toml:"tags,omitempty" json:"tags,omitempty" jsonschema:"description=Client tags sent on connect"`
}

// Addr returns the host:port address of the server.
func (a *ArchipelagoConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// PathsConfig holds the file locations the fetcher reads and writes.
type PathsConfig struct {
	StateFile  string `yaml:"state_file,omitempty" toml:"state_file,omitempty" json:"state_file,omitempty" jsonschema:"description=Path of the published state document (default: XDG state dir)"`
	FetcherLog string `yaml:"fetcher_log,omitempty" toml:"fetcher_log,omitempty" json:"fetcher_log,omitempty" jsonschema:"description=Path of the fetcher log file"`
	UUIDFile   string `yaml:"uuid_file,omitempty" toml:"uuid_file,omitempty" json:"uuid_file,omitempty" jsonschema:"description=Path of the per-host client UUID cache"`
	PidFile    string `yaml:"pid_file,omitempty" toml:"pid_file,omitempty" json:"pid_file,omitempty" jsonschema:"description=Path of the fetcher PID file"`
}

// FetcherConfig holds the timing knobs of the fetch loop.
type FetcherConfig struct {
	FlushInterval  float64 `yaml:"flush_interval,omitempty" toml:"flush_interval,omitempty" json:"flush_interval,omitempty" jsonschema:"description=Seconds between periodic state flushes (default: 2)"`
	PollIntervalMs int     `yaml:"poll_interval_ms,omitempty" toml:"poll_interval_ms,omitempty" json:"poll_interval_ms,omitempty" jsonschema:"description=Milliseconds to sleep between poll iterations (default: 50)"`
}

// FlushIntervalDuration returns the flush interval as a time.Duration.
func (f *FetcherConfig) FlushIntervalDuration() time.Duration {
	return time.Duration(f.FlushInterval * float64(time.Second))
}

// PollInterval returns the poll sleep as a time.Duration.
func (f *FetcherConfig) PollInterval() time.Duration {
	return time.Duration(f.PollIntervalMs) * time.Millisecond
}

// Config represents the aptwitchbot.yml configuration
type Config struct {
	Archipelago *ArchipelagoConfig `yaml:"archipelago" toml:"archipelago" json:"archipelago" jsonschema:"required,description=Connection settings for the Archipelago server"`
	Paths       PathsConfig        `yaml:"paths,omitempty" toml:"paths,omitempty" json:"paths,omitempty" jsonschema:"description=File locations for state, logs, and runtime files"`
	Fetcher     FetcherConfig      `yaml:"fetcher,omitempty" toml:"fetcher,omitempty" json:"fetcher,omitempty" jsonschema:"description=Fetch loop timing settings"`

	// Extensions captures all other top-level keys for extensibility.
	// The logging section lives here.
	Extensions map[string]interface{} `yaml:",inline" toml:"-" json:"-" jsonschema:"-"`
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.Archipelago != nil {
		if c.Archipelago.Host == "" {
			c.Archipelago.Host = "localhost"
		}
		if c.Archipelago.Port == 0 {
			c.Archipelago.Port = 38281
		}
		if c.Archipelago.ItemsHandling == nil {
			all := 7
			c.Archipelago.ItemsHandling = &all
		}
	}

	if c.Paths.StateFile == "" {
		c.Paths.StateFile = paths.StateFilePath()
	}
	if c.Paths.UUIDFile == "" {
		c.Paths.UUIDFile = paths.UUIDFilePath()
	}
	if c.Paths.PidFile == "" {
		c.Paths.PidFile = paths.PidFilePath()
	}

	if c.Fetcher.FlushInterval == 0 {
		c.Fetcher.FlushInterval = 2
	}
	if c.Fetcher.PollIntervalMs == 0 {
		c.Fetcher.PollIntervalMs = 50
	}
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded aptwitchbot.yml into the provided target struct. The target must be
// a pointer. This provides a type-safe way for extensions to access their
// custom configuration sections.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		// The target struct will simply remain zero-valued.
		return nil
	}

	// Use mapstructure to decode the generic map[string]interface{}
	// into the strongly-typed target struct. We configure it to use
	// `yaml` tags for consistency.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
