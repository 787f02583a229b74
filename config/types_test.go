package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestArchipelagoDefaults(t *testing.T) {
	all := 7
	custom := 3

	tests := []struct {
		name     string
		config   Config
		expected ArchipelagoConfig
	}{
		{
			name: "connection defaults fill empty fields",
			config: Config{
				Archipelago: &ArchipelagoConfig{
					SlotName: "Lovenity",
					Game:     "Ocarina of Time",
				},
			},
			expected: ArchipelagoConfig{
				Host:          "localhost",
				Port:          38281,
				SlotName:      "Lovenity",
				Game:          "Ocarina of Time",
				ItemsHandling: &all,
			},
		},
		{
			name: "explicit values survive defaulting",
			config: Config{
				Archipelago: &ArchipelagoConfig{
					Host:          "archipelago.gg",
					Port:          55555,
					SlotName:      "Lovenity",
					Game:          "Ocarina of Time",
					ItemsHandling: &custom,
					Tags:          []string{"Tracker"},
				},
			},
			expected: ArchipelagoConfig{
				Host:          "archipelago.gg",
				Port:          55555,
				SlotName:      "Lovenity",
				Game:          "Ocarina of Time",
				ItemsHandling: &custom,
				Tags:          []string{"Tracker"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.SetDefaults()
			assert.Equal(t, tt.expected, *tt.config.Archipelago)
		})
	}
}

func TestFetcherTimingDefaults(t *testing.T) {
	cfg := Config{Archipelago: &ArchipelagoConfig{SlotName: "s", Game: "g"}}
	cfg.SetDefaults()

	assert.Equal(t, float64(2), cfg.Fetcher.FlushInterval)
	assert.Equal(t, 50, cfg.Fetcher.PollIntervalMs)
	assert.Equal(t, 2*time.Second, cfg.Fetcher.FlushIntervalDuration())
	assert.Equal(t, 50*time.Millisecond, cfg.Fetcher.PollInterval())
}

func TestFractionalFlushInterval(t *testing.T) {
	f := FetcherConfig{FlushInterval: 0.5}
	assert.Equal(t, 500*time.Millisecond, f.FlushIntervalDuration())
}

func TestPathDefaults(t *testing.T) {
	cfg := Config{Archipelago: &ArchipelagoConfig{SlotName: "s", Game: "g"}}
	cfg.SetDefaults()

	// The log path is left empty deliberately; the logging component
	// resolves its own fallback.
	assert.NotEmpty(t, cfg.Paths.StateFile)
	assert.NotEmpty(t, cfg.Paths.UUIDFile)
	assert.NotEmpty(t, cfg.Paths.PidFile)
	assert.Empty(t, cfg.Paths.FetcherLog)
}

func TestAddr(t *testing.T) {
	a := ArchipelagoConfig{Host: "archipelago.gg", Port: 38281}
	assert.Equal(t, "archipelago.gg:38281", a.Addr())
}

func TestUnmarshalExtension(t *testing.T) {
	cfg := Config{
		Extensions: map[string]interface{}{
			"twitch": map[string]interface{}{
				"channel":        "lovenityjade",
				"announce_items": true,
			},
		},
	}

	var twitch struct {
		Channel       string `yaml:"channel"`
		AnnounceItems bool   `yaml:"announce_items"`
	}
	err := cfg.UnmarshalExtension("twitch", &twitch)
	assert.NoError(t, err)
	assert.Equal(t, "lovenityjade", twitch.Channel)
	assert.True(t, twitch.AnnounceItems)

	// A missing key is not an error; the target stays zero-valued
	var missing struct {
		Level string `yaml:"level"`
	}
	err = cfg.UnmarshalExtension("logging", &missing)
	assert.NoError(t, err)
	assert.Empty(t, missing.Level)
}
