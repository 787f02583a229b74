package config

import (
	"testing"

	"github.com/lovenityjade/APTwitchBot/errors"
	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	seven := 7
	return &Config{
		Archipelago: &ArchipelagoConfig{
			Host:          "localhost",
			Port:          38281,
			SlotName:      "Lovenity",
			Game:          "Ocarina of Time",
			ItemsHandling: &seven,
		},
		Fetcher: FetcherConfig{
			FlushInterval:  2,
			PollIntervalMs: 50,
		},
	}
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	// Missing archipelago section
	invalid := &Config{}
	err := invalid.Validate()
	assert.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))

	// Missing slot name
	invalid = validConfig()
	invalid.Archipelago.SlotName = ""
	err = invalid.Validate()
	assert.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigValidation, errors.GetCode(err))

	// Missing game
	invalid = validConfig()
	invalid.Archipelago.Game = ""
	assert.Error(t, invalid.Validate())

	// Port out of range
	invalid = validConfig()
	invalid.Archipelago.Port = 70000
	assert.Error(t, invalid.Validate())

	// Items handling out of range
	invalid = validConfig()
	bad := 9
	invalid.Archipelago.ItemsHandling = &bad
	assert.Error(t, invalid.Validate())

	// Negative flush interval
	invalid = validConfig()
	invalid.Fetcher.FlushInterval = -1
	assert.Error(t, invalid.Validate())
}

func TestValidatePath(t *testing.T) {
	testCases := []struct {
		name  string
		path  string
		valid bool
	}{
		{"empty path", "", true},
		{"unix path", "/var/lib/aptwitchbot/state.json", true},
		{"relative path", "state.json", true},
		{"windows path on unix", `/c\Users\state.json`, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePath("paths.state_file", tc.path)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestAddrValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "localhost:38281", cfg.Archipelago.Addr())
}

func TestFlushIntervalDuration(t *testing.T) {
	f := FetcherConfig{FlushInterval: 0.5, PollIntervalMs: 50}
	assert.Equal(t, "500ms", f.FlushIntervalDuration().String())
	assert.Equal(t, "50ms", f.PollInterval().String())
}
