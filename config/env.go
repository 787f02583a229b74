package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/lovenityjade/APTwitchBot/errors"
)

// envOverrides holds raw env values layered over the file configuration.
// Pointer fields stay nil when the variable is unset, so only variables
// that are actually present override the file.
type envOverrides struct {
	Host          *string  `env:"APTB_HOST"`
	Port          *int     `env:"APTB_PORT"`
	SlotName      *string  `env:"APTB_SLOT_NAME"`
	Game          *string  `env:"APTB_GAME"`
	Password      *string  `env:"APTB_PASSWORD"`
	ItemsHandling *int     `env:"APTB_ITEMS_HANDLING"`
	StateFile     *string  `env:"APTB_STATE_FILE"`
	FlushInterval *float64 `env:"APTB_FLUSH_INTERVAL"`
}

// applyEnvOverrides layers APTB_* environment variables over the config.
func applyEnvOverrides(cfg *Config) error {
	var raw envOverrides
	if err := env.Parse(&raw); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse environment overrides")
	}

	archOverride := raw.Host != nil || raw.Port != nil || raw.SlotName != nil ||
		raw.Game != nil || raw.Password != nil || raw.ItemsHandling != nil
	if archOverride && cfg.Archipelago == nil {
		cfg.Archipelago = &ArchipelagoConfig{}
	}

	if raw.Host != nil {
		cfg.Archipelago.Host = *raw.Host
	}
	if raw.Port != nil {
		cfg.Archipelago.Port = *raw.Port
	}
	if raw.SlotName != nil {
		cfg.Archipelago.SlotName = *raw.SlotName
	}
	if raw.Game != nil {
		cfg.Archipelago.Game = *raw.Game
	}
	if raw.Password != nil {
		cfg.Archipelago.Password = *raw.Password
	}
	if raw.ItemsHandling != nil {
		cfg.Archipelago.ItemsHandling = raw.ItemsHandling
	}
	if raw.StateFile != nil {
		cfg.Paths.StateFile = *raw.StateFile
	}
	if raw.FlushInterval != nil {
		cfg.Fetcher.FlushInterval = *raw.FlushInterval
	}

	return nil
}
