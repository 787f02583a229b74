package config

// mergeConfigs merges override configuration into base
func mergeConfigs(base, override *Config) *Config {
	result := *base

	// Merge archipelago section
	if override.Archipelago != nil {
		if result.Archipelago == nil {
			arch := *override.Archipelago
			result.Archipelago = &arch
		} else {
			arch := *result.Archipelago
			if override.Archipelago.Host != "" {
				arch.Host = override.Archipelago.Host
			}
			if override.Archipelago.Port != 0 {
				arch.Port = override.Archipelago.Port
			}
			if override.Archipelago.SlotName != "" {
				arch.SlotName = override.Archipelago.SlotName
			}
			if override.Archipelago.Game != "" {
				arch.Game = override.Archipelago.Game
			}
			if override.Archipelago.Password != "" {
				arch.Password = override.Archipelago.Password
			}
			if override.Archipelago.ItemsHandling != nil {
				arch.ItemsHandling = override.Archipelago.ItemsHandling
			}
			if len(override.Archipelago.Tags) > 0 {
				arch.Tags = override.Archipelago.Tags
			}
			result.Archipelago = &arch
		}
	}

	// Merge paths section
	if override.Paths.StateFile != "" {
		result.Paths.StateFile = override.Paths.StateFile
	}
	if override.Paths.FetcherLog != "" {
		result.Paths.FetcherLog = override.Paths.FetcherLog
	}
	if override.Paths.UUIDFile != "" {
		result.Paths.UUIDFile = override.Paths.UUIDFile
	}
	if override.Paths.PidFile != "" {
		result.Paths.PidFile = override.Paths.PidFile
	}

	// Merge fetcher section
	if override.Fetcher.FlushInterval != 0 {
		result.Fetcher.FlushInterval = override.Fetcher.FlushInterval
	}
	if override.Fetcher.PollIntervalMs != 0 {
		result.Fetcher.PollIntervalMs = override.Fetcher.PollIntervalMs
	}

	// Merge extensions
	if override.Extensions != nil {
		if result.Extensions == nil {
			result.Extensions = make(map[string]interface{})
		}
		for key, value := range override.Extensions {
			// If both base and override have the same extension key, merge them
			if baseValue, exists := result.Extensions[key]; exists {
				if baseMap, baseOk := baseValue.(map[string]interface{}); baseOk {
					if overrideMap, overrideOk := value.(map[string]interface{}); overrideOk {
						// Merge the maps
						mergedMap := make(map[string]interface{})
						for k, v := range baseMap {
							mergedMap[k] = v
						}
						for k, v := range overrideMap {
							mergedMap[k] = v
						}
						result.Extensions[key] = mergedMap
						continue
					}
				}
			}
			// Otherwise just replace
			result.Extensions[key] = value
		}
	}

	return &result
}
