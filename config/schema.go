package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for the fetcher configuration.
// It reflects the Config struct from types.go but excludes the 'Extensions'
// field, which holds free-form sections owned by other components.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Extension sections are validated by their owners, not here.
		AllowAdditionalProperties: true,
		// Expand struct references instead of using $ref for a cleaner schema.
		ExpandedStruct: true,
		// Use YAML field names for property names
		FieldNameTag: "yaml",
	}

	// Reflect a copy of Config without the Extensions field so unknown
	// top-level sections stay legal in user files.
	type BaseConfig struct {
		Archipelago *ArchipelagoConfig `yaml:"archipelago" jsonschema:"required,description=Connection settings for the Archipelago server"`
		Paths       PathsConfig        `yaml:"paths,omitempty" jsonschema:"description=File locations for state, logs, and runtime files"`
		Fetcher     FetcherConfig      `yaml:"fetcher,omitempty" jsonschema:"description=Fetch loop timing settings"`
	}

	schema := r.Reflect(&BaseConfig{})
	schema.Title = "APTwitchBot Fetcher Configuration"
	schema.Description = "Schema for aptwitchbot.yml properties."
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return json.MarshalIndent(schema, "", "  ")
}
