package snapshot

import (
	"encoding/json"
)

// DataPackage is the name catalog the server publishes per game: the
// item/location name-to-id tables used to render human-readable names.
type DataPackage struct {
	Games map[string]GameData
	// Extra preserves top-level catalog fields this fetcher doesn't model.
	Extra map[string]interface{}
}

// GameData is the catalog entry for a single game.
type GameData struct {
	ItemNameToID     map[string]int64
	LocationNameToID map[string]int64
	Checksum         string
	// Extra preserves per-game catalog fields this fetcher doesn't model.
	Extra map[string]interface{}
}

// LocationCount returns the number of named locations the catalog holds for
// the given game, or 0 when the catalog, the game entry, or its location
// table is absent.
func (d *DataPackage) LocationCount(game string) int {
	if d == nil {
		return 0
	}
	g, ok := d.Games[game]
	if !ok {
		return 0
	}
	return len(g.LocationNameToID)
}

// MarshalJSON renders the catalog with its unknown fields merged back in.
func (d DataPackage) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 1+len(d.Extra))
	if d.Games != nil {
		out["games"] = d.Games
	}
	for k, v := range d.Extra {
		if k == "games" && d.Games != nil {
			continue
		}
		out[k] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the catalog, keeping unknown fields in Extra. A
// malformed games table is preserved there too instead of failing the whole
// catalog.
func (d *DataPackage) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = DataPackage{}
	for k, v := range raw {
		if k == "games" {
			var games map[string]GameData
			if err := json.Unmarshal(v, &games); err != nil {
				d.putExtra(k, rawValue(v))
				continue
			}
			d.Games = games
			continue
		}
		d.putExtra(k, rawValue(v))
	}
	return nil
}

func (d *DataPackage) putExtra(key string, value interface{}) {
	if d.Extra == nil {
		d.Extra = make(map[string]interface{})
	}
	d.Extra[key] = value
}

// MarshalJSON renders a game entry with its unknown fields merged back in.
func (g GameData) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 3+len(g.Extra))
	if g.ItemNameToID != nil {
		out["item_name_to_id"] = g.ItemNameToID
	}
	if g.LocationNameToID != nil {
		out["location_name_to_id"] = g.LocationNameToID
	}
	if g.Checksum != "" {
		out["checksum"] = g.Checksum
	}
	for k, v := range g.Extra {
		switch {
		case k == "item_name_to_id" && g.ItemNameToID != nil:
			continue
		case k == "location_name_to_id" && g.LocationNameToID != nil:
			continue
		case k == "checksum" && g.Checksum != "":
			continue
		}
		out[k] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a game entry, keeping unknown fields in Extra and
// tolerating malformed name tables by preserving them there.
func (g *GameData) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*g = GameData{}
	for k, v := range raw {
		switch k {
		case "item_name_to_id":
			var m map[string]int64
			if err := json.Unmarshal(v, &m); err != nil {
				g.putExtra(k, rawValue(v))
				continue
			}
			g.ItemNameToID = m
		case "location_name_to_id":
			var m map[string]int64
			if err := json.Unmarshal(v, &m); err != nil {
				g.putExtra(k, rawValue(v))
				continue
			}
			g.LocationNameToID = m
		case "checksum":
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				g.putExtra(k, rawValue(v))
				continue
			}
			g.Checksum = s
		default:
			g.putExtra(k, rawValue(v))
		}
	}
	return nil
}

func (g *GameData) putExtra(key string, value interface{}) {
	if g.Extra == nil {
		g.Extra = make(map[string]interface{})
	}
	g.Extra[key] = value
}
