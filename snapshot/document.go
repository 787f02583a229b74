// Package snapshot defines the published state document and the machinery
// that writes, reads, and watches it. The document is the only contract
// between the fetcher and downstream consumers: a single JSON file,
// overwritten wholesale on every flush, that readers re-load at will.
package snapshot

import (
	"encoding/json"
)

// Document is a point-in-time projection of the fetcher's canonical state,
// laid out exactly as downstream readers expect to find it on disk.
type Document struct {
	Room             RoomSection      `json:"room"`
	Me               MeSection        `json:"me"`
	CheckedLocations []int64          `json:"checked_locations"`
	Items            []ItemRecord     `json:"items"`
	DataStorage      DataStorage      `json:"data_storage"`
	Archipelago      *ArchipelagoEcho `json:"archipelago,omitempty"`
}

// RoomSection carries the session-level fields of the document, plus the
// derived location count for the active game.
type RoomSection struct {
	RoomName         string `json:"room_name"`
	Seed             string `json:"seed"`
	ServerVersion    string `json:"server_version"`
	GeneratorVersion string `json:"generator_version"`
	HintPoints       int    `json:"hint_points"`
	HintCostPercent  int    `json:"hint_cost_percent"`
	HintCostPoints   int    `json:"hint_cost_points"`
	LocationCount    int    `json:"location_count"`
}

// MeSection identifies the slot this fetcher is tracking.
type MeSection struct {
	SlotName     string `json:"slot_name"`
	Game         string `json:"game"`
	SlotID       int    `json:"slot_id"`
	TeamID       int    `json:"team_id"`
	PlayerNumber int    `json:"player_number"`
	TeamNumber   int    `json:"team_number"`
}

// ItemRecord is one entry of the received-item log. Time is the local unix
// timestamp stamped when the item was merged into the state, not a protocol
// timestamp.
type ItemRecord struct {
	Index    int   `json:"index"`
	Item     int64 `json:"item"`
	Location int64 `json:"location"`
	Player   int   `json:"player"`
	Flags    int   `json:"flags"`
	Time     int64 `json:"time"`
}

// ArchipelagoEcho is the static configuration subsection copied into every
// document so readers don't need a second configuration source. The room
// password is deliberately never echoed.
type ArchipelagoEcho struct {
	Host          string   `json:"host"`
	Port          int      `json:"port"`
	SlotName      string   `json:"slot_name"`
	Game          string   `json:"game"`
	ItemsHandling int      `json:"items_handling"`
	Tags          []string `json:"tags,omitempty"`
}

// Known data_storage namespace keys.
const (
	keyDataPackage = "data_package"
	keySlotData    = "slot_data"
	keyRetrieved   = "retrieved"
)

// DataStorage is the namespaced blob of the document. The three namespaces
// the fetcher maintains are typed; everything else lands in Extra so unknown
// namespaces survive a round trip unchanged.
type DataStorage struct {
	DataPackage *DataPackage
	SlotData    map[string]interface{}
	Retrieved   map[string]interface{}
	Extra       map[string]interface{}
}

// MarshalJSON renders the storage as a single flat object. An empty storage
// marshals as {} rather than null.
func (ds DataStorage) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 3+len(ds.Extra))
	if ds.DataPackage != nil {
		out[keyDataPackage] = ds.DataPackage
	}
	if ds.SlotData != nil {
		out[keySlotData] = ds.SlotData
	}
	if ds.Retrieved != nil {
		out[keyRetrieved] = ds.Retrieved
	}
	for k, v := range ds.Extra {
		// A populated typed namespace wins over a stray extra of the same
		// name; an unset one lets the preserved raw value through.
		switch {
		case k == keyDataPackage && ds.DataPackage != nil:
			continue
		case k == keySlotData && ds.SlotData != nil:
			continue
		case k == keyRetrieved && ds.Retrieved != nil:
			continue
		}
		out[k] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits a flat object back into the typed namespaces and the
// extension bucket.
func (ds *DataStorage) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*ds = DataStorage{}
	for k, v := range raw {
		switch k {
		case keyDataPackage:
			var dp DataPackage
			if err := json.Unmarshal(v, &dp); err != nil {
				return err
			}
			ds.DataPackage = &dp
		case keySlotData:
			// A non-object slot_data is kept in Extra rather than dropped.
			var m map[string]interface{}
			if err := json.Unmarshal(v, &m); err != nil {
				ds.putExtra(k, rawValue(v))
				continue
			}
			ds.SlotData = m
		case keyRetrieved:
			var m map[string]interface{}
			if err := json.Unmarshal(v, &m); err != nil {
				ds.putExtra(k, rawValue(v))
				continue
			}
			ds.Retrieved = m
		default:
			ds.putExtra(k, rawValue(v))
		}
	}
	return nil
}

func (ds *DataStorage) putExtra(key string, value interface{}) {
	if ds.Extra == nil {
		ds.Extra = make(map[string]interface{})
	}
	ds.Extra[key] = value
}

// rawValue decodes a raw message into a generic value, falling back to the
// raw text when it is not valid JSON on its own.
func rawValue(raw json.RawMessage) interface{} {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}
