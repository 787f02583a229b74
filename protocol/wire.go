package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/lovenityjade/APTwitchBot/snapshot"
)

// NetworkVersion is the version tuple used by the Archipelago protocol.
// The Class field must be "Version" for the server to accept it.
type NetworkVersion struct {
	Class string `json:"class"`
	Major int    `json:"major"`
	Minor int    `json:"minor"`
	Build int    `json:"build"`
}

// String renders the tuple as major.minor.build.
func (v NetworkVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
}

// protocolVersion is the Archipelago network protocol version this client speaks.
var protocolVersion = NetworkVersion{Class: "Version", Major: 0, Minor: 5, Build: 1}

// NetworkItem is a single item grant as it appears on the wire.
type NetworkItem struct {
	Item     int64 `json:"item"`
	Location int64 `json:"location"`
	Player   int   `json:"player"`
	Flags    int   `json:"flags"`
}

// NetworkPlayer identifies a player in the room.
type NetworkPlayer struct {
	Team  int    `json:"team"`
	Slot  int    `json:"slot"`
	Alias string `json:"alias"`
	Name  string `json:"name"`
}

// RoomInfoPacket is the server's greeting after the socket opens.
type RoomInfoPacket struct {
	Version              NetworkVersion    `json:"version"`
	GeneratorVersion     NetworkVersion    `json:"generator_version"`
	Tags                 []string          `json:"tags"`
	Password             bool              `json:"password"`
	HintCost             int               `json:"hint_cost"`
	LocationCheckPoints  int               `json:"location_check_points"`
	Games                []string          `json:"games"`
	DataPackageChecksums map[string]string `json:"datapackage_checksums"`
	SeedName             string            `json:"seed_name"`
	Time                 float64           `json:"time"`
}

// ConnectedPacket is the server's reply to a successful Connect.
type ConnectedPacket struct {
	Team             int             `json:"team"`
	Slot             int             `json:"slot"`
	Players          []NetworkPlayer `json:"players"`
	MissingLocations []int64         `json:"missing_locations"`
	CheckedLocations []int64         `json:"checked_locations"`
	SlotData         interface{}     `json:"slot_data"`
	HintPoints       int             `json:"hint_points"`
}

// connectionRefusedPacket is the server's reply to a rejected Connect.
type connectionRefusedPacket struct {
	Errors []string `json:"errors"`
}

// receivedItemsPacket carries item grants for this slot.
type receivedItemsPacket struct {
	Index int           `json:"index"`
	Items []NetworkItem `json:"items"`
}

// RoomUpdatePacket carries partial room state changes. Every field is
// optional; absent fields leave the previous value in place.
type RoomUpdatePacket struct {
	HintPoints       *int            `json:"hint_points"`
	HintCost         *int            `json:"hint_cost"`
	CheckedLocations []int64         `json:"checked_locations"`
	Players          []NetworkPlayer `json:"players"`
	Tags             []string        `json:"tags"`
	Password         *bool           `json:"password"`
}

// dataPackagePacket carries the item/location name catalog.
type dataPackagePacket struct {
	Data snapshot.DataPackage `json:"data"`
}

// retrievedPacket is the server's reply to a data storage Get.
type retrievedPacket struct {
	Keys map[string]interface{} `json:"keys"`
}

// printJSONPacket carries a rendered server message. Only the text parts
// matter to this client; structured parts render empty.
type printJSONPacket struct {
	Data []printJSONPart `json:"data"`
}

type printJSONPart struct {
	Text string `json:"text"`
}

// connectPacket is the passive-subscription handshake this client sends.
type connectPacket struct {
	Cmd           string         `json:"cmd"`
	Password      string         `json:"password"`
	Game          string         `json:"game"`
	Name          string         `json:"name"`
	UUID          string         `json:"uuid"`
	Version       NetworkVersion `json:"version"`
	ItemsHandling int            `json:"items_handling"`
	Tags          []string       `json:"tags"`
	SlotData      bool           `json:"slot_data"`
}

// getDataPackagePacket requests the catalog for specific games.
type getDataPackagePacket struct {
	Cmd   string   `json:"cmd"`
	Games []string `json:"games"`
}

// envelope probes an incoming command before the full decode.
type envelope struct {
	Cmd string `json:"cmd"`
}

// decodeFrame splits a websocket text frame into its command envelopes.
// Every Archipelago frame is a JSON array of command objects.
func decodeFrame(data []byte) ([]json.RawMessage, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
