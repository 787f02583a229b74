package state

import "time"

// SessionInfo holds the room-scoped fields of the active session. The server
// announces them once per connection and may re-announce them on updates or
// reconnects; between events they are stable.
type SessionInfo struct {
	RoomName         string
	Seed             string
	ServerVersion    string
	GeneratorVersion string
	HintPoints       int
	HintCostPercent  int
	HintCostPoints   int
}

// SlotInfo identifies the connected slot. Numeric identifiers are -1 until
// the slot handshake completes.
type SlotInfo struct {
	SlotName     string
	Game         string
	SlotID       int
	TeamID       int
	PlayerNumber int
	TeamNumber   int
}

// ItemEvent is one entry of the received-item log. ReceivedAt is stamped by
// the store when the batch is appended, not by the caller.
type ItemEvent struct {
	Index      int
	Item       int64
	Location   int64
	Player     int
	Flags      int
	ReceivedAt time.Time
}

// SessionUpdate carries a partial session merge. Nil fields keep the
// previous value.
type SessionUpdate struct {
	RoomName         *string
	Seed             *string
	ServerVersion    *string
	GeneratorVersion *string
	HintPoints       *int
	HintCostPercent  *int
	HintCostPoints   *int
}

// SlotUpdate carries a partial slot merge. Nil fields keep the previous
// value.
type SlotUpdate struct {
	SlotName     *string
	Game         *string
	SlotID       *int
	TeamID       *int
	PlayerNumber *int
	TeamNumber   *int
}
