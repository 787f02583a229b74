package protocol

import "github.com/lovenityjade/APTwitchBot/snapshot"

// SessionUpdate carries the session fields present in one server
// announcement. Nil fields were absent from the packet and leave the
// previous value alone.
type SessionUpdate struct {
	Seed             *string
	ServerVersion    *string
	GeneratorVersion *string
	HintPoints       *int
	HintCostPercent  *int
	HintCostPoints   *int
}

// ItemGrant is one granted item with its absolute position in the slot's
// item log.
type ItemGrant struct {
	Index    int
	Item     int64
	Location int64
	Player   int
	Flags    int
}

// Handlers is the subscription contract: one optional callback per event
// kind. Nil callbacks are skipped. Every callback runs on the goroutine
// that calls Poll, in arrival order; the client makes no duplicate or gap
// guarantees beyond what the server provides.
type Handlers struct {
	SessionEstablished func(update SessionUpdate)
	SlotEstablished    func(slot ConnectedPacket)
	SlotDisconnected   func()
	CatalogChanged     func(catalog snapshot.DataPackage)
	LocationsChecked   func(ids []int64)
	ItemsReceived      func(items []ItemGrant)
	Retrieved          func(values map[string]interface{})
	SocketConnected    func()
	SocketDisconnected func()
	SocketError        func(err error)
	Message            func(text string)
}
