package protocol

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lovenityjade/APTwitchBot/errors"
	"github.com/lovenityjade/APTwitchBot/snapshot"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// recorder collects handler invocations. Handlers run on the Poll
// goroutine, which is the test goroutine here, so no locking is needed.
type recorder struct {
	sessions    []SessionUpdate
	slots       []ConnectedPacket
	catalogs    []snapshot.DataPackage
	checked     [][]int64
	items       [][]ItemGrant
	retrieved   []map[string]interface{}
	messages    []string
	connects    int
	disconnects int
	errs        []error
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		SessionEstablished: func(u SessionUpdate) { r.sessions = append(r.sessions, u) },
		SlotEstablished:    func(p ConnectedPacket) { r.slots = append(r.slots, p) },
		CatalogChanged:     func(dp snapshot.DataPackage) { r.catalogs = append(r.catalogs, dp) },
		LocationsChecked:   func(ids []int64) { r.checked = append(r.checked, ids) },
		ItemsReceived:      func(items []ItemGrant) { r.items = append(r.items, items) },
		Retrieved:          func(v map[string]interface{}) { r.retrieved = append(r.retrieved, v) },
		SocketConnected:    func() { r.connects++ },
		SocketDisconnected: func() { r.disconnects++ },
		SocketError:        func(err error) { r.errs = append(r.errs, err) },
		Message:            func(text string) { r.messages = append(r.messages, text) },
	}
}

func scriptedServer(script func(conn *websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		script(conn)
	}))
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

// holdOpen keeps the server side alive until the peer goes away.
func holdOpen(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func pollUntil(t *testing.T, c *Client, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		c.Poll()
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestClientSessionFlow(t *testing.T) {
	clientFrames := make(chan []byte, 4)

	ts := scriptedServer(func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`[{"cmd":"RoomInfo",
			"version":{"class":"Version","major":0,"minor":5,"build":1},
			"generator_version":{"class":"Version","major":0,"minor":5,"build":1},
			"seed_name":"abc123","hint_cost":50,"games":["Ocarina of Time"]}]`))

		// The passive handshake is exactly two frames.
		for i := 0; i < 2; i++ {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			clientFrames <- data
		}

		conn.WriteMessage(websocket.TextMessage, []byte(`[{"cmd":"DataPackage","data":{"games":{
			"Ocarina of Time":{"checksum":"cafe",
				"item_name_to_id":{"Kokiri Sword":66},
				"location_name_to_id":{"Deku Tree GS":100,"Mido Chest":101}}}}}]`))
		conn.WriteMessage(websocket.TextMessage, []byte(`[{"cmd":"Connected","team":0,"slot":1,
			"missing_locations":[100,101,102],"checked_locations":[1,2],
			"slot_data":{"world":"open"},"hint_points":5}]`))
		conn.WriteMessage(websocket.TextMessage, []byte(`[{"cmd":"ReceivedItems","index":4,"items":[
			{"item":10,"location":5,"player":1,"flags":1},
			{"item":11,"location":6,"player":2,"flags":0}]}]`))
		conn.WriteMessage(websocket.TextMessage, []byte(`[{"cmd":"RoomUpdate","hint_points":7,"checked_locations":[3]}]`))
		conn.WriteMessage(websocket.TextMessage, []byte(`[{"cmd":"Retrieved","keys":{"note":"hi"}}]`))
		conn.WriteMessage(websocket.TextMessage, []byte(`[{"cmd":"PrintJSON","data":[{"text":"hello "},{"text":"world"}]}]`))

		holdOpen(conn)
	})
	defer ts.Close()

	rec := &recorder{}
	c := New(Options{
		Server:        wsURL(ts),
		Game:          "Ocarina of Time",
		SlotName:      "Lovenity",
		UUID:          "test-uuid",
		ItemsHandling: 7,
	}, testLogger())
	defer c.Close()
	c.SetHandlers(rec.handlers())

	pollUntil(t, c, "full session flow", func() bool {
		return len(rec.messages) >= 1
	})

	assert.Equal(t, 1, rec.connects)
	assert.True(t, c.Connected())

	// RoomInfo announcement.
	require.GreaterOrEqual(t, len(rec.sessions), 3)
	first := rec.sessions[0]
	require.NotNil(t, first.Seed)
	assert.Equal(t, "abc123", *first.Seed)
	require.NotNil(t, first.ServerVersion)
	assert.Equal(t, "0.5.1", *first.ServerVersion)
	require.NotNil(t, first.HintCostPercent)
	assert.Equal(t, 50, *first.HintCostPercent)
	assert.Nil(t, first.HintPoints)

	// Handshake frames the client sent.
	var getData []map[string]interface{}
	require.NoError(t, json.Unmarshal(<-clientFrames, &getData))
	require.Len(t, getData, 1)
	assert.Equal(t, "GetDataPackage", getData[0]["cmd"])
	assert.Equal(t, []interface{}{"Ocarina of Time"}, getData[0]["games"])

	var connect []map[string]interface{}
	require.NoError(t, json.Unmarshal(<-clientFrames, &connect))
	require.Len(t, connect, 1)
	assert.Equal(t, "Connect", connect[0]["cmd"])
	assert.Equal(t, "Lovenity", connect[0]["name"])
	assert.Equal(t, "test-uuid", connect[0]["uuid"])
	assert.Equal(t, float64(7), connect[0]["items_handling"])
	assert.Equal(t, true, connect[0]["slot_data"])
	assert.Equal(t, []interface{}{}, connect[0]["tags"], "tags must be a list even when empty")

	// Catalog.
	require.Len(t, rec.catalogs, 1)
	assert.Equal(t, 2, rec.catalogs[0].LocationCount("Ocarina of Time"))

	// Slot handshake: slot fields, then the now-computable hint economy,
	// then the initial checked set.
	require.Len(t, rec.slots, 1)
	assert.Equal(t, 1, rec.slots[0].Slot)
	assert.Equal(t, 0, rec.slots[0].Team)

	second := rec.sessions[1]
	require.NotNil(t, second.HintPoints)
	assert.Equal(t, 5, *second.HintPoints)
	require.NotNil(t, second.HintCostPoints)
	assert.Equal(t, 2, *second.HintCostPoints, "half of 5 total locations floors to 2")
	assert.Nil(t, second.Seed)

	require.GreaterOrEqual(t, len(rec.checked), 2)
	assert.Equal(t, []int64{1, 2}, rec.checked[0])

	// Item batch indices run from the packet's base index.
	require.Len(t, rec.items, 1)
	require.Len(t, rec.items[0], 2)
	assert.Equal(t, 4, rec.items[0][0].Index)
	assert.Equal(t, 5, rec.items[0][1].Index)
	assert.Equal(t, int64(10), rec.items[0][0].Item)

	// RoomUpdate: partial session plus newly checked.
	third := rec.sessions[2]
	require.NotNil(t, third.HintPoints)
	assert.Equal(t, 7, *third.HintPoints)
	assert.Nil(t, third.Seed)
	assert.Nil(t, third.HintCostPercent)
	assert.Equal(t, []int64{3}, rec.checked[1])

	require.Len(t, rec.retrieved, 1)
	assert.Equal(t, "hi", rec.retrieved[0]["note"])

	assert.Equal(t, []string{"hello world"}, rec.messages)
	assert.Empty(t, rec.errs)
}

func TestClientConnectionRefused(t *testing.T) {
	ts := scriptedServer(func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`[{"cmd":"RoomInfo",
			"version":{"class":"Version","major":0,"minor":5,"build":1},
			"generator_version":{"class":"Version","major":0,"minor":5,"build":1},
			"seed_name":"abc123","hint_cost":0}]`))
		for i := 0; i < 2; i++ {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`[{"cmd":"ConnectionRefused","errors":["InvalidSlot"]}]`))
		holdOpen(conn)
	})
	defer ts.Close()

	rec := &recorder{}
	c := New(Options{Server: wsURL(ts), Game: "G", SlotName: "S"}, testLogger())
	defer c.Close()
	c.SetHandlers(rec.handlers())

	pollUntil(t, c, "refusal", func() bool {
		return len(rec.errs) >= 1 && rec.disconnects >= 1
	})

	assert.Equal(t, errors.ErrCodeConnectionRefused, errors.GetCode(rec.errs[0]))
	assert.Contains(t, rec.errs[0].Error(), "InvalidSlot")
	assert.False(t, c.Connected())
	assert.Empty(t, rec.slots, "a refused connect never establishes a slot")
}

func TestClientSurvivesGarbageAndUnknownCommands(t *testing.T) {
	ts := scriptedServer(func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`this is not json`))
		// One frame may carry several commands; unknown ones are skipped.
		conn.WriteMessage(websocket.TextMessage, []byte(`[{"cmd":"Bounced","data":{}},{"cmd":"Retrieved","keys":{"k":1}}]`))
		holdOpen(conn)
	})
	defer ts.Close()

	rec := &recorder{}
	c := New(Options{Server: wsURL(ts), Game: "G", SlotName: "S"}, testLogger())
	defer c.Close()
	c.SetHandlers(rec.handlers())

	pollUntil(t, c, "retrieved after garbage", func() bool {
		return len(rec.retrieved) >= 1
	})

	assert.Equal(t, float64(1), rec.retrieved[0]["k"])
	assert.Empty(t, rec.errs)
}

func TestClientReportsDisconnect(t *testing.T) {
	ts := scriptedServer(func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`[{"cmd":"Retrieved","keys":{"k":1}}]`))
		// Server drops the connection right after.
	})
	defer ts.Close()

	rec := &recorder{}
	c := New(Options{Server: wsURL(ts), Game: "G", SlotName: "S"}, testLogger())
	defer c.Close()
	c.SetHandlers(rec.handlers())

	pollUntil(t, c, "disconnect", func() bool {
		return rec.disconnects >= 1
	})

	assert.GreaterOrEqual(t, rec.connects, 1)
	assert.False(t, c.Connected())
}

func TestDialCandidates(t *testing.T) {
	tests := []struct {
		name   string
		server string
		want   []string
	}{
		{"bare address tries secure first", "play.example.org:38281",
			[]string{"wss://play.example.org:38281", "ws://play.example.org:38281"}},
		{"explicit ws kept as-is", "ws://localhost:38281",
			[]string{"ws://localhost:38281"}},
		{"explicit wss kept as-is", "wss://play.example.org",
			[]string{"wss://play.example.org"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dialCandidates(tt.server))
		})
	}
}
