package protocol

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/lovenityjade/APTwitchBot/errors"
)

// Reconnect pacing. The delay doubles after every failed dial cycle and
// resets once a connection is established.
const (
	reconnectInitialDelay = 1500 * time.Millisecond
	reconnectMaxDelay     = 15 * time.Second
	handshakeTimeout      = 10 * time.Second
	eventBuffer           = 256
)

// Options configures a Client.
type Options struct {
	// Server is the multiworld server address, either host:port or a full
	// ws:// or wss:// URI. A bare address is tried as wss first, then ws.
	Server        string
	Game          string
	SlotName      string
	Password      string
	UUID          string
	ItemsHandling int
	Tags          []string
}

// Client is a passive protocol client: it subscribes to a multiworld
// session and reports what the server announces, sending nothing beyond
// the connection handshake. Background goroutines only dial and read;
// all decoding and every handler runs on the goroutine that calls Poll.
type Client struct {
	opts       Options
	logger     *logrus.Entry
	handlers   Handlers
	candidates []string

	events chan event
	done   chan struct{}

	mu       sync.Mutex
	conn     *websocket.Conn
	dialing  bool
	closed   bool
	nextDial time.Time
	backoff  time.Duration

	writeMu sync.Mutex

	// Session bookkeeping for the hint-economy arithmetic. Touched only on
	// the Poll goroutine.
	hintCostPercent int
	locationCount   int
	slotUp          bool
}

type eventKind int

const (
	eventFrame eventKind = iota
	eventConnected
	eventDisconnected
	eventError
)

type event struct {
	kind eventKind
	data []byte
	url  string
	err  error
}

// New creates a client. No connection is attempted until Poll runs.
func New(opts Options, logger *logrus.Entry) *Client {
	return &Client{
		opts:       opts,
		logger:     logger,
		candidates: dialCandidates(opts.Server),
		events:     make(chan event, eventBuffer),
		done:       make(chan struct{}),
		backoff:    reconnectInitialDelay,
	}
}

// SetHandlers installs the event callbacks. Call before the first Poll.
func (c *Client) SetHandlers(h Handlers) {
	c.handlers = h
}

// Connected reports whether a socket is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Poll drives the client: it kicks off a dial when disconnected and the
// backoff window has passed, then dispatches every buffered inbound event.
// It never blocks waiting for the network.
func (c *Client) Poll() {
	c.ensureConnection()
	for {
		select {
		case ev := <-c.events:
			c.dispatch(ev)
		default:
			return
		}
	}
}

// Close tears the connection down and stops the background goroutines.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	close(c.done)
	if conn != nil {
		conn.Close()
	}
	return nil
}

func dialCandidates(server string) []string {
	if strings.HasPrefix(server, "ws://") || strings.HasPrefix(server, "wss://") {
		return []string{server}
	}
	return []string{"wss://" + server, "ws://" + server}
}

func (c *Client) ensureConnection() {
	c.mu.Lock()
	if c.closed || c.conn != nil || c.dialing || time.Now().Before(c.nextDial) {
		c.mu.Unlock()
		return
	}
	c.dialing = true
	c.mu.Unlock()

	go c.dial()
}

// dial tries every candidate URI once. On success the read pump starts; on
// failure the next attempt is scheduled with a doubled backoff.
func (c *Client) dial() {
	defer func() {
		c.mu.Lock()
		c.dialing = false
		c.mu.Unlock()
	}()

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	var lastErr error
	for _, candidate := range c.candidates {
		conn, _, err := dialer.Dial(candidate, nil)
		if err != nil {
			lastErr = err
			c.logger.WithError(err).Debugf("Dial failed: %s", candidate)
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			conn.Close()
			return
		}
		c.conn = conn
		c.backoff = reconnectInitialDelay
		c.mu.Unlock()

		c.post(event{kind: eventConnected, url: candidate})
		go c.readPump(conn)
		return
	}

	c.mu.Lock()
	delay := c.backoff
	c.backoff *= 2
	if c.backoff > reconnectMaxDelay {
		c.backoff = reconnectMaxDelay
	}
	c.nextDial = time.Now().Add(delay)
	closed := c.closed
	c.mu.Unlock()

	if !closed {
		c.post(event{kind: eventError, err: errors.Transport("dial", lastErr)})
	}
}

// readPump owns the socket reads and feeds the event queue until the
// socket drops.
func (c *Client) readPump(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			closed := c.closed
			c.mu.Unlock()
			conn.Close()
			if !closed {
				c.post(event{kind: eventDisconnected, err: err})
			}
			return
		}
		if !c.post(event{kind: eventFrame, data: data}) {
			return
		}
	}
}

// post queues an event for the next Poll, giving up when the client closes.
func (c *Client) post(ev event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

func (c *Client) dispatch(ev event) {
	switch ev.kind {
	case eventConnected:
		c.logger.Infof("Socket connected: %s", ev.url)
		if c.handlers.SocketConnected != nil {
			c.handlers.SocketConnected()
		}
	case eventDisconnected:
		c.logger.WithError(ev.err).Warn("Socket disconnected")
		c.mu.Lock()
		c.nextDial = time.Now().Add(c.backoff)
		c.mu.Unlock()
		c.locationCount = 0
		if c.slotUp {
			c.slotUp = false
			if c.handlers.SlotDisconnected != nil {
				c.handlers.SlotDisconnected()
			}
		}
		if c.handlers.SocketDisconnected != nil {
			c.handlers.SocketDisconnected()
		}
	case eventError:
		if c.handlers.SocketError != nil {
			c.handlers.SocketError(ev.err)
		}
	case eventFrame:
		c.handleFrame(ev.data)
	}
}

func (c *Client) handleFrame(data []byte) {
	cmds, err := decodeFrame(data)
	if err != nil {
		c.logger.WithError(err).Warn("Discarding unparsable frame")
		return
	}
	for _, raw := range cmds {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.WithError(err).Warn("Discarding command with no envelope")
			continue
		}
		c.handleCommand(env.Cmd, raw)
	}
}

func (c *Client) handleCommand(cmd string, raw json.RawMessage) {
	switch cmd {
	case "RoomInfo":
		var pkt RoomInfoPacket
		if err := json.Unmarshal(raw, &pkt); err != nil {
			c.logger.WithError(err).Warn("Failed to decode RoomInfo")
			return
		}
		c.handleRoomInfo(pkt)
	case "Connected":
		var pkt ConnectedPacket
		if err := json.Unmarshal(raw, &pkt); err != nil {
			c.logger.WithError(err).Warn("Failed to decode Connected")
			return
		}
		c.handleConnected(pkt)
	case "ConnectionRefused":
		var pkt connectionRefusedPacket
		if err := json.Unmarshal(raw, &pkt); err != nil {
			c.logger.WithError(err).Warn("Failed to decode ConnectionRefused")
			return
		}
		c.handleConnectionRefused(pkt)
	case "ReceivedItems":
		var pkt receivedItemsPacket
		if err := json.Unmarshal(raw, &pkt); err != nil {
			c.logger.WithError(err).Warn("Failed to decode ReceivedItems")
			return
		}
		c.handleReceivedItems(pkt)
	case "RoomUpdate":
		var pkt RoomUpdatePacket
		if err := json.Unmarshal(raw, &pkt); err != nil {
			c.logger.WithError(err).Warn("Failed to decode RoomUpdate")
			return
		}
		c.handleRoomUpdate(pkt)
	case "DataPackage":
		var pkt dataPackagePacket
		if err := json.Unmarshal(raw, &pkt); err != nil {
			c.logger.WithError(err).Warn("Failed to decode DataPackage")
			return
		}
		c.handleDataPackage(pkt)
	case "Retrieved":
		var pkt retrievedPacket
		if err := json.Unmarshal(raw, &pkt); err != nil {
			c.logger.WithError(err).Warn("Failed to decode Retrieved")
			return
		}
		c.handleRetrieved(pkt)
	case "PrintJSON":
		c.handlePrintJSON(raw)
	default:
		c.logger.Debugf("Ignoring %s", cmd)
	}
}

func (c *Client) handleRoomInfo(pkt RoomInfoPacket) {
	c.hintCostPercent = pkt.HintCost

	seed := pkt.SeedName
	server := pkt.Version.String()
	generator := pkt.GeneratorVersion.String()
	percent := pkt.HintCost

	c.logger.WithFields(logrus.Fields{
		"seed":    seed,
		"version": server,
	}).Info("Session established")

	if c.handlers.SessionEstablished != nil {
		c.handlers.SessionEstablished(SessionUpdate{
			Seed:             &seed,
			ServerVersion:    &server,
			GeneratorVersion: &generator,
			HintCostPercent:  &percent,
		})
	}

	// Passive subscription handshake: catalog request first, then Connect.
	c.sendOrReport(getDataPackagePacket{Cmd: "GetDataPackage", Games: []string{c.opts.Game}})

	tags := c.opts.Tags
	if tags == nil {
		tags = []string{}
	}
	c.sendOrReport(connectPacket{
		Cmd:           "Connect",
		Password:      c.opts.Password,
		Game:          c.opts.Game,
		Name:          c.opts.SlotName,
		UUID:          c.opts.UUID,
		Version:       protocolVersion,
		ItemsHandling: c.opts.ItemsHandling,
		Tags:          tags,
		SlotData:      true,
	})
}

func (c *Client) handleConnected(pkt ConnectedPacket) {
	c.slotUp = true
	c.locationCount = len(pkt.MissingLocations) + len(pkt.CheckedLocations)

	c.logger.WithFields(logrus.Fields{
		"slot":      pkt.Slot,
		"team":      pkt.Team,
		"checked":   len(pkt.CheckedLocations),
		"locations": c.locationCount,
	}).Info("Slot established")

	if c.handlers.SlotEstablished != nil {
		c.handlers.SlotEstablished(pkt)
	}

	// The hint economy becomes computable once the slot's location total is
	// known: the point cost is the configured percentage of that total.
	points := pkt.HintPoints
	costPoints := c.hintCostPercent * c.locationCount / 100
	if c.handlers.SessionEstablished != nil {
		c.handlers.SessionEstablished(SessionUpdate{
			HintPoints:     &points,
			HintCostPoints: &costPoints,
		})
	}

	if len(pkt.CheckedLocations) > 0 && c.handlers.LocationsChecked != nil {
		c.handlers.LocationsChecked(pkt.CheckedLocations)
	}
}

func (c *Client) handleConnectionRefused(pkt connectionRefusedPacket) {
	err := errors.ConnectionRefused(pkt.Errors)
	c.logger.WithError(err).Error("Server refused the connection")
	if c.handlers.SocketError != nil {
		c.handlers.SocketError(err)
	}

	// The server will not talk to us on this socket; drop it and let the
	// backoff schedule decide on another attempt.
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.nextDial = time.Now().Add(c.backoff)
	c.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

func (c *Client) handleReceivedItems(pkt receivedItemsPacket) {
	if len(pkt.Items) == 0 {
		return
	}
	grants := make([]ItemGrant, len(pkt.Items))
	for i, item := range pkt.Items {
		grants[i] = ItemGrant{
			Index:    pkt.Index + i,
			Item:     item.Item,
			Location: item.Location,
			Player:   item.Player,
			Flags:    item.Flags,
		}
	}
	c.logger.Debugf("Received %d items starting at index %d", len(grants), pkt.Index)
	if c.handlers.ItemsReceived != nil {
		c.handlers.ItemsReceived(grants)
	}
}

func (c *Client) handleRoomUpdate(pkt RoomUpdatePacket) {
	var update SessionUpdate
	touched := false
	if pkt.HintPoints != nil {
		update.HintPoints = pkt.HintPoints
		touched = true
	}
	if pkt.HintCost != nil {
		c.hintCostPercent = *pkt.HintCost
		costPoints := c.hintCostPercent * c.locationCount / 100
		update.HintCostPercent = pkt.HintCost
		update.HintCostPoints = &costPoints
		touched = true
	}
	if touched && c.handlers.SessionEstablished != nil {
		c.handlers.SessionEstablished(update)
	}
	if len(pkt.CheckedLocations) > 0 && c.handlers.LocationsChecked != nil {
		c.handlers.LocationsChecked(pkt.CheckedLocations)
	}
}

func (c *Client) handleDataPackage(pkt dataPackagePacket) {
	c.logger.Infof("Catalog received for %d games", len(pkt.Data.Games))
	if c.handlers.CatalogChanged != nil {
		c.handlers.CatalogChanged(pkt.Data)
	}
}

func (c *Client) handleRetrieved(pkt retrievedPacket) {
	if c.handlers.Retrieved != nil {
		c.handlers.Retrieved(pkt.Keys)
	}
}

func (c *Client) handlePrintJSON(raw json.RawMessage) {
	var pkt printJSONPacket
	if err := json.Unmarshal(raw, &pkt); err != nil {
		c.logger.WithError(err).Debug("Unparsable PrintJSON")
		return
	}
	var b strings.Builder
	for _, part := range pkt.Data {
		b.WriteString(part.Text)
	}
	text := b.String()
	if text == "" {
		text = string(raw)
	}
	if c.handlers.Message != nil {
		c.handlers.Message(text)
	}
}

// send writes one command as a single-element frame; the protocol wraps
// every message in a JSON array.
func (c *Client) send(cmd interface{}) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New(errors.ErrCodeTransport, "no open socket")
	}

	payload, err := json.Marshal([]interface{}{cmd})
	if err != nil {
		return errors.Internal("encode outbound command", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return errors.Transport("write", err)
	}
	return nil
}

func (c *Client) sendOrReport(cmd interface{}) {
	if err := c.send(cmd); err != nil {
		c.logger.WithError(err).Error("Handshake send failed")
		if c.handlers.SocketError != nil {
			c.handlers.SocketError(err)
		}
	}
}
