package state

import (
	"sort"
	"sync"
	"time"

	"github.com/lovenityjade/APTwitchBot/snapshot"
)

// Store is the in-memory session state. Every merge and every read goes
// through one RWMutex, so a reader always observes a whole number of
// completed merges, never a partial one.
type Store struct {
	mu    sync.RWMutex
	clock func() time.Time

	session SessionInfo
	slot    SlotInfo

	checked     map[int64]struct{}
	items       []ItemEvent
	dataPackage *snapshot.DataPackage
	slotData    map[string]interface{}
	retrieved   map[string]interface{}
	extensions  map[string]interface{}
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source used to stamp item batches.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// New creates an empty store. Slot identifiers start at -1 (unknown) and
// stay there until the slot handshake merges real values. The data-storage
// namespaces stay absent until their first merge so an untouched store
// serializes the same way the fetcher's first document always has.
func New(opts ...Option) *Store {
	s := &Store{
		clock: time.Now,
		slot: SlotInfo{
			SlotID:       -1,
			TeamID:       -1,
			PlayerNumber: -1,
			TeamNumber:   -1,
		},
		checked: make(map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplySession merges the non-nil fields of a session update.
func (s *Store) ApplySession(u SessionUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.RoomName != nil {
		s.session.RoomName = *u.RoomName
	}
	if u.Seed != nil {
		s.session.Seed = *u.Seed
	}
	if u.ServerVersion != nil {
		s.session.ServerVersion = *u.ServerVersion
	}
	if u.GeneratorVersion != nil {
		s.session.GeneratorVersion = *u.GeneratorVersion
	}
	if u.HintPoints != nil {
		s.session.HintPoints = *u.HintPoints
	}
	if u.HintCostPercent != nil {
		s.session.HintCostPercent = *u.HintCostPercent
	}
	if u.HintCostPoints != nil {
		s.session.HintCostPoints = *u.HintCostPoints
	}
}

// ApplySlot merges the non-nil fields of a slot update.
func (s *Store) ApplySlot(u SlotUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.SlotName != nil {
		s.slot.SlotName = *u.SlotName
	}
	if u.Game != nil {
		s.slot.Game = *u.Game
	}
	if u.SlotID != nil {
		s.slot.SlotID = *u.SlotID
	}
	if u.TeamID != nil {
		s.slot.TeamID = *u.TeamID
	}
	if u.PlayerNumber != nil {
		s.slot.PlayerNumber = *u.PlayerNumber
	}
	if u.TeamNumber != nil {
		s.slot.TeamNumber = *u.TeamNumber
	}
}

// MergeCheckedLocations unions ids into the checked set and returns the new
// total. The set never shrinks.
func (s *Store) MergeCheckedLocations(ids []int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		s.checked[id] = struct{}{}
	}
	return len(s.checked)
}

// AppendItems appends a batch to the item log and returns the new log
// length. Every entry in the batch gets the same receive timestamp. Entries
// are never deduplicated; a server resending an index yields two entries.
func (s *Store) AppendItems(events []ItemEvent) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(events) == 0 {
		return len(s.items)
	}
	now := s.clock()
	for _, ev := range events {
		ev.ReceivedAt = now
		s.items = append(s.items, ev)
	}
	return len(s.items)
}

// SetDataPackage replaces the catalog wholesale. The stored value is never
// mutated in place, so snapshots may share it.
func (s *Store) SetDataPackage(dp snapshot.DataPackage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataPackage = &dp
}

// SetSlotData replaces the slot_data namespace wholesale.
func (s *Store) SetSlotData(data map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slotData = data
}

// MergeRetrieved merges key/value pairs into the retrieved namespace,
// last write wins per key.
func (s *Store) MergeRetrieved(values map[string]interface{}) {
	if len(values) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retrieved == nil {
		s.retrieved = make(map[string]interface{}, len(values))
	}
	for k, v := range values {
		s.retrieved[k] = v
	}
}

// SetExtension stores a value under an unknown data-storage namespace.
func (s *Store) SetExtension(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.extensions == nil {
		s.extensions = make(map[string]interface{})
	}
	s.extensions[key] = value
}

// Session returns a copy of the current session fields.
func (s *Store) Session() SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Slot returns a copy of the current slot fields.
func (s *Store) Slot() SlotInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slot
}

// CheckedCount returns the size of the checked-location set.
func (s *Store) CheckedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.checked)
}

// ItemCount returns the length of the received-item log.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Snapshot assembles a self-consistent document copy under the read lock.
// The caller serializes and writes it after the lock is released, so slow
// storage never stalls merges beyond the copy step. The room's
// location_count is derived from the catalog here rather than stored: the
// count for the active game, 0 when the catalog or the game is absent.
func (s *Store) Snapshot() snapshot.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	checked := make([]int64, 0, len(s.checked))
	for id := range s.checked {
		checked = append(checked, id)
	}
	sort.Slice(checked, func(i, j int) bool { return checked[i] < checked[j] })

	items := make([]snapshot.ItemRecord, 0, len(s.items))
	for _, ev := range s.items {
		items = append(items, snapshot.ItemRecord{
			Index:    ev.Index,
			Item:     ev.Item,
			Location: ev.Location,
			Player:   ev.Player,
			Flags:    ev.Flags,
			Time:     ev.ReceivedAt.Unix(),
		})
	}

	return snapshot.Document{
		Room: snapshot.RoomSection{
			RoomName:         s.session.RoomName,
			Seed:             s.session.Seed,
			ServerVersion:    s.session.ServerVersion,
			GeneratorVersion: s.session.GeneratorVersion,
			HintPoints:       s.session.HintPoints,
			HintCostPercent:  s.session.HintCostPercent,
			HintCostPoints:   s.session.HintCostPoints,
			LocationCount:    s.dataPackage.LocationCount(s.slot.Game),
		},
		Me: snapshot.MeSection{
			SlotName:     s.slot.SlotName,
			Game:         s.slot.Game,
			SlotID:       s.slot.SlotID,
			TeamID:       s.slot.TeamID,
			PlayerNumber: s.slot.PlayerNumber,
			TeamNumber:   s.slot.TeamNumber,
		},
		CheckedLocations: checked,
		Items:            items,
		DataStorage: snapshot.DataStorage{
			DataPackage: s.dataPackage,
			SlotData:    copyValues(s.slotData),
			Retrieved:   copyValues(s.retrieved),
			Extra:       copyValues(s.extensions),
		},
	}
}

// copyValues shallow-copies a namespace map. Values are shared; merges
// replace whole values rather than mutating them, so sharing is safe.
func copyValues(src map[string]interface{}) map[string]interface{} {
	if src == nil {
		return nil
	}
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
