package fetcher

import (
	"github.com/sirupsen/logrus"

	"github.com/lovenityjade/APTwitchBot/errors"
	"github.com/lovenityjade/APTwitchBot/protocol"
	"github.com/lovenityjade/APTwitchBot/snapshot"
	"github.com/lovenityjade/APTwitchBot/state"
)

// Handlers builds the subscription the event source dispatches into.
// Low-frequency high-value events (session, slot, catalog, retrieved)
// flush the document immediately; high-frequency ones (locations, items)
// wait for the periodic flush.
func (f *Fetcher) Handlers() protocol.Handlers {
	return protocol.Handlers{
		SessionEstablished: f.onSessionEstablished,
		SlotEstablished:    f.onSlotEstablished,
		SlotDisconnected:   f.onSlotDisconnected,
		CatalogChanged:     f.onCatalogChanged,
		LocationsChecked:   f.onLocationsChecked,
		ItemsReceived:      f.onItemsReceived,
		Retrieved:          f.onRetrieved,
		SocketConnected:    f.onSocketConnected,
		SocketDisconnected: f.onSocketDisconnected,
		SocketError:        f.onSocketError,
		Message:            f.onMessage,
	}
}

func (f *Fetcher) onSessionEstablished(u protocol.SessionUpdate) {
	f.contain("session-established", func() {
		f.store.ApplySession(state.SessionUpdate{
			Seed:             u.Seed,
			ServerVersion:    u.ServerVersion,
			GeneratorVersion: u.GeneratorVersion,
			HintPoints:       u.HintPoints,
			HintCostPercent:  u.HintCostPercent,
			HintCostPoints:   u.HintCostPoints,
		})
		f.logger.Info("Session state merged")
		f.FlushNow()
	})
}

func (f *Fetcher) onSlotEstablished(pkt protocol.ConnectedPacket) {
	f.contain("slot-established", func() {
		// The packet does not echo name or game; those are this fetcher's
		// own subscription identity.
		f.store.ApplySlot(state.SlotUpdate{
			SlotName:     &f.slotName,
			Game:         &f.game,
			SlotID:       &pkt.Slot,
			TeamID:       &pkt.Team,
			PlayerNumber: &pkt.Slot,
			TeamNumber:   &pkt.Team,
		})

		if pkt.SlotData != nil {
			var data map[string]interface{}
			if err := weakDecode(pkt.SlotData, &data); err != nil {
				shape := errors.InputShape("Connected", "slot_data")
				f.logger.WithError(shape).Warn("Ignoring slot data with unexpected shape")
			} else if len(data) > 0 {
				f.store.SetSlotData(data)
			}
		}

		f.logger.WithFields(logrus.Fields{
			"slot": pkt.Slot,
			"team": pkt.Team,
		}).Info("Slot state merged")
		f.FlushNow()
	})
}

func (f *Fetcher) onSlotDisconnected() {
	// Last known slot state stays in place for downstream readers.
	f.logger.Warn("Slot connection lost")
}

func (f *Fetcher) onCatalogChanged(dp snapshot.DataPackage) {
	f.contain("catalog-changed", func() {
		f.store.SetDataPackage(dp)
		f.logger.WithField("games", len(dp.Games)).Info("Catalog replaced")
		f.FlushNow()
	})
}

func (f *Fetcher) onLocationsChecked(ids []int64) {
	f.contain("locations-checked", func() {
		total := f.store.MergeCheckedLocations(ids)
		f.logger.WithFields(logrus.Fields{
			"merged": len(ids),
			"total":  total,
		}).Debug("Checked locations merged")
	})
}

func (f *Fetcher) onItemsReceived(items []protocol.ItemGrant) {
	f.contain("items-received", func() {
		events := make([]state.ItemEvent, len(items))
		for i, item := range items {
			events[i] = state.ItemEvent{
				Index:    item.Index,
				Item:     item.Item,
				Location: item.Location,
				Player:   item.Player,
				Flags:    item.Flags,
			}
		}
		total := f.store.AppendItems(events)
		f.logger.WithFields(logrus.Fields{
			"batch": len(events),
			"total": total,
		}).Debug("Item batch appended")
	})
}

func (f *Fetcher) onRetrieved(values map[string]interface{}) {
	f.contain("retrieved", func() {
		f.store.MergeRetrieved(values)
		f.logger.WithField("keys", len(values)).Debug("Retrieved values merged")
		f.FlushNow()
	})
}

func (f *Fetcher) onSocketConnected() {
	f.logger.Info("Connected to multiworld server")
}

func (f *Fetcher) onSocketDisconnected() {
	f.logger.Warn("Lost server connection")
}

func (f *Fetcher) onSocketError(err error) {
	f.logger.WithError(err).Error("Transport error")
}

func (f *Fetcher) onMessage(text string) {
	f.logger.Infof("Server: %s", text)
}
