// Package fetcher wires the protocol event source to the state store and
// the snapshot writer, and drives the single serialized poll/flush loop.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"github.com/lovenityjade/APTwitchBot/errors"
	"github.com/lovenityjade/APTwitchBot/snapshot"
	"github.com/lovenityjade/APTwitchBot/state"
)

// DocumentWriter persists an assembled document.
type DocumentWriter interface {
	Write(doc snapshot.Document) error
}

// Source is the event source the loop drives. Poll must not block on the
// network; it dispatches whatever has arrived since the last call.
type Source interface {
	Poll()
}

// Config carries the loop parameters. Zero values fall back to the
// defaults the fetcher has always run with: flush every 2s, poll every
// 50ms.
type Config struct {
	// SlotName and Game identify the slot this fetcher subscribes as; they
	// are merged into the slot section when the handshake completes.
	SlotName string
	Game     string

	FlushInterval time.Duration
	PollInterval  time.Duration

	// Clock overrides the flush cadence timestamp source.
	Clock func() time.Time
}

// Fetcher aggregates server events into the store and periodically
// publishes the document. All handlers and flushes run on the loop
// goroutine; the store's lock is the only synchronization with readers.
type Fetcher struct {
	store  *state.Store
	writer DocumentWriter
	source Source
	logger *logrus.Entry

	slotName string
	game     string

	flushInterval time.Duration
	pollInterval  time.Duration
	clock         func() time.Time
	lastFlush     time.Time
}

// New creates a fetcher. The store, writer and source are injected so
// tests can substitute any of them.
func New(st *state.Store, writer DocumentWriter, source Source, logger *logrus.Entry, cfg Config) *Fetcher {
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 50 * time.Millisecond
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Fetcher{
		store:         st,
		writer:        writer,
		source:        source,
		logger:        logger,
		slotName:      cfg.SlotName,
		game:          cfg.Game,
		flushInterval: cfg.FlushInterval,
		pollInterval:  cfg.PollInterval,
		clock:         clock,
	}
}

// Run drives the loop: poll the source, flush when the cadence is due,
// repeat until the context is cancelled. There is no final flush on exit;
// state merged after the last completed flush is not persisted.
func (f *Fetcher) Run(ctx context.Context) error {
	f.logger.WithFields(logrus.Fields{
		"flush_interval": f.flushInterval,
		"poll_interval":  f.pollInterval,
	}).Info("Fetcher loop started")

	f.lastFlush = f.clock()
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("Fetcher loop stopped")
			return ctx.Err()
		case <-ticker.C:
			f.source.Poll()
			if f.clock().Sub(f.lastFlush) >= f.flushInterval {
				f.FlushNow()
				f.lastFlush = f.clock()
			}
		}
	}
}

// FlushNow snapshots and writes immediately. The copy happens under the
// store's read lock; serialization and file I/O happen after it is
// released. A failed write is logged and abandoned for this cycle; event
// flushes do not reset the periodic cadence.
func (f *Fetcher) FlushNow() {
	f.contain("flush", func() {
		doc := f.store.Snapshot()
		if err := f.writer.Write(doc); err != nil {
			f.logger.WithError(err).Error("Flush failed")
			return
		}
		f.logger.Debug("State flushed")
	})
}

// contain runs fn and turns a panic into a logged internal error. One bad
// event or flush must never take the loop down.
func (f *Fetcher) contain(scope string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.Internal(scope, fmt.Errorf("panic: %v", r))
			f.logger.WithError(err).Error("Recovered from panic")
		}
	}()
	fn()
}

// weakDecode maps a loosely-shaped value onto out, tolerating the type
// drift JSON decoding produces.
func weakDecode(in interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
