package snapshot

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func watcherTestLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestWatcherNotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	events := make(chan string, 8)
	w, err := NewWatcher(path, 50, watcherTestLogger(), func(p string) { events <- p })
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))

	select {
	case p := <-events:
		assert.Equal(t, path, p)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	events := make(chan string, 8)
	w, err := NewWatcher(path, 50, watcherTestLogger(), func(p string) { events <- p })
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}\n"), 0644))

	select {
	case <-events:
		t.Fatal("unexpected notification for unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	events := make(chan string, 16)
	w, err := NewWatcher(path, 600, watcherTestLogger(), func(p string) { events <- p })
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))
		time.Sleep(20 * time.Millisecond)
	}

	count := 0
	deadline := time.After(1200 * time.Millisecond)
collect:
	for {
		select {
		case <-events:
			count++
		case <-deadline:
			break collect
		}
	}
	assert.Equal(t, 1, count, "a burst of writes inside the debounce window must collapse to one notification")
}

func TestWatcherStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	w, err := NewWatcher(path, 50, watcherTestLogger(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}
}
