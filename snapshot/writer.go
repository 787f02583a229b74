package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/lovenityjade/APTwitchBot/errors"
)

// Writer publishes documents by overwriting a single file in place. The
// overwrite is a plain truncate-and-write, not an atomic rename: readers of
// the file are expected to tolerate a torn or half-written document and
// retry, and the writer never leaves state that the next flush can't
// replace.
type Writer struct {
	path string
	echo *ArchipelagoEcho
}

// NewWriter creates a writer targeting the given path. When echo is non-nil
// it is stamped into every written document as the `archipelago` section.
func NewWriter(path string, echo *ArchipelagoEcho) *Writer {
	return &Writer{path: path, echo: echo}
}

// Path returns the file the writer publishes to.
func (w *Writer) Path() string {
	return w.path
}

// Write serializes the document and overwrites the target file. All
// serialization happens before the file is touched, so a marshalling
// failure leaves the previous document intact. Failures of either step are
// returned as persistence errors for the caller to log; the writer holds no
// state between calls, so a failed flush never blocks the next one.
func (w *Writer) Write(doc Document) error {
	doc.Archipelago = w.echo

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Persistence(w.path, err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return errors.Persistence(w.path, err)
	}
	if err := os.WriteFile(w.path, data, 0644); err != nil {
		return errors.Persistence(w.path, err)
	}
	return nil
}
