package snapshot

import (
	"encoding/json"
	"os"

	"github.com/lovenityjade/APTwitchBot/errors"
)

// Reader loads the published document on behalf of downstream consumers.
// Because the writer overwrites the file in place, a read can race a flush
// and observe a truncated document; callers are expected to treat both error
// codes as transient and retry on the next occasion rather than fail.
type Reader struct {
	path string
}

// NewReader creates a reader for the given document path.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Path returns the file the reader loads from.
func (r *Reader) Path() string {
	return r.path
}

// Load reads and parses the current document. A missing file yields a
// state-not-found error, an unparsable one a state-invalid error; both are
// expected conditions, not failures of the reader.
func (r *Reader) Load() (*Document, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.StateNotFound(r.path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStateInvalid, "failed to read state file").
			WithDetail("path", r.path)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.StateInvalid(r.path, err)
	}
	return &doc, nil
}

// LoadOrEmpty is the tolerant form of Load: any failure yields a zero
// document so a consumer can always render something.
func (r *Reader) LoadOrEmpty() Document {
	doc, err := r.Load()
	if err != nil {
		return Document{}
	}
	return *doc
}
