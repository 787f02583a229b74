// Package identity persists the per-host client id the fetcher presents
// in its connection handshake.
package identity

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Resolve returns the stable client id for host, minting a v4 UUID on
// first use. Ids are kept in a small JSON map at path so every host gets
// its own. The returned id is always usable; the error only reports that
// persisting it failed, which costs nothing worse than a fresh id on the
// next run.
func Resolve(path, host string) (string, error) {
	ids := load(path)
	if id, ok := ids[host]; ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	ids[host] = id
	if err := persist(path, ids); err != nil {
		return id, err
	}
	return id, nil
}

// load reads the id cache. A missing or corrupt cache is an empty one.
func load(path string) map[string]string {
	ids := make(map[string]string)
	data, err := os.ReadFile(path)
	if err != nil {
		return ids
	}
	_ = json.Unmarshal(data, &ids)
	if ids == nil {
		ids = make(map[string]string)
	}
	return ids
}

func persist(path string, ids map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
