package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pfrederiksen/course-events/internal/event"
)

// Load reads the known-events store from the given path.
// A missing file yields an empty store, not an error.
func Load(path string) (*event.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return event.NewStore(), nil
		}
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	var store event.Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parsing state file: %w", err)
	}

	if store.Events == nil {
		store.Events = make(map[string]*event.Event)
	}
	for id, evt := range store.Events {
		if evt == nil {
			return nil, fmt.Errorf("parsing state file: null entry for event %q", id)
		}
	}
	if store.Order == nil {
		store.Order = rebuildOrder(&store)
	}

	return &store, nil
}

// rebuildOrder recovers an insertion order for state files written before
// the order list existed. Sorted by FirstSeen so newest-first output stays
// correct; ties fall back to map iteration order.
func rebuildOrder(store *event.Store) []string {
	order := make([]string, 0, len(store.Events))
	for id := range store.Events {
		order = append(order, id)
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && store.Events[order[j]].FirstSeen.Before(store.Events[order[j-1]].FirstSeen); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}

// Save writes the store to the given path via a temporary file and rename.
// The store is serialized as-is: a load/save cycle with no intervening merge
// reproduces the file byte for byte.
func Save(path string, store *event.Store) error {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to path through a temp file in the same
// directory followed by a rename, so readers never observe partial content.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
