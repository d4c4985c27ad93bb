package event

import (
	"sort"
	"time"
)

// Store is the persisted known-events store: an ordered map of every event
// ever detected, keyed by canonical ID. IDs are never removed, so the feed
// built from the store only ever grows.
type Store struct {
	Events    map[string]*Event `json:"events"`
	Order     []string          `json:"order"` // IDs in insertion order
	UpdatedAt string            `json:"updated_at"`
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		Events: make(map[string]*Event),
		Order:  make([]string, 0),
	}
}

// Has reports whether an event with the given ID is already known
func (s *Store) Has(id string) bool {
	_, ok := s.Events[id]
	return ok
}

// Len returns the number of known events
func (s *Store) Len() int {
	return len(s.Events)
}

// Add inserts an event if its ID is not yet known and reports whether it
// was inserted. Known IDs keep their originally stored title and date even
// when the page rewords them: first write wins.
func (s *Store) Add(evt *Event) bool {
	if s.Has(evt.ID) {
		return false
	}
	s.Events[evt.ID] = evt
	s.Order = append(s.Order, evt.ID)
	return true
}

// Merge partitions candidates against the store and inserts the unknown
// ones, stamping each with the given first-seen time. The returned slice
// contains only the newly inserted events, in candidate (document) order.
// Merging the same candidates twice returns nothing the second time.
// UpdatedAt moves only when something was inserted, so a zero-new-events
// run leaves the serialized store untouched.
func (s *Store) Merge(candidates []*Event, now time.Time) []*Event {
	newEvents := make([]*Event, 0)
	for _, c := range candidates {
		if s.Has(c.ID) {
			continue
		}
		c.FirstSeen = now.UTC()
		s.Add(c)
		newEvents = append(newEvents, c)
	}
	if len(newEvents) > 0 {
		s.UpdatedAt = now.UTC().Format(time.RFC3339)
	}
	return newEvents
}

// Sorted returns every known event newest-first: descending FirstSeen,
// ties broken by reverse insertion order. The result is a fresh slice;
// the store itself is not reordered.
func (s *Store) Sorted() []*Event {
	events := make([]*Event, 0, len(s.Order))
	// Reverse insertion order so that a stable sort keeps later
	// insertions first among equal timestamps.
	for i := len(s.Order) - 1; i >= 0; i-- {
		if evt, ok := s.Events[s.Order[i]]; ok {
			events = append(events, evt)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].FirstSeen.After(events[j].FirstSeen)
	})
	return events
}
