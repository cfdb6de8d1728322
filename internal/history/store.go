package history

import "sync"

// Kind identifies a record category with its own bounded history
type Kind string

const (
	KindRun      Kind = "run"
	KindBacktest Kind = "backtest"
	KindDemo     Kind = "demo"
)

// Record is a serialized cycle or backtest outcome
type Record = map[string]interface{}

// bounds caps how many records each kind retains
var bounds = map[Kind]int{
	KindRun:      50,
	KindBacktest: 20,
	KindDemo:     10,
}

// Store keeps a bounded, most-recent-first history per record kind.
// Insert-then-truncate runs as one critical section so concurrent cycle
// triggers cannot interleave against the same store.
type Store struct {
	mu      sync.Mutex
	records map[Kind][]Record
}

// NewStore creates an empty record store
func NewStore() *Store {
	return &Store{
		records: make(map[Kind][]Record),
	}
}

// Insert prepends the record and evicts the oldest entries beyond the
// kind's bound.
func (s *Store) Insert(kind Kind, record Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append([]Record{record}, s.records[kind]...)
	if bound, ok := bounds[kind]; ok && len(list) > bound {
		list = list[:bound]
	}
	s.records[kind] = list
}

// List returns up to limit records, most recent first. A non-positive
// limit returns everything. The returned slice is a copy, never the live
// list.
func (s *Store) List(kind Kind, limit int) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.records[kind]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}

	out := make([]Record, len(list))
	copy(out, list)
	return out
}

// Latest returns the most recent record of a kind, if any
func (s *Store) Latest(kind Kind) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.records[kind]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

// Find looks up a record by its identifier
func (s *Store) Find(kind Kind, id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records[kind] {
		if record["id"] == id {
			return record, true
		}
	}
	return nil, false
}

// Len returns the number of stored records for a kind
func (s *Store) Len(kind Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records[kind])
}
