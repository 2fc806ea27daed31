package resource

import "sync"

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps anything other than "desc" to Asc.
func ParseDirection(s string) Direction {
	if Direction(s) == Desc {
		return Desc
	}
	return Asc
}

// Sort is the active sort key and direction. An empty Key means unsorted.
type Sort struct {
	Key       string    `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Store holds the client-side copy of one entity kind. The orchestrator is
// its only writer; everything else reads snapshots.
type Store struct {
	mu         sync.RWMutex
	items      []Record
	current    Record
	searchTerm string
	filters    map[string]string
	sort       Sort
}

func NewStore() *Store {
	return &Store{
		items:   []Record{},
		filters: make(map[string]string),
		sort:    Sort{Direction: Asc},
	}
}

// ReplaceAll overwrites items in the order given. Duplicate ids collapse
// into the first position, carrying the last occurrence's fields.
func (s *Store) ReplaceAll(records []Record) {
	items := make([]Record, 0, len(records))
	index := make(map[string]int, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		id := r.ID()
		if i, ok := index[id]; ok && id != "" {
			items[i] = r.Clone()
			continue
		}
		index[id] = len(items)
		items = append(items, r.Clone())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

// Upsert replaces the record with the same id in place, or appends it.
func (s *Store) Upsert(record Record) {
	if record == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := record.ID()
	for i, existing := range s.items {
		if existing.ID() == id {
			s.items[i] = record.Clone()
			return
		}
	}
	s.items = append(s.items, record.Clone())
}

// Remove drops the record with id and clears current when it matches.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.items {
		if existing.ID() == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			break
		}
	}
	if s.current != nil && s.current.ID() == id {
		s.current = nil
	}
}

func (s *Store) SetCurrent(record Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = record.Clone()
}

func (s *Store) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchTerm = term
}

// SetFilters merges patch into the active filters; an empty value removes
// that field's filter.
func (s *Store) SetFilters(patch map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for field, value := range patch {
		if value == "" {
			delete(s.filters, field)
			continue
		}
		s.filters[field] = value
	}
}

func (s *Store) SetSort(key string, direction Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if direction != Desc {
		direction = Asc
	}
	s.sort = Sort{Key: key, Direction: direction}
}

// Items returns a copy of the stored records in store order.
func (s *Store) Items() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.items)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) Current() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

func (s *Store) SearchTerm() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchTerm
}

func (s *Store) Filters() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.filters))
	for k, v := range s.filters {
		out[k] = v
	}
	return out
}

func (s *Store) Sort() Sort {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sort
}
