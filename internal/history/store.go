package history

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"
)

// DefaultMaxEntries is the default history size.
const DefaultMaxEntries = 500

// ErrStoreClosed is returned when operations are attempted on a closed store.
var ErrStoreClosed = errors.New("store is closed")

// FilterOptions specifies criteria for filtering records.
type FilterOptions struct {
	Since     time.Duration // Only records closed after now-since (0=all)
	AppFilter string        // Case-insensitive match on app name
	Urgency   *int          // Filter by urgency level (nil=any)
	Reason    string        // Filter by close reason
	Limit     int           // Maximum results (0=unlimited)
}

// Store holds closed notifications, newest last, backed by an optional
// Persistence. When persistence is set, the file is the source of truth:
// pruning reloads it first, so records cleared by another process stay gone.
type Store struct {
	mu          sync.RWMutex
	records     []Record
	ids         map[string]struct{}
	maxEntries  int
	persistence Persistence
	closed      bool

	now func() time.Time
}

// NewStore creates a Store keeping at most maxEntries records (0=unlimited).
// If persistence is not nil, records are written through to it.
func NewStore(persistence Persistence, maxEntries int) *Store {
	return &Store{
		ids:         make(map[string]struct{}),
		maxEntries:  maxEntries,
		persistence: persistence,
		now:         time.Now,
	}
}

// SetMaxEntries changes the history size. It takes effect on the next Add.
func (s *Store) SetMaxEntries(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxEntries = n
}

// Hydrate loads records from persistence, replacing what the store holds.
func (s *Store) Hydrate() error {
	if s.persistence == nil {
		return nil
	}
	records, err := s.persistence.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(records)
	return nil
}

// replace swaps in records, dropping duplicate IDs. Caller holds mu.
func (s *Store) replace(records []Record) {
	s.records = s.records[:0]
	s.ids = make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := s.ids[r.ID]; dup {
			continue
		}
		s.ids[r.ID] = struct{}{}
		s.records = append(s.records, r)
	}
}

// Add records r, pruning the oldest records beyond the size limit.
func (s *Store) Add(r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if _, dup := s.ids[r.ID]; dup {
		return nil
	}

	if s.persistence != nil {
		if err := s.persistence.Append(r); err != nil {
			return err
		}
	}

	s.ids[r.ID] = struct{}{}
	s.records = append(s.records, r)

	if s.maxEntries <= 0 || len(s.records) <= s.maxEntries {
		return nil
	}
	return s.prune()
}

// prune drops the oldest records beyond maxEntries. Caller holds mu.
func (s *Store) prune() error {
	if s.persistence != nil {
		records, err := s.persistence.Load()
		if err != nil {
			return err
		}
		s.replace(records)
		if len(s.records) <= s.maxEntries {
			return nil
		}
	}

	drop := len(s.records) - s.maxEntries
	for _, r := range s.records[:drop] {
		delete(s.ids, r.ID)
	}
	s.records = slices.Delete(s.records, 0, drop)

	if s.persistence != nil {
		return s.persistence.Rewrite(s.records)
	}
	return nil
}

// All returns every record, newest first.
func (s *Store) All() []Record {
	return s.Filter(FilterOptions{})
}

// Filter returns the matching records, newest first.
func (s *Store) Filter(opts FilterOptions) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cutoff int64
	if opts.Since > 0 {
		cutoff = s.now().Add(-opts.Since).Unix()
	}

	var out []Record
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if cutoff > 0 && r.ClosedAt < cutoff {
			continue
		}
		if opts.AppFilter != "" && !strings.EqualFold(r.AppName, opts.AppFilter) {
			continue
		}
		if opts.Urgency != nil && r.Urgency != *opts.Urgency {
			continue
		}
		if opts.Reason != "" && r.Reason != opts.Reason {
			continue
		}
		out = append(out, r)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out
}

// Get returns the record with the given ID.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Count returns the number of records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Clear removes every record.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.records = nil
	s.ids = make(map[string]struct{})

	if s.persistence != nil {
		return s.persistence.Clear()
	}
	return nil
}

// Close closes the store and its persistence.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.persistence != nil {
		return s.persistence.Close()
	}
	return nil
}
