package catalog

import (
	"context"
	"sync/atomic"
)

// Store holds the process-wide active catalog. Readers take a snapshot with
// Current and keep using it for a whole operation; refreshes swap the pointer.
type Store struct {
	current atomic.Pointer[Catalog]
}

// NewStore returns a Store seeded with c.
func NewStore(c *Catalog) *Store {
	s := &Store{}
	s.current.Store(c)
	return s
}

// Current returns the active catalog snapshot.
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Refresh parses data and makes it the active catalog. On failure the
// previous catalog stays active.
func (s *Store) Refresh(data []byte) (*Catalog, error) {
	c, err := Load(data)
	if err != nil {
		return nil, err
	}
	s.current.Store(c)
	return c, nil
}

// Update fetches a document from the fetcher's mirrors and refreshes.
func (s *Store) Update(ctx context.Context, f *Fetcher) (*Catalog, error) {
	data, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return s.Refresh(data)
}
