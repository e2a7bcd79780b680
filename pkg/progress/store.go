package progress

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kerbaras/yomu/pkg/api"
	"github.com/kerbaras/yomu/pkg/data"
)

// expiration is how long a fetched progress record stays fresh.
const expiration = 5 * time.Minute

type entry struct {
	record  *data.MangaProgress
	updated time.Time
}

// Store is the background cache of per-manga progress records that list
// views read from. IDs are registered as interesting up front; Tap then
// fetches every stale record in one batched call.
type Store struct {
	mu      sync.Mutex
	svc     api.Service
	log     *log.Logger
	now     func() time.Time
	entries map[string]*entry
	tapping bool
}

func NewStore(svc api.Service, logger *log.Logger) *Store {
	return &Store{
		svc:     svc,
		log:     logger,
		now:     time.Now,
		entries: map[string]*entry{},
	}
}

// Load registers manga IDs as interesting, creating empty placeholders. It
// never fetches; call Tap afterwards.
func (s *Store) Load(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.entries[id]; ok {
			continue
		}
		s.entries[id] = &entry{}
	}
}

// Get returns the cached record for a manga, or nil when none is known,
// registering the ID as interesting as a side effect.
func (s *Store) Get(mangaID string) *data.MangaProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[mangaID]
	if !ok {
		s.entries[mangaID] = &entry{}
		return nil
	}
	return e.record
}

func (s *Store) expired(e *entry) bool {
	if e.updated.IsZero() {
		return true
	}
	return s.now().Sub(e.updated) > expiration
}

// Tap issues one batched fetch covering every tracked ID whose record is
// missing or expired. Unauthenticated taps, fully-fresh caches, and taps
// overlapping an in-flight batch are all no-ops. Records land keyed by
// their own manga ID; requested IDs the server returned nothing for stay
// empty and are not retried until the next tap.
func (s *Store) Tap(ctx context.Context) error {
	if !s.svc.Authenticated() {
		return nil
	}

	s.mu.Lock()
	if s.tapping {
		s.mu.Unlock()
		return nil
	}
	var missing []string
	for id, e := range s.entries {
		if e.record != nil && !s.expired(e) {
			continue
		}
		e.record = nil
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.tapping = true
	s.mu.Unlock()

	res := s.svc.BatchProgress(ctx, missing)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tapping = false

	if err := res.Err(); err != nil {
		if s.log != nil {
			s.log.Warn("progress batch fetch failed", "ids", len(missing), "error", err)
		}
		return err
	}

	for i := range res.Data {
		record := res.Data[i]
		e, ok := s.entries[record.MangaID]
		if !ok {
			e = &entry{}
			s.entries[record.MangaID] = e
		}
		e.record = &record
		e.updated = s.now()
	}
	return nil
}

// Clear evicts the given entries, or every entry when none are named. No
// network call is made.
func (s *Store) Clear(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ids) == 0 {
		s.entries = map[string]*entry{}
		return
	}
	for _, id := range ids {
		delete(s.entries, id)
	}
}

// Snapshot returns every populated record keyed by manga ID.
func (s *Store) Snapshot() map[string]data.MangaProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]data.MangaProgress, len(s.entries))
	for id, e := range s.entries {
		if e.record == nil {
			continue
		}
		out[id] = *e.record
	}
	return out
}
