package session

import (
	"context"
	"sync"
	"time"

	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
)

type memEntry struct {
	state   *model.State
	turns   []Turn
	touched time.Time
}

// MemoryStore is an in-process Store. Entries idle longer than ttl are
// dropped lazily on access; ttl <= 0 keeps them forever.
type MemoryStore struct {
	mu  sync.Mutex
	m   map[string]*memEntry
	ttl time.Duration
	now func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{m: make(map[string]*memEntry), ttl: ttl, now: time.Now}
}

// WithClock replaces the store's clock. Used by tests exercising expiry.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) entry(cid string, create bool) *memEntry {
	e, ok := s.m[cid]
	if ok && s.ttl > 0 && s.now().Sub(e.touched) > s.ttl {
		delete(s.m, cid)
		ok = false
	}
	if !ok {
		if !create {
			return nil
		}
		e = &memEntry{}
		s.m[cid] = e
	}
	e.touched = s.now()
	return e
}

func (s *MemoryStore) Get(_ context.Context, cid string) (*model.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(cid, false)
	if e == nil || e.state == nil {
		return nil, false, nil
	}
	return e.state.Clone(), true, nil
}

func (s *MemoryStore) Put(_ context.Context, cid string, st *model.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(cid, true).state = st.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, cid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, cid)
	return nil
}

func (s *MemoryStore) AppendTurn(_ context.Context, cid string, turns ...Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(cid, true)
	e.turns = append(e.turns, turns...)
	return nil
}

func (s *MemoryStore) LoadTurns(_ context.Context, cid string) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(cid, false)
	if e == nil {
		return []Turn{}, nil
	}
	return append([]Turn{}, e.turns...), nil
}

// Len reports how many conversations are held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

var (
	_ Store      = (*MemoryStore)(nil)
	_ Transcript = (*MemoryStore)(nil)
)
