// Package registry resolves noisy entity names against reference lists of
// registered brokers, exchanges, listed companies, mutual funds and advisers.
package registry

import (
	"fmt"
	"sync"

	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

// DetectThreshold is the window similarity needed to seed a broker or
// exchange from free text when no name appears verbatim.
const DetectThreshold = 86

// Source yields the rows for one kind. A nil error with no rows is an empty registry.
type Source func(p Profile) ([]Row, error)

// FileSource reads path with the profile's header vocabulary.
func FileSource(path string) Source {
	return func(p Profile) ([]Row, error) {
		return ReadFile(path, p.NameHeaders, p.AliasHeaders)
	}
}

// RowsSource serves fixed rows, used by tests and the CLI.
func RowsSource(rows []Row) Source {
	return func(Profile) ([]Row, error) { return rows, nil }
}

// Set owns one Index per entity kind. Lookups read a snapshot; Reload
// builds fresh indexes and swaps them in.
type Set struct {
	mu      sync.RWMutex
	indexes map[model.EntityKind]*Index
	sources map[model.EntityKind]Source
}

func NewSet(sources map[model.EntityKind]Source) *Set {
	s := &Set{
		indexes: make(map[model.EntityKind]*Index),
		sources: sources,
	}
	return s
}

// FileSources maps every kind to its configured file.
func FileSources(cfg model.RegistryConfig) map[model.EntityKind]Source {
	return map[model.EntityKind]Source{
		model.KindBroker:     FileSource(cfg.Brokers),
		model.KindExchange:   FileSource(cfg.Exchanges),
		model.KindCompany:    FileSource(cfg.Companies),
		model.KindMutualFund: FileSource(cfg.MutualFunds),
		model.KindAdviser:    FileSource(cfg.Advisers),
	}
}

// Load (re)builds every index. A kind whose source fails or is absent ends
// up empty and is logged; counts reports what each kind holds afterwards.
func (s *Set) Load() map[model.EntityKind]int {
	fresh := make(map[model.EntityKind]*Index, len(model.EntityKinds()))
	counts := make(map[model.EntityKind]int, len(fresh))
	for _, k := range model.EntityKinds() {
		p := DefaultProfile(k)
		var rows []Row
		if src, ok := s.sources[k]; ok && src != nil {
			r, err := src(p)
			if err != nil {
				logx.Error().Err(err).Str("kind", string(k)).Msg("failed to read registry source")
			}
			rows = r
		}
		idx := NewIndex(p, rows)
		fresh[k] = idx
		counts[k] = idx.Len()
		if idx.Len() == 0 {
			logx.Warn().Str("kind", string(k)).Msg("registry is empty")
		}
	}

	s.mu.Lock()
	s.indexes = fresh
	s.mu.Unlock()

	logx.Info().
		Int("brokers", counts[model.KindBroker]).
		Int("exchanges", counts[model.KindExchange]).
		Int("companies", counts[model.KindCompany]).
		Int("mutualfunds", counts[model.KindMutualFund]).
		Int("advisers", counts[model.KindAdviser]).
		Msg("registries loaded")
	return counts
}

// Reload is Load under another name for admin callers.
func (s *Set) Reload() map[model.EntityKind]int { return s.Load() }

// Get returns the current index for kind, or nil.
func (s *Set) Get(kind model.EntityKind) *Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexes[kind]
}

// Suggest returns up to the kind's candidate count of names for autocomplete.
func (s *Set) Suggest(kind model.EntityKind, q string) ([]string, error) {
	idx := s.Get(kind)
	if idx == nil {
		if _, err := model.ParseEntityKind(string(kind)); err != nil {
			return nil, err
		}
		return []string{}, nil
	}
	out := idx.Candidates(q)
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// Validate runs the kind's acceptance gate.
func (s *Set) Validate(kind model.EntityKind, name string) (string, bool) {
	return s.Get(kind).Validate(name)
}

// DetectBrokerAndExchange seeds candidates from a complaint description.
// A verbatim hit wins; otherwise the best aligned window must reach
// DetectThreshold.
func (s *Set) DetectBrokerAndExchange(text string) (broker, exchange string) {
	pick := func(idx *Index) string {
		if hits := idx.Detect(text); len(hits) > 0 {
			return hits[0]
		}
		if name, ok := idx.BestPartial(text, DetectThreshold); ok {
			return name
		}
		return ""
	}
	return pick(s.Get(model.KindBroker)), pick(s.Get(model.KindExchange))
}

// Seed returns the first candidate of kind mentioned in text, if any.
func (s *Set) Seed(kind model.EntityKind, text string) string {
	idx := s.Get(kind)
	if hits := idx.Detect(text); len(hits) > 0 {
		return hits[0]
	}
	if c := idx.Candidates(text); len(c) > 0 {
		return c[0]
	}
	return ""
}

func (s *Set) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("registry.Set{%d kinds}", len(s.indexes))
}
