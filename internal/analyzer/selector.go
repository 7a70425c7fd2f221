package analyzer

import "sync"

// Selector caches which analyzer each field name has already been bound to
// in the search engine's mapping. The cache doubles as the set of names
// the engine has had a field mapping registered for: a cache miss, or a
// cached analyzer that no longer matches what the schema now calls for,
// means the caller must issue a fresh mapping registration before the next
// document carrying that field is indexed.
type Selector struct {
	mu    sync.RWMutex
	bound map[string]string
}

// New creates an empty Selector.
func New() *Selector {
	return &Selector{bound: make(map[string]string)}
}

// Resolve reports whether name needs a mapping registration for analyzer:
// true on first reference, or when the field's analyzer has changed since
// it was last bound (e.g. a field's tokenization was learned only once its
// first non-null value arrived). The cache is updated as a side effect
// whenever registration is needed, the same double-checked-lock shape the
// schema registry uses for field creation.
func (s *Selector) Resolve(name, analyzer string) bool {
	s.mu.RLock()
	cur, ok := s.bound[name]
	s.mu.RUnlock()
	if ok && cur == analyzer {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok = s.bound[name]; ok && cur == analyzer {
		return false
	}
	s.bound[name] = analyzer
	return true
}
