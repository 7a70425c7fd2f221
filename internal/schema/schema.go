package schema

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docudex/docudex/internal/value"
)

// Schema is a per-collection (or per-nested-object) live registry of field
// descriptors. Field addition is additive only: names are never removed or
// renamed, per the data model's schema-growth invariant.
type Schema struct {
	id         uuid.UUID
	name       string
	createdAt  time.Time
	modifiedAt time.Time

	mu     sync.RWMutex
	fields map[string]*Field
	order  []string
}

// New creates an empty schema with a fresh id and creation timestamp.
func New(name string) *Schema {
	now := time.Now().UTC()
	return &Schema{
		id:         uuid.New(),
		name:       name,
		createdAt:  now,
		modifiedAt: now,
		fields:     make(map[string]*Field),
	}
}

// ID returns the schema's stable identity.
func (s *Schema) ID() uuid.UUID { return s.id }

// Name returns the schema's (collection, for a root schema) name.
func (s *Schema) Name() string { return s.name }

// CreatedAt returns the schema's creation timestamp.
func (s *Schema) CreatedAt() time.Time { return s.createdAt }

// ModifiedAt returns the schema's last-modified timestamp.
func (s *Schema) ModifiedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modifiedAt
}

// Touch bumps the modified timestamp. Called by the schema-persistence
// task just before it writes a snapshot: on first sight, or when the live
// schema differs from the last one saved.
func (s *Schema) Touch(now time.Time) {
	s.mu.Lock()
	s.modifiedAt = now
	s.mu.Unlock()
}

// Field looks up a field by its local name.
func (s *Schema) Field(name string) (*Field, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fields[name]
	return f, ok
}

// Fields enumerates fields in the order they were first observed.
func (s *Schema) Fields() []*Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Field, len(s.order))
	for i, name := range s.order {
		out[i] = s.fields[name]
	}
	return out
}

// AddOrGetField looks up the named field, creating it (as Null-typed) on
// first reference, and idempotently type-checks it against incoming. The
// returned error, if non-nil, is a SchemaConflictError: the field itself is
// still returned, unmodified, so the caller can decide to skip indexing the
// conflicting value without losing the field it was trying to widen.
func (s *Schema) AddOrGetField(name string, incoming value.Kind) (*Field, error) {
	f := s.fieldOrCreate(name)
	if err := f.AdoptType(incoming); err != nil {
		return f, err
	}
	return f, nil
}

func (s *Schema) fieldOrCreate(name string) *Field {
	s.mu.RLock()
	f, ok := s.fields[name]
	s.mu.RUnlock()
	if ok {
		return f
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok = s.fields[name]; ok {
		return f
	}
	f = newField(name)
	s.fields[name] = f
	s.order = append(s.order, name)
	return f
}
