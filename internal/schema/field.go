// Package schema implements the per-collection live schema: a registry of
// field descriptors that grows additively as documents are projected into
// the index. Field type adoption and conflict detection live here; logging
// the conflicts they report is left to callers (the projector), the way the
// teacher keeps its domain types free of logging side effects.
package schema

import (
	"sync"

	"github.com/docudex/docudex/internal/domain"
	"github.com/docudex/docudex/internal/value"
)

// Field is a single field descriptor. Its identity (Name) is immutable;
// everything else grows monotonically from Null under a per-field lock, so
// the analyzer selector and query parser can read a Field concurrently with
// the projector widening it.
type Field struct {
	name string

	mu                   sync.RWMutex
	dataType             value.Kind
	isTokenized          bool
	isSortable           bool
	isFacet              bool
	arrayElementDataType value.Kind
	objectSchema         *Schema
}

func newField(name string) *Field {
	return &Field{name: name, dataType: value.KindNull, arrayElementDataType: value.KindNull}
}

// Name returns the field's local name within its schema.
func (f *Field) Name() string { return f.name }

// DataType returns the field's established type, or KindNull if no
// non-null value has been projected for it yet.
func (f *Field) DataType() value.Kind {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dataType
}

// IsTokenized reports whether text projected for this field should be
// tokenized for full-text search rather than indexed verbatim.
func (f *Field) IsTokenized() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.isTokenized
}

// IsSortable reports whether this field has a sort-docvalue projection.
// Only set by the projector for top-level, non-array leaf fields.
func (f *Field) IsSortable() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.isSortable
}

// IsFacet reports whether this field was caller-declared as a facet.
func (f *Field) IsFacet() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.isFacet
}

// ArrayElementDataType returns the established element type for an Array
// field, or KindNull if no non-null element has been projected yet.
func (f *Field) ArrayElementDataType() value.Kind {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.arrayElementDataType
}

// ObjectSchema returns the nested schema for an Object field (or an Array
// of Object field), or nil if none has been synthesized yet.
func (f *Field) ObjectSchema() *Schema {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.objectSchema
}

// MarkSortable flags the field as sortable. Idempotent.
func (f *Field) MarkSortable() {
	f.mu.Lock()
	f.isSortable = true
	f.mu.Unlock()
}

// MarkFacet flags the field as caller-declared for faceting. Idempotent.
func (f *Field) MarkFacet() {
	f.mu.Lock()
	f.isFacet = true
	f.mu.Unlock()
}

// adoptType applies §4.1's type-adoption rule: a Null stored type adopts the
// incoming type (and decides tokenization); an equal or Null incoming type
// is accepted silently; anything else is a conflict the caller must skip.
func (f *Field) adoptType(incoming value.Kind) (conflict bool, stored value.Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.dataType == value.KindNull {
		f.dataType = incoming
		f.isTokenized = incoming == value.KindText
		return false, f.dataType
	}
	if incoming == value.KindNull || incoming == f.dataType {
		return false, f.dataType
	}
	return true, f.dataType
}

// adoptArrayElementType applies the same rule to the array-element type,
// independent of the field's own (always Array) dataType.
func (f *Field) adoptArrayElementType(incoming value.Kind) (conflict bool, stored value.Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.arrayElementDataType == value.KindNull {
		f.arrayElementDataType = incoming
		f.isTokenized = incoming == value.KindText
		return false, f.arrayElementDataType
	}
	if incoming == value.KindNull || incoming == f.arrayElementDataType {
		return false, f.arrayElementDataType
	}
	return true, f.arrayElementDataType
}

// ensureObjectSchema lazily synthesizes and returns the nested schema for
// an Object-typed field, creating it on first call.
func (f *Field) ensureObjectSchema(name string) *Schema {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objectSchema == nil {
		f.objectSchema = New(name)
	}
	return f.objectSchema
}

// AdoptType is the exported form of adoptType, used by the projector to
// evolve a field's scalar type and learn of conflicts via a SchemaConflictError.
func (f *Field) AdoptType(incoming value.Kind) error {
	conflict, stored := f.adoptType(incoming)
	if conflict {
		return domain.NewSchemaConflict(f.name, stored.String(), incoming.String())
	}
	return nil
}

// AdoptArrayElementType is the exported form of adoptArrayElementType.
func (f *Field) AdoptArrayElementType(incoming value.Kind) error {
	conflict, stored := f.adoptArrayElementType(incoming)
	if conflict {
		return domain.NewSchemaConflict(f.name+"[]", stored.String(), incoming.String())
	}
	return nil
}

// ObjectSchemaOrCreate returns the field's nested schema, synthesizing an
// empty one on first use.
func (f *Field) ObjectSchemaOrCreate(childName string) *Schema {
	return f.ensureObjectSchema(childName)
}
