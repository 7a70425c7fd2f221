package docudex

import (
	"fmt"

	"github.com/docudex/docudex/internal/value"
)

// Document is a schema-flexible bag of named fields. A Document's shape is
// whatever the caller sets on it; the collection's schema grows to match.
type Document = value.Object

// NewDocument returns an empty Document.
func NewDocument() *Document {
	return value.NewObject()
}

// Value is a single typed field value: null, bool, number, text, timestamp,
// guid, array, or nested object.
type Value = value.Value

// Null, Bool, Number, Text, Timestamp, Guid, Array, and Object construct a
// Value of the matching kind for use with Document.Set.
var (
	Null      = value.Null
	Bool      = value.Bool
	Number    = value.Number
	Text      = value.Text
	Timestamp = value.Timestamp
	Guid      = value.Guid
	Array     = value.Array
	Object    = value.ObjectValue
)

// NewDocumentFromMap builds a Document from plain Go values (the shape
// json.Unmarshal into map[string]any would produce), converting each field
// with FromAny. Keys are set in sorted order since a Go map carries none.
func NewDocumentFromMap(m map[string]any) (*Document, error) {
	v, err := value.FromAny(m)
	if err != nil {
		return nil, fmt.Errorf("docudex: %w", err)
	}
	obj, _ := v.AsObject()
	return obj, nil
}

// FromAny converts a plain Go value (bool, numeric, string, time.Time,
// uuid.UUID, []any, or map[string]any) into a Value.
func FromAny(v any) (Value, error) {
	return value.FromAny(v)
}

// ToAny converts a Value back to a plain Go value, the inverse of FromAny.
func ToAny(v Value) any {
	return value.ToAny(v)
}

// ToMap converts doc's fields to a plain map[string]any, recursively
// converting nested objects and arrays the same way.
func ToMap(doc *Document) map[string]any {
	out := make(map[string]any, doc.Len())
	for _, k := range doc.Keys() {
		fv, _ := doc.Get(k)
		out[k] = value.ToAny(fv)
	}
	return out
}
