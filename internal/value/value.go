// Package value implements the recursive tagged value that every document
// field is built from: null, bool, number, text, timestamp, guid, array and
// object, with object preserving key order the way a document's own field
// order must survive a round trip through the KV store.
package value

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind tags a Value's variant.
type Kind int

// Value variant tags.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
	KindTimestamp
	KindGuid
	KindArray
	KindObject
)

// String returns the canonical lowercase name of the kind, used in schema
// field descriptors and in diagnostic error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindTimestamp:
		return "timestamp"
	case KindGuid:
		return "guid"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses the canonical name produced by Kind.String back into a
// Kind, for round-tripping schema field descriptors through storage.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "null":
		return KindNull, true
	case "bool":
		return KindBool, true
	case "number":
		return KindNumber, true
	case "text":
		return KindText, true
	case "timestamp":
		return KindTimestamp, true
	case "guid":
		return KindGuid, true
	case "array":
		return KindArray, true
	case "object":
		return KindObject, true
	default:
		return KindNull, false
	}
}

// Value is a recursive sum type. Only the field matching Kind is meaningful;
// the zero Value is Null.
type Value struct {
	kind      Kind
	boolVal   bool
	numberVal float64
	textVal   string
	timeVal   time.Time
	guidVal   uuid.UUID
	arrayVal  []Value
	objectVal *Object
}

// Kind returns the value's variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the Null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Null returns the Null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, boolVal: b} }

// Number wraps any Go numeric type as a float64; integer/float distinctions
// are not preserved, per the data model.
func Number(n float64) Value { return Value{kind: KindNumber, numberVal: n} }

// Text wraps a string.
func Text(s string) Value { return Value{kind: KindText, textVal: s} }

// Timestamp wraps a UTC instant. Non-UTC inputs are normalized to UTC.
func Timestamp(t time.Time) Value { return Value{kind: KindTimestamp, timeVal: t.UTC()} }

// Guid wraps a 128-bit identifier.
func Guid(id uuid.UUID) Value { return Value{kind: KindGuid, guidVal: id} }

// Array wraps an ordered sequence of values.
func Array(items []Value) Value { return Value{kind: KindArray, arrayVal: items} }

// ObjectValue wraps an Object.
func ObjectValue(o *Object) Value { return Value{kind: KindObject, objectVal: o} }

// AsBool returns the wrapped boolean and whether the value was a Bool.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.boolVal, true
}

// AsNumber returns the wrapped float64 and whether the value was a Number.
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.numberVal, true
}

// AsText returns the wrapped string and whether the value was Text.
func (v Value) AsText() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.textVal, true
}

// AsTimestamp returns the wrapped time and whether the value was a Timestamp.
func (v Value) AsTimestamp() (time.Time, bool) {
	if v.kind != KindTimestamp {
		return time.Time{}, false
	}
	return v.timeVal, true
}

// AsGuid returns the wrapped UUID and whether the value was a Guid.
func (v Value) AsGuid() (uuid.UUID, bool) {
	if v.kind != KindGuid {
		return uuid.UUID{}, false
	}
	return v.guidVal, true
}

// AsArray returns the wrapped slice and whether the value was an Array.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arrayVal, true
}

// AsObject returns the wrapped Object and whether the value was an Object.
func (v Value) AsObject() (*Object, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.objectVal, true
}

// Equal reports deep structural equality.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindNumber:
		return a.numberVal == b.numberVal
	case KindText:
		return a.textVal == b.textVal
	case KindTimestamp:
		return a.timeVal.Equal(b.timeVal)
	case KindGuid:
		return a.guidVal == b.guidVal
	case KindArray:
		if len(a.arrayVal) != len(b.arrayVal) {
			return false
		}
		for i := range a.arrayVal {
			if !Equal(a.arrayVal[i], b.arrayVal[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return a.objectVal.Equal(b.objectVal)
	default:
		return false
	}
}
