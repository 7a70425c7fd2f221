package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FromAny converts a Go native value — as produced by a caller building a
// document from application data — into a Value. Maps become Object with
// keys set in sorted order, since a Go map carries none; slices become
// Array; every other
// recognized Go numeric type is normalized to Number per the data model's
// "integer/float distinctions are not preserved" rule.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case int:
		return Number(float64(t)), nil
	case int8:
		return Number(float64(t)), nil
	case int16:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint:
		return Number(float64(t)), nil
	case uint8:
		return Number(float64(t)), nil
	case uint16:
		return Number(float64(t)), nil
	case uint32:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case float32:
		return Number(float64(t)), nil
	case float64:
		return Number(t), nil
	case string:
		return Text(t), nil
	case time.Time:
		return Timestamp(t), nil
	case uuid.UUID:
		return Guid(t), nil
	case []byte:
		return Text(string(t)), nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			iv, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("array element %d: %w", i, err)
			}
			items[i] = iv
		}
		return Array(items), nil
	case map[string]any:
		obj := NewObject()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fv, err := FromAny(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("field %q: %w", k, err)
			}
			obj.Set(k, fv)
		}
		return ObjectValue(obj), nil
	default:
		return Value{}, fmt.Errorf("value: cannot convert %T to Value", v)
	}
}

// ToAny converts a Value back to a plain Go value (bool, float64, string,
// time.Time, uuid.UUID, []any, map[string]any), the inverse of FromAny.
func ToAny(v Value) any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.boolVal
	case KindNumber:
		return v.numberVal
	case KindText:
		return v.textVal
	case KindTimestamp:
		return v.timeVal
	case KindGuid:
		return v.guidVal
	case KindArray:
		out := make([]any, len(v.arrayVal))
		for i, item := range v.arrayVal {
			out[i] = ToAny(item)
		}
		return out
	case KindObject:
		out := make(map[string]any, v.objectVal.Len())
		for _, k := range v.objectVal.Keys() {
			fv, _ := v.objectVal.Get(k)
			out[k] = ToAny(fv)
		}
		return out
	default:
		return nil
	}
}

// ToDisplayString renders a Value's canonical, invariant-culture string
// form, used to build the synthetic _full_text field: numbers in their
// shortest round-tripping decimal form, booleans lower-cased, timestamps as
// YYYY-MM-DD, GUIDs canonical lower-case, arrays/objects flattened
// recursively with one value per line.
func ToDisplayString(v Value) string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.boolVal {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatFloat(v.numberVal, 'g', -1, 64)
	case KindText:
		return v.textVal
	case KindTimestamp:
		return v.timeVal.UTC().Format("2006-01-02")
	case KindGuid:
		return strings.ToLower(v.guidVal.String())
	case KindArray:
		parts := make([]string, 0, len(v.arrayVal))
		for _, item := range v.arrayVal {
			if s := ToDisplayString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	case KindObject:
		parts := make([]string, 0, v.objectVal.Len())
		for _, k := range v.objectVal.Keys() {
			fv, _ := v.objectVal.Get(k)
			if s := ToDisplayString(fv); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}
