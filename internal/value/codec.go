package value

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// EncodeMsgpack implements msgpack.CustomEncoder so a Value round-trips
// through the KV store as a tagged array: [kind, payload...]. Object and
// Array recurse through the same encoder, so nesting costs nothing extra.
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch v.kind {
	case KindNull:
		if err := enc.EncodeArrayLen(1); err != nil {
			return err
		}
		return enc.EncodeInt(int64(v.kind))
	case KindBool:
		if err := enc.EncodeArrayLen(2); err != nil {
			return err
		}
		if err := enc.EncodeInt(int64(v.kind)); err != nil {
			return err
		}
		return enc.EncodeBool(v.boolVal)
	case KindNumber:
		if err := enc.EncodeArrayLen(2); err != nil {
			return err
		}
		if err := enc.EncodeInt(int64(v.kind)); err != nil {
			return err
		}
		return enc.EncodeFloat64(v.numberVal)
	case KindText:
		if err := enc.EncodeArrayLen(2); err != nil {
			return err
		}
		if err := enc.EncodeInt(int64(v.kind)); err != nil {
			return err
		}
		return enc.EncodeString(v.textVal)
	case KindTimestamp:
		if err := enc.EncodeArrayLen(2); err != nil {
			return err
		}
		if err := enc.EncodeInt(int64(v.kind)); err != nil {
			return err
		}
		return enc.EncodeTime(v.timeVal)
	case KindGuid:
		if err := enc.EncodeArrayLen(2); err != nil {
			return err
		}
		if err := enc.EncodeInt(int64(v.kind)); err != nil {
			return err
		}
		b, err := v.guidVal.MarshalBinary()
		if err != nil {
			return err
		}
		return enc.EncodeBytes(b)
	case KindArray:
		if err := enc.EncodeArrayLen(2); err != nil {
			return err
		}
		if err := enc.EncodeInt(int64(v.kind)); err != nil {
			return err
		}
		if err := enc.EncodeArrayLen(len(v.arrayVal)); err != nil {
			return err
		}
		for _, item := range v.arrayVal {
			if err := enc.Encode(item); err != nil {
				return err
			}
		}
		return nil
	case KindObject:
		if err := enc.EncodeArrayLen(3); err != nil {
			return err
		}
		if err := enc.EncodeInt(int64(v.kind)); err != nil {
			return err
		}
		keys := v.objectVal.Keys()
		if err := enc.EncodeArrayLen(len(keys)); err != nil {
			return err
		}
		for _, k := range keys {
			if err := enc.EncodeString(k); err != nil {
				return err
			}
		}
		if err := enc.EncodeArrayLen(len(keys)); err != nil {
			return err
		}
		for _, k := range keys {
			fv, _ := v.objectVal.Get(k)
			if err := enc.Encode(fv); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("value: cannot encode unknown kind %d", int(v.kind))
	}
}

// MarshalObject encodes obj as a msgpack payload, the form every document
// and schema row takes on disk: the KV engine's source-of-truth encoding.
func MarshalObject(obj *Object) ([]byte, error) {
	return msgpack.Marshal(ObjectValue(obj))
}

// UnmarshalObject decodes a payload produced by MarshalObject back into an
// Object.
func UnmarshalObject(b []byte) (*Object, error) {
	var v Value
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	obj, ok := v.AsObject()
	if !ok {
		return nil, fmt.Errorf("value: payload is not an object")
	}
	return obj, nil
}

// DecodeMsgpack implements msgpack.CustomDecoder, the inverse of EncodeMsgpack.
func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("value: malformed encoding, empty array")
	}
	kindInt, err := dec.DecodeInt()
	if err != nil {
		return err
	}
	kind := Kind(kindInt)
	switch kind {
	case KindNull:
		*v = Null()
		return nil
	case KindBool:
		b, err := dec.DecodeBool()
		if err != nil {
			return err
		}
		*v = Bool(b)
		return nil
	case KindNumber:
		f, err := dec.DecodeFloat64()
		if err != nil {
			return err
		}
		*v = Number(f)
		return nil
	case KindText:
		s, err := dec.DecodeString()
		if err != nil {
			return err
		}
		*v = Text(s)
		return nil
	case KindTimestamp:
		t, err := dec.DecodeTime()
		if err != nil {
			return err
		}
		*v = Timestamp(t)
		return nil
	case KindGuid:
		b, err := dec.DecodeBytes()
		if err != nil {
			return err
		}
		id, err := uuid.FromBytes(b)
		if err != nil {
			return err
		}
		*v = Guid(id)
		return nil
	case KindArray:
		count, err := dec.DecodeArrayLen()
		if err != nil {
			return err
		}
		items := make([]Value, count)
		for i := 0; i < count; i++ {
			if err := dec.Decode(&items[i]); err != nil {
				return err
			}
		}
		*v = Array(items)
		return nil
	case KindObject:
		keyCount, err := dec.DecodeArrayLen()
		if err != nil {
			return err
		}
		keys := make([]string, keyCount)
		for i := 0; i < keyCount; i++ {
			keys[i], err = dec.DecodeString()
			if err != nil {
				return err
			}
		}
		valCount, err := dec.DecodeArrayLen()
		if err != nil {
			return err
		}
		if valCount != keyCount {
			return fmt.Errorf("value: malformed object, %d keys but %d values", keyCount, valCount)
		}
		obj := NewObject()
		for i := 0; i < valCount; i++ {
			var fv Value
			if err := dec.Decode(&fv); err != nil {
				return err
			}
			obj.Set(keys[i], fv)
		}
		*v = ObjectValue(obj)
		return nil
	default:
		return fmt.Errorf("value: cannot decode unknown kind %d", int(kind))
	}
}
