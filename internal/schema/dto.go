package schema

import (
	"fmt"

	"github.com/docudex/docudex/internal/value"
)

// ToValue renders the schema as a value.Object, the same recursive
// document shape every other document in the system is built from. Schemas
// persist through the identical KV-engine path as user documents: a schema
// row IS a document in the reserved __schema__ namespace.
func (s *Schema) ToValue() *value.Object {
	obj := value.NewObject()
	obj.Set("_id", value.Guid(s.id))
	obj.Set("name", value.Text(s.name))
	obj.Set("_createdTimestamp", value.Timestamp(s.createdAt))
	obj.Set("_modifiedTimestamp", value.Timestamp(s.ModifiedAt()))
	obj.Set("fields", value.Array(fieldsToValue(s.Fields())))
	return obj
}

// FromValue reconstructs a Schema from its persisted value.Object form, the
// inverse of ToValue.
func FromValue(obj *value.Object) (*Schema, error) {
	idVal, ok := obj.Get("_id")
	if !ok {
		return nil, fmt.Errorf("schema: missing _id")
	}
	id, ok := idVal.AsGuid()
	if !ok {
		return nil, fmt.Errorf("schema: _id is not a guid")
	}

	nameVal, _ := obj.Get("name")
	name, _ := nameVal.AsText()

	createdVal, _ := obj.Get("_createdTimestamp")
	createdAt, _ := createdVal.AsTimestamp()

	modifiedVal, _ := obj.Get("_modifiedTimestamp")
	modifiedAt, _ := modifiedVal.AsTimestamp()

	s := &Schema{
		id:         id,
		name:       name,
		createdAt:  createdAt,
		modifiedAt: modifiedAt,
		fields:     make(map[string]*Field),
	}

	fieldsVal, ok := obj.Get("fields")
	if ok {
		items, _ := fieldsVal.AsArray()
		for _, item := range items {
			fieldObj, ok := item.AsObject()
			if !ok {
				return nil, fmt.Errorf("schema: field entry is not an object")
			}
			f, err := fieldFromValue(fieldObj)
			if err != nil {
				return nil, err
			}
			s.fields[f.name] = f
			s.order = append(s.order, f.name)
		}
	}

	return s, nil
}

func fieldsToValue(fields []*Field) []value.Value {
	out := make([]value.Value, len(fields))
	for i, f := range fields {
		out[i] = fieldToValue(f)
	}
	return out
}

func fieldToValue(f *Field) value.Value {
	o := value.NewObject()
	o.Set("name", value.Text(f.Name()))
	o.Set("dataType", value.Text(f.DataType().String()))
	o.Set("isTokenized", value.Bool(f.IsTokenized()))
	o.Set("isSortable", value.Bool(f.IsSortable()))
	o.Set("isFacet", value.Bool(f.IsFacet()))
	o.Set("arrayElementDataType", value.Text(f.ArrayElementDataType().String()))
	if child := f.ObjectSchema(); child != nil {
		o.Set("objectSchema", value.ObjectValue(child.ToValue()))
	} else {
		o.Set("objectSchema", value.Null())
	}
	return value.ObjectValue(o)
}

func fieldFromValue(o *value.Object) (*Field, error) {
	nameVal, ok := o.Get("name")
	if !ok {
		return nil, fmt.Errorf("schema: field missing name")
	}
	name, _ := nameVal.AsText()

	f := newField(name)

	if dtVal, ok := o.Get("dataType"); ok {
		if s, ok := dtVal.AsText(); ok {
			if kind, ok := value.ParseKind(s); ok {
				f.dataType = kind
			}
		}
	}
	if v, ok := o.Get("isTokenized"); ok {
		f.isTokenized, _ = v.AsBool()
	}
	if v, ok := o.Get("isSortable"); ok {
		f.isSortable, _ = v.AsBool()
	}
	if v, ok := o.Get("isFacet"); ok {
		f.isFacet, _ = v.AsBool()
	}
	if v, ok := o.Get("arrayElementDataType"); ok {
		if s, ok := v.AsText(); ok {
			if kind, ok := value.ParseKind(s); ok {
				f.arrayElementDataType = kind
			}
		}
	}
	if v, ok := o.Get("objectSchema"); ok && !v.IsNull() {
		childObj, ok := v.AsObject()
		if !ok {
			return nil, fmt.Errorf("schema: field %q objectSchema is not an object", name)
		}
		child, err := FromValue(childObj)
		if err != nil {
			return nil, fmt.Errorf("schema: field %q objectSchema: %w", name, err)
		}
		f.objectSchema = child
	}

	return f, nil
}

// FieldsEqual reports whether two schemas have structurally identical field
// sets (name, type, tokenization, sortability, facet flag, array element
// type, nested schema — recursively), ignoring the two schemas' own id and
// timestamps. A nested object schema is compared in its full persisted
// form, so its id and timestamps must match as well. The
// schema-persistence task uses this to decide whether a live schema has
// actually grown since it was last written.
func FieldsEqual(a, b *Schema) bool {
	return value.Equal(value.Array(fieldsToValue(a.Fields())), value.Array(fieldsToValue(b.Fields())))
}
