package value

// Object is an ordered map of field name to Value. Field order is the order
// fields were first set, matching the order a document's JSON or msgpack
// payload presented them in.
type Object struct {
	order []string
	by    map[string]Value
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{by: make(map[string]Value)}
}

// Set assigns a field, appending it to the key order on first use and
// leaving the existing position unchanged on overwrite.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.by[key]; !ok {
		o.order = append(o.order, key)
	}
	o.by[key] = v
}

// Get returns the field's value and whether it is present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.by[key]
	return v, ok
}

// Keys returns field names in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// Len returns the number of fields.
func (o *Object) Len() int { return len(o.order) }

// Equal reports deep structural equality, ignoring field order.
func (o *Object) Equal(other *Object) bool {
	if o == other {
		return true
	}
	if o == nil || other == nil {
		return false
	}
	if len(o.order) != len(other.order) {
		return false
	}
	for _, k := range o.order {
		ov, ok := other.by[k]
		if !ok {
			return false
		}
		if !Equal(o.by[k], ov) {
			return false
		}
	}
	return true
}
