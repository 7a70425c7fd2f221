// Package projector implements the pure document-to-index-fields mapping:
// given a document and the live schema of its collection, it produces the
// set of index entries the full-text engine should receive, widening the
// schema as a side effect exactly as far as the document's shape requires.
package projector

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/docudex/docudex/internal/domain"
	"github.com/docudex/docudex/internal/schema"
	"github.com/docudex/docudex/internal/value"
)

// Kind tags which of the three access paths an IndexField serves.
type Kind int

// Index field kinds, per §4.2's name-mangling table.
const (
	KindSearch Kind = iota
	KindSort
	KindGroup
)

// FullTextFieldName is the synthetic concatenated field every projected
// document carries, used as the default query field.
const FullTextFieldName = "_full_text"

const idFieldName = "_id"

var metadataFieldNames = map[string]bool{
	"_id":                true,
	"_createdTimestamp":  true,
	"_modifiedTimestamp": true,
}

// forbiddenFieldNameChars is the illegal-character set from §4.2's
// field-name policy; any of these, or whitespace, makes a field name
// unindexable (it still survives in the KV-persisted payload).
const forbiddenFieldNameChars = `+&|!(){}[]^"~*?:\/`

// IndexField is one (name, value, kind) triple the full-text engine should
// receive. Value is always one of string, int64 or float64; the search
// index binding decides the concrete bleve field mapping from Kind plus
// Value's Go type plus Tokenized.
type IndexField struct {
	Name      string
	Kind      Kind
	Value     any
	Tokenized bool
	Stored    bool
}

// FacetBuilder rebuilds a projected document with hierarchical facet
// entries for whichever fields the schema has caller-declared as facets.
// A FacetBuilder failure is recovered locally: the un-faceted fields are
// kept and the failure is reported as a warning, per §4.2.
type FacetBuilder interface {
	BuildFacets(doc *value.Object, sch *schema.Schema, fields []IndexField) ([]IndexField, error)
}

// Projector is stateless beyond its logger and optional facet builder; all
// mutable state it touches lives in the Schema passed to Project.
type Projector struct {
	logger       *zap.Logger
	facetBuilder FacetBuilder
}

// Option configures a Projector.
type Option func(*Projector)

// WithFacetBuilder installs a facet builder. Without one, facet-declared
// fields are simply projected like any other field — there is no
// un-faceted-vs-faceted difference to fall back to.
func WithFacetBuilder(b FacetBuilder) Option {
	return func(p *Projector) { p.facetBuilder = b }
}

// New creates a Projector.
func New(logger *zap.Logger, opts ...Option) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Projector{logger: logger}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Project maps doc into its index fields against sch, widening sch as a
// side effect. Recovered problems (schema conflicts, illegal field names,
// mismatched array elements, facet build failures) are returned as
// warnings, not errors; the document is still indexed minus the offending
// entries. The only hard failure is a document with no _id.
func (p *Projector) Project(doc *value.Object, sch *schema.Schema) (fields []IndexField, warnings []error, err error) {
	idVal, ok := doc.Get(idFieldName)
	if !ok || idVal.Kind() != value.KindGuid {
		return nil, nil, domain.ErrMissingID
	}

	var warns []error
	var out []IndexField

	// _id is emitted first, per §4.2, and is the only entry ever stored.
	idFields, idWarns := p.projectLeaf(idFieldName, idVal, sch, true)
	for i := range idFields {
		if idFields[i].Kind == KindSearch {
			idFields[i].Stored = true
		}
	}
	out = append(out, idFields...)
	warns = append(warns, idWarns...)

	var fullText []string
	for _, key := range doc.Keys() {
		if key == idFieldName {
			continue
		}
		v, _ := doc.Get(key)
		fieldOut, fieldWarns := p.projectField(key, v, sch, true)
		out = append(out, fieldOut...)
		warns = append(warns, fieldWarns...)

		if !metadataFieldNames[key] {
			if s := value.ToDisplayString(v); s != "" {
				fullText = append(fullText, s)
			}
		}
	}

	out = append(out, IndexField{
		Name:      FullTextFieldName,
		Kind:      KindSearch,
		Value:     strings.Join(fullText, "\n"),
		Tokenized: true,
	})

	if p.facetBuilder != nil && hasFacetField(sch) {
		faceted, ferr := p.facetBuilder.BuildFacets(doc, sch, out)
		if ferr != nil {
			warns = append(warns, fmt.Errorf("%w: %v", domain.ErrFacetBuildFailure, ferr))
			p.logger.Warn("facet build failed, indexing without facets",
				zap.String("schema", sch.Name()), zap.Error(ferr))
		} else {
			out = faceted
		}
	}

	for _, w := range warns {
		p.logger.Warn("projection warning", zap.String("schema", sch.Name()), zap.Error(w))
	}

	return out, warns, nil
}

func hasFacetField(sch *schema.Schema) bool {
	for _, f := range sch.Fields() {
		if f.IsFacet() {
			return true
		}
	}
	return false
}

// projectField dispatches on the value's kind, evolving sch for the field
// named name. topLevel controls whether the field is eligible to be marked
// sortable, per the "top-level non-array leaf fields only" rule.
func (p *Projector) projectField(name string, v value.Value, sch *schema.Schema, topLevel bool) ([]IndexField, []error) {
	if isIllegalFieldName(name) {
		return nil, []error{domain.NewIllegalFieldName(name)}
	}

	switch v.Kind() {
	case value.KindArray:
		return p.projectArray(name, v, sch)
	case value.KindObject:
		return p.projectObject(name, v, sch)
	default:
		return p.projectLeaf(name, v, sch, topLevel)
	}
}

// projectLeaf handles every scalar Value kind (including Null) for a field
// that is not itself an array or object.
func (p *Projector) projectLeaf(name string, v value.Value, sch *schema.Schema, topLevel bool) ([]IndexField, []error) {
	if v.Kind() == value.KindNull {
		return []IndexField{{
			Name:  nullFieldName(name),
			Kind:  KindSearch,
			Value: int64(1),
		}}, nil
	}

	field, err := sch.AddOrGetField(name, v.Kind())
	if err != nil {
		return nil, []error{err}
	}
	if topLevel {
		field.MarkSortable()
	}

	return leafEntries(name, v, field, topLevel), nil
}

func leafEntries(name string, v value.Value, field *schema.Field, topLevel bool) []IndexField {
	var out []IndexField
	emitSort := topLevel && field.IsSortable()

	switch v.Kind() {
	case value.KindNumber:
		n, _ := v.AsNumber()
		bits := int64(math.Float64bits(n))
		out = append(out, IndexField{Name: name, Kind: KindSearch, Value: n})
		if emitSort {
			out = append(out, IndexField{Name: sortFieldName(name), Kind: KindSort, Value: bits})
		}
		out = append(out, IndexField{Name: groupFieldName(name), Kind: KindGroup, Value: bits})

	case value.KindBool:
		b, _ := v.AsBool()
		n := int64(0)
		if b {
			n = 1
		}
		out = append(out, IndexField{Name: name, Kind: KindSearch, Value: n})
		if emitSort {
			out = append(out, IndexField{Name: sortFieldName(name), Kind: KindSort, Value: n})
		}
		out = append(out, IndexField{Name: groupFieldName(name), Kind: KindGroup, Value: n})

	case value.KindText:
		s, _ := v.AsText()
		out = append(out, IndexField{Name: name, Kind: KindSearch, Value: s, Tokenized: field.IsTokenized()})
		truncated := truncate256(s)
		if emitSort {
			out = append(out, IndexField{Name: sortFieldName(name), Kind: KindSort, Value: strings.ToLower(truncated)})
		}
		out = append(out, IndexField{Name: groupFieldName(name), Kind: KindGroup, Value: truncated})

	case value.KindTimestamp:
		t, _ := v.AsTimestamp()
		ticks := toTicks(t)
		out = append(out, IndexField{Name: name, Kind: KindSearch, Value: ticks})
		if emitSort {
			out = append(out, IndexField{Name: sortFieldName(name), Kind: KindSort, Value: ticks})
		}
		out = append(out, IndexField{Name: groupFieldName(name), Kind: KindGroup, Value: ticks})

	case value.KindGuid:
		g, _ := v.AsGuid()
		s := strings.ToLower(g.String())
		out = append(out, IndexField{Name: name, Kind: KindSearch, Value: s})
		if emitSort {
			out = append(out, IndexField{Name: sortFieldName(name), Kind: KindSort, Value: s})
		}
		out = append(out, IndexField{Name: groupFieldName(name), Kind: KindGroup, Value: s})
	}

	return out
}

// projectArray projects each element against the field's (once-adopted)
// element type. Nested arrays and mismatched-type elements are skipped
// with a warning; array fields are never sortable, so only search and
// group entries are ever emitted for their elements.
func (p *Projector) projectArray(name string, v value.Value, sch *schema.Schema) ([]IndexField, []error) {
	if _, err := sch.AddOrGetField(name, value.KindArray); err != nil {
		return nil, []error{err}
	}
	field, _ := sch.Field(name)

	items, _ := v.AsArray()
	var out []IndexField
	var warns []error

	for _, item := range items {
		if item.Kind() == value.KindNull {
			continue
		}
		if item.Kind() == value.KindArray {
			warns = append(warns, fmt.Errorf("%w: nested array element in field %q", domain.ErrSchemaConflict, name))
			continue
		}

		if err := field.AdoptArrayElementType(item.Kind()); err != nil {
			warns = append(warns, err)
			continue
		}

		if item.Kind() == value.KindObject {
			childSchema := field.ObjectSchemaOrCreate(name)
			childOut, childWarns := p.projectObjectFields(name, item, childSchema)
			out = append(out, childOut...)
			warns = append(warns, childWarns...)
			continue
		}

		out = append(out, arrayElementEntries(name, item)...)
	}

	return out, warns
}

func arrayElementEntries(name string, v value.Value) []IndexField {
	switch v.Kind() {
	case value.KindNumber:
		n, _ := v.AsNumber()
		bits := int64(math.Float64bits(n))
		return []IndexField{
			{Name: name, Kind: KindSearch, Value: n},
			{Name: groupFieldName(name), Kind: KindGroup, Value: bits},
		}
	case value.KindBool:
		b, _ := v.AsBool()
		n := int64(0)
		if b {
			n = 1
		}
		return []IndexField{
			{Name: name, Kind: KindSearch, Value: n},
			{Name: groupFieldName(name), Kind: KindGroup, Value: n},
		}
	case value.KindText:
		s, _ := v.AsText()
		return []IndexField{
			{Name: name, Kind: KindSearch, Value: s, Tokenized: true},
			{Name: groupFieldName(name), Kind: KindGroup, Value: truncate256(s)},
		}
	case value.KindTimestamp:
		t, _ := v.AsTimestamp()
		ticks := toTicks(t)
		return []IndexField{
			{Name: name, Kind: KindSearch, Value: ticks},
			{Name: groupFieldName(name), Kind: KindGroup, Value: ticks},
		}
	case value.KindGuid:
		g, _ := v.AsGuid()
		s := strings.ToLower(g.String())
		return []IndexField{
			{Name: name, Kind: KindSearch, Value: s},
			{Name: groupFieldName(name), Kind: KindGroup, Value: s},
		}
	default:
		return nil
	}
}

// projectObject recurses into a nested object, synthesizing its child
// schema on demand and dotting field names with the parent's name prefix.
func (p *Projector) projectObject(name string, v value.Value, sch *schema.Schema) ([]IndexField, []error) {
	if _, err := sch.AddOrGetField(name, value.KindObject); err != nil {
		return nil, []error{err}
	}
	field, _ := sch.Field(name)
	childSchema := field.ObjectSchemaOrCreate(name)
	return p.projectObjectFields(name, v, childSchema)
}

func (p *Projector) projectObjectFields(prefix string, v value.Value, childSchema *schema.Schema) ([]IndexField, []error) {
	obj, ok := v.AsObject()
	if !ok {
		return nil, nil
	}

	var out []IndexField
	var warns []error
	for _, key := range obj.Keys() {
		fv, _ := obj.Get(key)
		dotted := prefix + "." + key
		fieldOut, fieldWarns := p.projectField(dotted, fv, childSchema, false)
		out = append(out, fieldOut...)
		warns = append(warns, fieldWarns...)
	}
	return out, warns
}

func isIllegalFieldName(name string) bool {
	if strings.ContainsAny(name, forbiddenFieldNameChars) {
		return true
	}
	for _, r := range name {
		if unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

// SortFieldName, GroupFieldName and NullFieldName export the name-mangling
// scheme so callers outside this package (the search index binding,
// translating a caller's sort request into the underlying docvalue field)
// can address the same mangled fields this package writes.
func SortFieldName(name string) string  { return sortFieldName(name) }
func GroupFieldName(name string) string { return groupFieldName(name) }
func NullFieldName(name string) string  { return nullFieldName(name) }

func sortFieldName(name string) string  { return "__" + name + "_sort__" }
func groupFieldName(name string) string { return "__" + name + "_docvalues__" }
func nullFieldName(name string) string  { return "__" + name + "_null__" }

func truncate256(s string) string {
	r := []rune(s)
	if len(r) > 256 {
		r = r[:256]
	}
	return strings.TrimSpace(string(r))
}

// ticksPerSecond is the number of 100-ns ticks in a second, matching the
// data model's 100-ns timestamp resolution.
const ticksPerSecond = int64(10_000_000)

// epochTicksOffset is the tick count from year 1 to the Unix epoch, so
// toTicks produces the same absolute tick numbering regardless of which
// epoch a caller's original timestamp source used.
const epochTicksOffset = int64(621355968000000000)

func toTicks(t time.Time) int64 {
	unixNanos := t.UTC().UnixNano()
	return epochTicksOffset + unixNanos/100
}
