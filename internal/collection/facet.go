package collection

import (
	"github.com/docudex/docudex/internal/projector"
	"github.com/docudex/docudex/internal/schema"
	"github.com/docudex/docudex/internal/value"
)

// passthroughFacetBuilder satisfies projector.FacetBuilder without a
// rebuild step: every field the projector emits already carries a
// group-kind docvalue entry (§4.2's "group" access path), which is exactly
// what bleve facets over via AddFacet, so a caller-declared facet field
// needs no extra hierarchical entry beyond what projection already wrote.
type passthroughFacetBuilder struct{}

func (passthroughFacetBuilder) BuildFacets(
	_ *value.Object, _ *schema.Schema, fields []projector.IndexField,
) ([]projector.IndexField, error) {
	return fields, nil
}
