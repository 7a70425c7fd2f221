package searchindex

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/docudex/docudex/internal/projector"
)

// FacetRequest asks for the top Size distinct values of Field, which must
// be a field the projector has given docvalues (a group-kind mangled
// field).
type FacetRequest struct {
	Field string
	Size  int
}

// SearchRequest is the engine-agnostic shape a collection's Search
// operation builds; Query is parsed against the full-text field unless a
// term is explicitly qualified with "field:".
type SearchRequest struct {
	Query  string
	From   int
	Size   int
	SortBy []string
	Facets []FacetRequest
}

// Hit is one matched document's identity and relevance score; the caller
// resolves the full document from the KV engine by ID.
type Hit struct {
	ID    string
	Score float64
}

// FacetTerm is one distinct value and its occurrence count within a facet.
type FacetTerm struct {
	Term  string
	Count int
}

// SearchResult is the full outcome of a Search call.
type SearchResult struct {
	Total  uint64
	Hits   []Hit
	Facets map[string][]FacetTerm
}

// Search executes req against the live index. An empty Query matches every
// document, per §4.6's "query omitted" case.
func (idx *Index) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bq := buildQuery(req.Query)
	breq := bleve.NewSearchRequestOptions(bq, sizeOrDefault(req.Size), req.From, false)
	if len(req.SortBy) > 0 {
		breq.SortBy(req.SortBy)
	}
	for _, f := range req.Facets {
		size := f.Size
		if size <= 0 {
			size = 10
		}
		breq.AddFacet(f.Field, bleve.NewFacetRequest(f.Field, size))
	}

	release := idx.Acquire()
	result, err := idx.bidx.SearchInContext(ctx, breq)
	release()
	if err != nil {
		return nil, fmt.Errorf("searchindex: search: %w", err)
	}

	out := &SearchResult{Total: result.Total}
	out.Hits = make([]Hit, len(result.Hits))
	for i, h := range result.Hits {
		out.Hits[i] = Hit{ID: h.ID, Score: h.Score}
	}
	if len(result.Facets) > 0 {
		out.Facets = make(map[string][]FacetTerm, len(result.Facets))
		for name, fr := range result.Facets {
			var terms []FacetTerm
			for _, t := range fr.Terms.Terms() {
				terms = append(terms, FacetTerm{Term: t.Term, Count: t.Count})
			}
			out.Facets[name] = terms
		}
	}
	return out, nil
}

// buildQuery binds a caller's query string to a bleve query per §4.6.1:
// "*:*" or empty matches everything; a query carrying a "field:" qualifier
// is handed to bleve's own query-string grammar verbatim; anything else is
// a plain match against the synthesized full-text field.
func buildQuery(q string) query.Query {
	trimmed := strings.TrimSpace(q)
	if trimmed == "" || trimmed == "*:*" {
		return bleve.NewMatchAllQuery()
	}
	if strings.Contains(trimmed, ":") {
		return bleve.NewQueryStringQuery(trimmed)
	}
	mq := bleve.NewMatchQuery(trimmed)
	mq.SetField(projector.FullTextFieldName)
	return mq
}

func sizeOrDefault(size int) int {
	if size <= 0 {
		return 10
	}
	return size
}

// SortFieldName exposes the projector's mangling scheme so a caller (the
// collection's query translation) can turn a user-facing field name into
// the docvalue field bleve should sort on.
func SortFieldName(name string) string { return projector.SortFieldName(name) }
