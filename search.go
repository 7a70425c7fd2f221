package docudex

import (
	"context"

	"github.com/docudex/docudex/internal/collection"
)

// SearchCriteria is the input to Collection.Search.
//
// An empty Query matches every document. A query containing a colon (e.g.
// "status:open") is passed through verbatim as a field-qualified query
// string; any other non-empty query is matched against the full-text field.
// SortByField, if set, sorts by that field instead of relevance, descending
// if prefixed with "-". TopN, ItemsPerPage, and PageNumber are all optional
// (zero uses the default); a negative value is a caller error.
type SearchCriteria = collection.SearchCriteria

// SearchResult is the outcome of a Search call: the resolved paging
// parameters, the total and page hit counts, and the page's documents.
type SearchResult = collection.SearchResult

// Search executes criteria against the collection's live index and resolves
// the requested page of hits back to full documents.
func (c *Collection) Search(ctx context.Context, criteria SearchCriteria) (*SearchResult, error) {
	return c.inner.Search(ctx, criteria)
}
