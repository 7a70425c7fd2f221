package collection

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docudex/docudex/internal/domain"
	"github.com/docudex/docudex/internal/searchindex"
	"github.com/docudex/docudex/internal/value"
)

// Default paging parameters per §4.6: an omitted (zero) value takes the
// default; an explicit negative value is a caller error.
const (
	defaultTopN         = 100_000
	defaultItemsPerPage = 10
	defaultPageNumber   = 1
)

// SearchCriteria is the input to Collection.Search, per §4.6.
type SearchCriteria struct {
	Query        string
	SortByField  string
	TopN         int
	ItemsPerPage int
	PageNumber   int
}

// SearchResult is the full outcome of a Search call, per §4.6 step 6.
type SearchResult struct {
	Query         string
	SortByField   string
	TopN          int
	ItemsPerPage  int
	PageNumber    int
	HitCount      int
	TotalHitCount uint64
	PageCount     int
	Items         []*value.Object
}

// Search executes criteria against the live index, paginates the hit window
// in memory, and resolves the window's ids to full documents via KV.
func (c *Collection) Search(ctx context.Context, criteria SearchCriteria) (*SearchResult, error) {
	if err := c.checkUsable(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	topN, err := resolvePositive(criteria.TopN, defaultTopN, "topN")
	if err != nil {
		return nil, err
	}
	itemsPerPage, err := resolvePositive(criteria.ItemsPerPage, defaultItemsPerPage, "itemsPerPage")
	if err != nil {
		return nil, err
	}
	pageNumber, err := resolvePositive(criteria.PageNumber, defaultPageNumber, "pageNumber")
	if err != nil {
		return nil, err
	}

	req := searchindex.SearchRequest{Query: criteria.Query, Size: topN}
	if mangled := sortFieldFor(criteria.SortByField); mangled != "" {
		req.SortBy = []string{mangled}
	}

	started := time.Now()
	result, err := c.index.Search(ctx, req)
	c.metrics.Search(c.name, time.Since(started))
	if err != nil {
		return nil, fmt.Errorf("collection %s: search: %w", c.name, err)
	}

	start := (pageNumber - 1) * itemsPerPage
	end := start + itemsPerPage
	window := windowOf(result.Hits, start, end)

	items := make([]*value.Object, 0, len(window))
	for _, h := range window {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			c.logger.Warn("search hit id is not a guid", zap.String("id", h.ID))
			continue
		}
		doc, err := c.Get(ctx, id)
		if err != nil {
			c.logger.Warn("search hit missing from kv", zap.String("id", h.ID), zap.Error(err))
			continue
		}
		items = append(items, doc)
	}

	total := result.Total
	clippedTotal := total
	if clippedTotal > uint64(topN) {
		clippedTotal = uint64(topN)
	}
	pageCount := int(math.Ceil(float64(clippedTotal) / float64(itemsPerPage)))

	return &SearchResult{
		Query:         criteria.Query,
		SortByField:   criteria.SortByField,
		TopN:          topN,
		ItemsPerPage:  itemsPerPage,
		PageNumber:    pageNumber,
		HitCount:      len(window),
		TotalHitCount: total,
		PageCount:     pageCount,
		Items:         items,
	}, nil
}

func resolvePositive(v, def int, name string) (int, error) {
	switch {
	case v == 0:
		return def, nil
	case v < 0:
		return 0, fmt.Errorf("collection: %s must be positive: %w", name, domain.ErrInvalidArgument)
	default:
		return v, nil
	}
}

func windowOf(hits []searchindex.Hit, start, end int) []searchindex.Hit {
	if start < 0 {
		start = 0
	}
	if start > len(hits) {
		start = len(hits)
	}
	if end > len(hits) {
		end = len(hits)
	}
	if end < start {
		end = start
	}
	return hits[start:end]
}

// sortFieldFor translates a caller-facing sortByField (blank for relevance
// order, optionally "-"-prefixed for descending) into the mangled docvalue
// field name bleve's SortBy expects, per §4.6.1.
func sortFieldFor(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	descending := strings.HasPrefix(name, "-")
	if descending {
		name = strings.TrimPrefix(name, "-")
	}
	mangled := searchindex.SortFieldName(name)
	if descending {
		return "-" + mangled
	}
	return mangled
}
