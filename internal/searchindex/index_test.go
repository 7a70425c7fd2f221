package searchindex

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/docudex/docudex/internal/projector"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "widgets")
	idx, err := Open(dir, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func fieldsFor(id string, title string, count float64) []projector.IndexField {
	return []projector.IndexField{
		{Name: "_id", Kind: projector.KindSearch, Value: id, Stored: true},
		{Name: "title", Kind: projector.KindSearch, Value: title, Tokenized: true},
		{Name: projector.SortFieldName("title"), Kind: projector.KindSort, Value: title},
		{Name: projector.GroupFieldName("title"), Kind: projector.KindGroup, Value: title},
		{Name: "count", Kind: projector.KindSearch, Value: count},
		{Name: projector.SortFieldName("count"), Kind: projector.KindSort, Value: int64(count)},
		{Name: projector.GroupFieldName("count"), Kind: projector.KindGroup, Value: int64(count)},
		{Name: projector.FullTextFieldName, Kind: projector.KindSearch, Value: title, Tokenized: true},
	}
}

func TestIndexAndSearch_MatchesByTokenizedTitle(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	if err := idx.IndexDocument(ctx, fieldsFor("doc-1", "Hello World", 3)); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}

	result, err := idx.Search(ctx, SearchRequest{Query: "title:Hello"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total != 1 || len(result.Hits) != 1 || result.Hits[0].ID != "doc-1" {
		t.Fatalf("expected one hit for doc-1, got %+v", result)
	}
}

func TestSearch_MatchAllWhenQueryEmpty(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	_ = idx.IndexDocument(ctx, fieldsFor("doc-1", "Alpha", 1))
	_ = idx.IndexDocument(ctx, fieldsFor("doc-2", "Beta", 2))

	result, err := idx.Search(ctx, SearchRequest{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected 2 hits, got %d", result.Total)
	}
}

func TestDeleteDocument_RemovesFromIndex(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	_ = idx.IndexDocument(ctx, fieldsFor("doc-1", "Alpha", 1))
	if err := idx.DeleteDocument(ctx, "doc-1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}

	result, err := idx.Search(ctx, SearchRequest{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total != 0 {
		t.Fatalf("expected 0 hits after delete, got %d", result.Total)
	}
}

func TestSearch_SortBySortField(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	_ = idx.IndexDocument(ctx, fieldsFor("doc-1", "Zeta", 9))
	_ = idx.IndexDocument(ctx, fieldsFor("doc-2", "Alpha", 1))

	result, err := idx.Search(ctx, SearchRequest{SortBy: []string{SortFieldName("title")}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Hits) != 2 || result.Hits[0].ID != "doc-2" {
		t.Fatalf("expected doc-2 (Alpha) first when sorting by title, got %+v", result.Hits)
	}
}
