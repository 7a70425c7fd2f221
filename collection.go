package docudex

import (
	"context"

	"github.com/google/uuid"

	"github.com/docudex/docudex/internal/collection"
)

// Collection is a named, schema-flexible set of documents backed by a KV
// namespace and a full-text index.
type Collection struct {
	inner *collection.Collection
}

// Name returns the collection's name.
func (c *Collection) Name() string { return c.inner.Name() }

// Insert assigns a fresh _id if the document has none, stamps its created
// and modified timestamps, and persists and indexes it.
func (c *Collection) Insert(ctx context.Context, doc *Document) (uuid.UUID, error) {
	return c.inner.Insert(ctx, doc)
}

// Update replaces an existing document. doc must already carry an _id
// matching a document previously returned by Insert or Get; ErrNotFound is
// returned if no stored document has that _id, and a missing-_id error if
// doc carries no _id at all.
func (c *Collection) Update(ctx context.Context, doc *Document) error {
	return c.inner.Update(ctx, doc)
}

// Delete removes a document from the collection and its index.
func (c *Collection) Delete(ctx context.Context, id uuid.UUID) error {
	return c.inner.Delete(ctx, id)
}

// Get fetches a document by id.
func (c *Collection) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	return c.inner.Get(ctx, id)
}

// DeclareFacet marks a field as facetable, creating it (as an as-yet-untyped
// field) if it hasn't been projected from a document yet.
func (c *Collection) DeclareFacet(name string) {
	c.inner.DeclareFacet(name)
}

// Reindex rebuilds the full-text index from the documents stored in KV. Used
// to recover an index left inconsistent by a crash between a KV write and
// its corresponding index commit.
func (c *Collection) Reindex(ctx context.Context) error {
	return c.inner.Reindex(ctx)
}

// Drop deletes every document in the collection and closes its index.
func (c *Collection) Drop(ctx context.Context) error {
	return c.inner.Drop(ctx)
}

// FieldInfo describes one field of a collection's live schema.
type FieldInfo struct {
	Name        string
	DataType    string
	IsTokenized bool
	IsSortable  bool
	IsFacet     bool
}

// Fields enumerates the collection's schema in the order fields were first
// observed.
func (c *Collection) Fields() []FieldInfo {
	fields := c.inner.Schema().Fields()
	out := make([]FieldInfo, len(fields))
	for i, f := range fields {
		out[i] = FieldInfo{
			Name:        f.Name(),
			DataType:    f.DataType().String(),
			IsTokenized: f.IsTokenized(),
			IsSortable:  f.IsSortable(),
			IsFacet:     f.IsFacet(),
		}
	}
	return out
}
