// Package collection implements the Collection aggregate: the fusion of a
// live Schema, a KV namespace and a full-text Index that the teacher split
// across a usecase service and a repository, but which this domain's
// embedded, single-process engines let live in one type — there is no
// network boundary between "decide what to do" and "talk to storage" here.
package collection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docudex/docudex/internal/document"
	"github.com/docudex/docudex/internal/domain"
	"github.com/docudex/docudex/internal/kv"
	"github.com/docudex/docudex/internal/metrics"
	"github.com/docudex/docudex/internal/projector"
	"github.com/docudex/docudex/internal/schema"
	"github.com/docudex/docudex/internal/searchindex"
	"github.com/docudex/docudex/internal/value"
)

// Collection binds one named schema to its KV namespace and search index.
// isDropped/isDisposed are checked at the top of every data operation
// (Insert, Update, Delete, Get, Search, Reindex), per §5.1, so a drop
// racing an in-flight operation fails it with ErrDropped
// (which also satisfies errors.Is(err, ErrNotFound)) rather than operating
// on a closed engine.
type Collection struct {
	name      string
	schema    *schema.Schema
	store     *kv.Store
	index     *searchindex.Index
	projector *projector.Projector
	logger    *zap.Logger
	metrics   *metrics.Recorder

	isDropped  atomic.Bool
	isDisposed atomic.Bool
}

// Option configures optional Collection dependencies.
type Option func(*Collection)

// WithMetrics attaches a metrics.Recorder; without one, recording calls are
// no-ops.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Collection) { c.metrics = r }
}

// Open binds an already-open KV store and a freshly opened search index to
// sch, ensuring the KV bucket exists. The caller (Database) owns the
// lifetime of store; Collection owns the lifetime of idx.
func Open(name string, store *kv.Store, idx *searchindex.Index, sch *schema.Schema, logger *zap.Logger, opts ...Option) (*Collection, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := store.EnsureBucket(name); err != nil {
		return nil, fmt.Errorf("collection %s: ensure bucket: %w", name, err)
	}
	c := &Collection{
		name:      name,
		schema:    sch,
		store:     store,
		index:     idx,
		projector: projector.New(logger, projector.WithFacetBuilder(passthroughFacetBuilder{})),
		logger:    logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Name returns the collection's name, also its KV bucket and index-segment
// directory name.
func (c *Collection) Name() string { return c.name }

// Schema returns the collection's live, still-growing schema.
func (c *Collection) Schema() *schema.Schema { return c.schema }

func (c *Collection) checkUsable() error {
	if c.isDropped.Load() {
		return errors.Join(domain.ErrDropped, domain.ErrNotFound)
	}
	if c.isDisposed.Load() {
		return domain.ErrNotFound
	}
	return nil
}

// Insert assigns _id if absent, stamps _createdTimestamp/_modifiedTimestamp,
// persists the document to KV, projects it against the schema and writes
// the result to the index. Returns the document's id.
func (c *Collection) Insert(ctx context.Context, obj *value.Object) (uuid.UUID, error) {
	if err := c.checkUsable(); err != nil {
		return uuid.UUID{}, err
	}
	if err := ctx.Err(); err != nil {
		return uuid.UUID{}, err
	}

	id := document.EnsureID(obj)
	document.Touch(obj, time.Now().UTC())

	if err := c.persist(ctx, id, obj); err != nil {
		return uuid.UUID{}, err
	}
	if err := c.projectAndIndex(ctx, obj); err != nil {
		return uuid.UUID{}, err
	}
	return id, nil
}

// Update requires _id, replaces the KV row and re-projects the document
// into the index. The stored _createdTimestamp is carried over when obj
// does not supply one. Fails with domain.ErrNotFound if the document does
// not already exist.
func (c *Collection) Update(ctx context.Context, obj *value.Object) error {
	if err := c.checkUsable(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	id, err := document.RequireID(obj)
	if err != nil {
		return err
	}
	existing, err := c.store.Get(ctx, c.name, idKey(id))
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("collection %s: get existing %s: %w", c.name, id, err)
	}
	if _, ok := obj.Get(document.CreatedField); !ok {
		if prev, err := value.UnmarshalObject(existing); err == nil {
			if created, ok := prev.Get(document.CreatedField); ok {
				obj.Set(document.CreatedField, created)
			}
		}
	}

	document.Touch(obj, time.Now().UTC())
	if err := c.persist(ctx, id, obj); err != nil {
		return err
	}
	return c.projectAndIndex(ctx, obj)
}

// Delete removes the document from KV and from the index.
func (c *Collection) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.checkUsable(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.store.Delete(ctx, c.name, idKey(id)); err != nil {
		return fmt.Errorf("collection %s: delete %s: %w", c.name, id, err)
	}
	if err := c.index.DeleteDocument(ctx, docIndexID(id)); err != nil {
		return fmt.Errorf("collection %s: delete %s from index: %w", c.name, id, err)
	}
	return nil
}

// Get returns the document with the given id, or domain.ErrNotFound.
func (c *Collection) Get(ctx context.Context, id uuid.UUID) (*value.Object, error) {
	if err := c.checkUsable(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := c.store.Get(ctx, c.name, idKey(id))
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("collection %s: get %s: %w", c.name, id, err)
	}
	obj, err := value.UnmarshalObject(raw)
	if err != nil {
		return nil, fmt.Errorf("collection %s: decode %s: %w", c.name, id, err)
	}
	return obj, nil
}

// DeclareFacet marks name as a caller-declared facet field, creating the
// schema field (as Null-typed, widened on the next document that projects
// it) if it has not been seen yet.
func (c *Collection) DeclareFacet(name string) {
	f, ok := c.schema.Field(name)
	if !ok {
		f, _ = c.schema.AddOrGetField(name, value.KindNull)
	}
	f.MarkFacet()
}

// Reindex rebuilds the full-text index from the KV engine's documents,
// the recovery path for a crash that left the index behind a committed KV
// write (§7's partial-failure tolerance).
func (c *Collection) Reindex(ctx context.Context) error {
	if err := c.checkUsable(); err != nil {
		return err
	}

	var projectErr error
	err := c.store.ForEach(ctx, c.name, func(_, v []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		obj, err := value.UnmarshalObject(v)
		if err != nil {
			return fmt.Errorf("collection %s: decode during reindex: %w", c.name, err)
		}
		if err := c.projectAndIndex(ctx, obj); err != nil {
			projectErr = err
			return nil
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("collection %s: reindex: %w", c.name, err)
	}
	return projectErr
}

// Drop closes the index, deletes the KV namespace and marks the collection
// dropped and disposed; every subsequent call fails with ErrNotFound.
func (c *Collection) Drop(ctx context.Context) error {
	c.isDropped.Store(true)
	if err := c.Close(); err != nil {
		return fmt.Errorf("collection %s: drop: %w", c.name, err)
	}
	if err := c.store.DeleteBucket(c.name); err != nil && !errors.Is(err, kv.ErrBucketNotFound) {
		return fmt.Errorf("collection %s: drop: %w", c.name, err)
	}
	return nil
}

// Close releases the index handle without deleting any data, used when a
// Database shuts down rather than drops a collection.
func (c *Collection) Close() error {
	if c.isDisposed.Swap(true) {
		return nil
	}
	return c.index.Close()
}

func (c *Collection) persist(ctx context.Context, id uuid.UUID, obj *value.Object) error {
	payload, err := value.MarshalObject(obj)
	if err != nil {
		return fmt.Errorf("collection %s: encode %s: %w", c.name, id, err)
	}
	if err := c.store.Put(ctx, c.name, idKey(id), payload); err != nil {
		return fmt.Errorf("collection %s: persist %s: %w", c.name, id, err)
	}
	return nil
}

func (c *Collection) projectAndIndex(ctx context.Context, obj *value.Object) error {
	fields, warnings, err := c.projector.Project(obj, c.schema)
	if err != nil {
		return fmt.Errorf("collection %s: project: %w", c.name, err)
	}
	for _, w := range warnings {
		if errors.Is(w, domain.ErrSchemaConflict) {
			c.metrics.SchemaConflict(c.name)
		}
	}
	if err := c.index.IndexDocument(ctx, fields); err != nil {
		return fmt.Errorf("collection %s: index: %w", c.name, err)
	}
	c.metrics.IndexDocument(c.name, "write")
	return nil
}

func idKey(id uuid.UUID) []byte {
	b := id
	return b[:]
}

// docIndexID renders id the same way the projector does for the _id search
// field (lowercase canonical string), so a delete-by-id addresses the same
// bleve document the insert created.
func docIndexID(id uuid.UUID) string {
	return strings.ToLower(id.String())
}
