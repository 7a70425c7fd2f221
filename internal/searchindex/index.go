// Package searchindex binds the projector's output to a bleve full-text
// index: one bleve "scorch" index directory per collection, a field
// mapping that grows the same way the schema does (new field names get a
// fresh mapping.FieldMapping registered the moment they're first seen or
// change shape), and a periodic refresh tick standing in for the
// searcher-manager "maybe refresh" call a Lucene-shaped engine would need.
// bleve's own scorch engine makes writes visible to the next Search call
// without an explicit refresh, so the tick here is a structural no-op kept
// for parity with the engine lifecycle the rest of this system assumes.
package searchindex

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"go.uber.org/zap"

	"github.com/docudex/docudex/internal/analyzer"
	"github.com/docudex/docudex/internal/projector"
)

// Index owns one collection's bleve index, writer and (implicit) searcher.
// The mutex stands in for the Lucene-style searcher-manager Acquire/Release
// pair: callers take a read lock for Search, a write lock only while
// mutating the field mapping ahead of an Index call.
type Index struct {
	mu         sync.RWMutex
	bidx       bleve.Index
	docMapping *mapping.DocumentMapping
	selector   *analyzer.Selector
	logger     *zap.Logger

	refreshInterval time.Duration
	stopCh          chan struct{}
	stopped         chan struct{}
}

// Open opens the bleve index directory at dir, creating it with a fresh
// dynamic mapping if it does not already exist, and starts the refresh
// ticker.
func Open(dir string, refreshInterval time.Duration, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var bidx bleve.Index
	var docMapping *mapping.DocumentMapping

	if _, err := os.Stat(dir); err == nil {
		bidx, err = bleve.Open(dir)
		if err != nil {
			return nil, fmt.Errorf("searchindex: open %s: %w", dir, err)
		}
		im, ok := bidx.Mapping().(*mapping.IndexMappingImpl)
		if !ok {
			return nil, fmt.Errorf("searchindex: %s has an unexpected mapping type", dir)
		}
		docMapping = im.DefaultMapping
	} else {
		im := bleve.NewIndexMapping()
		im.DefaultAnalyzer = analyzer.Standard
		im.DefaultField = projector.FullTextFieldName
		docMapping = bleve.NewDocumentMapping()
		docMapping.Dynamic = true
		im.DefaultMapping = docMapping

		bidx, err = bleve.New(dir, im)
		if err != nil {
			return nil, fmt.Errorf("searchindex: create %s: %w", dir, err)
		}
	}

	idx := &Index{
		bidx:            bidx,
		docMapping:      docMapping,
		selector:        analyzer.New(),
		logger:          logger,
		refreshInterval: refreshInterval,
		stopCh:          make(chan struct{}),
		stopped:         make(chan struct{}),
	}
	go idx.refreshLoop()
	return idx, nil
}

// Close stops the refresh ticker and closes the underlying bleve index.
func (idx *Index) Close() error {
	close(idx.stopCh)
	<-idx.stopped
	return idx.bidx.Close()
}

func (idx *Index) refreshLoop() {
	defer close(idx.stopped)
	ticker := time.NewTicker(idx.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-idx.stopCh:
			return
		case <-ticker.C:
			// bleve's scorch engine has no explicit "maybe refresh" call of
			// its own; writes are already visible to the next Search. This
			// tick exists to keep the lifecycle shape the rest of the
			// system assumes, should a future engine swap need it.
		}
	}
}

// Acquire takes a read handle on the index, good for exactly one query or
// write, and returns the function that releases it. Callers must release
// in a guaranteed-release scope (defer) regardless of outcome — the
// searcher-acquisition protocol bleve's own always-current read path makes
// structurally unnecessary for correctness, but which this type still
// enforces so the contract and its timing are exercised.
func (idx *Index) Acquire() func() {
	idx.mu.RLock()
	return idx.mu.RUnlock
}

// IndexDocument writes fields (as produced by projector.Project) as one
// bleve document via a single-operation batch — the explicit commit
// boundary every mutation goes through — registering any field mappings
// the selector hasn't seen yet first. Entries sharing a name (the elements
// of an array field) are written together as a multi-valued field.
func (idx *Index) IndexDocument(ctx context.Context, fields []projector.IndexField) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id, ok := idOf(fields)
	if !ok {
		return fmt.Errorf("searchindex: document has no _id search field")
	}

	idx.ensureMappings(fields)

	doc := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		switch prev := doc[f.Name].(type) {
		case nil:
			doc[f.Name] = f.Value
		case []interface{}:
			doc[f.Name] = append(prev, f.Value)
		default:
			doc[f.Name] = []interface{}{prev, f.Value}
		}
	}

	release := idx.Acquire()
	defer release()
	batch := idx.bidx.NewBatch()
	batch.Index(id, doc)
	if err := idx.bidx.Batch(batch); err != nil {
		return fmt.Errorf("searchindex: index %s: %w", id, err)
	}
	return nil
}

// DeleteDocument removes the document with the given id, a no-op if it is
// already absent, via the same single-operation batch commit boundary as
// IndexDocument.
func (idx *Index) DeleteDocument(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	release := idx.Acquire()
	defer release()
	batch := idx.bidx.NewBatch()
	batch.Delete(id)
	if err := idx.bidx.Batch(batch); err != nil {
		return fmt.Errorf("searchindex: delete %s: %w", id, err)
	}
	return nil
}

func idOf(fields []projector.IndexField) (string, bool) {
	for _, f := range fields {
		if f.Name == "_id" && f.Kind == projector.KindSearch {
			s, ok := f.Value.(string)
			return s, ok
		}
	}
	return "", false
}

// ensureMappings registers a fresh mapping.FieldMapping for any field whose
// (kind, tokenization, value type) fingerprint the selector hasn't bound
// yet — a cache miss meaning either this is the field's first appearance
// or the schema's knowledge of it changed since it was last indexed.
func (idx *Index) ensureMappings(fields []projector.IndexField) {
	var toAdd []projector.IndexField
	for _, f := range fields {
		if idx.selector.Resolve(f.Name, fingerprint(f)) {
			toAdd = append(toAdd, f)
		}
	}
	if len(toAdd) == 0 {
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, f := range toAdd {
		fm := fieldMappingFor(f)
		if fm == nil {
			continue
		}
		idx.docMapping.AddFieldMappingsAt(f.Name, fm)
	}
}

func fingerprint(f projector.IndexField) string {
	return fmt.Sprintf("%d:%t:%T", f.Kind, f.Tokenized, f.Value)
}

// fieldMappingFor chooses the bleve field mapping for one projected index
// field, per §4.3.1's binding table: tokenized search text gets the
// standard analyzer, every other string value (verbatim text, guids, and
// string sort/docvalue fields) gets the keyword analyzer, and int64/float64
// values (numbers, bools, timestamps, null markers) get a numeric mapping;
// non-search-kind fields carry DocValues so bleve can sort and facet on
// them.
func fieldMappingFor(f projector.IndexField) *mapping.FieldMapping {
	switch f.Value.(type) {
	case string:
		fm := mapping.NewTextFieldMapping()
		if f.Kind == projector.KindSearch && f.Tokenized {
			fm.Analyzer = analyzer.Standard
		} else {
			fm.Analyzer = analyzer.ForMangled()
		}
		fm.Store = f.Stored
		fm.DocValues = f.Kind != projector.KindSearch
		fm.IncludeInAll = false
		return fm
	case int64, float64:
		fm := mapping.NewNumericFieldMapping()
		fm.Store = f.Stored
		fm.DocValues = f.Kind != projector.KindSearch
		fm.IncludeInAll = false
		return fm
	default:
		return nil
	}
}
