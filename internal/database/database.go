// Package database implements the top-level Database: a shared KV engine
// and data directory multiplexed across named collections, plus the
// background task that snapshots each collection's live schema back to the
// reserved __schema__ namespace, per §4.7.
package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/docudex/docudex/internal/collection"
	"github.com/docudex/docudex/internal/config"
	"github.com/docudex/docudex/internal/domain"
	"github.com/docudex/docudex/internal/kv"
	"github.com/docudex/docudex/internal/logger"
	"github.com/docudex/docudex/internal/metrics"
	"github.com/docudex/docudex/internal/schema"
	"github.com/docudex/docudex/internal/searchindex"
	"github.com/docudex/docudex/internal/value"
)

// Database multiplexes named collections over one shared bbolt file and one
// index directory per collection, per §4.7.
type Database struct {
	store      *kv.Store
	indexDir   string
	logger     *zap.Logger
	metrics    *metrics.Recorder
	refreshDur time.Duration

	mu          sync.RWMutex
	collections map[string]*collection.Collection

	persistInterval time.Duration
	persistLock     chan struct{}
	stopCh          chan struct{}
	stopped         chan struct{}
}

// Open sets up the data directory layout, starts the shared KV engine,
// loads every persisted schema from __schema__ and instantiates its
// Collection, then starts the schema-persistence ticker.
func Open(cfg config.Config, logger *zap.Logger, reg prometheus.Registerer) (*Database, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dataDir := filepath.Join(cfg.DataDir, "data")
	indexDir := filepath.Join(dataDir, "index")
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("database: create %s: %w", indexDir, err)
	}

	store, err := kv.Open(filepath.Join(dataDir, "kv.db"))
	if err != nil {
		return nil, fmt.Errorf("database: open kv store: %w", err)
	}
	if err := store.EnsureBucket(kv.SchemaBucket); err != nil {
		store.Close()
		return nil, fmt.Errorf("database: ensure schema bucket: %w", err)
	}

	var rec *metrics.Recorder
	if reg != nil {
		rec = metrics.New(reg)
	}

	d := &Database{
		store:           store,
		indexDir:        indexDir,
		logger:          logger,
		metrics:         rec,
		refreshDur:      time.Duration(cfg.Index.RefreshIntervalMillis) * time.Millisecond,
		collections:     make(map[string]*collection.Collection),
		persistInterval: time.Duration(cfg.Schema.PersistenceIntervalSeconds * float64(time.Second)),
		persistLock:     make(chan struct{}, 1),
		stopCh:          make(chan struct{}),
		stopped:         make(chan struct{}),
	}

	if err := d.loadPersistedSchemas(); err != nil {
		store.Close()
		return nil, fmt.Errorf("database: load schemas: %w", err)
	}

	go d.persistLoop()
	return d, nil
}

func (d *Database) loadPersistedSchemas() error {
	ctx := context.Background()
	var openErr error
	err := d.store.ForEach(ctx, kv.SchemaBucket, func(key, raw []byte) error {
		name := string(key)
		obj, err := value.UnmarshalObject(raw)
		if err != nil {
			return fmt.Errorf("decode schema %s: %w", name, err)
		}
		sch, err := schema.FromValue(obj)
		if err != nil {
			return fmt.Errorf("reconstruct schema %s: %w", name, err)
		}
		if _, err := d.openCollection(name, sch); err != nil {
			openErr = err
			return nil
		}
		return nil
	})
	if err != nil {
		return err
	}
	return openErr
}

func (d *Database) openCollection(name string, sch *schema.Schema) (*collection.Collection, error) {
	idx, err := searchindex.Open(filepath.Join(d.indexDir, name), d.refreshDur, d.logger)
	if err != nil {
		return nil, fmt.Errorf("open index for %s: %w", name, err)
	}
	c, err := collection.Open(name, d.store, idx, sch, d.logger, collection.WithMetrics(d.metrics))
	if err != nil {
		idx.Close()
		return nil, fmt.Errorf("open collection %s: %w", name, err)
	}
	d.collections[name] = c
	return c, nil
}

// Collection looks up a collection by name, constructing one with a fresh
// default schema and registering it if none exists yet, per §4.7's
// lookup-or-create rule.
func (d *Database) Collection(name string) (*collection.Collection, error) {
	d.mu.RLock()
	c, ok := d.collections[name]
	d.mu.RUnlock()
	if ok {
		return c, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.collections[name]; ok {
		return c, nil
	}
	c, err := d.openCollection(name, schema.New(name))
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return c, nil
}

// Drop removes name from the registry, drops its Collection and deletes its
// persisted schema row. The registry removal happens first and always
// sticks, even if the collection or schema cleanup that follows fails.
func (d *Database) Drop(ctx context.Context, name string) error {
	d.mu.Lock()
	c, ok := d.collections[name]
	if ok {
		delete(d.collections, name)
	}
	d.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}

	if err := c.Drop(ctx); err != nil {
		return fmt.Errorf("database: drop %s: %w", name, err)
	}
	if err := d.store.Delete(ctx, kv.SchemaBucket, []byte(name)); err != nil && !errors.Is(err, kv.ErrKeyNotFound) {
		return fmt.Errorf("database: delete schema row %s: %w", name, err)
	}
	return nil
}

// Close stops the schema-persist ticker, persists any outstanding schema
// changes one last time, then closes every collection's index and the
// shared KV store.
func (d *Database) Close() error {
	close(d.stopCh)
	<-d.stopped

	d.persistSchemas(logger.ContextWithLogger(context.Background(), d.logger))

	d.mu.Lock()
	cols := make([]*collection.Collection, 0, len(d.collections))
	for _, c := range d.collections {
		cols = append(cols, c)
	}
	d.mu.Unlock()

	for _, c := range cols {
		if err := c.Close(); err != nil {
			d.logger.Warn("close collection index", zap.String("collection", c.Name()), zap.Error(err))
		}
	}
	return d.store.Close()
}
