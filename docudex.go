// Package docudex is a schema-flexible, full-text searchable document store
// embedded directly into the host process: a shared bbolt file for document
// storage, a bleve full-text index per collection, and a schema that grows to
// fit whatever fields callers actually write.
package docudex

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/docudex/docudex/internal/config"
	"github.com/docudex/docudex/internal/database"
	"github.com/docudex/docudex/internal/domain"
	dlogger "github.com/docudex/docudex/internal/logger"
	"github.com/docudex/docudex/internal/version"
)

// Version, Commit, and BuildDate report the build this binary was linked
// from, set via -ldflags the way the teacher's cmd/vecdex/main.go does.
var (
	Version   = version.Version
	Commit    = version.Commit
	BuildDate = version.Date
)

// Sentinel errors returned by Collection and DB methods. Callers branch on
// these with errors.Is rather than matching strings.
var (
	ErrNotFound        = domain.ErrNotFound
	ErrInvalidArgument = domain.ErrInvalidArgument
	ErrSchemaConflict  = domain.ErrSchemaConflict
)

// DB is a running docudex instance: one shared KV engine plus one full-text
// index per collection, all rooted under Config.DataDir.
type DB struct {
	inner *database.Database
}

type openConfig struct {
	logger    *zap.Logger
	registry  prometheus.Registerer
	loggerErr error
}

// Option configures Open.
type Option func(*openConfig)

// WithLogger supplies the *zap.Logger every collection and the background
// schema-persist ticker log through. Open builds a no-op logger if omitted.
func WithLogger(logger *zap.Logger) Option {
	return func(c *openConfig) { c.logger = logger }
}

// WithMetrics registers docudex's Prometheus collectors against reg. Metrics
// are left unregistered (and every recorder call a no-op) if omitted.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *openConfig) { c.registry = reg }
}

// WithEnvLogger builds a logger via the same env-driven convention as the
// teacher's cmd/vecdex entrypoint ("prod" for JSON output; "local", "dev" or
// "docker" for a development console encoder) and installs it with WithLogger. Open
// returns the build error immediately if env is not recognized.
func WithEnvLogger(env string, levelOverride ...string) Option {
	return func(c *openConfig) {
		l, err := dlogger.NewLogger(env, levelOverride...)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = l
	}
}

// Config is the process-level configuration docudex runs under: the data
// directory, the schema-persist tick period, and the index refresh period.
type Config = config.Config

// Open starts docudex against cfg.DataDir, replaying every collection whose
// schema survived a previous run from the reserved __schema__ namespace.
func Open(cfg Config, opts ...Option) (*DB, error) {
	oc := &openConfig{}
	for _, o := range opts {
		o(oc)
	}
	if oc.loggerErr != nil {
		return nil, fmt.Errorf("docudex: %w", oc.loggerErr)
	}
	d, err := database.Open(cfg, oc.logger, oc.registry)
	if err != nil {
		return nil, fmt.Errorf("docudex: %w", err)
	}
	return &DB{inner: d}, nil
}

// Close stops the background schema-persist ticker, persists any pending
// schema changes, and closes every collection's index plus the shared store.
func (db *DB) Close() error {
	return db.inner.Close()
}

// Collection returns the named collection, creating it with an empty schema
// on first use.
func (db *DB) Collection(name string) (*Collection, error) {
	c, err := db.inner.Collection(name)
	if err != nil {
		return nil, err
	}
	return &Collection{inner: c}, nil
}

// Drop deletes a collection's documents, index, and persisted schema.
func (db *DB) Drop(ctx context.Context, name string) error {
	return db.inner.Drop(ctx, name)
}
