package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/docudex/docudex/internal/kv"
	"github.com/docudex/docudex/internal/logger"
	"github.com/docudex/docudex/internal/schema"
	"github.com/docudex/docudex/internal/value"
)

// schemaPersistTimeout bounds how long one persistence tick is allowed to
// run once it has won the try-lock, per §5.1.
const schemaPersistTimeout = 500 * time.Millisecond

func (d *Database) persistLoop() {
	defer close(d.stopped)
	ticker := time.NewTicker(d.persistInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stopCh:
			return
		case <-ticker.C:
			d.tryPersistSchemas()
		}
	}
}

// tryPersistSchemas is the non-blocking try-lock: a contended tick is
// skipped outright rather than queued, the buffered channel standing in for
// a timed mutex the stdlib doesn't offer, per §5.1.
func (d *Database) tryPersistSchemas() {
	select {
	case d.persistLock <- struct{}{}:
	default:
		d.metrics.SchemaPersistTick("skipped")
		return
	}
	defer func() { <-d.persistLock }()

	base := logger.ContextWithLogger(context.Background(), d.logger)
	ctx, cancel := context.WithTimeout(base, schemaPersistTimeout)
	defer cancel()
	d.persistSchemas(ctx)
}

func (d *Database) persistSchemas(ctx context.Context) {
	d.mu.RLock()
	names := make([]string, 0, len(d.collections))
	schemas := make([]*schema.Schema, 0, len(d.collections))
	for name, c := range d.collections {
		names = append(names, name)
		schemas = append(schemas, c.Schema())
	}
	d.mu.RUnlock()

	for i, sch := range schemas {
		if err := ctx.Err(); err != nil {
			d.metrics.SchemaPersistTick("skipped")
			return
		}
		if err := d.persistSchema(ctx, names[i], sch); err != nil {
			logger.FromContext(ctx).Warn("schema persist failed", zap.String("collection", names[i]), zap.Error(err))
			d.metrics.SchemaPersistTick("error")
			continue
		}
	}
}

// persistSchema writes sch's current snapshot to the __schema__ namespace:
// insert on first sight, update only when the live schema differs from the
// last saved one, skip otherwise — per §4.7.
func (d *Database) persistSchema(ctx context.Context, name string, sch *schema.Schema) error {
	existing, err := d.store.Get(ctx, kv.SchemaBucket, []byte(name))
	if err != nil && !errors.Is(err, kv.ErrKeyNotFound) {
		return fmt.Errorf("get existing schema: %w", err)
	}
	if err == nil {
		if storedObj, decErr := value.UnmarshalObject(existing); decErr == nil {
			if stored, fromErr := schema.FromValue(storedObj); fromErr == nil && schema.FieldsEqual(sch, stored) {
				d.metrics.SchemaPersistTick("unchanged")
				return nil
			}
		}
	}

	sch.Touch(time.Now().UTC())
	payload, encErr := value.MarshalObject(sch.ToValue())
	if encErr != nil {
		return fmt.Errorf("encode schema: %w", encErr)
	}
	if err := d.store.Put(ctx, kv.SchemaBucket, []byte(name), payload); err != nil {
		return fmt.Errorf("put schema: %w", err)
	}
	d.metrics.SchemaPersistTick("written")
	return nil
}
