package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docudex/docudex/internal/config"
	"github.com/docudex/docudex/internal/domain"
	"github.com/docudex/docudex/internal/value"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		DataDir: t.TempDir(),
		Schema:  config.SchemaConfig{PersistenceIntervalSeconds: 0.02},
		Index:   config.IndexConfig{RefreshIntervalMillis: 50},
	}
}

func TestOpen_CreatesDataDirLayout(t *testing.T) {
	cfg := testConfig(t)
	d, err := Open(cfg, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	for _, p := range []string{
		filepath.Join(cfg.DataDir, "data", "index"),
		filepath.Join(cfg.DataDir, "data", "kv.db"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s to exist after Open: %v", p, err)
		}
	}
}

func TestCollection_LookupOrCreate(t *testing.T) {
	cfg := testConfig(t)
	d, err := Open(cfg, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	first, err := d.Collection("widgets")
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}
	second, err := d.Collection("widgets")
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}
	if first != second {
		t.Fatal("expected the same *Collection instance on repeated lookup")
	}
}

func TestDrop_RemovesCollectionAndSchemaRow(t *testing.T) {
	cfg := testConfig(t)
	d, err := Open(cfg, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()
	ctx := context.Background()

	c, err := d.Collection("widgets")
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}
	obj := value.NewObject()
	obj.Set("title", value.Text("Hello"))
	if _, err := c.Insert(ctx, obj); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := d.Drop(ctx, "widgets"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if err := d.Drop(ctx, "widgets"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second drop, got %v", err)
	}

	fresh, err := d.Collection("widgets")
	if err != nil {
		t.Fatalf("Collection after drop: %v", err)
	}
	if fresh == c {
		t.Fatal("expected a fresh collection after drop, not the dropped instance")
	}
}

func TestSchemaPersistence_SurvivesReopen(t *testing.T) {
	cfg := testConfig(t)
	d, err := Open(cfg, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	c, err := d.Collection("widgets")
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}
	obj := value.NewObject()
	obj.Set("title", value.Text("Hello"))
	if _, err := c.Insert(ctx, obj); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	time.Sleep(150 * time.Millisecond)

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(cfg, nil, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	c2, err := reopened.Collection("widgets")
	if err != nil {
		t.Fatalf("Collection after reopen: %v", err)
	}
	if _, ok := c2.Schema().Field("title"); !ok {
		t.Fatal("expected the 'title' field learned before close to survive reopen")
	}
}
