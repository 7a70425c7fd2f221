package docudex

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/docudex/docudex/internal/config"
)

func mustRandomGuid(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		DataDir: t.TempDir(),
		Schema:  config.SchemaConfig{PersistenceIntervalSeconds: 1},
		Index:   config.IndexConfig{RefreshIntervalMillis: 500},
	}
}

func TestOpen_RoundTrip(t *testing.T) {
	db, err := Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	c, err := db.Collection("widgets")
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}

	ctx := context.Background()
	doc := NewDocument()
	doc.Set("title", Text("Hello World"))
	doc.Set("price", Number(9.99))

	id, err := c.Insert(ctx, doc)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := c.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	title, _ := got.Get("title")
	if s, _ := title.AsText(); s != "Hello World" {
		t.Fatalf("title = %q, want %q", s, "Hello World")
	}

	result, err := c.Search(ctx, SearchCriteria{Query: "Hello"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.TotalHitCount == 0 {
		t.Fatal("expected at least one hit")
	}

	if err := c.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCollection_UpdateRequiresExistingID(t *testing.T) {
	db, err := Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	c, err := db.Collection("widgets")
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}

	doc := NewDocument()
	doc.Set("_id", Guid(mustRandomGuid(t)))
	doc.Set("title", Text("ghost"))

	if err := c.Update(context.Background(), doc); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating a document that was never inserted, got %v", err)
	}
}

func TestDB_DropRemovesCollection(t *testing.T) {
	db, err := Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if _, err := db.Collection("widgets"); err != nil {
		t.Fatalf("Collection: %v", err)
	}
	ctx := context.Background()
	if err := db.Drop(ctx, "widgets"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if err := db.Drop(ctx, "widgets"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second drop, got %v", err)
	}
}
