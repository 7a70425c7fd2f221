package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.EnsureBucket("widgets"); err != nil {
		t.Fatalf("EnsureBucket: %v", err)
	}

	ctx := context.Background()
	key := []byte("doc-1")
	val := []byte("payload")

	if err := s.Put(ctx, "widgets", key, val); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, "widgets", key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("got %q, want %q", got, val)
	}
}

func TestGet_MissingKeyReturnsErrKeyNotFound(t *testing.T) {
	s := openTestStore(t)
	_ = s.EnsureBucket("widgets")

	_, err := s.Get(context.Background(), "widgets", []byte("missing"))
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGet_MissingBucketReturnsErrBucketNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "nope", []byte("k"))
	if !errors.Is(err, ErrBucketNotFound) {
		t.Fatalf("expected ErrBucketNotFound, got %v", err)
	}
}

func TestPut_OverwritesExistingValue(t *testing.T) {
	s := openTestStore(t)
	_ = s.EnsureBucket("widgets")
	ctx := context.Background()

	_ = s.Put(ctx, "widgets", []byte("k"), []byte("v1"))
	_ = s.Put(ctx, "widgets", []byte("k"), []byte("v2"))

	got, _ := s.Get(ctx, "widgets", []byte("k"))
	if string(got) != "v2" {
		t.Fatalf("expected overwritten value v2, got %q", got)
	}
}

func TestDelete_RemovesKey(t *testing.T) {
	s := openTestStore(t)
	_ = s.EnsureBucket("widgets")
	ctx := context.Background()

	_ = s.Put(ctx, "widgets", []byte("k"), []byte("v"))
	if err := s.Delete(ctx, "widgets", []byte("k")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err := s.Get(ctx, "widgets", []byte("k"))
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
	}
}

func TestForEach_VisitsAllEntries(t *testing.T) {
	s := openTestStore(t)
	_ = s.EnsureBucket("widgets")
	ctx := context.Background()

	_ = s.Put(ctx, "widgets", []byte("a"), []byte("1"))
	_ = s.Put(ctx, "widgets", []byte("b"), []byte("2"))
	_ = s.Put(ctx, "widgets", []byte("c"), []byte("3"))

	seen := map[string]string{}
	err := s.ForEach(ctx, "widgets", func(k, v []byte) error {
		seen[string(k)] = string(v)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if len(seen) != 3 || seen["a"] != "1" || seen["b"] != "2" || seen["c"] != "3" {
		t.Fatalf("unexpected entries: %v", seen)
	}
}

func TestDeleteBucket_RemovesEverything(t *testing.T) {
	s := openTestStore(t)
	_ = s.EnsureBucket("widgets")
	ctx := context.Background()
	_ = s.Put(ctx, "widgets", []byte("a"), []byte("1"))

	if err := s.DeleteBucket("widgets"); err != nil {
		t.Fatalf("DeleteBucket: %v", err)
	}
	_, err := s.Get(ctx, "widgets", []byte("a"))
	if !errors.Is(err, ErrBucketNotFound) {
		t.Fatalf("expected ErrBucketNotFound after bucket delete, got %v", err)
	}
}

func TestPut_CanceledContextIsRejected(t *testing.T) {
	s := openTestStore(t)
	_ = s.EnsureBucket("widgets")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Put(ctx, "widgets", []byte("k"), []byte("v"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
