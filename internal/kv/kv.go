// Package kv implements the shared embedded key-value engine every
// collection's documents and the schema registry persist through: one
// bbolt database file with one top-level bucket per collection, keyed by
// raw document id bytes, plus the reserved "__schema__" bucket, keyed by
// collection name.
//
// bbolt has no native asynchronous API, so the "asynchronous" contract
// callers get here is honored at the call site: every operation takes a
// context and checks it before opening a transaction, so a caller can
// cancel a pending call, even though the transaction itself still runs to
// completion (and may block on fsync) once started.
package kv

import (
	"context"
	"time"

	"go.etcd.io/bbolt"
)

// SchemaBucket is the reserved namespace schema snapshots persist under,
// never a valid collection name.
const SchemaBucket = "__schema__"

// Store is the shared embedded KV engine handle.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if absent) the single bbolt file at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, &Error{Op: "OPEN", Bucket: path, Err: err}
	}
	return &Store{db: db}, nil
}

// Close releases the underlying file handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureBucket creates the named top-level bucket if it does not already
// exist. Collections call this once, on first reference.
func (s *Store) EnsureBucket(name string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return &Error{Op: OpEnsureBucket, Bucket: name, Err: err}
	}
	return nil
}

// DeleteBucket drops an entire bucket and everything in it, used by a
// collection's Drop operation.
func (s *Store) DeleteBucket(name string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		err := tx.DeleteBucket([]byte(name))
		if err == bbolt.ErrBucketNotFound {
			return ErrBucketNotFound
		}
		return err
	})
	if err != nil {
		return &Error{Op: OpDeleteBucket, Bucket: name, Err: err}
	}
	return nil
}

// Put writes value under key in bucket, overwriting any existing entry —
// this single method backs both insert and update, since bbolt's Put is
// already upsert semantics.
func (s *Store) Put(ctx context.Context, bucket string, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return ErrBucketNotFound
		}
		return b.Put(key, value)
	})
	if err != nil {
		return &Error{Op: OpPut, Bucket: bucket, Err: err}
	}
	return nil
}

// Get reads the value stored under key in bucket. The returned slice is a
// copy, safe to retain after the call returns.
func (s *Store) Get(ctx context.Context, bucket string, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return ErrBucketNotFound
		}
		v := b.Get(key)
		if v == nil {
			return ErrKeyNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, &Error{Op: OpGet, Bucket: bucket, Err: err}
	}
	return out, nil
}

// Delete removes key from bucket. Deleting an absent key is not an error,
// matching bbolt's own semantics.
func (s *Store) Delete(ctx context.Context, bucket string, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return ErrBucketNotFound
		}
		return b.Delete(key)
	})
	if err != nil {
		return &Error{Op: OpDelete, Bucket: bucket, Err: err}
	}
	return nil
}

// ForEach iterates every key/value pair in bucket in key order, stopping
// and returning fn's error if it returns one. Used to reload all persisted
// schemas on open and to walk a collection's documents during Reindex.
func (s *Store) ForEach(ctx context.Context, bucket string, fn func(key, value []byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return ErrBucketNotFound
		}
		return b.ForEach(fn)
	})
	if err != nil {
		return &Error{Op: OpForEach, Bucket: bucket, Err: err}
	}
	return nil
}
