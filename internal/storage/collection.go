// Package storage implements durable keyed collections backed by JSON files.
// Each collection owns one array file plus a sidecar sequence file holding a
// monotonic id counter, so identifiers are never reused after a delete.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Collection persists records of type T as a single JSON array file. All
// operations are read-modify-write over the whole file and serialized by the
// collection mutex; callers needing finer-grained exclusion (per wallet) layer
// it on top.
type Collection[T any] struct {
	mu      sync.Mutex
	path    string
	seqPath string
	id      func(T) int64
	setID   func(*T, int64)
}

// NewCollection opens (creating the directory if needed) the collection named
// name under dir. The id accessors tell the collection how to read and assign
// a record's identifier.
func NewCollection[T any](dir, name string, id func(T) int64, setID func(*T, int64)) (*Collection[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Collection[T]{
		path:    filepath.Join(dir, name+".json"),
		seqPath: filepath.Join(dir, name+".seq"),
		id:      id,
		setID:   setID,
	}, nil
}

// Load returns all records in file order. A missing or empty file yields an
// empty slice; any other read or decode failure propagates.
func (c *Collection[T]) Load() ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked()
}

// Find returns the first record matching the predicate.
func (c *Collection[T]) Find(match func(T) bool) (T, bool, error) {
	var zero T
	records, err := c.Load()
	if err != nil {
		return zero, false, err
	}
	for _, rec := range records {
		if match(rec) {
			return rec, true, nil
		}
	}
	return zero, false, nil
}

// FindAll returns every record matching the predicate, in file order.
func (c *Collection[T]) FindAll(match func(T) bool) ([]T, error) {
	records, err := c.Load()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if match(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Upsert writes the record, assigning the next sequence id when the record
// carries none. An existing record with the same id is replaced in place.
func (c *Collection[T]) Upsert(rec T) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.loadLocked()
	if err != nil {
		return zero, err
	}

	if c.id(rec) == 0 {
		next, err := c.nextIDLocked(records)
		if err != nil {
			return zero, err
		}
		c.setID(&rec, next)
		records = append(records, rec)
	} else {
		replaced := false
		for i := range records {
			if c.id(records[i]) == c.id(rec) {
				records[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			records = append(records, rec)
		}
	}

	if err := c.saveLocked(records); err != nil {
		return zero, err
	}
	return rec, nil
}

// Delete removes the record with the given id. Deleting an absent id is a
// no-op. The sequence counter is untouched, so the id is never reissued.
func (c *Collection[T]) Delete(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.loadLocked()
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, rec := range records {
		if c.id(rec) != id {
			kept = append(kept, rec)
		}
	}
	return c.saveLocked(kept)
}

func (c *Collection[T]) loadLocked() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.path, err)
	}
	return records, nil
}

// nextIDLocked advances the persisted counter and returns the new id. The
// counter is durably bumped before the record is written, so a crash between
// the two can skip an id but never hand it out twice. A fresh sequence file
// starts past the highest id already present, which migrates collections that
// predate the counter.
func (c *Collection[T]) nextIDLocked(records []T) (int64, error) {
	last := int64(0)
	data, err := os.ReadFile(c.seqPath)
	switch {
	case os.IsNotExist(err):
		for _, rec := range records {
			if c.id(rec) > last {
				last = c.id(rec)
			}
		}
	case err != nil:
		return 0, fmt.Errorf("read %s: %w", c.seqPath, err)
	default:
		last, err = strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("decode %s: %w", c.seqPath, err)
		}
	}

	next := last + 1
	if err := atomicWrite(c.seqPath, []byte(strconv.FormatInt(next, 10))); err != nil {
		return 0, err
	}
	return next, nil
}

func (c *Collection[T]) saveLocked(records []T) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.path, err)
	}
	return atomicWrite(c.path, data)
}

// atomicWrite lands data via a temp file and rename so readers never observe
// a partially written collection.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
