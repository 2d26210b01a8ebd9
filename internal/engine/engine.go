// Package engine provides the core key-value storage engine implementation.
// It orchestrates the codec, registry, segment handles, and key directory
// into the durable get/set/delete/scan/compact surface of a Bitcask-style
// store.
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jassi-singh/logcask/internal/codec"
	"github.com/jassi-singh/logcask/internal/config"
	"github.com/jassi-singh/logcask/internal/keydir"
	"github.com/jassi-singh/logcask/internal/registry"
	"github.com/jassi-singh/logcask/internal/segment"
	lcerrors "github.com/jassi-singh/logcask/pkg/errors"
)

// Engine is the main implementation of the key-value storage engine. It
// maintains an in-memory key directory (index) that maps keys to their
// on-disk locations and coordinates with the segment layer for persistence.
//
// Engine assumes a single writer and performs no internal synchronization
// beyond the mutex guarding its own bookkeeping; concurrent callers must
// serialize access externally.
type Engine struct {
	mu sync.Mutex

	dir          string
	maxSize      int64
	validateUTF8 bool
	registry     *registry.Registry
	segments     *segment.Set
	index        *keydir.KeyDir
	activeID     uint64
	activeSize   int64
	closed       bool
}

// Stats is a point-in-time snapshot of engine bookkeeping, exposed for
// diagnostics and the CLI's stats command.
type Stats struct {
	ActiveSegmentID uint64
	ActiveSize      int64
	SegmentCount    int
	KeyCount        int
}

// New opens (or creates) a store rooted at cfg.DATA_DIR, replaying every
// known segment to rebuild the key directory before returning.
func New(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	slog.Info("engine: initializing", "dir", cfg.DATA_DIR)

	if err := os.MkdirAll(cfg.DATA_DIR, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DATA_DIR, err)
	}

	registryPath := filepath.Join(cfg.DATA_DIR, cfg.REGISTRY_FILE)
	reg, err := registry.Load(registryPath, cfg.DATA_DIR)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		dir:          cfg.DATA_DIR,
		maxSize:      cfg.MAX_SEGMENT_SIZE,
		validateUTF8: cfg.VALIDATE_ENCODING,
		registry:     reg,
		segments:     segment.NewSet(),
		index:        keydir.New(),
	}

	if len(reg.IDsSorted()) == 0 {
		slog.Info("engine: empty registry, creating first segment", "dir", cfg.DATA_DIR)
		if err := e.allocateSegment(); err != nil {
			return nil, err
		}
		if err := reg.Save(); err != nil {
			return nil, err
		}
	} else {
		for _, id := range reg.IDsSorted() {
			path, err := reg.SegmentPath(id)
			if err != nil {
				return nil, err
			}
			if _, err := e.segments.Open(id, path); err != nil {
				return nil, err
			}
		}
		activeID, _ := reg.ActiveID()
		e.activeID = activeID
	}

	if err := e.replay(); err != nil {
		return nil, err
	}

	slog.Info("engine: opened",
		"dir", cfg.DATA_DIR,
		"active_segment", e.activeID,
		"active_size", e.activeSize,
		"segments", len(reg.IDsSorted()),
		"keys", e.index.Len(),
	)
	return e, nil
}

// allocateSegment creates and opens a brand new segment, making it active,
// without persisting the registry's change to disk.
func (e *Engine) allocateSegment() error {
	id, path, err := e.registry.AddSegment()
	if err != nil {
		return err
	}
	if _, err := e.segments.Open(id, path); err != nil {
		return err
	}
	e.activeID = id
	e.activeSize = 0
	return nil
}

// replay rebuilds the key directory by scanning every known segment in
// ascending id order. A zero-length value is a tombstone and erases the
// indexed key rather than installing it, so that a reopened store treats a
// previously deleted key as absent.
func (e *Engine) replay() error {
	for _, id := range e.registry.IDsSorted() {
		handle, err := e.segments.Handle(id)
		if err != nil {
			return err
		}
		if err := handle.Flush(); err != nil {
			return err
		}
		size := handle.Size()

		var pos int64
		for pos < size {
			header, err := handle.ReadAt(pos+codec.CRCSize, codec.HeaderSize)
			if err != nil {
				return err
			}
			_, keySize, valueSize, err := codec.DecodeHeader(header)
			if err != nil {
				return err
			}

			frameSize := int64(codec.CRCSize + codec.HeaderSize + int(keySize) + int(valueSize))
			raw, err := handle.ReadAt(pos, uint32(frameSize))
			if err != nil {
				return err
			}

			rec, err := codec.DecodeRecord(raw, e.validateUTF8)
			if err != nil {
				return err
			}

			key := string(rec.Key)
			if rec.IsTombstone() {
				e.index.Delete(key)
			} else {
				e.index.Set(keydir.Entry{
					Key:       key,
					SegmentID: id,
					Offset:    pos,
					Size:      keySize + valueSize,
					Timestamp: rec.Timestamp,
				})
			}

			pos += frameSize
		}

		if id == e.activeID {
			e.activeSize = pos
		}
	}
	return nil
}

// Set writes a new record for key with value, updates the index to point at
// it, and rolls the active segment over if the configured size threshold is
// exceeded.
func (e *Engine) Set(key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setLocked(key, value)
}

func (e *Engine) setLocked(key, value string) error {
	if e.closed {
		return lcerrors.NewIndexError(nil, lcerrors.ErrorCodeNotOpen, "engine is closed")
	}

	timestamp := uint32(time.Now().Unix())
	encoded, err := codec.EncodeRecord(timestamp, []byte(key), []byte(value))
	if err != nil {
		return err
	}

	handle, err := e.segments.Handle(e.activeID)
	if err != nil {
		return err
	}

	offset, err := handle.Append(encoded)
	if err != nil {
		return err
	}
	e.activeSize += int64(len(encoded))

	e.index.Set(keydir.Entry{
		Key:       key,
		SegmentID: e.activeID,
		Offset:    offset,
		Size:      uint32(len(key) + len(value)),
		Timestamp: timestamp,
	})

	slog.Debug("engine: set",
		"key", key, "segment", e.activeID, "offset", offset, "value_size", len(value))

	if e.maxSize != 0 && e.activeSize > e.maxSize {
		slog.Info("engine: active segment exceeded max size, rolling over",
			"active_segment", e.activeID, "active_size", e.activeSize, "max_size", e.maxSize)
		if err := e.splitLocked(); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the current value for key, or the empty string if key is
// absent or was deleted.
func (e *Engine) Get(key string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.getLocked(key)
}

func (e *Engine) getLocked(key string) (string, error) {
	if e.closed {
		return "", lcerrors.NewIndexError(nil, lcerrors.ErrorCodeNotOpen, "engine is closed")
	}

	entry, ok := e.index.Get(key)
	if !ok {
		return "", nil
	}

	handle, err := e.segments.Handle(entry.SegmentID)
	if err != nil {
		return "", err
	}

	frameSize := uint32(codec.CRCSize + codec.HeaderSize + int(entry.Size))
	raw, err := handle.ReadAt(entry.Offset, frameSize)
	if err != nil {
		return "", err
	}

	rec, err := codec.DecodeRecord(raw, e.validateUTF8)
	if err != nil {
		return "", err
	}

	if string(rec.Key) != key {
		return "", lcerrors.NewIndexError(nil, lcerrors.ErrorCodeIndexMismatch, "decoded key does not match lookup key").
			WithKey(key).WithDetail("decoded_key", string(rec.Key))
	}

	return string(rec.Value), nil
}

// Delete appends a tombstone for key and evicts it from the index. A
// subsequent Get returns the empty string.
func (e *Engine) Delete(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.setLocked(key, ""); err != nil {
		return err
	}
	e.index.Delete(key)
	return nil
}

// Scan returns every live key in [start, end], inclusive on both ends, in
// ascending order. Callers look up the value of each with Get.
func (e *Engine) Scan(start, end string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := e.index.Range(start, end)
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, entry.Key)
	}
	return keys
}

// Split allocates a fresh active segment, persists the registry, and leaves
// every prior segment open for reads.
func (e *Engine) Split() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.splitLocked()
}

func (e *Engine) splitLocked() error {
	if e.closed {
		return lcerrors.NewIndexError(nil, lcerrors.ErrorCodeNotOpen, "engine is closed")
	}
	if err := e.allocateSegment(); err != nil {
		return err
	}
	return e.registry.Save()
}

// Compact rewrites every live key's current value into a fresh segment, then
// closes and removes every segment that predates the compaction.
func (e *Engine) Compact() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return lcerrors.NewIndexError(nil, lcerrors.ErrorCodeNotOpen, "engine is closed")
	}

	retired := e.registry.IDsSorted()

	if err := e.splitLocked(); err != nil {
		return err
	}

	for _, key := range e.index.Keys() {
		value, err := e.getLocked(key)
		if err != nil {
			return err
		}
		if err := e.setLocked(key, value); err != nil {
			return err
		}
	}

	for _, id := range retired {
		path, err := e.registry.SegmentPath(id)
		if err != nil {
			return err
		}
		if err := e.segments.Remove(id, path); err != nil {
			return err
		}
		e.registry.RemoveSegment(id)
	}

	slog.Info("engine: compaction complete", "retired_segments", retired, "active_segment", e.activeID)
	return e.registry.Save()
}

// Close flushes and closes every open segment handle. After Close, Set, Get,
// Delete, Split and Compact return a NotOpen error; Scan, Stats and Clean do
// not check whether the engine is closed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	if err := e.segments.CloseAll(); err != nil {
		return err
	}
	slog.Info("engine: closed", "dir", e.dir)
	return nil
}

// Clean deletes every segment file known to the registry. It is intended
// only for disposing of a store entirely and is not part of normal
// operation.
func (e *Engine) Clean() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range e.registry.IDsSorted() {
		path, err := e.registry.SegmentPath(id)
		if err != nil {
			return err
		}
		if err := e.segments.Remove(id, path); err != nil {
			return err
		}
		e.registry.RemoveSegment(id)
	}
	return e.registry.Save()
}

// Stats returns a snapshot of the engine's current bookkeeping.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Stats{
		ActiveSegmentID: e.activeID,
		ActiveSize:      e.activeSize,
		SegmentCount:    len(e.registry.IDsSorted()),
		KeyCount:        e.index.Len(),
	}
}
