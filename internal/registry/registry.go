// Package registry persists the mapping from segment id to segment file
// name, so that an engine restart can rediscover every segment that makes up
// a store without relying on directory listings or filename conventions
// alone.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	lcerrors "github.com/jassi-singh/logcask/pkg/errors"
)

// FileName is the default name of the registry file inside a store's data
// directory.
const FileName = "registry.json"

// segmentFileName is the default naming scheme for a segment with the given id.
func segmentFileName(id uint64) string {
	return fmt.Sprintf("data_%02d.bin", id)
}

// Registry is the persisted, JSON-encoded map of segment id to segment file
// name. It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	path string
	dir  string
	// segments maps segment id to bare file name (no directory component).
	segments map[uint64]string
}

// Load reads the registry file at path, creating an empty registry if the
// file does not yet exist. dir is the directory segment files live in; it is
// joined with each entry's bare name to produce SegmentPath results.
func Load(path, dir string) (*Registry, error) {
	r := &Registry{path: path, dir: dir, segments: make(map[uint64]string)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, lcerrors.NewRegistryError(err, lcerrors.ErrorCodeIO, "failed to read registry file").
			WithPath(path)
	}

	if len(data) == 0 {
		return r, nil
	}

	raw := make(map[string]string)
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, lcerrors.NewRegistryError(err, lcerrors.ErrorCodeRegistryCorrupt, "registry file is not valid JSON").
			WithPath(path)
	}

	for idStr, name := range raw {
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			return nil, lcerrors.NewRegistryError(err, lcerrors.ErrorCodeRegistryCorrupt, "registry key is not a valid segment id").
				WithPath(path).WithDetail("key", idStr)
		}
		r.segments[id] = name
	}

	return r, nil
}

// Save writes the registry to its backing file as indented JSON.
func (r *Registry) Save() error {
	r.mu.RLock()
	raw := make(map[string]string, len(r.segments))
	for id, name := range r.segments {
		raw[strconv.FormatUint(id, 10)] = name
	}
	r.mu.RUnlock()

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return lcerrors.NewRegistryError(err, lcerrors.ErrorCodeInternal, "failed to marshal registry").
			WithPath(r.path)
	}

	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return lcerrors.NewRegistryError(err, lcerrors.ErrorCodeIO, "failed to write registry file").
			WithPath(r.path)
	}
	return nil
}

// IDsSorted returns every known segment id in ascending order.
func (r *Registry) IDsSorted() []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint64, 0, len(r.segments))
	for id := range r.segments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ActiveID returns the id of the active segment: the largest known id. The
// second return value is false when the registry has no segments yet.
func (r *Registry) ActiveID() (uint64, bool) {
	ids := r.IDsSorted()
	if len(ids) == 0 {
		return 0, false
	}
	return ids[len(ids)-1], true
}

// SegmentPath returns the full path to the segment file for id, joining the
// registry's data directory with the registered bare file name.
func (r *Registry) SegmentPath(id uint64) (string, error) {
	r.mu.RLock()
	name, ok := r.segments[id]
	r.mu.RUnlock()
	if !ok {
		return "", lcerrors.NewRegistryError(nil, lcerrors.ErrorCodeRegistryCorrupt, "unknown segment id").
			WithPath(r.path).WithDetail("id", id)
	}
	return filepath.Join(r.dir, name), nil
}

// AddSegment allocates the next segment id (one greater than the current
// maximum, or zero for an empty registry), registers its default file name,
// and returns the new id and full path. It does not create the file itself;
// callers are expected to open it immediately after.
func (r *Registry) AddSegment() (id uint64, path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id = 0
	for existing := range r.segments {
		if existing >= id {
			id = existing + 1
		}
	}

	name := segmentFileName(id)
	fullPath := filepath.Join(r.dir, name)
	if _, statErr := os.Stat(fullPath); statErr == nil {
		return 0, "", lcerrors.NewRegistryError(nil, lcerrors.ErrorCodeRegistryCorrupt, "segment file already exists").
			WithPath(fullPath).WithDetail("id", id)
	}

	r.segments[id] = name
	return id, fullPath, nil
}

// RemoveSegment drops id from the registry. It does not remove the
// underlying file; callers coordinate deletion with the SegmentSet that owns
// the open handle.
func (r *Registry) RemoveSegment(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.segments, id)
}

// Contains reports whether id is currently registered.
func (r *Registry) Contains(id uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.segments[id]
	return ok
}
