package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lcerrors "github.com/jassi-singh/logcask/pkg/errors"
)

func setupTestDir(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	return dir, filepath.Join(dir, FileName)
}

func TestLoad_MissingFileIsEmptyRegistry(t *testing.T) {
	dir, path := setupTestDir(t)
	r, err := Load(path, dir)
	require.NoError(t, err)
	assert.Empty(t, r.IDsSorted())

	_, ok := r.ActiveID()
	assert.False(t, ok)
}

func TestAddSegment_AllocatesSequentialIDs(t *testing.T) {
	dir, path := setupTestDir(t)
	r, err := Load(path, dir)
	require.NoError(t, err)

	id0, path0, err := r.AddSegment()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id0)
	assert.Equal(t, filepath.Join(dir, "data_00.bin"), path0)

	id1, path1, err := r.AddSegment()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id1)
	assert.Equal(t, filepath.Join(dir, "data_01.bin"), path1)

	active, ok := r.ActiveID()
	require.True(t, ok)
	assert.Equal(t, uint64(1), active)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir, path := setupTestDir(t)
	r, err := Load(path, dir)
	require.NoError(t, err)

	_, _, err = r.AddSegment()
	require.NoError(t, err)
	_, _, err = r.AddSegment()
	require.NoError(t, err)
	require.NoError(t, r.Save())

	reloaded, err := Load(path, dir)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1}, reloaded.IDsSorted())
}

func TestLoad_CorruptJSON(t *testing.T) {
	dir, path := setupTestDir(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path, dir)
	require.Error(t, err)

	re, ok := lcerrors.AsRegistryError(err)
	require.True(t, ok)
	assert.Equal(t, lcerrors.ErrorCodeRegistryCorrupt, re.Code())
}

func TestLoad_NonNumericKey(t *testing.T) {
	dir, path := setupTestDir(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"abc":"data_00.bin"}`), 0o644))

	_, err := Load(path, dir)
	require.Error(t, err)
	assert.True(t, lcerrors.Is(err, lcerrors.ErrorCodeRegistryCorrupt))
}

func TestAddSegment_RefusesExistingFile(t *testing.T) {
	dir, path := setupTestDir(t)
	r, err := Load(path, dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "data_00.bin"), []byte("x"), 0o644))

	_, _, err = r.AddSegment()
	require.Error(t, err)
	assert.True(t, lcerrors.Is(err, lcerrors.ErrorCodeRegistryCorrupt))
}

func TestRemoveSegment(t *testing.T) {
	dir, path := setupTestDir(t)
	r, err := Load(path, dir)
	require.NoError(t, err)

	id, _, err := r.AddSegment()
	require.NoError(t, err)
	assert.True(t, r.Contains(id))

	r.RemoveSegment(id)
	assert.False(t, r.Contains(id))
}

func TestSegmentPath_UnknownID(t *testing.T) {
	dir, path := setupTestDir(t)
	r, err := Load(path, dir)
	require.NoError(t, err)

	_, err = r.SegmentPath(42)
	require.Error(t, err)
	assert.True(t, lcerrors.Is(err, lcerrors.ErrorCodeRegistryCorrupt))
}
