package keydir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetGet(t *testing.T) {
	kd := New()
	kd.Set(Entry{Key: "foo", SegmentID: 1, Offset: 10, Size: 20, Timestamp: 5})

	got, ok := kd.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, uint64(1), got.SegmentID)
	assert.Equal(t, int64(10), got.Offset)

	_, ok = kd.Get("missing")
	assert.False(t, ok)
}

func TestSet_ReplacesExisting(t *testing.T) {
	kd := New()
	kd.Set(Entry{Key: "foo", SegmentID: 1, Offset: 10})
	kd.Set(Entry{Key: "foo", SegmentID: 2, Offset: 99})

	got, ok := kd.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, uint64(2), got.SegmentID)
	assert.Equal(t, int64(99), got.Offset)
	assert.Equal(t, 1, kd.Len())
}

func TestDelete(t *testing.T) {
	kd := New()
	kd.Set(Entry{Key: "foo"})

	assert.True(t, kd.Delete("foo"))
	assert.False(t, kd.Delete("foo"))

	_, ok := kd.Get("foo")
	assert.False(t, ok)
}

func TestKeys_AscendingOrder(t *testing.T) {
	kd := New()
	for _, k := range []string{"banana", "apple", "cherry"} {
		kd.Set(Entry{Key: k})
	}

	assert.Equal(t, []string{"apple", "banana", "cherry"}, kd.Keys())
}

func TestRange_InclusiveBothEnds(t *testing.T) {
	kd := New()
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		kd.Set(Entry{Key: k})
	}

	entries := kd.Range("b", "d")
	var keys []string
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"b", "c", "d"}, keys)
}

func TestRange_EndBeforeStartIsEmpty(t *testing.T) {
	kd := New()
	kd.Set(Entry{Key: "a"})
	kd.Set(Entry{Key: "b"})

	assert.Empty(t, kd.Range("b", "a"))
}

func TestRange_NoMatchIsEmpty(t *testing.T) {
	kd := New()
	kd.Set(Entry{Key: "x"})

	assert.Empty(t, kd.Range("a", "b"))
}

func TestRange_SingleKeyBounds(t *testing.T) {
	kd := New()
	kd.Set(Entry{Key: "m"})

	entries := kd.Range("m", "m")
	assert.Len(t, entries, 1)
	assert.Equal(t, "m", entries[0].Key)
}
