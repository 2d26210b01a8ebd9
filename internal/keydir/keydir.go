// Package keydir implements the in-memory index mapping every live key to
// the location of its most recent value on disk. It is backed by a B-tree so
// that point lookups and ordered range scans both run in logarithmic time
// (plus the size of the result, for scans) rather than falling back to a
// full sort on every range query.
package keydir

import (
	"sync"

	"github.com/google/btree"
)

// Entry describes where a key's current value lives: which segment, at what
// byte offset, how many key plus value bytes the record carries (its payload
// size, excluding the CRC and header), and when it was written.
type Entry struct {
	Key       string
	SegmentID uint64
	Offset    int64
	Size      uint32
	Timestamp uint32
}

// Less implements btree.Item, ordering entries by key.
func (e *Entry) Less(than btree.Item) bool {
	return e.Key < than.(*Entry).Key
}

// degree controls the branching factor of the underlying B-tree. 32 matches
// the value commonly used for in-memory indexes of this size and keeps tree
// height low without oversized node scans.
const degree = 32

// KeyDir is the ordered, in-memory key index. It is safe for concurrent use.
type KeyDir struct {
	mu   sync.RWMutex
	tree *btree.BTree
}

// New creates an empty KeyDir.
func New() *KeyDir {
	return &KeyDir{tree: btree.New(degree)}
}

// Set installs or replaces the entry for key.
func (k *KeyDir) Set(entry Entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.tree.ReplaceOrInsert(&entry)
}

// Get returns the entry for key and whether it was found.
func (k *KeyDir) Get(key string) (Entry, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	item := k.tree.Get(&Entry{Key: key})
	if item == nil {
		return Entry{}, false
	}
	return *item.(*Entry), true
}

// Delete removes the entry for key, if present, and reports whether it was
// there.
func (k *KeyDir) Delete(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	item := k.tree.Delete(&Entry{Key: key})
	return item != nil
}

// Len returns the number of live keys currently indexed.
func (k *KeyDir) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.tree.Len()
}

// Keys returns every indexed key in ascending order. The returned slice is a
// snapshot; later mutations to the KeyDir do not affect it.
func (k *KeyDir) Keys() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()

	keys := make([]string, 0, k.tree.Len())
	k.tree.Ascend(func(item btree.Item) bool {
		keys = append(keys, item.(*Entry).Key)
		return true
	})
	return keys
}

// Range returns every entry whose key lies in [start, end], inclusive on
// both ends, in ascending order. An empty slice is returned when end < start
// or no key falls in range.
func (k *KeyDir) Range(start, end string) []Entry {
	if end < start {
		return nil
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	var entries []Entry
	k.tree.AscendRange(&Entry{Key: start}, &Entry{Key: end + "\x00"}, func(item btree.Item) bool {
		entries = append(entries, *item.(*Entry))
		return true
	})
	return entries
}
