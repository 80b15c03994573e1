package batch

import (
	"sort"
	"sync"

	"rollstock/internal/core/id"
)

// lockTable serializes mutations per batch id. Operations touching
// disjoint batch sets proceed in parallel; overlapping sets are strictly
// ordered. Entries are reference-counted and removed when idle so the
// table does not grow with the batch population.
type lockTable struct {
	mu      sync.Mutex
	entries map[id.ID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{
		entries: make(map[id.ID]*lockEntry),
	}
}

// lock acquires the locks for all given ids, deduplicated and in a fixed
// global order (byte-wise id order) so that concurrent multi-batch
// operations cannot deadlock. The returned function releases them.
func (t *lockTable) lock(ids []id.ID) (unlock func()) {
	ordered := dedupeSorted(ids)

	acquired := make([]*lockEntry, 0, len(ordered))
	for _, batchID := range ordered {
		e := t.retain(batchID)
		e.mu.Lock()
		acquired = append(acquired, e)
	}

	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].mu.Unlock()
		}
		t.mu.Lock()
		for _, batchID := range ordered {
			e := t.entries[batchID]
			e.refs--
			if e.refs == 0 {
				delete(t.entries, batchID)
			}
		}
		t.mu.Unlock()
	}
}

func (t *lockTable) retain(batchID id.ID) *lockEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[batchID]
	if !ok {
		e = &lockEntry{}
		t.entries[batchID] = e
	}
	e.refs++
	return e
}

func dedupeSorted(ids []id.ID) []id.ID {
	ordered := make([]id.ID, 0, len(ids))
	seen := make(map[id.ID]struct{}, len(ids))
	for _, batchID := range ids {
		if _, ok := seen[batchID]; ok {
			continue
		}
		seen[batchID] = struct{}{}
		ordered = append(ordered, batchID)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return id.Compare(ordered[i], ordered[j]) < 0
	})
	return ordered
}
