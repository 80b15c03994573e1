// Package memory provides map-backed repositories. They serve tests and
// single-node runs without a database; the batch store's locking keeps
// them consistent without transactions.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// base embeds the repository mutex.
type base struct {
	mu sync.RWMutex
}

// paginate applies offset/limit to an already-sorted slice.
func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// sortByCreatedAt orders items by creation time using the supplied
// accessor. OrderBy values with a leading '-' sort descending.
func sortByCreatedAt[T any](items []T, orderBy string, createdAt func(T) time.Time) {
	desc := strings.HasPrefix(orderBy, "-")
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return createdAt(items[i]).After(createdAt(items[j]))
		}
		return createdAt(items[i]).Before(createdAt(items[j]))
	})
}

// orderNewestFirst defaults an unset order to descending creation time,
// matching the document repositories' newest-first contract.
func orderNewestFirst(orderBy string) string {
	if orderBy == "" {
		return "-created_at"
	}
	return orderBy
}

// matchSearch does a case-insensitive substring match over the given
// fields.
func matchSearch(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
