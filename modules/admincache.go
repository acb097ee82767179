package modules

import (
	"sync"
	"time"
)

const adminCacheTTL = time.Hour

type adminEntry struct {
	ids     map[int64]bool
	fetched time.Time
}

// AdminCache memoizes the chat administrator list. Refresh is lazy and
// idempotent; concurrent refreshes may both hit the API, which is fine.
type AdminCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[int64]adminEntry
}

func NewAdminCache(ttl time.Duration) *AdminCache {
	return &AdminCache{ttl: ttl, entries: make(map[int64]adminEntry)}
}

// IsAdmin reports whether userID is the configured super admin or a
// current administrator of the chat. A failed refresh falls back to the
// stale entry if one exists.
func (a *AdminCache) IsAdmin(ops ChatOps, chatID, userID, superAdmin int64) bool {
	if superAdmin != 0 && userID == superAdmin {
		return true
	}

	a.mu.RLock()
	entry, ok := a.entries[chatID]
	a.mu.RUnlock()
	if ok && time.Since(entry.fetched) < a.ttl {
		return entry.ids[userID]
	}

	ids, err := ops.Admins(chatID)
	if err != nil {
		return ok && entry.ids[userID]
	}

	fresh := adminEntry{ids: make(map[int64]bool, len(ids)), fetched: time.Now()}
	for _, id := range ids {
		fresh.ids[id] = true
	}
	a.mu.Lock()
	a.entries[chatID] = fresh
	a.mu.Unlock()
	return fresh.ids[userID]
}

// Invalidate drops the cached list for a chat.
func (a *AdminCache) Invalidate(chatID int64) {
	a.mu.Lock()
	delete(a.entries, chatID)
	a.mu.Unlock()
}
