package odmrp

import "sync"

// ForwardingGroupEntry is soft state recording that this node currently
// relays traffic for GroupID, refreshed on every reinforcement it
// participates in.
type ForwardingGroupEntry struct {
	GroupID       string
	LastRefreshed int64 // millisecond epoch
}

// ForwardingGroupTable is the per-node forwarding-mesh membership table,
// keyed by multicast group id. Guarded by its own mutex for the same reason
// as routing.Table: the single-consumer protocol step mutates it
// (AddGroup/GetGroupEntry's lazy expiry) while the control surface's `query`
// command reads it concurrently from a different goroutine.
type ForwardingGroupTable struct {
	mu      sync.RWMutex
	entries map[string]ForwardingGroupEntry
	timeout int64 // DEFAULT_FORWARDING_TIMEOUT, milliseconds
}

// NewForwardingGroupTable returns an empty table that expires entries after
// timeoutMillis of inactivity.
func NewForwardingGroupTable(timeoutMillis int64) *ForwardingGroupTable {
	return &ForwardingGroupTable{
		entries: make(map[string]ForwardingGroupEntry),
		timeout: timeoutMillis,
	}
}

// AddGroup creates or refreshes the entry for groupID, stamping
// LastRefreshed with nowMillis.
func (t *ForwardingGroupTable) AddGroup(groupID string, nowMillis int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[groupID] = ForwardingGroupEntry{GroupID: groupID, LastRefreshed: nowMillis}
}

// GetGroupEntry returns the entry for groupID. If deleteIfExpired is true
// and the entry has been idle longer than the table's timeout as of
// nowMillis, the entry is removed and GetGroupEntry reports not found.
func (t *ForwardingGroupTable) GetGroupEntry(groupID string, deleteIfExpired bool, nowMillis int64) (ForwardingGroupEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[groupID]
	if !ok {
		return ForwardingGroupEntry{}, false
	}
	if deleteIfExpired && nowMillis-e.LastRefreshed > t.timeout {
		delete(t.entries, groupID)
		return ForwardingGroupEntry{}, false
	}
	return e, true
}

// Entries returns a snapshot of every stored entry, expired ones included
// (no expiry check applied),
// used by the `query` control-surface command.
func (t *ForwardingGroupTable) Entries() []ForwardingGroupEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ForwardingGroupEntry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	return out
}

// MillisUntilExpiry reports how many milliseconds remain before groupID's
// entry expires as of nowMillis, or false if no such entry exists. Used by
// the `query` command's soft-state dump.
func (t *ForwardingGroupTable) MillisUntilExpiry(groupID string, nowMillis int64) (int64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[groupID]
	if !ok {
		return 0, false
	}
	remaining := t.timeout - (nowMillis - e.LastRefreshed)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}
