// Package routing implements the per-node unicast routing table: a
// multi-entry table keyed by (destination, next-hop) with a cost field,
// where lookups prefer the minimum-cost entry for a destination.
//
// Some implementations of this table suppress insertion of a new next-hop
// whenever any entry for the destination already exists. That behavior is
// NOT reproduced here; Add always allows multiple next-hops per
// destination, which is what lets a node hold backup routes.
package routing

import "sync"

// Entry is one (destination, next-hop, cost) routing table row.
type Entry struct {
	Destination string
	NextHop     string
	Cost        int
}

// Table is a concurrency-safe unicast routing table. A *Table is embedded in
// odmrp.State, one per node; it is guarded by its own mutex because both the
// node's single-consumer protocol step and the control surface's `route`/
// `query` commands (external callers) read it.
type Table struct {
	mu sync.RWMutex
	// byDest[destination][nextHop] = Entry
	byDest map[string]map[string]Entry
}

// New returns an empty routing table.
func New() *Table {
	return &Table{byDest: make(map[string]map[string]Entry)}
}

// Add inserts entry, or updates the Cost of the existing entry with the same
// (Destination, NextHop) in place. Multiple next-hops per destination are
// always permitted; see the package doc for the source-bug note.
func (t *Table) Add(entry Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	hops, ok := t.byDest[entry.Destination]
	if !ok {
		hops = make(map[string]Entry)
		t.byDest[entry.Destination] = hops
	}
	hops[entry.NextHop] = entry
}

// GetRouteForDestination returns the minimum-cost entry for dst, if any.
func (t *Table) GetRouteForDestination(dst string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	hops, ok := t.byDest[dst]
	if !ok || len(hops) == 0 {
		return Entry{}, false
	}
	var best Entry
	first := true
	for _, e := range hops {
		if first || e.Cost < best.Cost {
			best = e
			first = false
		}
	}
	return best, true
}

// RemoveEntry removes the entry matching (Destination, NextHop) exactly and
// reports whether anything was removed.
func (t *Table) RemoveEntry(entry Entry) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	hops, ok := t.byDest[entry.Destination]
	if !ok {
		return false
	}
	if _, ok := hops[entry.NextHop]; !ok {
		return false
	}
	delete(hops, entry.NextHop)
	if len(hops) == 0 {
		delete(t.byDest, entry.Destination)
	}
	return true
}

// RemoveAllRoutesTo removes every entry for dst and returns the count
// removed.
func (t *Table) RemoveAllRoutesTo(dst string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	hops, ok := t.byDest[dst]
	if !ok {
		return 0
	}
	n := len(hops)
	delete(t.byDest, dst)
	return n
}

// Entries returns a snapshot of every entry in the table, in no particular
// order. Used by the `query` control-surface command to dump routing state.
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Entry
	for _, hops := range t.byDest {
		for _, e := range hops {
			out = append(out, e)
		}
	}
	return out
}

// HasDestination reports whether any route exists to dst, regardless of
// next-hop.
func (t *Table) HasDestination(dst string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	hops, ok := t.byDest[dst]
	return ok && len(hops) > 0
}
