package routing

import "testing"

func TestAdd_MultipleNextHopsAllowed(t *testing.T) {
	tb := New()
	tb.Add(Entry{Destination: "d", NextHop: "a", Cost: 2})
	tb.Add(Entry{Destination: "d", NextHop: "b", Cost: 1})

	entries := tb.Entries()
	if len(entries) != 2 {
		t.Fatalf("Entries() len = %d, want 2 (multi-next-hop must be allowed, not suppressed)", len(entries))
	}
}

func TestAdd_IdempotentUpdatesCostInPlace(t *testing.T) {
	tb := New()
	tb.Add(Entry{Destination: "d", NextHop: "a", Cost: 5})
	tb.Add(Entry{Destination: "d", NextHop: "a", Cost: 1})

	entries := tb.Entries()
	if len(entries) != 1 {
		t.Fatalf("Entries() len = %d, want 1 (same dest+nexthop must update, not duplicate)", len(entries))
	}
	if entries[0].Cost != 1 {
		t.Errorf("Cost = %d, want 1 (repeated add updates cost)", entries[0].Cost)
	}
}

func TestGetRouteForDestination_PicksMinCost(t *testing.T) {
	tb := New()
	tb.Add(Entry{Destination: "d", NextHop: "a", Cost: 5})
	tb.Add(Entry{Destination: "d", NextHop: "b", Cost: 1})
	tb.Add(Entry{Destination: "d", NextHop: "c", Cost: 3})

	got, ok := tb.GetRouteForDestination("d")
	if !ok {
		t.Fatalf("GetRouteForDestination() ok = false, want true")
	}
	if got.NextHop != "b" || got.Cost != 1 {
		t.Errorf("GetRouteForDestination() = %+v, want next-hop b cost 1", got)
	}
}

func TestGetRouteForDestination_Missing(t *testing.T) {
	tb := New()
	if _, ok := tb.GetRouteForDestination("nope"); ok {
		t.Errorf("GetRouteForDestination() ok = true for unknown destination")
	}
}

func TestRemoveEntry(t *testing.T) {
	tb := New()
	tb.Add(Entry{Destination: "d", NextHop: "a", Cost: 1})

	if !tb.RemoveEntry(Entry{Destination: "d", NextHop: "a"}) {
		t.Errorf("RemoveEntry() = false, want true")
	}
	if tb.RemoveEntry(Entry{Destination: "d", NextHop: "a"}) {
		t.Errorf("RemoveEntry() second call = true, want false (already removed)")
	}
	if tb.HasDestination("d") {
		t.Errorf("HasDestination(d) = true after removing its only route")
	}
}

func TestRemoveAllRoutesTo(t *testing.T) {
	tb := New()
	tb.Add(Entry{Destination: "d", NextHop: "a", Cost: 1})
	tb.Add(Entry{Destination: "d", NextHop: "b", Cost: 2})
	tb.Add(Entry{Destination: "other", NextHop: "c", Cost: 1})

	n := tb.RemoveAllRoutesTo("d")
	if n != 2 {
		t.Errorf("RemoveAllRoutesTo() = %d, want 2", n)
	}
	if tb.HasDestination("d") {
		t.Errorf("HasDestination(d) = true after RemoveAllRoutesTo")
	}
	if !tb.HasDestination("other") {
		t.Errorf("HasDestination(other) = false, should be untouched")
	}
}
