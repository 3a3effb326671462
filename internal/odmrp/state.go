// Package odmrp implements the per-node ODMRP protocol state: a message
// cache for duplicate suppression, a forwarding-group table for mesh soft
// state, a route-refresh timer, and the unicast routing table they all sit
// on top of.
package odmrp

import "github.com/hakeris1010/odmrp-sim/internal/routing"

// State bundles everything internal/node's process() step function needs
// beyond the packet currently in hand.
type State struct {
	Routes      *routing.Table
	cache       *MessageCache
	forwarding  *ForwardingGroupTable
	refreshMs   int64
	lastRefresh int64
}

// NewState builds a State with the given message-cache capacity,
// forwarding-group timeout, and route-refresh interval, all in milliseconds
// except the cache capacity which is a count. nowMillis seeds the initial
// route-refresh timer so a freshly created node is immediately due, ensuring
// the first tick always does useful work.
func NewState(cacheCapacity int, forwardingTimeoutMillis, routeRefreshMillis, nowMillis int64) *State {
	return &State{
		Routes:      routing.New(),
		cache:       NewMessageCache(cacheCapacity),
		forwarding:  NewForwardingGroupTable(forwardingTimeoutMillis),
		refreshMs:   routeRefreshMillis,
		lastRefresh: nowMillis - routeRefreshMillis - 1,
	}
}

// Cache exposes the message cache for duplicate-suppression checks.
func (s *State) Cache() *MessageCache { return s.cache }

// Forwarding exposes the forwarding-group table.
func (s *State) Forwarding() *ForwardingGroupTable { return s.forwarding }

// IsRouteRefreshNeeded reports whether the route-refresh timer has elapsed
// as of nowMillis.
func (s *State) IsRouteRefreshNeeded(nowMillis int64) bool {
	return nowMillis-s.lastRefresh > s.refreshMs
}

// ResetLastRouteRefresh sets the timer's reference point to nowMillis.
func (s *State) ResetLastRouteRefresh(nowMillis int64) {
	s.lastRefresh = nowMillis
}

// NextDueMillis reports the millisecond epoch at which the route-refresh
// timer will next be due, used by the scheduler's scan step to compute
// nextWake.
func (s *State) NextDueMillis() int64 {
	return s.lastRefresh + s.refreshMs
}
