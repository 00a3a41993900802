package table

import (
	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/std/log"
	"github.com/zhmesh/zhmesh/std/types/optional"
)

// Route maps a destination to the neighbor frames for it are handed to.
type Route struct {
	Destination frame.Address
	NextHop     frame.Address
}

// RoutingTable holds at most one route per destination.
type RoutingTable struct {
	routes map[frame.Address]frame.Address
}

func NewRoutingTable() *RoutingTable {
	return &RoutingTable{routes: make(map[frame.Address]frame.Address)}
}

func (rt *RoutingTable) String() string {
	return "routing-table"
}

func (rt *RoutingTable) Size() int {
	return len(rt.routes)
}

// Lookup returns the next hop toward dst, if known.
func (rt *RoutingTable) Lookup(dst frame.Address) optional.Optional[frame.Address] {
	if nh, ok := rt.routes[dst]; ok {
		return optional.Some(nh)
	}
	return optional.None[frame.Address]()
}

// Upsert records nextHop for dst. Returns false, without touching the table,
// when the same route is already present.
func (rt *RoutingTable) Upsert(dst frame.Address, nextHop frame.Address) bool {
	prev, exists := rt.routes[dst]
	if exists && prev == nextHop {
		return false
	}
	rt.routes[dst] = nextHop
	if exists {
		log.Debug(rt, "Route updated", "dst", dst, "nexthop", nextHop, "old", prev)
	} else {
		log.Debug(rt, "Route added", "dst", dst, "nexthop", nextHop)
	}
	return true
}

// Remove deletes the route for dst. Returns true if there was one.
func (rt *RoutingTable) Remove(dst frame.Address) bool {
	if _, ok := rt.routes[dst]; !ok {
		return false
	}
	delete(rt.routes, dst)
	log.Debug(rt, "Route removed", "dst", dst)
	return true
}

// GetAll returns a snapshot of all routes.
func (rt *RoutingTable) GetAll() []Route {
	routes := make([]Route, 0, len(rt.routes))
	for dst, nh := range rt.routes {
		routes = append(routes, Route{Destination: dst, NextHop: nh})
	}
	return routes
}
