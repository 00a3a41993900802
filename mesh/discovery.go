package mesh

import (
	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/std/log"
)

// search floods a route request for target.
func (e *Engine) search(target frame.Address) {
	req := frame.Frame{
		Network: e.config.Network,
		Type:    frame.TypeSearchRequest,
		ID:      e.newID(),
		Origin:  e.local,
		Target:  target,
	}
	e.outgoing.Push(outgoingEntry{Frame: req, NextHop: frame.Broadcast})
	log.Debug(e, "Searching route", "target", target, "id", req.ID)
}

// respond floods a route response back to the origin of req.
func (e *Engine) respond(req frame.Frame) {
	resp := frame.Frame{
		Network: e.config.Network,
		Type:    frame.TypeSearchResponse,
		ID:      e.newID(),
		Origin:  e.local,
		Target:  req.Origin,
	}
	e.outgoing.Push(outgoingEntry{Frame: resp, NextHop: frame.Broadcast})
	log.Debug(e, "Answering route search", "requester", req.Origin, "id", resp.ID)
}

// learnRoute records the reverse path toward origin: the neighbor a search frame
// was heard from.
func (e *Engine) learnRoute(origin frame.Address, lastHop frame.Address) {
	e.routes.Upsert(origin, lastHop)
}
