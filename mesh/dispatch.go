package mesh

import (
	"encoding/binary"
	"time"

	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/std/log"
)

// processIncoming takes one accepted frame off the incoming queue and handles it.
// The step is skipped when the receive path holds the guard.
func (e *Engine) processIncoming(now time.Time) {
	if !e.tryLock() {
		return
	}
	in, ok := e.incoming.Pop()
	e.incomingLen.Store(int32(e.incoming.Len()))
	e.unlock()

	if ok {
		e.dispatch(in, now)
	}
}

func (e *Engine) dispatch(in incomingEntry, now time.Time) {
	f := in.Frame
	log.Trace(e, "Processing frame", "frame", f.String(), "lasthop", in.LastHop)

	switch f.Type {
	case frame.TypeBroadcast:
		e.deliver(f)
		e.flood(f, now)

	case frame.TypeUnicast, frame.TypeUnicastWithConfirm:
		if f.Target != e.local {
			e.forward(f)
			return
		}
		e.deliver(f)
		if f.Type == frame.TypeUnicastWithConfirm {
			e.confirmDelivery(f)
		}

	case frame.TypeDeliveryConfirmResponse:
		if f.Target != e.local {
			e.forward(f)
			return
		}
		if f.Len() < 2 {
			log.Warn(e, "Dropped short confirmation", "frame", f.String())
			return
		}
		id := binary.LittleEndian.Uint16(f.Payload())
		if e.confirms.Resolve(f.Origin, id) {
			e.reportConfirmation(f.Origin, id, true)
		} else {
			log.Debug(e, "Ignored late confirmation", "target", f.Origin, "id", id)
		}

	case frame.TypeSearchRequest:
		e.learnRoute(f.Origin, in.LastHop)
		if f.Target == e.local {
			e.respond(f)
		} else {
			e.flood(f, now)
		}

	case frame.TypeSearchResponse:
		e.learnRoute(f.Origin, in.LastHop)
		if f.Target != e.local {
			e.flood(f, now)
		}
	}
}

// deliver hands a payload to the application. The frame itself is left
// untouched so a relayed copy keeps the origin's obfuscation.
func (e *Engine) deliver(f frame.Frame) {
	f.Obfuscate(e.key)
	e.stats.delivered.Add(1)
	log.Debug(e, "Message delivered", "frame", f.String())

	switch {
	case f.Type == frame.TypeBroadcast:
		if e.onBroadcast != nil {
			e.onBroadcast(f.Payload(), f.Origin)
		}
	case e.onUnicast != nil:
		e.onUnicast(f.Payload(), f.Origin)
	}
}

// forward queues a unicast-class frame toward its target, unchanged.
func (e *Engine) forward(f frame.Frame) {
	nextHop := e.routes.Lookup(f.Target).GetOr(f.Target)
	e.outgoing.Push(outgoingEntry{Frame: f, NextHop: nextHop})
	e.stats.forwarded.Add(1)
	log.Trace(e, "Forwarding", "frame", f.String(), "nexthop", nextHop)
}

// flood queues a flood frame for broadcast after a random jitter.
func (e *Engine) flood(f frame.Frame, now time.Time) {
	e.outgoing.Push(outgoingEntry{
		Frame:     f,
		NextHop:   frame.Broadcast,
		NotBefore: now.Add(e.jitter()),
	})
	e.stats.forwarded.Add(1)
	log.Trace(e, "Reflooding", "frame", f.String())
}

// confirmDelivery answers a confirmed unicast with the id it carried.
func (e *Engine) confirmDelivery(req frame.Frame) {
	resp := frame.Frame{
		Network: e.config.Network,
		Type:    frame.TypeDeliveryConfirmResponse,
		ID:      e.newID(),
		Origin:  e.local,
		Target:  req.Origin,
	}
	var id [2]byte
	binary.LittleEndian.PutUint16(id[:], req.ID)
	if err := resp.SetPayload(id[:]); err != nil {
		log.Error(e, "Unable to build confirmation", "target", resp.Target, "err", err)
		return
	}

	nextHop := e.routes.Lookup(resp.Target).GetOr(resp.Target)
	e.outgoing.Push(outgoingEntry{Frame: resp, NextHop: nextHop})
	log.Debug(e, "Confirming delivery", "target", resp.Target, "id", req.ID, "nexthop", nextHop)
}
