package mesh

import (
	"fmt"

	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/std/log"
)

// SendBroadcast floods data to every node of the network and returns its message id.
// The confirmation reports the first-hop transmission only.
func (e *Engine) SendBroadcast(data []byte) (uint16, error) {
	return e.send(frame.TypeBroadcast, frame.Broadcast, data)
}

// SendUnicast sends data to target and returns its message id. With confirm set,
// the outcome is reported through OnConfirmation once the target answers or the
// wait times out.
func (e *Engine) SendUnicast(data []byte, target frame.Address, confirm bool) (uint16, error) {
	if target.IsBroadcast() || target.IsZero() || target == e.local {
		return 0, fmt.Errorf("%w: %s", ErrInvalidTarget, target)
	}
	typ := frame.TypeUnicast
	if confirm {
		typ = frame.TypeUnicastWithConfirm
	}
	return e.send(typ, target, data)
}

func (e *Engine) send(typ frame.MessageType, target frame.Address, data []byte) (uint16, error) {
	if !e.running.Load() {
		return 0, ErrClosed
	}

	f := frame.Frame{
		Network: e.config.Network,
		Type:    typ,
		ID:      e.newID(),
		Origin:  e.local,
		Target:  target,
	}
	if err := f.SetPayload(data); err != nil {
		return 0, err
	}
	f.Obfuscate(e.key)

	nextHop := target
	if !target.IsBroadcast() {
		nextHop = e.routes.Lookup(target).GetOr(target)
	}
	e.outgoing.Push(outgoingEntry{Frame: f, NextHop: nextHop})

	log.Debug(e, "Message queued", "frame", f.String(), "nexthop", nextHop)
	return f.ID, nil
}
