package mesh

import (
	"time"

	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/mesh/table"
	"github.com/zhmesh/zhmesh/std/log"
)

// transmitHead hands the head of the outgoing queue to the transport when the
// radio is idle, the spacing has elapsed and the head is not held back.
func (e *Engine) transmitHead(now time.Time) {
	if e.inFlight || e.overdue {
		return
	}
	head, ok := e.outgoing.Front()
	if !ok {
		return
	}
	if !e.lastSent.IsZero() && now.Sub(e.lastSent) < e.config.TxSpacing() {
		return
	}
	if now.Before(head.NotBefore) {
		return
	}

	wire, err := head.Frame.Encode()
	if err != nil {
		log.Error(e, "Dropped unencodable frame", "frame", head.Frame.String(), "err", err)
		e.outgoing.Pop()
		return
	}

	e.result.Store(nil)
	e.inFlight = true
	e.sentAt = now
	e.lastSent = now
	e.stats.transmitted.Add(1)

	log.Trace(e, "Transmitting", "frame", head.Frame.String(), "nexthop", head.NextHop, "attempt", e.attempts+1)
	if err := e.transport.Send(head.NextHop, wire); err != nil {
		log.Warn(e, "Transport refused frame", "nexthop", head.NextHop, "err", err)
		e.result.Store(&linkResult{dst: head.NextHop, ok: false})
	}
}

// checkSendResult consumes the link-level result of the in-flight transmission.
func (e *Engine) checkSendResult(now time.Time) {
	e.settleOverdue(now)
	if !e.inFlight {
		return
	}
	head, _ := e.outgoing.Front()

	r := e.result.Load()
	if r != nil && r.dst != head.NextHop {
		// belongs to an earlier transmission
		e.result.CompareAndSwap(r, nil)
		r = nil
	}
	if r == nil {
		if now.Sub(e.sentAt) >= e.config.SendTimeout() {
			log.Debug(e, "No link result, treating as failed", "frame", head.Frame.String())
			e.overdue = true
			e.overdueDst = head.NextHop
			e.overdueSince = now
			e.sendFailed(now)
		}
		return
	}

	e.result.Store(nil)
	if r.ok {
		e.sendAcked(now)
	} else {
		e.sendFailed(now)
	}
}

// settleOverdue holds the radio after a send timeout until the late result of
// that transmission arrives and is discarded, or another send timeout passes,
// so that a late result is not taken for the outcome of the retry.
func (e *Engine) settleOverdue(now time.Time) {
	if !e.overdue {
		return
	}
	if r := e.result.Load(); r != nil && r.dst == e.overdueDst {
		e.result.CompareAndSwap(r, nil)
		e.overdue = false
		log.Debug(e, "Discarded late link result", "dst", r.dst, "ok", r.ok)
		return
	}
	if now.Sub(e.overdueSince) >= e.config.SendTimeout() {
		e.overdue = false
		log.Debug(e, "Gave up on late link result", "dst", e.overdueDst)
	}
}

func (e *Engine) sendAcked(now time.Time) {
	e.inFlight = false
	e.attempts = 0
	head, _ := e.outgoing.Pop()
	f := head.Frame
	log.Trace(e, "Transmission acked", "frame", f.String(), "nexthop", head.NextHop)

	if f.Origin != e.local {
		return
	}
	switch f.Type {
	case frame.TypeBroadcast:
		e.reportConfirmation(frame.Broadcast, f.ID, true)
	case frame.TypeUnicastWithConfirm:
		e.confirms.Add(table.ConfirmWait{Target: f.Target, ID: f.ID, SentAt: now})
	}
}

func (e *Engine) sendFailed(now time.Time) {
	e.inFlight = false
	e.attempts++
	e.stats.failed.Add(1)
	if e.attempts < e.config.MaxAttempts {
		// the head stays and is resent after the spacing
		return
	}

	head, _ := e.outgoing.Pop()
	e.attempts = 0
	f := head.Frame

	if f.Type.IsFlood() {
		log.Debug(e, "Dropped flood after exhausting attempts", "frame", f.String())
		if f.Origin == e.local && f.Type == frame.TypeBroadcast {
			e.reportConfirmation(frame.Broadcast, f.ID, false)
		}
		return
	}

	log.Debug(e, "Next hop unreachable, searching route", "frame", f.String(), "nexthop", head.NextHop)
	e.routes.Remove(f.Target)
	e.search(f.Target)
	e.pending.Push(pendingEntry{Frame: f, EnqueuedAt: now})
}

// servicePending evaluates the front of the pending-route queue.
func (e *Engine) servicePending(now time.Time) {
	w, ok := e.pending.Front()
	if !ok {
		return
	}
	f := w.Frame

	if nextHop, found := e.routes.Lookup(f.Target).Get(); found {
		e.pending.Pop()
		e.outgoing.Push(outgoingEntry{Frame: f, NextHop: nextHop})
		log.Debug(e, "Route found for parked message", "frame", f.String(), "nexthop", nextHop)
		return
	}

	if now.Sub(w.EnqueuedAt) > e.config.RouteTimeout() {
		e.pending.Pop()
		log.Debug(e, "Route search timed out", "frame", f.String())
		if f.Origin == e.local && f.Type == frame.TypeUnicastWithConfirm {
			e.reportConfirmation(f.Target, f.ID, false)
		}
	}
}

// sweepConfirmations fails every confirmation wait that timed out.
func (e *Engine) sweepConfirmations(now time.Time) {
	for _, w := range e.confirms.Expire(now, e.config.ConfirmTimeout()) {
		log.Debug(e, "Confirmation timed out", "target", w.Target, "id", w.ID)
		e.search(w.Target)
		e.reportConfirmation(w.Target, w.ID, false)
	}
}
