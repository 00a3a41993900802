package mesh

import (
	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/std/log"
)

// onReceive is the transport receive callback. It never waits: when the guard is
// held the frame is dropped, and recovery is left to retries and floods.
func (e *Engine) onReceive(src frame.Address, wire []byte) {
	if !e.running.Load() {
		return
	}

	f, err := frame.Decode(wire)
	if err != nil {
		e.stats.malformed.Add(1)
		log.Trace(e, "Dropped malformed frame", "src", src, "err", err)
		return
	}
	if f.Origin == e.local {
		log.Trace(e, "Dropped own frame", "frame", f.String())
		return
	}
	if e.config.Network != "" && f.Network != e.config.Network {
		log.Trace(e, "Dropped foreign network frame", "network", f.Network)
		return
	}

	if !e.tryLock() {
		e.stats.contended.Add(1)
		log.Trace(e, "Dropped frame on contention", "frame", f.String())
		return
	}
	defer e.unlock()

	if !e.dedup.ShouldAccept(f.ID, f.Origin) {
		e.stats.duplicates.Add(1)
		log.Trace(e, "Dropped duplicate", "frame", f.String(), "src", src)
		return
	}

	e.incoming.Push(incomingEntry{Frame: f, LastHop: src})
	e.incomingLen.Store(int32(e.incoming.Len()))
	e.stats.received.Add(1)
}

// onSent is the transport send-result callback.
func (e *Engine) onSent(dst frame.Address, ok bool) {
	e.result.Store(&linkResult{dst: dst, ok: ok})
}
