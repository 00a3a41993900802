package mesh

import (
	"sync/atomic"

	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/mesh/table"
)

type counters struct {
	received    atomic.Uint64
	duplicates  atomic.Uint64
	malformed   atomic.Uint64
	contended   atomic.Uint64
	delivered   atomic.Uint64
	forwarded   atomic.Uint64
	transmitted atomic.Uint64
	failed      atomic.Uint64
}

// Status is a snapshot of the engine state.
type Status struct {
	Address frame.Address
	Network string
	Channel uint8

	Outgoing int
	Incoming int
	Pending  int
	Confirms int
	Routes   int
	InFlight bool

	// frames accepted by the receive path
	Received uint64
	// frames rejected as duplicates
	Duplicates uint64
	// frames rejected by the codec
	Malformed uint64
	// frames dropped because the guard was held
	Contended uint64
	// payloads handed to the application
	Delivered uint64
	// frames relayed for other nodes
	Forwarded uint64
	// transmissions handed to the transport
	Transmitted uint64
	// transmissions that failed or timed out
	Failed uint64
}

// Status returns a snapshot. Like the other application methods it must be
// called from the goroutine running Maintenance.
func (e *Engine) Status() Status {
	return Status{
		Address: e.local,
		Network: e.config.Network,
		Channel: e.Channel(),

		Outgoing: e.outgoing.Len(),
		Incoming: int(e.incomingLen.Load()),
		Pending:  e.pending.Len(),
		Confirms: e.confirms.Len(),
		Routes:   e.routes.Size(),
		InFlight: e.inFlight,

		Received:    e.stats.received.Load(),
		Duplicates:  e.stats.duplicates.Load(),
		Malformed:   e.stats.malformed.Load(),
		Contended:   e.stats.contended.Load(),
		Delivered:   e.stats.delivered.Load(),
		Forwarded:   e.stats.forwarded.Load(),
		Transmitted: e.stats.transmitted.Load(),
		Failed:      e.stats.failed.Load(),
	}
}

// Routes returns a snapshot of the routing table.
func (e *Engine) Routes() []table.Route {
	return e.routes.GetAll()
}
