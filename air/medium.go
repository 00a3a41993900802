package air

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/std/clock"
	"github.com/zhmesh/zhmesh/std/log"
)

// Medium is an in-memory radio medium. Frames reach only attached radios that
// are linked to the sender and tuned to the same channel. Deliveries and link
// results are scheduled on the clock after the topology latency.
//
// A unicast reports success only when it reached the destination; a broadcast
// always reports success, as a real radio cannot know who heard it.
type Medium struct {
	lock   sync.Mutex
	clock  clock.Clock
	topo   *Topology
	radios map[frame.Address]*Radio
	order  []frame.Address
	// transmission counter, input of the loss roll
	seq uint64
}

// NewMedium creates a medium. The topology is validated.
func NewMedium(topo *Topology, clk clock.Clock) (*Medium, error) {
	if err := topo.Parse(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Medium{
		clock:  clk,
		topo:   topo,
		radios: make(map[frame.Address]*Radio),
	}, nil
}

func (m *Medium) String() string {
	return "air-medium"
}

// Attach creates the radio of a node.
func (m *Medium) Attach(addr frame.Address) (*Radio, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, ok := m.radios[addr]; ok {
		return nil, fmt.Errorf("radio %s is already attached", addr)
	}
	r := newRadio(m, addr)
	m.radios[addr] = r
	m.order = append(m.order, addr)
	log.Debug(m, "Radio attached", "addr", addr)
	return r, nil
}

// Detach removes the radio of a node. Frames in the air are still delivered
// to it if it is running.
func (m *Medium) Detach(addr frame.Address) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, ok := m.radios[addr]; !ok {
		return
	}
	delete(m.radios, addr)
	m.order = slices.DeleteFunc(m.order, func(a frame.Address) bool { return a == addr })
	log.Debug(m, "Radio detached", "addr", addr)
}

// Neighbors returns the attached radios linked to addr, in attach order.
func (m *Medium) Neighbors(addr frame.Address) []frame.Address {
	m.lock.Lock()
	defer m.lock.Unlock()

	var nbrs []frame.Address
	for _, a := range m.order {
		if _, ok := m.topo.Linked(addr, a); ok {
			nbrs = append(nbrs, a)
		}
	}
	return nbrs
}

// transmit puts a frame from src in the air.
func (m *Medium) transmit(src *Radio, dst frame.Address, wire []byte) {
	type delivery struct {
		to   *Radio
		wire []byte
	}

	m.lock.Lock()
	var deliveries []delivery
	ok := dst.IsBroadcast()
	for _, a := range m.order {
		r := m.radios[a]
		if r == src || (!dst.IsBroadcast() && a != dst) {
			continue
		}
		if !r.IsRunning() || r.Channel() != src.Channel() {
			continue
		}
		loss, linked := m.topo.Linked(src.addr, a)
		if !linked || m.lost(src.addr, a, loss) {
			continue
		}
		deliveries = append(deliveries, delivery{to: r, wire: slices.Clone(wire)})
		if a == dst {
			ok = true
		}
	}
	latency := m.topo.Latency()
	m.lock.Unlock()

	log.Trace(m, "Frame in the air", "src", src.addr, "dst", dst, "receivers", len(deliveries), "ok", ok)
	for _, d := range deliveries {
		m.clock.Schedule(latency, func() { d.to.deliver(src.addr, d.wire) })
	}
	m.clock.Schedule(latency, func() { src.report(dst, ok) })
}

// lost rolls the loss of one frame on one link. The roll is a hash of the seed,
// the transmission counter and both ends, so runs are reproducible.
func (m *Medium) lost(from, to frame.Address, loss float64) bool {
	m.seq++
	if loss <= 0 {
		return false
	}
	if loss >= 1 {
		return true
	}

	var buf [16 + 2*frame.AddressSize]byte
	binary.LittleEndian.PutUint64(buf[0:], m.topo.Seed)
	binary.LittleEndian.PutUint64(buf[8:], m.seq)
	copy(buf[16:], from[:])
	copy(buf[16+frame.AddressSize:], to[:])
	roll := float64(xxhash.Sum64(buf[:])) / math.MaxUint64
	return roll < loss
}
