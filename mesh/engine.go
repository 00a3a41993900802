// Package mesh implements the multi-hop protocol engine running on top of a
// single-hop radio transport.
package mesh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/zhmesh/zhmesh/mesh/config"
	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/mesh/table"
	"github.com/zhmesh/zhmesh/std/clock"
	"github.com/zhmesh/zhmesh/std/log"
	"github.com/zhmesh/zhmesh/transport"
)

var (
	ErrClosed        = errors.New("engine is closed")
	ErrInvalidTarget = errors.New("invalid unicast target")
)

// outgoingEntry is a frame waiting for its turn on the radio.
type outgoingEntry struct {
	Frame   frame.Frame
	NextHop frame.Address
	// NotBefore holds back relayed floods by a random jitter.
	NotBefore time.Time
}

// incomingEntry is an accepted frame and the neighbor it was heard from.
type incomingEntry struct {
	Frame   frame.Frame
	LastHop frame.Address
}

// pendingEntry is a frame parked until a route to its target is discovered.
type pendingEntry struct {
	Frame      frame.Frame
	EnqueuedAt time.Time
}

// linkResult is the outcome of a single-hop transmission.
type linkResult struct {
	dst frame.Address
	ok  bool
}

// Engine is one mesh node.
//
// The application methods and Maintenance must be called from a single goroutine.
// The transport callbacks may fire on any goroutine; they only touch state behind
// the non-blocking guard and drop their work when it is held.
type Engine struct {
	// parsed node configuration
	config *config.Config
	// local link-layer address
	local frame.Address
	// obfuscation key, empty when disabled
	key []byte
	// radio link
	transport transport.Transport
	// time source
	clock clock.Clock
	// message id and jitter source
	rng *rand.Rand
	// current radio channel
	channel atomic.Uint32
	// open state
	running atomic.Bool

	// guard protects dedup and incoming between the receive path and Maintenance
	guard atomic.Bool
	// clearHistory requests a dedup reset by the next guard holder
	clearHistory atomic.Bool
	dedup        *table.DedupCache
	incoming     *table.Queue[incomingEntry]
	incomingLen  atomic.Int32

	outgoing *table.Queue[outgoingEntry]
	pending  *table.Queue[pendingEntry]
	routes   *table.RoutingTable
	confirms *table.ConfirmTracker

	// the head of outgoing has been handed to the transport
	inFlight bool
	// time the head was handed to the transport
	sentAt time.Time
	// time of the last transmission, for spacing
	lastSent time.Time
	// failed attempts of the head so far
	attempts int
	// result of the in-flight transmission, set by the transport
	result atomic.Pointer[linkResult]
	// a timed out transmission whose late result is still expected
	overdue      bool
	overdueDst   frame.Address
	overdueSince time.Time

	onBroadcast func(payload []byte, sender frame.Address)
	onUnicast   func(payload []byte, sender frame.Address)
	onConfirm   func(target frame.Address, id uint16, delivered bool)

	stats counters
}

// NewEngine creates an engine. The configuration is validated.
func NewEngine(cfg *config.Config, tr transport.Transport, clk clock.Clock) (*Engine, error) {
	if err := cfg.Parse(); err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, fmt.Errorf("transport must be set")
	}
	if clk == nil {
		clk = clock.New()
	}

	local := cfg.LocalAddress()
	seed := binary.LittleEndian.Uint64(append(local[:], 0, 0))

	e := &Engine{
		config:    cfg,
		local:     local,
		key:       cfg.KeyBytes(),
		transport: tr,
		clock:     clk,
		rng:       rand.New(rand.NewPCG(seed, uint64(clk.Now().UnixNano()))),

		dedup:    table.NewDedupCache(table.DedupCapacity),
		incoming: table.NewQueue[incomingEntry]("incoming-queue"),
		outgoing: table.NewQueue[outgoingEntry]("outgoing-queue"),
		pending:  table.NewQueue[pendingEntry]("pending-route-queue"),
		routes:   table.NewRoutingTable(),
		confirms: table.NewConfirmTracker(),
	}
	e.channel.Store(uint32(cfg.Channel))
	return e, nil
}

func (e *Engine) String() string {
	return fmt.Sprintf("mesh-engine (%s)", e.local)
}

// Address returns the local address.
func (e *Engine) Address() frame.Address {
	return e.local
}

// Open registers with the transport and starts it.
func (e *Engine) Open() error {
	if e.running.Swap(true) {
		return fmt.Errorf("engine is already open")
	}

	e.transport.OnReceive(e.onReceive)
	e.transport.OnSent(e.onSent)
	if cs, ok := e.transport.(transport.ChannelSetter); ok {
		cs.SetChannel(e.Channel())
	}
	if err := e.transport.Open(); err != nil {
		e.running.Store(false)
		return fmt.Errorf("failed to open %s: %w", e.transport, err)
	}

	log.Info(e, "Mesh engine started", "network", e.config.Network, "channel", e.Channel())
	return nil
}

// Close stops the transport. Queued frames and confirmation waits are
// discarded without being reported; routes and message history are kept.
func (e *Engine) Close() error {
	if !e.running.Swap(false) {
		return ErrClosed
	}
	err := e.transport.Close()

	dropped := e.outgoing.Clear() + e.pending.Clear()
	e.confirms.Clear()
	e.inFlight = false
	e.attempts = 0
	e.overdue = false
	e.result.Store(nil)
	if e.tryLock() {
		dropped += e.incoming.Clear()
		e.incomingLen.Store(0)
		e.unlock()
	}

	log.Info(e, "Mesh engine stopped", "dropped", dropped)
	return err
}

// OnBroadcastReceived sets the callback for broadcasts. It fires inside Maintenance.
func (e *Engine) OnBroadcastReceived(fn func(payload []byte, sender frame.Address)) {
	e.onBroadcast = fn
}

// OnUnicastReceived sets the callback for unicasts addressed to this node.
// It fires inside Maintenance.
func (e *Engine) OnUnicastReceived(fn func(payload []byte, sender frame.Address)) {
	e.onUnicast = fn
}

// OnConfirmation sets the callback for delivery outcomes of own broadcasts and
// confirmed unicasts. It fires inside Maintenance.
func (e *Engine) OnConfirmation(fn func(target frame.Address, id uint16, delivered bool)) {
	e.onConfirm = fn
}

// Channel returns the current radio channel.
func (e *Engine) Channel() uint8 {
	return uint8(e.channel.Load())
}

// SetChannel updates the radio channel and forwards it to the transport.
func (e *Engine) SetChannel(channel uint8) {
	e.channel.Store(uint32(channel))
	if cs, ok := e.transport.(transport.ChannelSetter); ok {
		cs.SetChannel(channel)
	}
	log.Info(e, "Channel changed", "channel", channel)
}

// ClearHistory forgets every recently seen message. The reset is applied by the
// next holder of the guard, at the latest during the next Maintenance step.
func (e *Engine) ClearHistory() {
	e.clearHistory.Store(true)
}

// tryLock takes the guard without waiting.
func (e *Engine) tryLock() bool {
	if !e.guard.CompareAndSwap(false, true) {
		return false
	}
	if e.clearHistory.Swap(false) {
		e.dedup.Reset()
		log.Debug(e, "Message history cleared")
	}
	return true
}

func (e *Engine) unlock() {
	e.guard.Store(false)
}

func (e *Engine) newID() uint16 {
	return uint16(e.rng.Uint32())
}

func (e *Engine) jitter() time.Duration {
	limit := e.config.Jitter()
	if limit <= 0 {
		return 0
	}
	return time.Duration(e.rng.Int64N(int64(limit) + 1))
}

func (e *Engine) reportConfirmation(target frame.Address, id uint16, delivered bool) {
	log.Debug(e, "Delivery outcome", "target", target, "id", id, "delivered", delivered)
	if e.onConfirm != nil {
		e.onConfirm(target, id, delivered)
	}
}
