// Package transport defines the single-hop radio boundary the mesh engine runs on.
package transport

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/zhmesh/zhmesh/mesh/frame"
)

var (
	ErrNotRunning     = errors.New("transport is not running")
	ErrAlreadyRunning = errors.New("transport is already running")
	ErrNoCallbacks    = errors.New("transport callbacks are not set")
)

// Transport is a lossy, unordered, single-hop frame link.
type Transport interface {
	String() string
	// IsRunning returns true if the transport is open.
	IsRunning() bool
	// OnReceive sets the callback for received frames. It may fire on any goroutine.
	OnReceive(onRecv func(src frame.Address, wire []byte))
	// OnSent sets the callback for link-level send results. It may fire on any goroutine.
	OnSent(onSent func(dst frame.Address, ok bool))
	// Open starts the transport.
	Open() error
	// Close stops the transport.
	Close() error
	// Send transmits one frame to a neighbor or to Broadcast.
	// The outcome is reported asynchronously through OnSent.
	Send(dst frame.Address, wire []byte) error
}

// ChannelSetter is implemented by transports that model radio channels.
type ChannelSetter interface {
	SetChannel(channel uint8)
}

// baseTransport holds callback and state plumbing shared by implementations.
type baseTransport struct {
	running atomic.Bool
	cbMut   sync.RWMutex
	onRecv  func(src frame.Address, wire []byte)
	onSent  func(dst frame.Address, ok bool)
}

func (t *baseTransport) IsRunning() bool {
	return t.running.Load()
}

func (t *baseTransport) OnReceive(onRecv func(src frame.Address, wire []byte)) {
	t.cbMut.Lock()
	defer t.cbMut.Unlock()
	t.onRecv = onRecv
}

func (t *baseTransport) OnSent(onSent func(dst frame.Address, ok bool)) {
	t.cbMut.Lock()
	defer t.cbMut.Unlock()
	t.onSent = onSent
}

func (t *baseTransport) hasCallbacks() bool {
	t.cbMut.RLock()
	defer t.cbMut.RUnlock()
	return t.onRecv != nil && t.onSent != nil
}

func (t *baseTransport) deliver(src frame.Address, wire []byte) {
	t.cbMut.RLock()
	onRecv := t.onRecv
	t.cbMut.RUnlock()
	if onRecv != nil && t.running.Load() {
		onRecv(src, wire)
	}
}

func (t *baseTransport) report(dst frame.Address, ok bool) {
	t.cbMut.RLock()
	onSent := t.onSent
	t.cbMut.RUnlock()
	if onSent != nil && t.running.Load() {
		onSent(dst, ok)
	}
}
