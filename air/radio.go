package air

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/transport"
)

// MaxFrameSize is the largest frame a radio puts in the air.
const MaxFrameSize = 250

var ErrFrameTooLarge = errors.New("frame exceeds the radio frame size")

// Radio is the transport of one node attached to a Medium.
type Radio struct {
	medium  *Medium
	addr    frame.Address
	channel atomic.Uint32
	running atomic.Bool

	cbMut  sync.RWMutex
	onRecv func(src frame.Address, wire []byte)
	onSent func(dst frame.Address, ok bool)
}

func newRadio(m *Medium, addr frame.Address) *Radio {
	r := &Radio{medium: m, addr: addr}
	r.channel.Store(1)
	return r
}

func (r *Radio) String() string {
	return fmt.Sprintf("air-radio (%s)", r.addr)
}

func (r *Radio) Address() frame.Address {
	return r.addr
}

func (r *Radio) IsRunning() bool {
	return r.running.Load()
}

func (r *Radio) OnReceive(onRecv func(src frame.Address, wire []byte)) {
	r.cbMut.Lock()
	defer r.cbMut.Unlock()
	r.onRecv = onRecv
}

func (r *Radio) OnSent(onSent func(dst frame.Address, ok bool)) {
	r.cbMut.Lock()
	defer r.cbMut.Unlock()
	r.onSent = onSent
}

func (r *Radio) Open() error {
	r.cbMut.RLock()
	ready := r.onRecv != nil && r.onSent != nil
	r.cbMut.RUnlock()
	if !ready {
		return transport.ErrNoCallbacks
	}
	if r.running.Swap(true) {
		return transport.ErrAlreadyRunning
	}
	return nil
}

func (r *Radio) Close() error {
	if !r.running.Swap(false) {
		return transport.ErrNotRunning
	}
	return nil
}

func (r *Radio) Send(dst frame.Address, wire []byte) error {
	if !r.running.Load() {
		return transport.ErrNotRunning
	}
	if len(wire) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(wire))
	}
	r.medium.transmit(r, dst, wire)
	return nil
}

func (r *Radio) SetChannel(channel uint8) {
	r.channel.Store(uint32(channel))
}

func (r *Radio) Channel() uint8 {
	return uint8(r.channel.Load())
}

func (r *Radio) deliver(src frame.Address, wire []byte) {
	r.cbMut.RLock()
	onRecv := r.onRecv
	r.cbMut.RUnlock()
	if onRecv != nil && r.running.Load() {
		onRecv(src, wire)
	}
}

func (r *Radio) report(dst frame.Address, ok bool) {
	r.cbMut.RLock()
	onSent := r.onSent
	r.cbMut.RUnlock()
	if onSent != nil && r.running.Load() {
		onSent(dst, ok)
	}
}
