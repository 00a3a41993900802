package transport

import (
	"fmt"
	"sync"

	"github.com/zhmesh/zhmesh/mesh/frame"
)

// SentFrame is a transmission captured by DummyTransport.
type SentFrame struct {
	Dst  frame.Address
	Wire []byte
}

// DummyTransport records sends and lets tests inject receptions and results.
type DummyTransport struct {
	baseTransport
	lock    sync.Mutex
	sent    []SentFrame
	channel uint8
}

func NewDummyTransport() *DummyTransport {
	return &DummyTransport{}
}

func (t *DummyTransport) String() string {
	return "dummy-transport"
}

func (t *DummyTransport) Open() error {
	if !t.hasCallbacks() {
		return ErrNoCallbacks
	}
	if t.running.Swap(true) {
		return ErrAlreadyRunning
	}
	return nil
}

func (t *DummyTransport) Close() error {
	if !t.running.Swap(false) {
		return ErrNotRunning
	}
	return nil
}

func (t *DummyTransport) Send(dst frame.Address, wire []byte) error {
	if !t.running.Load() {
		return ErrNotRunning
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	t.sent = append(t.sent, SentFrame{Dst: dst, Wire: append([]byte(nil), wire...)})
	return nil
}

func (t *DummyTransport) SetChannel(channel uint8) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.channel = channel
}

// Channel returns the last channel set.
func (t *DummyTransport) Channel() uint8 {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.channel
}

// Feed delivers a frame as if it was heard from src.
func (t *DummyTransport) Feed(src frame.Address, wire []byte) error {
	if !t.running.Load() {
		return ErrNotRunning
	}
	t.deliver(src, wire)
	return nil
}

// Complete reports the link-level result of a transmission to dst.
func (t *DummyTransport) Complete(dst frame.Address, ok bool) {
	t.report(dst, ok)
}

// Consume pops the oldest captured transmission.
func (t *DummyTransport) Consume() (SentFrame, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if len(t.sent) == 0 {
		return SentFrame{}, fmt.Errorf("no frame to consume")
	}
	s := t.sent[0]
	t.sent = t.sent[1:]
	return s, nil
}

// Pending returns the number of captured transmissions not yet consumed.
func (t *DummyTransport) Pending() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return len(t.sent)
}
