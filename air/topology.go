// Package air emulates the shared radio medium that mesh nodes transmit on.
package air

import (
	"fmt"
	"time"

	"github.com/zhmesh/zhmesh/mesh/frame"
)

// Link is a bidirectional radio link between two nodes.
type Link struct {
	A string `json:"a"`
	B string `json:"b"`
	// Probability in [0, 1] that a frame on this link is lost.
	Loss float64 `json:"loss"`
}

// Topology describes which nodes are in range of each other.
type Topology struct {
	Links []Link `json:"links"`
	// Propagation delay of every frame and link result.
	Latency_ms uint64 `json:"latency"`
	// Seed of the loss rolls.
	Seed uint64 `json:"seed"`

	links map[linkKey]float64
}

type linkKey struct {
	a, b frame.Address
}

func makeLinkKey(a, b frame.Address) linkKey {
	if string(a[:]) > string(b[:]) {
		a, b = b, a
	}
	return linkKey{a, b}
}

func DefaultTopology() *Topology {
	return &Topology{
		Links:      []Link{},
		Latency_ms: 2,
		Seed:       0,
	}
}

func (t *Topology) Parse() error {
	t.links = make(map[linkKey]float64, len(t.Links))
	for i, l := range t.Links {
		a, err := frame.ParseAddress(l.A)
		if err != nil {
			return fmt.Errorf("link %d: %w", i, err)
		}
		b, err := frame.ParseAddress(l.B)
		if err != nil {
			return fmt.Errorf("link %d: %w", i, err)
		}
		if a == b {
			return fmt.Errorf("link %d: %s is linked to itself", i, a)
		}
		if l.Loss < 0 || l.Loss > 1 {
			return fmt.Errorf("link %d: loss must be within [0, 1]", i)
		}
		t.links[makeLinkKey(a, b)] = l.Loss
	}
	if t.Latency_ms > 1000 {
		return fmt.Errorf("latency must be at most 1000 ms")
	}
	return nil
}

// Linked returns the loss probability of the link between a and b, if any.
// Valid after Parse.
func (t *Topology) Linked(a, b frame.Address) (loss float64, ok bool) {
	loss, ok = t.links[makeLinkKey(a, b)]
	return
}

func (t *Topology) Latency() time.Duration {
	return time.Duration(t.Latency_ms) * time.Millisecond
}
