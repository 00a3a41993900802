package gateway

import (
	"bytes"

	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/std/clock"
	"github.com/zhmesh/zhmesh/std/log"
)

// Sink stores the unicasts received by a gateway node.
type Sink struct {
	store  Store
	clock  clock.Clock
	format string
}

func NewSink(store Store, format string, clk clock.Clock) *Sink {
	if clk == nil {
		clk = clock.New()
	}
	return &Sink{store: store, clock: clk, format: format}
}

func (s *Sink) String() string {
	return "gateway-sink"
}

// Handle records one payload. It has the signature of the engine unicast callback.
func (s *Sink) Handle(payload []byte, sender frame.Address) {
	rec := Record{Sender: sender, Received: s.clock.Now(), Payload: payload}
	if err := s.store.Put(rec); err != nil {
		log.Error(s, "Unable to store record", "sender", sender, "err", err)
		return
	}

	if s.format == "reading" {
		r, err := ParseReading(payload)
		if err != nil {
			log.Warn(s, "Malformed reading", "sender", sender, "err", err)
			return
		}
		log.Info(s, "Reading received", "sender", sender, "temperature", r.Temperature, "battery", r.Battery)
		return
	}
	text := payload
	if i := bytes.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}
	log.Info(s, "Message received", "sender", sender, "text", string(text))
}

// Store returns the underlying store.
func (s *Sink) Store() Store {
	return s.store
}
