package mesh

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zhmesh/zhmesh/mesh/config"
	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/std/clock"
	"github.com/zhmesh/zhmesh/transport"
)

func TestGuardContentionDrops(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Address = "02:00:00:00:00:0A"
	tr := transport.NewDummyTransport()
	e, err := NewEngine(cfg, tr, clock.NewDummyClock())
	require.NoError(t, err)

	delivered := 0
	e.OnBroadcastReceived(func([]byte, frame.Address) { delivered++ })
	require.NoError(t, e.Open())

	src := frame.MustParseAddress("02:00:00:00:00:0B")
	f := frame.Frame{Type: frame.TypeBroadcast, ID: 1, Origin: src, Target: frame.Broadcast}
	wire, err := f.Encode()
	require.NoError(t, err)

	// a frame arriving while the guard is held is dropped, not queued
	e.guard.Store(true)
	require.NoError(t, tr.Feed(src, wire))
	require.Equal(t, uint64(1), e.Status().Contended)
	require.Equal(t, 0, e.Status().Incoming)

	// maintenance skips the incoming queue instead of waiting
	e.incoming.Push(incomingEntry{Frame: f, LastHop: src})
	e.Maintenance()
	require.Equal(t, 0, delivered)
	require.Equal(t, 1, e.incoming.Len())

	e.guard.Store(false)
	e.Maintenance()
	require.Equal(t, 1, delivered)

	// the dropped frame was never recorded, so a retransmission is accepted
	require.NoError(t, tr.Feed(src, wire))
	require.Equal(t, uint64(1), e.Status().Received)
}
