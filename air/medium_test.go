package air_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zhmesh/zhmesh/air"
	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/std/clock"
	tu "github.com/zhmesh/zhmesh/std/utils/testutils"
	"github.com/zhmesh/zhmesh/transport"
)

var (
	addrA = frame.MustParseAddress("02:00:00:00:00:0A")
	addrB = frame.MustParseAddress("02:00:00:00:00:0B")
	addrC = frame.MustParseAddress("02:00:00:00:00:0C")
)

type heard struct {
	src  frame.Address
	wire []byte
}

type station struct {
	radio   *air.Radio
	heard   []heard
	results []bool
}

func attach(t *testing.T, m *air.Medium, addr frame.Address) *station {
	p := &station{radio: tu.NoErr(m.Attach(addr))}
	p.radio.OnReceive(func(src frame.Address, wire []byte) {
		p.heard = append(p.heard, heard{src, wire})
	})
	p.radio.OnSent(func(dst frame.Address, ok bool) {
		p.results = append(p.results, ok)
	})
	require.NoError(t, p.radio.Open())
	return p
}

// A - B - C, A and C out of range
func lineMedium(t *testing.T, clk clock.Clock) *air.Medium {
	topo := air.DefaultTopology()
	topo.Links = []air.Link{
		{A: addrA.String(), B: addrB.String()},
		{A: addrB.String(), B: addrC.String()},
	}
	return tu.NoErr(air.NewMedium(topo, clk))
}

func TestTopologyParse(t *testing.T) {
	topo := air.DefaultTopology()
	topo.Links = []air.Link{{A: "02:00:00:00:00:0A", B: "02:00:00:00:00:0B", Loss: 0.25}}
	require.NoError(t, topo.Parse())
	loss, ok := topo.Linked(addrB, addrA)
	require.True(t, ok)
	require.Equal(t, 0.25, loss)
	_, ok = topo.Linked(addrA, addrC)
	require.False(t, ok)
	require.Equal(t, 2*time.Millisecond, topo.Latency())

	topo.Links = []air.Link{{A: "02:00:00:00:00:0A", B: "02:00:00:00:00:0A"}}
	require.Error(t, topo.Parse())
	topo.Links = []air.Link{{A: "02:00:00:00:00:0A", B: "02:00:00:00:00:0B", Loss: 1.5}}
	require.Error(t, topo.Parse())
	topo.Links = []air.Link{{A: "nope", B: "02:00:00:00:00:0B"}}
	require.Error(t, topo.Parse())
}

func TestMediumUnicast(t *testing.T) {
	tu.SetT(t)
	clk := clock.NewDummyClock()
	m := lineMedium(t, clk)
	a, b, c := attach(t, m, addrA), attach(t, m, addrB), attach(t, m, addrC)

	require.NoError(t, a.radio.Send(addrB, []byte{1}))
	require.NoError(t, a.radio.Send(addrC, []byte{2}))

	// nothing happens before the latency elapsed
	clk.MoveForward(time.Millisecond)
	require.Empty(t, b.heard)
	require.Empty(t, a.results)

	clk.MoveForward(time.Millisecond)
	require.Equal(t, []heard{{addrA, []byte{1}}}, b.heard)
	require.Empty(t, c.heard)
	require.Equal(t, []bool{true, false}, a.results)

	err := a.radio.Send(addrB, make([]byte, air.MaxFrameSize+1))
	require.ErrorIs(t, err, air.ErrFrameTooLarge)
	clk.MoveForward(10 * time.Millisecond)
	require.Len(t, b.heard, 1)
	require.Len(t, a.results, 2)
}

func TestMediumBroadcast(t *testing.T) {
	tu.SetT(t)
	clk := clock.NewDummyClock()
	m := lineMedium(t, clk)
	a, b, c := attach(t, m, addrA), attach(t, m, addrB), attach(t, m, addrC)

	require.NoError(t, b.radio.Send(frame.Broadcast, []byte{7}))
	clk.MoveForward(10 * time.Millisecond)
	require.Len(t, a.heard, 1)
	require.Len(t, c.heard, 1)
	require.Empty(t, b.heard)
	require.Equal(t, []bool{true}, b.results)

	// a broadcast nobody hears still reports success
	require.NoError(t, c.radio.Close())
	require.NoError(t, a.radio.Close())
	require.NoError(t, b.radio.Send(frame.Broadcast, []byte{8}))
	clk.MoveForward(10 * time.Millisecond)
	require.Equal(t, []bool{true, true}, b.results)
	require.Len(t, a.heard, 1)
}

func TestMediumChannels(t *testing.T) {
	tu.SetT(t)
	clk := clock.NewDummyClock()
	m := lineMedium(t, clk)
	a, b := attach(t, m, addrA), attach(t, m, addrB)

	b.radio.SetChannel(6)
	require.NoError(t, a.radio.Send(addrB, []byte{1}))
	clk.MoveForward(10 * time.Millisecond)
	require.Empty(t, b.heard)
	require.Equal(t, []bool{false}, a.results)

	a.radio.SetChannel(6)
	require.NoError(t, a.radio.Send(addrB, []byte{1}))
	clk.MoveForward(10 * time.Millisecond)
	require.Len(t, b.heard, 1)
	require.Equal(t, []bool{false, true}, a.results)
}

func TestMediumLoss(t *testing.T) {
	tu.SetT(t)
	run := func() []bool {
		clk := clock.NewDummyClock()
		topo := air.DefaultTopology()
		topo.Seed = 42
		topo.Links = []air.Link{{A: addrA.String(), B: addrB.String(), Loss: 0.5}}
		m := tu.NoErr(air.NewMedium(topo, clk))
		a := attach(t, m, addrA)
		attach(t, m, addrB)
		for range 64 {
			require.NoError(t, a.radio.Send(addrB, []byte{1}))
		}
		clk.MoveForward(10 * time.Millisecond)
		return a.results
	}

	first := run()
	require.Len(t, first, 64)
	require.Contains(t, first, true)
	require.Contains(t, first, false)
	// the rolls are reproducible
	require.Equal(t, first, run())
}

func TestMediumAttachDetach(t *testing.T) {
	tu.SetT(t)
	clk := clock.NewDummyClock()
	m := lineMedium(t, clk)
	a := attach(t, m, addrA)
	attach(t, m, addrB)

	_, err := m.Attach(addrA)
	require.Error(t, err)
	require.Equal(t, []frame.Address{addrB}, m.Neighbors(addrA))

	m.Detach(addrB)
	require.Empty(t, m.Neighbors(addrA))
	require.NoError(t, a.radio.Send(addrB, []byte{1}))
	clk.MoveForward(10 * time.Millisecond)
	require.Equal(t, []bool{false}, a.results)

	require.NoError(t, a.radio.Close())
	require.ErrorIs(t, a.radio.Send(addrB, []byte{1}), transport.ErrNotRunning)
}
