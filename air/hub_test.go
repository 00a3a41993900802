package air_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zhmesh/zhmesh/air"
	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/std/clock"
	tu "github.com/zhmesh/zhmesh/std/utils/testutils"
	"github.com/zhmesh/zhmesh/transport"
)

type wsNode struct {
	tr      *transport.WebSocketTransport
	recv    chan []byte
	results chan bool
}

func connect(t *testing.T, url string, addr frame.Address) *wsNode {
	n := &wsNode{
		tr:      transport.NewWebSocketTransport(url, addr),
		recv:    make(chan []byte, 16),
		results: make(chan bool, 16),
	}
	n.tr.OnReceive(func(src frame.Address, wire []byte) { n.recv <- wire })
	n.tr.OnSent(func(dst frame.Address, ok bool) { n.results <- ok })
	require.NoError(t, n.tr.Open())
	t.Cleanup(func() { n.tr.Close() })
	return n
}

func TestHubRelaysFrames(t *testing.T) {
	tu.SetT(t)

	topo := air.DefaultTopology()
	topo.Links = []air.Link{{A: addrA.String(), B: addrB.String()}}
	medium := tu.NoErr(air.NewMedium(topo, clock.New()))
	hub := air.NewHub(air.DefaultHubConfig(), medium)

	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/air"

	a := connect(t, url, addrA)
	b := connect(t, url, addrB)

	// the hub opens the radio of b asynchronously
	require.Eventually(t, func() bool {
		require.NoError(t, a.tr.Send(addrB, []byte("hello")))
		select {
		case wire := <-b.recv:
			require.Equal(t, []byte("hello"), wire)
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	// attempts made before b was ready report failure
	delivered := false
	for !delivered {
		select {
		case delivered = <-a.results:
		case <-time.After(5 * time.Second):
			t.Fatal("no successful link result")
		}
	}

	// an oversized frame is refused by the radio and reported as failed
	require.NoError(t, a.tr.Send(addrB, make([]byte, air.MaxFrameSize+1)))
	for failed := false; !failed; {
		select {
		case ok := <-a.results:
			failed = !ok
		case <-time.After(5 * time.Second):
			t.Fatal("no failed link result")
		}
	}

	// the same address cannot attach twice
	dup := transport.NewWebSocketTransport(url, addrA)
	dup.OnReceive(func(frame.Address, []byte) {})
	dup.OnSent(func(frame.Address, bool) {})
	require.Error(t, dup.Open())
}
