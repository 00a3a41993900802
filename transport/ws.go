package transport

import (
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/std/log"
)

// WebSocketTransport links a node to an air hub, which emulates the radio medium.
type WebSocketTransport struct {
	baseTransport
	url     string
	local   frame.Address
	conn    *websocket.Conn
	sendMut sync.Mutex
	channel atomic.Uint32
}

// NewWebSocketTransport creates a transport to the hub at hubURL (ws:// or wss://).
func NewWebSocketTransport(hubURL string, local frame.Address) *WebSocketTransport {
	t := &WebSocketTransport{url: hubURL, local: local}
	t.channel.Store(1)
	return t
}

func (t *WebSocketTransport) String() string {
	return fmt.Sprintf("ws-transport (local=%s hub=%s)", t.local, t.url)
}

func (t *WebSocketTransport) Open() error {
	if !t.hasCallbacks() {
		return ErrNoCallbacks
	}
	if t.running.Load() {
		return ErrAlreadyRunning
	}

	u, err := url.Parse(t.url)
	if err != nil {
		return fmt.Errorf("invalid hub url: %w", err)
	}
	q := u.Query()
	q.Set("addr", t.local.String())
	u.RawQuery = q.Encode()

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("unable to connect to hub: %w", err)
	}

	t.conn = c
	t.running.Store(true)
	if err = t.write(HubMessage{Kind: HubChannel, Body: []byte{uint8(t.channel.Load())}}); err != nil {
		t.Close()
		return err
	}

	go t.receive()
	log.Info(t, "Connected to air hub")
	return nil
}

func (t *WebSocketTransport) Close() error {
	if !t.running.Swap(false) {
		return ErrNotRunning
	}
	return t.conn.Close()
}

func (t *WebSocketTransport) Send(dst frame.Address, wire []byte) error {
	if !t.running.Load() {
		return ErrNotRunning
	}
	return t.write(HubMessage{Kind: HubData, Addr: dst, Body: wire})
}

func (t *WebSocketTransport) SetChannel(channel uint8) {
	t.channel.Store(uint32(channel))
	if t.running.Load() {
		if err := t.write(HubMessage{Kind: HubChannel, Body: []byte{channel}}); err != nil {
			log.Warn(t, "Unable to announce channel", "channel", channel, "err", err)
		}
	}
}

func (t *WebSocketTransport) write(m HubMessage) error {
	t.sendMut.Lock()
	defer t.sendMut.Unlock()
	return t.conn.WriteMessage(websocket.BinaryMessage, m.Encode())
}

func (t *WebSocketTransport) receive() {
	defer t.running.Store(false)

	for t.running.Load() {
		mt, buf, err := t.conn.ReadMessage()
		if err != nil {
			if t.running.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Warn(t, "Unable to read from hub - transport DOWN", "err", err)
			}
			return
		}
		if mt != websocket.BinaryMessage {
			continue
		}

		m, err := DecodeHubMessage(buf)
		if err != nil {
			log.Warn(t, "Ignored hub message", "err", err)
			continue
		}

		switch m.Kind {
		case HubData:
			t.deliver(m.Addr, m.Body)
		case HubStatus:
			t.report(m.Addr, m.Body[0] == 1)
		}
	}
}
