package air

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/std/log"
	"github.com/zhmesh/zhmesh/transport"
)

// HubConfig contains Hub configuration.
type HubConfig struct {
	Bind string `json:"bind"`
	Port uint16 `json:"port"`
}

func DefaultHubConfig() *HubConfig {
	return &HubConfig{
		Bind: "127.0.0.1",
		Port: 8980,
	}
}

func (cfg *HubConfig) Addr() string {
	return net.JoinHostPort(cfg.Bind, strconv.FormatUint(uint64(cfg.Port), 10))
}

// Hub exposes a Medium over websockets. Every connection attaches one radio,
// identified by the addr query parameter of the /air endpoint.
type Hub struct {
	config   *HubConfig
	medium   *Medium
	server   http.Server
	upgrader websocket.Upgrader
}

func NewHub(cfg *HubConfig, medium *Medium) *Hub {
	h := &Hub{
		config: cfg,
		medium: medium,
		server: http.Server{Addr: cfg.Addr()},
		upgrader: websocket.Upgrader{
			WriteBufferPool: &sync.Pool{},
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/air", h.handler)
	h.server.Handler = mux
	return h
}

func (h *Hub) String() string {
	return fmt.Sprintf("air-hub (%s)", h.config.Addr())
}

// Handler returns the HTTP handler of the hub.
func (h *Hub) Handler() http.Handler {
	return h.server.Handler
}

// Run serves until Close is called.
func (h *Hub) Run() error {
	log.Info(h, "Starting air hub")
	err := h.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (h *Hub) Close() error {
	log.Info(h, "Stopping air hub")
	return h.server.Shutdown(context.TODO())
}

func (h *Hub) handler(w http.ResponseWriter, r *http.Request) {
	addr, err := frame.ParseAddress(r.URL.Query().Get("addr"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	radio, err := h.medium.Attach(addr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.medium.Detach(addr)
		return
	}

	log.Info(h, "Node connected", "addr", addr, "remote", c.RemoteAddr())
	newHubLink(h, radio, c).run()
}

// hubLink bridges one websocket connection and its radio.
type hubLink struct {
	hub     *Hub
	radio   *Radio
	conn    *websocket.Conn
	sendMut sync.Mutex
}

func newHubLink(h *Hub, radio *Radio, c *websocket.Conn) *hubLink {
	return &hubLink{hub: h, radio: radio, conn: c}
}

func (l *hubLink) String() string {
	return fmt.Sprintf("hub-link (%s)", l.radio.Address())
}

func (l *hubLink) write(m transport.HubMessage) {
	l.sendMut.Lock()
	defer l.sendMut.Unlock()
	if err := l.conn.WriteMessage(websocket.BinaryMessage, m.Encode()); err != nil {
		log.Debug(l, "Unable to write to node", "err", err)
	}
}

func (l *hubLink) run() {
	defer func() {
		l.radio.Close()
		l.hub.medium.Detach(l.radio.Address())
		l.conn.Close()
		log.Info(l.hub, "Node disconnected", "addr", l.radio.Address())
	}()

	l.radio.OnReceive(func(src frame.Address, wire []byte) {
		l.write(transport.HubMessage{Kind: transport.HubData, Addr: src, Body: wire})
	})
	l.radio.OnSent(func(dst frame.Address, ok bool) {
		l.write(transport.StatusMessage(dst, ok))
	})
	if err := l.radio.Open(); err != nil {
		log.Error(l, "Unable to open radio", "err", err)
		return
	}

	for {
		mt, buf, err := l.conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.BinaryMessage {
			continue
		}

		m, err := transport.DecodeHubMessage(buf)
		if err != nil {
			log.Warn(l, "Ignored message from node", "err", err)
			continue
		}

		switch m.Kind {
		case transport.HubData:
			if err := l.radio.Send(m.Addr, m.Body); err != nil {
				log.Warn(l, "Radio refused frame", "dst", m.Addr, "err", err)
				l.write(transport.StatusMessage(m.Addr, false))
			}
		case transport.HubChannel:
			l.radio.SetChannel(m.Body[0])
			log.Debug(l, "Channel set", "channel", m.Body[0])
		}
	}
}
