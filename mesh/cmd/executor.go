package cmd

import (
	"fmt"
	"time"

	"github.com/zhmesh/zhmesh/gateway"
	"github.com/zhmesh/zhmesh/mesh"
	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/std/clock"
	"github.com/zhmesh/zhmesh/std/log"
	"github.com/zhmesh/zhmesh/std/utils"
	"github.com/zhmesh/zhmesh/transport"
)

// NodeExecutor owns one engine and drives it from a single goroutine.
type NodeExecutor struct {
	config *NodeConfig
	engine *mesh.Engine
	store  gateway.Store
	sink   *gateway.Sink
	stop   chan struct{}
	sent   int
}

func NewNodeExecutor(config *NodeConfig) (*NodeExecutor, error) {
	x := &NodeExecutor{
		config: config,
		stop:   make(chan struct{}),
	}

	// Validate configuration sanity
	err := config.Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to validate node config: %w", err)
	}

	tr := transport.NewWebSocketTransport(config.Transport.Url, config.Node.LocalAddress())
	x.engine, err = mesh.NewEngine(config.Node, tr, clock.New())
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh engine: %w", err)
	}

	x.engine.OnBroadcastReceived(x.onBroadcast)
	x.engine.OnConfirmation(x.onConfirmation)
	if config.Gateway.Enabled {
		x.store, err = gateway.OpenStore(config.Gateway, config.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open gateway store: %w", err)
		}
		x.sink = gateway.NewSink(x.store, config.Gateway.Format, nil)
		x.engine.OnUnicastReceived(x.sink.Handle)
	} else {
		x.engine.OnUnicastReceived(x.onUnicast)
	}

	return x, nil
}

func (x *NodeExecutor) String() string {
	return "node-executor"
}

// Start runs the node until Stop is called.
func (x *NodeExecutor) Start() error {
	if x.store != nil {
		defer x.store.Close()
	}

	if err := x.engine.Open(); err != nil {
		return fmt.Errorf("failed to start mesh engine: %w", err)
	}
	defer x.engine.Close()

	maintenance := time.NewTicker(x.config.Node.MaintenanceInterval())
	defer maintenance.Stop()

	var sendTick <-chan time.Time
	if x.config.App.TargetAddress().IsSet() {
		ticker := time.NewTicker(x.config.App.Interval())
		defer ticker.Stop()
		sendTick = ticker.C
	}

	for {
		select {
		case <-maintenance.C:
			x.engine.Maintenance()
		case <-sendTick:
			x.sendMessage()
		case <-x.stop:
			return nil
		}
	}
}

func (x *NodeExecutor) Stop() {
	close(x.stop)
}

// Engine returns the engine. It must not be used while the executor is running.
func (x *NodeExecutor) Engine() *mesh.Engine {
	return x.engine
}

// Store returns the gateway store, nil when the gateway is disabled.
func (x *NodeExecutor) Store() gateway.Store {
	return x.store
}

func (x *NodeExecutor) sendMessage() {
	app := x.config.App
	target := app.TargetAddress().Unwrap()
	payload := []byte(app.Message)

	var id uint16
	var err error
	if target.IsBroadcast() {
		id, err = x.engine.SendBroadcast(payload)
	} else {
		id, err = x.engine.SendUnicast(payload, target, app.Confirm)
	}
	if err != nil {
		log.Error(x, "Unable to send message", "target", target, "err", err)
		return
	}
	x.sent++
	log.Info(x, "Message sent", "target", target, "id", id, "count", x.sent)
}

func (x *NodeExecutor) onBroadcast(payload []byte, sender frame.Address) {
	log.Info(x, "Broadcast received", "sender", sender, "size", len(payload))
}

func (x *NodeExecutor) onUnicast(payload []byte, sender frame.Address) {
	log.Info(x, "Unicast received", "sender", sender, "size", len(payload))
}

func (x *NodeExecutor) onConfirmation(target frame.Address, id uint16, delivered bool) {
	logf := utils.If(delivered, log.Info, log.Warn)
	logf(x, "Message confirmation", "target", target, "id", id, "delivered", delivered)
}
