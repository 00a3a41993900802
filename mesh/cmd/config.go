package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/zhmesh/zhmesh/gateway"
	"github.com/zhmesh/zhmesh/mesh/config"
	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/std/types/optional"
	"github.com/zhmesh/zhmesh/std/utils/toolutils"
)

// NodeConfig is the configuration file of the node daemon.
type NodeConfig struct {
	Node      *config.Config       `json:"node"`
	Log       *toolutils.LogConfig `json:"log"`
	Transport *TransportConfig     `json:"transport"`
	App       *AppConfig           `json:"app"`
	Gateway   *gateway.Config      `json:"gateway"`

	// Directory of the configuration file
	BaseDir string `json:"-"`
}

// TransportConfig points the node to the air hub emulating its radio.
type TransportConfig struct {
	Url string `json:"url"`
}

// AppConfig drives the periodic sender of a sensor node.
type AppConfig struct {
	// Destination address, or "broadcast". Empty disables the sender.
	Target string `json:"target"`
	// Text payload.
	Message string `json:"message"`
	// Period between two messages.
	Interval_ms uint64 `json:"interval"`
	// Ask the target for an end-to-end confirmation.
	Confirm bool `json:"confirm"`

	targetN optional.Optional[frame.Address]
}

func DefaultNodeConfig() *NodeConfig {
	return &NodeConfig{
		Node: config.DefaultConfig(),
		Log:  toolutils.DefaultLogConfig(),
		Transport: &TransportConfig{
			Url: "ws://127.0.0.1:8980/air",
		},
		App: &AppConfig{
			Target:      "",
			Message:     "hello",
			Interval_ms: 10000,
			Confirm:     true,
		},
		Gateway: gateway.DefaultConfig(),
		BaseDir: ".",
	}
}

func (c *NodeConfig) Parse() error {
	if err := c.Node.Parse(); err != nil {
		return fmt.Errorf("node: %w", err)
	}
	if c.Transport.Url == "" {
		return fmt.Errorf("transport: url must be set")
	}
	if err := c.App.Parse(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Gateway.Parse(); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	return nil
}

func (c *AppConfig) Parse() error {
	c.targetN.Unset()
	switch strings.ToLower(c.Target) {
	case "":
		return nil
	case "broadcast":
		c.targetN.Set(frame.Broadcast)
	default:
		addr, err := frame.ParseAddress(c.Target)
		if err != nil {
			return err
		}
		c.targetN.Set(addr)
	}

	if len(c.Message) > frame.PayloadSize {
		return fmt.Errorf("message can have at most %d bytes", frame.PayloadSize)
	}
	if c.Interval_ms < 100 {
		return fmt.Errorf("interval must be at least 100 ms")
	}
	return nil
}

// TargetAddress returns the parsed target, unset when the sender is disabled.
func (c *AppConfig) TargetAddress() optional.Optional[frame.Address] {
	return c.targetN
}

func (c *AppConfig) Interval() time.Duration {
	return time.Duration(c.Interval_ms) * time.Millisecond
}
