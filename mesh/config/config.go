package config

import (
	"fmt"
	"time"

	"github.com/zhmesh/zhmesh/mesh/frame"
)

// Config is the per-node protocol configuration.
type Config struct {
	// Network name filter. Empty accepts frames of every network.
	Network string `json:"network"`
	// Obfuscation key. Empty disables obfuscation.
	Key string `json:"key"`
	// Local link-layer address of this node.
	Address string `json:"address"`
	// Radio channel announced to the transport.
	Channel uint8 `json:"channel"`
	// Link-level send attempts before a route is considered stale.
	MaxAttempts int `json:"max_attempts"`
	// Minimum spacing between two transmissions.
	TxSpacing_ms uint64 `json:"tx_spacing"`
	// How long a message waits for route discovery.
	RouteTimeout_ms uint64 `json:"route_timeout"`
	// How long a confirmed unicast waits for its end-to-end confirmation.
	ConfirmTimeout_ms uint64 `json:"confirm_timeout"`
	// How long a transmission waits for its link-level result.
	SendTimeout_ms uint64 `json:"send_timeout"`
	// Upper bound of the random delay before relaying a flood.
	Jitter_ms uint64 `json:"jitter"`
	// Period at which the owner calls the maintenance step.
	MaintenanceInterval_ms uint64 `json:"maintenance_interval"`

	// Parsed local address
	addressN frame.Address
}

func DefaultConfig() *Config {
	return &Config{
		Network:                "",
		Key:                    "",
		Address:                "", // invalid
		Channel:                1,
		MaxAttempts:            3,
		TxSpacing_ms:           50,
		RouteTimeout_ms:        500,
		ConfirmTimeout_ms:      500,
		SendTimeout_ms:         1000,
		Jitter_ms:              10,
		MaintenanceInterval_ms: 50,
	}
}

func (c *Config) Parse() (err error) {
	if len(c.Network) > frame.NetworkSize {
		return fmt.Errorf("network name can have at most %d bytes", frame.NetworkSize)
	}
	if len(c.Key) > frame.NetworkSize {
		return fmt.Errorf("key can have at most %d bytes", frame.NetworkSize)
	}

	if c.Address == "" {
		return fmt.Errorf("address must be set")
	}
	c.addressN, err = frame.ParseAddress(c.Address)
	if err != nil {
		return err
	}
	if c.addressN.IsBroadcast() || c.addressN.IsZero() {
		return fmt.Errorf("address %s is reserved", c.addressN)
	}

	if c.Channel < 1 || c.Channel > 14 {
		return fmt.Errorf("channel must be within [1, 14]")
	}
	if c.MaxAttempts < 1 || c.MaxAttempts > 10 {
		return fmt.Errorf("max_attempts must be within [1, 10]")
	}
	if c.TxSpacing_ms < 50 || c.TxSpacing_ms > 250 {
		return fmt.Errorf("tx_spacing must be within [50, 250] ms")
	}
	if c.RouteTimeout_ms < 500 || c.RouteTimeout_ms > 5000 {
		return fmt.Errorf("route_timeout must be within [500, 5000] ms")
	}
	if c.ConfirmTimeout_ms < 500 || c.ConfirmTimeout_ms > 5000 {
		return fmt.Errorf("confirm_timeout must be within [500, 5000] ms")
	}
	if c.SendTimeout_ms < 100 || c.SendTimeout_ms > 10000 {
		return fmt.Errorf("send_timeout must be within [100, 10000] ms")
	}
	if c.Jitter_ms > 100 {
		return fmt.Errorf("jitter must be at most 100 ms")
	}
	if c.MaintenanceInterval_ms < 10 || c.MaintenanceInterval_ms > 1000 {
		return fmt.Errorf("maintenance_interval must be within [10, 1000] ms")
	}

	return nil
}

// LocalAddress returns the parsed local address. Valid after Parse.
func (c *Config) LocalAddress() frame.Address {
	return c.addressN
}

func (c *Config) KeyBytes() []byte {
	return []byte(c.Key)
}

func (c *Config) TxSpacing() time.Duration {
	return time.Duration(c.TxSpacing_ms) * time.Millisecond
}

func (c *Config) RouteTimeout() time.Duration {
	return time.Duration(c.RouteTimeout_ms) * time.Millisecond
}

func (c *Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeout_ms) * time.Millisecond
}

func (c *Config) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeout_ms) * time.Millisecond
}

func (c *Config) Jitter() time.Duration {
	return time.Duration(c.Jitter_ms) * time.Millisecond
}

func (c *Config) MaintenanceInterval() time.Duration {
	return time.Duration(c.MaintenanceInterval_ms) * time.Millisecond
}
