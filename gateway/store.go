package gateway

import (
	"fmt"
	"path/filepath"
)

// Store keeps received records in arrival order.
type Store interface {
	String() string
	// Put appends a record.
	Put(rec Record) error
	// List returns the last limit records, oldest first. A limit <= 0 returns all.
	List(limit int) ([]Record, error)
	Close() error
}

// Config selects and configures the store of a gateway.
type Config struct {
	// Store received unicasts instead of only logging them.
	Enabled bool `json:"enabled"`
	// Store kind: memory, badger or sqlite.
	Store string `json:"store"`
	// Directory (badger) or file (sqlite) of the store.
	Path string `json:"path"`
	// Records kept by the memory store.
	Capacity int `json:"capacity"`
	// Payload format: text or reading.
	Format string `json:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:  false,
		Store:    "memory",
		Path:     "",
		Capacity: 1024,
		Format:   "text",
	}
}

func (c *Config) Parse() error {
	switch c.Store {
	case "memory":
		if c.Capacity < 1 {
			return fmt.Errorf("capacity must be positive")
		}
	case "badger", "sqlite":
		if c.Path == "" {
			return fmt.Errorf("path must be set for the %s store", c.Store)
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}

	switch c.Format {
	case "text", "reading":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}

// OpenStore opens the configured store. Relative paths are resolved against base.
func OpenStore(c *Config, base string) (Store, error) {
	path := c.Path
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}

	switch c.Store {
	case "badger":
		return NewBadgerStore(path)
	case "sqlite":
		return NewSqliteStore(path)
	default:
		return NewMemoryStore(c.Capacity), nil
	}
}

func lastN[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[len(items)-limit:]
	}
	return items
}
