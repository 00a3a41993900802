package toolutils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zhmesh/zhmesh/std/log"
)

// LogConfig is the log section of daemon configuration files.
type LogConfig struct {
	// Log file, relative to the configuration file. Empty logs to stderr.
	File string `json:"file"`
	// TRACE, DEBUG, INFO, WARN or ERROR.
	Level string `json:"level"`
	// text or json.
	Format string `json:"format"`
}

func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		File:   "",
		Level:  "INFO",
		Format: "text",
	}
}

// OpenLogger installs the configured logger as the default one.
// The returned function closes the log file.
func (c *LogConfig) OpenLogger(baseDir string) (closeFn func(), err error) {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	out := os.Stderr
	closeFn = func() {}
	if c.File != "" {
		path := c.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		out, err = os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
		closeFn = func() { out.Close() }
	}

	var logger *log.Logger
	switch c.Format {
	case "text", "":
		logger = log.NewText(out)
	case "json":
		logger = log.NewJson(out)
	default:
		closeFn()
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}

	logger.SetLevel(level)
	log.SetDefault(logger)
	return closeFn, nil
}
