package toolutils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zhmesh/zhmesh/std/log"
	"github.com/zhmesh/zhmesh/std/utils/toolutils"
)

func TestOpenLogger(t *testing.T) {
	prev := log.Default()
	defer log.SetDefault(prev)

	dir := t.TempDir()
	c := toolutils.DefaultLogConfig()
	c.File = "node.log"
	c.Format = "json"
	c.Level = "debug"

	closeFn, err := c.OpenLogger(dir)
	require.NoError(t, err)
	require.Equal(t, log.LevelDebug, log.Default().Level())
	log.Debug(nil, "hello from the log")
	closeFn()

	out, err := os.ReadFile(filepath.Join(dir, "node.log"))
	require.NoError(t, err)
	require.Contains(t, string(out), `"msg":"hello from the log"`)

	c.Level = "loud"
	_, err = c.OpenLogger(dir)
	require.Error(t, err)

	c.Level = "info"
	c.Format = "xml"
	_, err = c.OpenLogger(dir)
	require.Error(t, err)
}
