package toolutils_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zhmesh/zhmesh/std/utils/toolutils"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestReadYaml(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yml")
	require.NoError(t, os.WriteFile(good, []byte("name: mesh\ncount: 3\n"), 0o644))

	var s sample
	require.NoError(t, toolutils.ReadYaml(&s, good))
	require.Equal(t, sample{Name: "mesh", Count: 3}, s)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("name: mesh\nunknown: 1\n"), 0o644))
	require.Error(t, toolutils.ReadYaml(&s, bad))

	require.Error(t, toolutils.ReadYaml(&s, filepath.Join(dir, "missing.yml")))
}

func TestStatusPrinter(t *testing.T) {
	buf := &bytes.Buffer{}
	p := toolutils.StatusPrinter{File: buf, Padding: 8}
	p.Print("routes", 2)
	p.Print("averyverylongkey", "x")
	require.Equal(t, "  routes=2\naveryverylongkey=x\n", buf.String())
}
