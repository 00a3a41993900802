package tools_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zhmesh/zhmesh/std/utils/toolutils"
	"github.com/zhmesh/zhmesh/tools"
)

func TestSimLine(t *testing.T) {
	config := tools.DefaultSimConfig()
	require.NoError(t, toolutils.ReadYaml(config, filepath.Join("testdata", "line.yml")))

	out := &bytes.Buffer{}
	sim, err := tools.NewSim(config, out)
	require.NoError(t, err)
	sim.Run()

	s := out.String()
	require.Contains(t, s, `02:00:00:00:00:0C unicast from 02:00:00:00:00:0A "hello C"`)
	require.Contains(t, s, "02:00:00:00:00:0A confirmation target=02:00:00:00:00:0C")
	require.Contains(t, s, "delivered=true")
	require.NotContains(t, s, "delivered=false")
	require.Contains(t, s, `02:00:00:00:00:0A broadcast from 02:00:00:00:00:0C "ping"`)
	require.Contains(t, s, "route=02:00:00:00:00:0C via 02:00:00:00:00:0B")
}

func TestSimRejects(t *testing.T) {
	config := tools.DefaultSimConfig()
	config.Nodes = []string{"02:00:00:00:00:0A", "02:00:00:00:00:0A"}
	_, err := tools.NewSim(config, &bytes.Buffer{})
	require.Error(t, err)

	config = tools.DefaultSimConfig()
	config.Nodes = []string{"02:00:00:00:00:0A"}
	config.Sends = []tools.SimSend{{From: "02:00:00:00:00:0B", To: "broadcast"}}
	_, err = tools.NewSim(config, &bytes.Buffer{})
	require.Error(t, err)

	config.Step_ms = 0
	_, err = tools.NewSim(config, &bytes.Buffer{})
	require.Error(t, err)
}
