package cmd_test

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zhmesh/zhmesh/air"
	"github.com/zhmesh/zhmesh/mesh/cmd"
	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/std/clock"
	tu "github.com/zhmesh/zhmesh/std/utils/testutils"
	"github.com/zhmesh/zhmesh/std/utils/toolutils"
)

func readConfig(t *testing.T, file string) *cmd.NodeConfig {
	config := cmd.DefaultNodeConfig()
	require.NoError(t, toolutils.ReadYaml(config, filepath.Join("testdata", file)))
	return config
}

func TestNodeConfig(t *testing.T) {
	tu.SetT(t)

	config := readConfig(t, "node.yml")
	require.NoError(t, config.Parse())
	require.Equal(t, "ZHNetwork", config.Node.Network)
	require.Equal(t, frame.MustParseAddress("02:00:00:00:00:0A"), config.Node.LocalAddress())
	require.Equal(t, "WARN", config.Log.Level)
	require.Equal(t, frame.MustParseAddress("02:00:00:00:00:0C"), config.App.TargetAddress().Unwrap())
	require.Equal(t, 100*time.Millisecond, config.App.Interval())
	// defaults survive for keys the file leaves out
	require.Equal(t, uint64(1000), config.Node.SendTimeout_ms)
	require.Equal(t, "memory", config.Gateway.Store)

	config.App.Target = "broadcast"
	require.NoError(t, config.Parse())
	require.True(t, config.App.TargetAddress().Unwrap().IsBroadcast())

	config.App.Target = ""
	require.NoError(t, config.Parse())
	require.False(t, config.App.TargetAddress().IsSet())

	config.App.Target = "02:00:00:00:00:0C"
	config.App.Interval_ms = 10
	require.Error(t, config.Parse())

	config.App.Interval_ms = 100
	config.Transport.Url = ""
	require.Error(t, config.Parse())
}

func TestNodeToGateway(t *testing.T) {
	tu.SetT(t)

	topo := air.DefaultTopology()
	topo.Links = []air.Link{
		{A: "02:00:00:00:00:0A", B: "02:00:00:00:00:0B"},
		{A: "02:00:00:00:00:0B", B: "02:00:00:00:00:0C"},
	}
	hub := air.NewHub(air.DefaultHubConfig(), tu.NoErr(air.NewMedium(topo, clock.New())))
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/air"

	start := func(config *cmd.NodeConfig) *cmd.NodeExecutor {
		config.Transport.Url = url
		x := tu.NoErr(cmd.NewNodeExecutor(config))
		done := make(chan error, 1)
		go func() { done <- x.Start() }()
		t.Cleanup(func() {
			x.Stop()
			require.NoError(t, <-done)
		})
		return x
	}

	gwConfig := readConfig(t, "gateway.yml")
	gwConfig.BaseDir = t.TempDir()
	gw := start(gwConfig)

	relay := cmd.DefaultNodeConfig()
	relay.Node.Network = "ZHNetwork"
	relay.Node.Key = "change-me"
	relay.Node.Address = "02:00:00:00:00:0B"
	relay.Node.MaintenanceInterval_ms = 20
	start(relay)

	start(readConfig(t, "node.yml"))

	// the sensor reaches the gateway through the relay
	require.Eventually(t, func() bool {
		recs, err := gw.Store().List(1)
		return err == nil && len(recs) == 1
	}, 20*time.Second, 50*time.Millisecond)

	recs := tu.NoErr(gw.Store().List(1))
	require.Equal(t, frame.MustParseAddress("02:00:00:00:00:0A"), recs[0].Sender)
	require.Equal(t, "hello gateway", string(recs[0].Payload))
}
