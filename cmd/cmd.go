package cmd

import (
	"github.com/spf13/cobra"
	air "github.com/zhmesh/zhmesh/air/cmd"
	node "github.com/zhmesh/zhmesh/mesh/cmd"
	"github.com/zhmesh/zhmesh/std/utils"
	"github.com/zhmesh/zhmesh/tools"
)

var CmdZhmesh = &cobra.Command{
	Use:   "zhmesh",
	Short: "Self-forming wireless mesh network",
	Long: `Self-forming wireless mesh network

Multi-hop unicast, flooding broadcast and on-demand route discovery
over a lossy single-hop radio link.`,
	Version: utils.Version,
}

func init() {
	cobra.EnableCommandSorting = false
	CmdZhmesh.Root().CompletionOptions.HiddenDefaultCmd = true
	CmdZhmesh.PersistentFlags().BoolP("help", "h", false, "Print usage")
	CmdZhmesh.PersistentFlags().Lookup("help").Hidden = true

	CmdZhmesh.AddGroup(&cobra.Group{ID: "daemons", Title: "Mesh Daemons"})
	CmdZhmesh.AddCommand(cmdNode())
	CmdZhmesh.AddCommand(cmdAir())

	CmdZhmesh.AddGroup(&cobra.Group{ID: "tools", Title: "Debug Tools"})
	CmdZhmesh.AddCommand(tools.CmdSim)
}

func cmdNode() *cobra.Command {
	cmdNode := &cobra.Command{
		Use:     "node",
		Short:   "Mesh node daemon",
		GroupID: "daemons",
	}

	cmdNode.AddGroup(&cobra.Group{ID: "run", Title: "Node Daemon"})
	node.CmdNode.Use = "run CONFIG-FILE"
	node.CmdNode.Short = "Start a mesh node"
	cmdNode.AddCommand(node.CmdNode)

	return cmdNode
}

func cmdAir() *cobra.Command {
	cmdAir := &cobra.Command{
		Use:   "air",
		Short: "Radio medium hub",
		Long: `Radio medium hub

Nodes connect to the hub over websockets; the hub forwards their frames
according to the link topology, emulating the radio range of every node.`,
		GroupID: "daemons",
	}

	cmdAir.AddGroup(&cobra.Group{ID: "run", Title: "Hub Daemon"})
	air.CmdAir.Use = "run CONFIG-FILE"
	air.CmdAir.Short = "Start the radio medium hub"
	cmdAir.AddCommand(air.CmdAir)

	return cmdAir
}
