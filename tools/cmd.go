package tools

import "github.com/spf13/cobra"

var CmdSim = &cobra.Command{
	GroupID: "tools",
	Use:     "sim CONFIG-FILE",
	Short:   "Simulate a mesh on an in-memory radio medium",
	Long: `Simulate a mesh on an in-memory radio medium.
Every node runs the protocol engine on a simulated clock. Receptions and
delivery outcomes are printed as they happen, followed by the status of
every node.`,
	Args:    cobra.ExactArgs(1),
	Example: `  zhmesh sim line.yml`,
	Run:     runSim,
}
