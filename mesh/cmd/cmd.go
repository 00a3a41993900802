// Package cmd is the mesh node daemon.
package cmd

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zhmesh/zhmesh/std/log"
	"github.com/zhmesh/zhmesh/std/utils"
	"github.com/zhmesh/zhmesh/std/utils/toolutils"
)

var profile = ProfileConfig{}

var CmdNode = &cobra.Command{
	Use:     "zhmesh-node CONFIG-FILE",
	Short:   "Mesh node daemon",
	GroupID: "run",
	Version: utils.Version,
	Args:    cobra.ExactArgs(1),
	Run:     run,
}

func init() {
	CmdNode.Flags().StringVar(&profile.Cpu, "cpu-profile", "", "Write CPU profile to file")
	CmdNode.Flags().StringVar(&profile.Mem, "mem-profile", "", "Write memory profile to file")
	CmdNode.Flags().StringVar(&profile.Block, "block-profile", "", "Write block profile to file")
}

func run(cmd *cobra.Command, args []string) {
	configfile := args[0]

	config := DefaultNodeConfig()
	config.BaseDir = filepath.Dir(configfile)
	if err := toolutils.ReadYaml(config, configfile); err != nil {
		log.Fatal(nil, "Unable to read configuration", "err", err)
	}

	closeLog, err := config.Log.OpenLogger(config.BaseDir)
	if err != nil {
		log.Fatal(nil, "Unable to open logger", "err", err)
	}
	defer closeLog()

	profiler := NewProfiler(&profile)
	if err := profiler.Start(); err != nil {
		log.Fatal(profiler, "Unable to start profiler", "err", err)
	}
	defer profiler.Stop()

	x, err := NewNodeExecutor(config)
	if err != nil {
		log.Fatal(nil, "Unable to create node", "err", err)
	}

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := x.Start(); err != nil {
			log.Error(x, "Node stopped", "err", err)
		}
	}()

	// wait for interrupt
	select {
	case receivedSig := <-sigchan:
		log.Info(x, "Received signal - exit", "signal", receivedSig)
		x.Stop()
		<-done
	case <-done:
	}
}
