// Package cmd is the air hub daemon.
package cmd

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zhmesh/zhmesh/air"
	"github.com/zhmesh/zhmesh/std/clock"
	"github.com/zhmesh/zhmesh/std/log"
	"github.com/zhmesh/zhmesh/std/utils"
	"github.com/zhmesh/zhmesh/std/utils/toolutils"
)

// HubFileConfig is the configuration file of the air hub.
type HubFileConfig struct {
	Hub      *air.HubConfig       `json:"hub"`
	Topology *air.Topology        `json:"topology"`
	Log      *toolutils.LogConfig `json:"log"`
}

func DefaultHubFileConfig() *HubFileConfig {
	return &HubFileConfig{
		Hub:      air.DefaultHubConfig(),
		Topology: air.DefaultTopology(),
		Log:      toolutils.DefaultLogConfig(),
	}
}

var CmdAir = &cobra.Command{
	Use:     "zhmesh-air CONFIG-FILE",
	Short:   "Radio medium hub",
	GroupID: "run",
	Version: utils.Version,
	Args:    cobra.ExactArgs(1),
	Run:     run,
}

func run(cmd *cobra.Command, args []string) {
	configfile := args[0]

	config := DefaultHubFileConfig()
	if err := toolutils.ReadYaml(config, configfile); err != nil {
		log.Fatal(nil, "Unable to read configuration", "err", err)
	}

	closeLog, err := config.Log.OpenLogger(filepath.Dir(configfile))
	if err != nil {
		log.Fatal(nil, "Unable to open logger", "err", err)
	}
	defer closeLog()

	medium, err := air.NewMedium(config.Topology, clock.New())
	if err != nil {
		log.Fatal(nil, "Invalid topology", "err", err)
	}
	hub := air.NewHub(config.Hub, medium)

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := hub.Run(); err != nil {
			log.Error(hub, "Unable to serve", "err", err)
		}
	}()

	select {
	case receivedSig := <-sigchan:
		log.Info(hub, "Received signal - exit", "signal", receivedSig)
		hub.Close()
		<-done
	case <-done:
	}
}
