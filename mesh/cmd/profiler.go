package cmd

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/zhmesh/zhmesh/std/log"
)

// ProfileConfig holds the output files of the profiler. Empty disables a profile.
type ProfileConfig struct {
	Cpu   string
	Mem   string
	Block string
}

type Profiler struct {
	config  *ProfileConfig
	cpuFile *os.File
	block   *pprof.Profile
}

func NewProfiler(config *ProfileConfig) *Profiler {
	return &Profiler{config: config}
}

func (p *Profiler) String() string {
	return "profiler"
}

func (p *Profiler) Start() (err error) {
	if p.config.Cpu != "" {
		p.cpuFile, err = os.Create(p.config.Cpu)
		if err != nil {
			return err
		}

		log.Info(p, "Profiling CPU", "out", p.config.Cpu)
		if err = pprof.StartCPUProfile(p.cpuFile); err != nil {
			return err
		}
	}

	if p.config.Block != "" {
		log.Info(p, "Profiling blocking operations", "out", p.config.Block)
		runtime.SetBlockProfileRate(1)
		p.block = pprof.Lookup("block")
	}

	return nil
}

func (p *Profiler) Stop() {
	if p.block != nil {
		blockProfileFile, err := os.Create(p.config.Block)
		if err != nil {
			log.Error(p, "Unable to open output file for block profile", "err", err)
		} else {
			if err := p.block.WriteTo(blockProfileFile, 0); err != nil {
				log.Error(p, "Unable to write block profile", "err", err)
			}
			blockProfileFile.Close()
		}
	}

	if p.config.Mem != "" {
		memProfileFile, err := os.Create(p.config.Mem)
		if err != nil {
			log.Error(p, "Unable to open output file for memory profile", "err", err)
		} else {
			defer memProfileFile.Close()

			log.Info(p, "Profiling memory", "out", p.config.Mem)
			runtime.GC()
			if err := pprof.WriteHeapProfile(memProfileFile); err != nil {
				log.Error(p, "Unable to write memory profile", "err", err)
			}
		}
	}

	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		p.cpuFile.Close()
	}
}
