package tools

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/zhmesh/zhmesh/air"
	"github.com/zhmesh/zhmesh/mesh"
	"github.com/zhmesh/zhmesh/mesh/config"
	"github.com/zhmesh/zhmesh/mesh/frame"
	"github.com/zhmesh/zhmesh/std/clock"
	"github.com/zhmesh/zhmesh/std/log"
	"github.com/zhmesh/zhmesh/std/utils/toolutils"
)

// SimConfig is the scenario file of the simulator.
type SimConfig struct {
	Topology *air.Topology `json:"topology"`
	// Configuration shared by every node; the address is filled per node.
	Node *config.Config `json:"node"`
	// Addresses of the simulated nodes.
	Nodes []string `json:"nodes"`
	// Scripted messages.
	Sends []SimSend `json:"sends"`
	// Simulated time.
	Duration_ms uint64 `json:"duration"`
	// Period of the maintenance step of every node.
	Step_ms uint64 `json:"step"`
}

// SimSend is one scripted message.
type SimSend struct {
	At_ms   uint64 `json:"at"`
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
	Confirm bool   `json:"confirm"`
}

func DefaultSimConfig() *SimConfig {
	return &SimConfig{
		Topology:    air.DefaultTopology(),
		Node:        config.DefaultConfig(),
		Nodes:       []string{},
		Sends:       []SimSend{},
		Duration_ms: 5000,
		Step_ms:     10,
	}
}

// Sim runs a set of engines over an in-memory medium on a simulated clock.
type Sim struct {
	config  *SimConfig
	out     io.Writer
	clk     *clock.DummyClock
	medium  *air.Medium
	engines []*mesh.Engine
	byAddr  map[frame.Address]*mesh.Engine
	start   time.Time
}

func NewSim(cfg *SimConfig, out io.Writer) (*Sim, error) {
	if cfg.Step_ms == 0 {
		return nil, fmt.Errorf("step must be positive")
	}

	s := &Sim{
		config: cfg,
		out:    out,
		clk:    clock.NewDummyClock(),
		byAddr: make(map[frame.Address]*mesh.Engine),
	}
	s.start = s.clk.Now()

	var err error
	s.medium, err = air.NewMedium(cfg.Topology, s.clk)
	if err != nil {
		return nil, err
	}

	for _, a := range cfg.Nodes {
		nodeCfg := *cfg.Node
		nodeCfg.Address = a
		if err := s.addNode(&nodeCfg); err != nil {
			return nil, fmt.Errorf("node %s: %w", a, err)
		}
	}

	for i, send := range cfg.Sends {
		from, err := frame.ParseAddress(send.From)
		if err != nil {
			return nil, fmt.Errorf("send %d: %w", i, err)
		}
		if _, ok := s.byAddr[from]; !ok {
			return nil, fmt.Errorf("send %d: unknown node %s", i, from)
		}
		if !strings.EqualFold(send.To, "broadcast") {
			if _, err := frame.ParseAddress(send.To); err != nil {
				return nil, fmt.Errorf("send %d: %w", i, err)
			}
		}
	}
	return s, nil
}

func (s *Sim) String() string {
	return "sim"
}

func (s *Sim) addNode(cfg *config.Config) error {
	if err := cfg.Parse(); err != nil {
		return err
	}
	radio, err := s.medium.Attach(cfg.LocalAddress())
	if err != nil {
		return err
	}
	e, err := mesh.NewEngine(cfg, radio, s.clk)
	if err != nil {
		return err
	}

	addr := e.Address()
	e.OnBroadcastReceived(func(payload []byte, sender frame.Address) {
		s.printf("%s broadcast from %s %q", addr, sender, payload)
	})
	e.OnUnicastReceived(func(payload []byte, sender frame.Address) {
		s.printf("%s unicast from %s %q", addr, sender, payload)
	})
	e.OnConfirmation(func(target frame.Address, id uint16, delivered bool) {
		s.printf("%s confirmation target=%s id=%d delivered=%t", addr, target, id, delivered)
	})
	if err := e.Open(); err != nil {
		return err
	}

	s.engines = append(s.engines, e)
	s.byAddr[addr] = e
	return nil
}

func (s *Sim) printf(format string, v ...any) {
	elapsed := s.clk.Now().Sub(s.start)
	fmt.Fprintf(s.out, "[%7s] %s\n", elapsed.Round(time.Millisecond), fmt.Sprintf(format, v...))
}

// Run plays the scenario, then prints the status of every node.
func (s *Sim) Run() {
	sends := slices.Clone(s.config.Sends)
	slices.SortStableFunc(sends, func(a, b SimSend) int { return int(a.At_ms) - int(b.At_ms) })

	step := time.Duration(s.config.Step_ms) * time.Millisecond
	duration := time.Duration(s.config.Duration_ms) * time.Millisecond
	for elapsed := time.Duration(0); elapsed <= duration; elapsed += step {
		for len(sends) > 0 && time.Duration(sends[0].At_ms)*time.Millisecond <= elapsed {
			s.send(sends[0])
			sends = sends[1:]
		}
		for _, e := range s.engines {
			e.Maintenance()
		}
		s.clk.MoveForward(step)
	}

	for _, e := range s.engines {
		s.printStatus(e)
	}
}

func (s *Sim) send(send SimSend) {
	from := frame.MustParseAddress(send.From)
	e := s.byAddr[from]

	var id uint16
	var err error
	if strings.EqualFold(send.To, "broadcast") {
		id, err = e.SendBroadcast([]byte(send.Message))
	} else {
		id, err = e.SendUnicast([]byte(send.Message), frame.MustParseAddress(send.To), send.Confirm)
	}
	if err != nil {
		s.printf("%s send failed: %v", from, err)
		return
	}
	s.printf("%s send to=%s id=%d %q", from, send.To, id, send.Message)
}

func (s *Sim) printStatus(e *mesh.Engine) {
	st := e.Status()
	fmt.Fprintf(s.out, "\n%s\n", st.Address)
	p := toolutils.StatusPrinter{File: s.out, Padding: 12}
	p.Print("routes", st.Routes)
	for _, r := range e.Routes() {
		p.Print("route", fmt.Sprintf("%s via %s", r.Destination, r.NextHop))
	}
	p.Print("outgoing", st.Outgoing)
	p.Print("pending", st.Pending)
	p.Print("confirms", st.Confirms)
	p.Print("received", st.Received)
	p.Print("duplicates", st.Duplicates)
	p.Print("delivered", st.Delivered)
	p.Print("forwarded", st.Forwarded)
	p.Print("transmitted", st.Transmitted)
	p.Print("failed", st.Failed)
}

func runSim(_ *cobra.Command, args []string) {
	config := DefaultSimConfig()
	if err := toolutils.ReadYaml(config, args[0]); err != nil {
		log.Fatal(nil, "Unable to read scenario", "err", err)
	}

	sim, err := NewSim(config, os.Stdout)
	if err != nil {
		log.Fatal(nil, "Invalid scenario", "err", err)
	}
	sim.Run()
}
