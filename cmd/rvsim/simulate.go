package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	rvsim "github.com/willmccallion/rvsim"
	"github.com/willmccallion/rvsim/internal/config"
	"github.com/willmccallion/rvsim/internal/loader"
)

func newSimulateCmd(log *logrus.Logger) *cobra.Command {
	var (
		configPath  string
		printStats  bool
		metricsAddr string
		monitor     bool
		cycleLimit  uint64
	)

	cmd := &cobra.Command{
		Use:   "simulate <elf>",
		Short: "Run an RV64GC ELF image to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trace, _ := cmd.Flags().GetBool("trace")
			if trace {
				log.SetLevel(logrus.DebugLevel)
			}

			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			machine, err := rvsim.Build(cfg, func(b byte) { os.Stdout.Write([]byte{b}) }, func() uint64 {
				return uint64(time.Now().UnixNano())
			})
			if err != nil {
				return err
			}
			machine.Sim.Log = log

			loaded, err := loader.Load(args[0], machine.Mem, cfg.System.RAMBase)
			if err != nil {
				return err
			}
			machine.Pipe.FetchPC = loaded.Entry
			if loaded.TohostAddr != nil {
				machine.AttachHTIF(*loaded.TohostAddr)
			}

			if metricsAddr != "" {
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", promhttp.Handler())
					log.WithField("addr", metricsAddr).Info("serving prometheus metrics")
					if err := http.ListenAndServe(metricsAddr, mux); err != nil {
						log.WithError(err).Warn("metrics server stopped")
					}
				}()
			}

			if monitor && term.IsTerminal(int(os.Stdin.Fd())) {
				if err := runMonitor(machine, cycleLimit, log); err != nil {
					return err
				}
			} else {
				reason, exitCode := machine.Sim.Run(cycleLimit)
				reportExit(log, reason, exitCode)
				if printStats {
					printSummary(machine)
				}
				if exitCode != 0 {
					os.Exit(exitCode)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML configuration file")
	cmd.Flags().BoolVar(&printStats, "stats", false, "print a cycle/IPC/cache summary on exit")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics at this address (e.g. :9100)")
	cmd.Flags().BoolVar(&monitor, "monitor", false, "run an interactive single-step monitor on a TTY")
	cmd.Flags().Uint64Var(&cycleLimit, "cycle-limit", 0, "stop after this many cycles (0 = unbounded)")
	return cmd
}

func reportExit(log *logrus.Logger, reason rvsim.ExitReason, exitCode int) {
	switch reason {
	case rvsim.ExitHTIF:
		if exitCode == 0 {
			log.Info("PASS")
		} else {
			fmt.Fprintf(os.Stderr, "FAIL: test case %d (tohost result)\n", exitCode)
		}
	case rvsim.ExitSysConPoweroff:
		log.Info("guest requested poweroff")
	case rvsim.ExitSysConReset:
		log.Info("guest requested reset")
	case rvsim.ExitSysConFail:
		fmt.Fprintln(os.Stderr, "guest signalled SysCon failure")
	case rvsim.ExitCycleLimit:
		log.Info("cycle limit reached")
	}
}

func printSummary(m *rvsim.Machine) {
	s := m.Sim
	fmt.Printf("cycles=%d instret=%d flushes=%d icache(hit=%d miss=%d) dcache(hit=%d miss=%d)\n",
		s.Cycles, m.Pipe.Retired, m.Pipe.Flushes,
		m.Cpu.ICache.Hits, m.Cpu.ICache.Misses,
		m.Cpu.DCache.Hits, m.Cpu.DCache.Misses)
	if m.Pipe.BranchChecked > 0 {
		fmt.Printf("branch accuracy: %.2f%% (%d/%d)\n",
			100*float64(m.Pipe.BranchCorrect)/float64(m.Pipe.BranchChecked),
			m.Pipe.BranchCorrect, m.Pipe.BranchChecked)
	}
}
