// Command rvsim is the cycle-accurate RV64GC simulator's CLI: load an
// ELF image, wire up the configured pipeline/cache/MMU/BPU/bus, and
// run it to completion, per spec.md §6's CLI surface.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	root := newRootCmd(log)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rvsim",
		Short:         "A cycle-accurate RV64GC pipeline simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().Bool("trace", false, "log every committed instruction at debug level")
	cmd.AddCommand(newSimulateCmd(log))
	cmd.AddCommand(newDumpConfigCmd())
	return cmd
}
