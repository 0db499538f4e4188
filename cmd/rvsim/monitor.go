package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	rvsim "github.com/willmccallion/rvsim"
)

// runMonitor puts the controlling TTY into raw mode and drives the
// simulator one keystroke at a time: space/'s' single-steps one
// cycle, 'c' free-runs until the next HTIF/SysCon exit or cycle
// limit, 'q' quits early. Grounded on the ambient-stack's x/term
// usage for an interactive terminal UI (DESIGN.md's Ambient stack
// table).
func runMonitor(m *rvsim.Machine, cycleLimit uint64, log *logrus.Logger) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, oldState)

	fmt.Fprint(os.Stdout, "rvsim monitor — [space/s]tep, [c]ontinue, [q]uit\r\n")

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Fprintf(os.Stdout, "cycle=%d pc=%#x > ", m.Sim.Cycles, m.Pipe.FetchPC)
		b, err := reader.ReadByte()
		if err != nil {
			return err
		}
		switch b {
		case 'q', 'Q', 3: // ^C
			fmt.Fprint(os.Stdout, "\r\nquit\r\n")
			return nil
		case 'c', 'C':
			reason, exitCode := m.Sim.Run(cycleLimit)
			fmt.Fprintf(os.Stdout, "\r\nexit: reason=%d code=%d\r\n", reason, exitCode)
			return nil
		case ' ', 's', 'S', '\r', '\n':
			m.Sim.Step()
			fmt.Fprint(os.Stdout, "\r\n")
			if m.Sim.Htif != nil && m.Sim.Htif.Result.Exited {
				fmt.Fprintf(os.Stdout, "htif exit code=%d\r\n", m.Sim.Htif.Result.ExitCode)
				return nil
			}
			if cycleLimit != 0 && m.Sim.Cycles >= cycleLimit {
				fmt.Fprint(os.Stdout, "cycle limit reached\r\n")
				return nil
			}
		}
	}
}
