// Command mipslite loads a MIPS-lite program image and runs it under one
// of three execution modes, printing a summary of the final state.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mipslite/sim/image"
	"github.com/mipslite/sim/report"
	"github.com/mipslite/sim/simulator"
)

var (
	filePath string
	modeFlag int
)

func main() {
	root := newRootCmd()
	root.AddCommand(newProfileCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mipslite",
		Short: "Run a MIPS-lite program image under the functional or pipelined simulator",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && filePath == "" {
				filePath = args[0]
			}
			return runSimulation(cmd, os.Stdout, os.Stderr)
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "program image path (prompted on stdin if omitted)")
	cmd.PersistentFlags().IntVarP(&modeFlag, "mode", "m", -1, "execution mode: 0=functional, 1=pipelined (no forwarding), 2=pipelined (forwarding)")

	return cmd
}

// runSimulation implements spec.md §6: a filename taken by argument or
// prompt, a mode selector with a usage message and non-zero exit on an
// unknown value, and a summary written on success.
func runSimulation(cmd *cobra.Command, stdout, stderr *os.File) error {
	path := filePath
	if path == "" {
		var err error
		path, err = promptForPath(stdin(cmd), stdout)
		if err != nil {
			fmt.Fprintf(stderr, "error reading program path: %v\n", err)
			os.Exit(1)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(stderr, "error opening %s: %v\n", path, err)
		os.Exit(1)
	}
	words, err := image.Load(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(stderr, "error loading image %s: %v\n", path, err)
		os.Exit(1)
	}

	mode, err := simulator.ParseMode(modeFlag)
	if err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprintln(stderr, cmd.UsageString())
		os.Exit(1)
	}

	sim, err := simulator.New(mode, words)
	if err != nil {
		fmt.Fprintf(stderr, "error initializing simulator: %v\n", err)
		os.Exit(1)
	}

	runErr := sim.Run()
	if runErr != nil {
		fmt.Fprintf(stderr, "simulation error: %v\n", runErr)
	}

	report.Write(stdout, mode.String(), sim.Stats(), sim.PC(), sim.RegFile(), sim.Memory(), sim.Halted())

	if runErr != nil {
		os.Exit(1)
	}
	return nil
}

func promptForPath(in *os.File, out *os.File) (string, error) {
	fmt.Fprint(out, "program image path: ")
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("no input provided")
	}
	path := strings.TrimSpace(scanner.Text())
	if path == "" {
		return "", fmt.Errorf("no input provided")
	}
	return path, nil
}

func stdin(cmd *cobra.Command) *os.File {
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		return f
	}
	return os.Stdin
}
