package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/spf13/cobra"

	"github.com/mipslite/sim/image"
	"github.com/mipslite/sim/report"
	"github.com/mipslite/sim/simulator"
)

// newProfileCmd wraps a run of the simulator with runtime/pprof CPU and
// heap profiling, for identifying hot paths in the pipeline controller.
func newProfileCmd() *cobra.Command {
	var (
		cpuProfile string
		memProfile string
		duration   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "profile <image>",
		Short: "Run a program image while capturing a CPU and/or heap profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if cpuProfile != "" {
				f, err := os.Create(cpuProfile)
				if err != nil {
					return fmt.Errorf("creating CPU profile: %w", err)
				}
				defer f.Close()
				if err := pprof.StartCPUProfile(f); err != nil {
					return fmt.Errorf("starting CPU profile: %w", err)
				}
				defer pprof.StopCPUProfile()
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			words, err := image.Load(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("loading image %s: %w", path, err)
			}

			mode, err := simulator.ParseMode(modeFlag)
			if err != nil {
				return err
			}

			sim, err := simulator.New(mode, words)
			if err != nil {
				return fmt.Errorf("initializing simulator: %w", err)
			}

			// The timeout goroutine only ever calls os.Exit — it never
			// touches sim, which Run below keeps single-threaded for the
			// whole profiled run, matching the rest of this simulator.
			timer := time.AfterFunc(duration, func() {
				fmt.Fprintf(cmd.ErrOrStderr(), "timeout reached after %v - stopping execution\n", duration)
				os.Exit(2)
			})

			runErr := sim.Run()
			timer.Stop()
			if runErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "simulation error: %v\n", runErr)
			}

			report.Write(cmd.OutOrStdout(), mode.String(), sim.Stats(), sim.PC(), sim.RegFile(), sim.Memory(), sim.Halted())

			if memProfile != "" {
				f, err := os.Create(memProfile)
				if err != nil {
					return fmt.Errorf("creating memory profile: %w", err)
				}
				defer f.Close()
				if err := pprof.WriteHeapProfile(f); err != nil {
					return fmt.Errorf("writing memory profile: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "write a CPU profile to this path")
	cmd.Flags().StringVar(&memProfile, "memprofile", "", "write a heap profile to this path")
	cmd.Flags().DurationVar(&duration, "duration", 30*time.Second, "max wall-clock time to let the simulation run")

	return cmd
}
