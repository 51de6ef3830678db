// Package simulator wraps the three MIPS-lite execution modes behind one
// facade, so a caller can load a program once and run it under any mode
// without caring which concrete type is underneath.
package simulator

import (
	"fmt"

	"github.com/mipslite/sim/emu"
	"github.com/mipslite/sim/timing/pipeline"
)

// Mode selects which execution model runs the loaded program.
type Mode int

const (
	// ModeFunctional runs the one-instruction-at-a-time reference model.
	ModeFunctional Mode = iota
	// ModePipelinedNoForwarding runs the 5-stage pipeline with stall-only
	// hazard resolution.
	ModePipelinedNoForwarding
	// ModePipelinedForwarding runs the 5-stage pipeline with operand
	// forwarding.
	ModePipelinedForwarding
)

// String renders the mode the way the summary report names it.
func (m Mode) String() string {
	switch m {
	case ModeFunctional:
		return "functional"
	case ModePipelinedNoForwarding:
		return "pipelined (no forwarding)"
	case ModePipelinedForwarding:
		return "pipelined (forwarding)"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps the CLI's numeric mode flag (spec.md §6: 0, 1, or 2) to a
// Mode. It returns an error for anything else.
func ParseMode(n int) (Mode, error) {
	switch n {
	case 0:
		return ModeFunctional, nil
	case 1:
		return ModePipelinedNoForwarding, nil
	case 2:
		return ModePipelinedForwarding, nil
	default:
		return 0, fmt.Errorf("invalid mode %d: must be 0 (functional), 1 (pipelined, no forwarding), or 2 (pipelined, forwarding)", n)
	}
}

// Simulator runs a loaded program image under one execution mode and
// exposes the architectural and performance state uniformly regardless
// of which mode it is.
type Simulator struct {
	mode     Mode
	memory   *emu.Memory
	emulator *emu.Emulator
	pipe     *pipeline.Pipeline

	halted bool
	err    error
}

// New creates a Simulator over a freshly loaded program image, ready to
// run under the given mode.
func New(mode Mode, words []uint32) (*Simulator, error) {
	memory := emu.NewMemory()
	if err := memory.LoadImage(words); err != nil {
		return nil, err
	}

	s := &Simulator{mode: mode, memory: memory}

	switch mode {
	case ModeFunctional:
		s.emulator = emu.NewEmulator(memory)
	case ModePipelinedNoForwarding:
		s.pipe = pipeline.NewPipeline(&emu.RegFile{}, memory, pipeline.WithForwarding(false))
	case ModePipelinedForwarding:
		s.pipe = pipeline.NewPipeline(&emu.RegFile{}, memory, pipeline.WithForwarding(true))
	default:
		return nil, fmt.Errorf("invalid mode %d", int(mode))
	}

	return s, nil
}

// Mode returns the execution mode this Simulator was built with.
func (s *Simulator) Mode() Mode { return s.mode }

// Run executes the program to completion: until HALT retires, a fatal
// condition stops it, or execution runs off the end of the program image.
func (s *Simulator) Run() error {
	switch s.mode {
	case ModeFunctional:
		result := s.emulator.Run()
		s.halted = result.Halted
		s.err = result.Err
		return s.err
	default:
		err := s.pipe.Run()
		s.halted = s.pipe.Halted()
		s.err = err
		return err
	}
}

// Halted reports whether the program stopped via HALT. If false and Err
// is nil, the program ran off the end of its image without HALT.
func (s *Simulator) Halted() bool { return s.halted }

// Err returns the fatal error that stopped the run, if any.
func (s *Simulator) Err() error { return s.err }

// RegFile returns the simulator's register file.
func (s *Simulator) RegFile() *emu.RegFile {
	if s.mode == ModeFunctional {
		return s.emulator.RegFile()
	}
	return s.pipe.RegFile()
}

// Memory returns the simulator's memory.
func (s *Simulator) Memory() *emu.Memory { return s.memory }

// PC returns the current program counter.
func (s *Simulator) PC() int32 {
	if s.mode == ModeFunctional {
		return s.emulator.PC()
	}
	return s.pipe.PC()
}

// Stats returns the counters accumulated so far, in the shared shape
// both the functional and pipelined modes produce.
func (s *Simulator) Stats() emu.Stats {
	if s.mode == ModeFunctional {
		return s.emulator.Stats()
	}
	return s.pipe.Stats()
}
