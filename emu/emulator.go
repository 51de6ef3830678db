// Package emu provides functional MIPS-lite emulation: the architectural
// state (registers, memory) and the pure ALU the reference executor and
// both pipelined controllers share.
package emu

import (
	"fmt"
	"io"
	"os"

	"github.com/mipslite/sim/insts"
)

// Stats accumulates the executed-instruction and cycle counters that the
// functional executor and both pipeline controllers all produce, in the
// same shape, so a summary can be printed uniformly regardless of mode.
type Stats struct {
	Arithmetic uint64
	Logical    uint64
	Memory     uint64
	Control    uint64

	Cycles uint64
	Stalls uint64
	// Flushes counts squashed pipeline slots; always 0 in functional mode.
	Flushes uint64
}

// Total returns the number of instructions retired.
func (s Stats) Total() uint64 {
	return s.Arithmetic + s.Logical + s.Memory + s.Control
}

// Record counts one retired instruction of the given class.
func (s *Stats) Record(class insts.Class) {
	switch class {
	case insts.ClassArithmetic:
		s.Arithmetic++
	case insts.ClassLogical:
		s.Logical++
	case insts.ClassMemory:
		s.Memory++
	case insts.ClassControl:
		s.Control++
	}
}

// Result is returned once the emulator stops running.
type Result struct {
	// Halted is true if the program stopped via HALT. If false and Err is
	// nil, execution ran off the end of the loaded program image without a
	// HALT instruction — not fatal, but worth reporting: the original
	// reference implementation treats this as a warning rather than an
	// error.
	Halted bool

	// Err is set if execution stopped due to a fatal condition: an
	// unknown opcode, an out-of-range/misaligned address, or the
	// instruction limit being exceeded.
	Err error
}

// Emulator executes MIPS-lite instructions one at a time. It is the
// reference model other execution modes are cross-validated against.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	decoder *insts.Decoder

	pc    int32
	stats Stats

	stdout io.Writer
	stderr io.Writer

	maxInstructions uint64 // 0 means no limit
}

// EmulatorOption configures an Emulator at construction time.
type EmulatorOption func(*Emulator)

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) { e.stdout = w }
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) EmulatorOption {
	return func(e *Emulator) { e.stderr = w }
}

// WithMaxInstructions bounds the number of instructions the emulator will
// execute before giving up; 0 (the default) means no limit. This guards
// against runaway programs that never reach HALT.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) { e.maxInstructions = max }
}

// NewEmulator creates a functional MIPS-lite emulator over the given
// memory image. Memory is retained, not copied, so the caller's Written
// bitmap reflects every store the run makes.
func NewEmulator(memory *Memory, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile: &RegFile{},
		memory:  memory,
		decoder: insts.NewDecoder(),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile { return e.regFile }

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory { return e.memory }

// PC returns the current program counter.
func (e *Emulator) PC() int32 { return e.pc }

// Stats returns the counters accumulated so far.
func (e *Emulator) Stats() Stats { return e.stats }

// Step fetches, decodes, and executes a single instruction, advancing PC.
// It returns a non-nil Result only once execution should stop: HALT
// retired, PC ran off the end of the program image, or a fatal error
// occurred.
func (e *Emulator) Step() *Result {
	if e.maxInstructions > 0 && e.stats.Total() >= e.maxInstructions {
		return &Result{Err: fmt.Errorf("exceeded maximum instruction count %d", e.maxInstructions)}
	}

	if e.memory.RanOffEnd(e.pc) {
		return &Result{Halted: false}
	}

	word, err := e.memory.Read(e.pc)
	if err != nil {
		return &Result{Err: fmt.Errorf("fetch at PC=%d: %w", e.pc, err)}
	}
	inst := e.decoder.Decode(uint32(word))

	if inst.Op == insts.OpUnknown {
		return &Result{Err: fmt.Errorf("unknown opcode 0x%02X at PC=%d", inst.Raw>>26, e.pc)}
	}

	e.stats.Record(inst.Op.Class())
	e.stats.Cycles++

	if inst.Format == insts.FormatHalt {
		return &Result{Halted: true}
	}

	rs, rt, _ := inst.SourceRegs()
	a := e.regFile.ReadReg(rs)
	b := e.regFile.ReadReg(rt)

	switch inst.Format {
	case insts.FormatIArith:
		b = inst.Imm
	}

	result := Execute(inst, e.pc, a, b)

	switch inst.Format {
	case insts.FormatRArith, insts.FormatIArith:
		dest, _ := inst.DestReg()
		e.regFile.WriteReg(dest, result.Value)
		e.pc += 4
	case insts.FormatLoad:
		value, err := e.memory.Read(result.Value)
		if err != nil {
			return &Result{Err: fmt.Errorf("LDW at PC=%d: %w", e.pc, err)}
		}
		dest, _ := inst.DestReg()
		e.regFile.WriteReg(dest, value)
		e.pc += 4
	case insts.FormatStore:
		if err := e.memory.Write(result.Value, b); err != nil {
			return &Result{Err: fmt.Errorf("STW at PC=%d: %w", e.pc, err)}
		}
		e.pc += 4
	case insts.FormatBranchZero, insts.FormatBranchEq:
		if result.Taken {
			e.pc = result.Target
		} else {
			e.pc += 4
		}
	case insts.FormatJumpReg:
		e.pc = result.Target
	default:
		e.pc += 4
	}

	return nil
}

// Run executes instructions until HALT retires, a fatal error occurs, the
// instruction limit is reached, or PC runs off the end of the program.
func (e *Emulator) Run() Result {
	for {
		if res := e.Step(); res != nil {
			switch {
			case res.Err != nil:
				_, _ = fmt.Fprintf(e.stderr, "emulation error: %v\n", res.Err)
			case !res.Halted:
				_, _ = fmt.Fprintln(e.stderr, "warning: simulation ended without HALT")
			}
			return *res
		}
	}
}
