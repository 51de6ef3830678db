// Package emu provides functional MIPS-lite emulation: the architectural
// state (registers, memory) and the pure ALU the reference executor and
// both pipelined controllers share.
package emu

// RegFile represents the MIPS-lite register file: 32 signed 32-bit
// general-purpose registers. R0 is hard-wired to read as zero.
type RegFile struct {
	// R holds all 32 registers, including R0.
	R [32]int32

	// Written marks every register that has been written at least once,
	// for the summary report. Unlike ReadReg, this is not R0-aware: a
	// write to R0 still sets Written[0], per spec.md's "the specification
	// does not enforce write-protection on R0".
	Written [32]bool
}

// ReadReg reads a register value. R0 always reads as zero, regardless of
// what has been stored to it.
func (r *RegFile) ReadReg(reg uint8) int32 {
	if reg == 0 {
		return 0
	}
	return r.R[reg]
}

// WriteReg writes a value to a register. Writes to R0 are permitted and
// recorded in Written, but never observable through ReadReg — this
// implementation's choice for the open question in spec.md §9 ("R0 write
// semantics").
func (r *RegFile) WriteReg(reg uint8, value int32) {
	r.R[reg] = value
	r.Written[reg] = true
}
