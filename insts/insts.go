// Package insts provides MIPS-lite instruction definitions and decoding.
//
// MIPS-lite is an 18-opcode, 32-bit fixed-width RISC instruction set: six
// R-type arithmetic/logic opcodes, six I-type arithmetic/logic opcodes,
// word load/store, two conditional branches, an indirect jump, and HALT.
package insts

// Op identifies a MIPS-lite opcode.
type Op uint8

// MIPS-lite opcodes (bits 31..26 of the instruction word).
const (
	OpADD  Op = 0x00
	OpADDI Op = 0x01
	OpSUB  Op = 0x02
	OpSUBI Op = 0x03
	OpMUL  Op = 0x04
	OpMULI Op = 0x05
	OpOR   Op = 0x06
	OpORI  Op = 0x07
	OpAND  Op = 0x08
	OpANDI Op = 0x09
	OpXOR  Op = 0x0A
	OpXORI Op = 0x0B
	OpLDW  Op = 0x0C
	OpSTW  Op = 0x0D
	OpBZ   Op = 0x0E
	OpBEQ  Op = 0x0F
	OpJR   Op = 0x10
	OpHALT Op = 0x11

	// OpUnknown is returned by the decoder for any opcode not in the table
	// above. It is not itself a valid MIPS-lite opcode.
	OpUnknown Op = 0xFF
)

// String returns the assembly mnemonic for the opcode.
func (o Op) String() string {
	switch o {
	case OpADD:
		return "ADD"
	case OpADDI:
		return "ADDI"
	case OpSUB:
		return "SUB"
	case OpSUBI:
		return "SUBI"
	case OpMUL:
		return "MUL"
	case OpMULI:
		return "MULI"
	case OpOR:
		return "OR"
	case OpORI:
		return "ORI"
	case OpAND:
		return "AND"
	case OpANDI:
		return "ANDI"
	case OpXOR:
		return "XOR"
	case OpXORI:
		return "XORI"
	case OpLDW:
		return "LDW"
	case OpSTW:
		return "STW"
	case OpBZ:
		return "BZ"
	case OpBEQ:
		return "BEQ"
	case OpJR:
		return "JR"
	case OpHALT:
		return "HALT"
	default:
		return "UNKNOWN"
	}
}

// Class identifies the opcode's shape for statistics and pipeline control.
type Class uint8

// Instruction classes, per spec.md's statistics categorization.
const (
	ClassArithmetic Class = iota // 0x00-0x05
	ClassLogical                 // 0x06-0x0B
	ClassMemory                  // 0x0C, 0x0D
	ClassControl                 // 0x0E-0x11
	ClassUnknown
)

// Class returns the statistics category for the opcode.
func (o Op) Class() Class {
	switch {
	case o <= OpMULI:
		return ClassArithmetic
	case o <= OpXORI:
		return ClassLogical
	case o == OpLDW || o == OpSTW:
		return ClassMemory
	case o >= OpBZ && o <= OpHALT:
		return ClassControl
	default:
		return ClassUnknown
	}
}

// Format identifies how an instruction word is decoded and which fields
// of Instruction are meaningful. Each arm carries only the fields that
// opcode class needs, per the "tagged variant" re-architecture in
// spec.md's design notes.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatRArith         // ADD, SUB, MUL, OR, AND, XOR: Rd <- Rs op Rt
	FormatIArith         // ADDI, SUBI, MULI, ORI, ANDI, XORI: Rt <- Rs op imm
	FormatLoad           // LDW: Rt <- M[(Rs+imm)/4]
	FormatStore          // STW: M[(Rs+imm)/4] <- Rt
	FormatBranchZero     // BZ: if Rs == 0, PC += imm*4
	FormatBranchEq       // BEQ: if Rs == Rt, PC += imm*4
	FormatJumpReg        // JR: PC <- Rs
	FormatHalt           // HALT
)

// RegZero is the index of the hard-wired-to-zero register.
const RegZero = 0

// MemoryWords is the number of 32-bit words in simulated memory (4 KiB).
const MemoryWords = 1024

// Instruction is a decoded MIPS-lite instruction word.
type Instruction struct {
	Op     Op
	Format Format
	Raw    uint32

	Rs uint8
	Rt uint8
	Rd uint8 // R-type only

	Imm int32 // sign-extended 16-bit immediate, I-type only
}

// DestReg returns the destination register written by this instruction
// and whether it writes one at all. STW, branches, JR, and HALT write no
// register. R0 is reported as a destination (callers filter it out where
// spec.md requires — R0 is never a hazard destination).
func (i Instruction) DestReg() (reg uint8, writes bool) {
	switch i.Format {
	case FormatRArith:
		return i.Rd, true
	case FormatIArith, FormatLoad:
		return i.Rt, true
	default:
		return 0, false
	}
}

// SourceRegs returns the source registers read by this instruction and
// how many of them are meaningful (0, 1, or 2), per spec.md §4.6:
// Rs is always a source; Rt is a source for R-type, BEQ, and STW.
func (i Instruction) SourceRegs() (rs uint8, rt uint8, n int) {
	switch i.Format {
	case FormatRArith:
		return i.Rs, i.Rt, 2
	case FormatStore:
		return i.Rs, i.Rt, 2
	case FormatBranchEq:
		return i.Rs, i.Rt, 2
	case FormatIArith, FormatLoad, FormatBranchZero, FormatJumpReg:
		return i.Rs, 0, 1
	default:
		return 0, 0, 0
	}
}
