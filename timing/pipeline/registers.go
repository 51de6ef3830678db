// Package pipeline implements the classic 5-stage MIPS-lite pipeline,
// both without and with operand forwarding.
package pipeline

import (
	"github.com/mipslite/sim/insts"
)

// IFReg holds the IF/ID pipeline slot: the fetched instruction word.
type IFReg struct {
	Valid  bool
	Bubble bool
	PC     int32
	Word   uint32
}

// Clear resets the register to an empty slot.
func (r *IFReg) Clear() { *r = IFReg{} }

// IDReg holds the ID/EX pipeline slot: the decoded instruction, its
// operand values as read from the register file, and control signals.
type IDReg struct {
	Valid  bool
	Bubble bool
	PC     int32
	Inst   insts.Instruction

	RsValue int32
	RtValue int32

	RegWrite bool
	MemRead  bool
	MemWrite bool
	MemToReg bool
	IsBranch bool
}

// Clear resets the register to an empty slot.
func (r *IDReg) Clear() { *r = IDReg{} }

// EXReg holds the EX/MEM pipeline slot: the ALU result and, for
// stores, the value to write to memory.
type EXReg struct {
	Valid bool
	PC    int32
	Inst  insts.Instruction

	ALUResult  int32
	StoreValue int32

	BranchTaken  bool
	BranchTarget int32

	RegWrite bool
	MemRead  bool
	MemWrite bool
	MemToReg bool
}

// Clear resets the register to an empty slot.
func (r *EXReg) Clear() { *r = EXReg{} }

// MEMReg holds the MEM/WB pipeline slot: the value to commit at
// writeback, whether it came from the ALU or from memory.
type MEMReg struct {
	Valid bool
	PC    int32
	Inst  insts.Instruction

	ALUResult int32
	MemResult int32

	RegWrite bool
	MemToReg bool
}

// Clear resets the register to an empty slot.
func (r *MEMReg) Clear() { *r = MEMReg{} }
