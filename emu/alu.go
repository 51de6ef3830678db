package emu

import "github.com/mipslite/sim/insts"

// ALUResult is the outcome of running one instruction through the ALU. Only
// the fields relevant to the instruction's format are meaningful; callers
// switch on the instruction's Format, not on ALUResult's shape.
type ALUResult struct {
	// Value holds the arithmetic/logic result (R-type and I-type arith)
	// or the effective byte address (LDW/STW).
	Value int32

	// Taken and Target are meaningful for BZ, BEQ, and JR: whether control
	// transfers, and to where.
	Taken  bool
	Target int32
}

// Execute is the ALU / effective-address unit: a pure function from a
// decoded instruction, its PC, and its two operand values to an ALUResult.
// It touches no register file or memory. Branch resolution yields only
// (taken?, target) — squashing in-flight stages and redirecting fetch is
// the pipeline controller's job, never the ALU's.
func Execute(inst insts.Instruction, pc int32, a, b int32) ALUResult {
	switch inst.Op {
	case insts.OpADD, insts.OpADDI:
		return ALUResult{Value: a + b}
	case insts.OpSUB, insts.OpSUBI:
		return ALUResult{Value: a - b}
	case insts.OpMUL, insts.OpMULI:
		return ALUResult{Value: a * b}
	case insts.OpOR, insts.OpORI:
		return ALUResult{Value: a | b}
	case insts.OpAND, insts.OpANDI:
		return ALUResult{Value: a & b}
	case insts.OpXOR, insts.OpXORI:
		return ALUResult{Value: a ^ b}
	case insts.OpLDW, insts.OpSTW:
		return ALUResult{Value: a + inst.Imm}
	case insts.OpBZ:
		return ALUResult{Taken: a == 0, Target: pc + inst.Imm*4}
	case insts.OpBEQ:
		return ALUResult{Taken: a == b, Target: pc + inst.Imm*4}
	case insts.OpJR:
		return ALUResult{Taken: true, Target: a}
	default:
		return ALUResult{}
	}
}
