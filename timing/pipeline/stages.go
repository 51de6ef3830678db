package pipeline

import (
	"fmt"

	"github.com/mipslite/sim/emu"
	"github.com/mipslite/sim/insts"
)

// FetchStage reads the instruction word at the current PC.
type FetchStage struct {
	memory *emu.Memory
}

// NewFetchStage creates a fetch stage over the given memory.
func NewFetchStage(memory *emu.Memory) *FetchStage {
	return &FetchStage{memory: memory}
}

// Fetch returns the instruction word at pc, or ok=false if the program has
// run off the end of the loaded image.
func (s *FetchStage) Fetch(pc int32) (word uint32, ok bool) {
	if s.memory.RanOffEnd(pc) {
		return 0, false
	}
	value, err := s.memory.Read(pc)
	if err != nil {
		return 0, false
	}
	return uint32(value), true
}

// DecodeStage decodes the fetched word and reads its source operands.
type DecodeStage struct {
	regFile *emu.RegFile
	decoder *insts.Decoder
}

// NewDecodeStage creates a decode stage over the given register file.
func NewDecodeStage(regFile *emu.RegFile) *DecodeStage {
	return &DecodeStage{regFile: regFile, decoder: insts.NewDecoder()}
}

// Decode turns a fetched word into an IDReg: the decoded instruction, its
// operand values, and the control signals later stages need.
func (s *DecodeStage) Decode(word uint32, pc int32) IDReg {
	inst := s.decoder.Decode(word)

	rs, rt, _ := inst.SourceRegs()
	reg := IDReg{
		Valid:   true,
		PC:      pc,
		Inst:    inst,
		RsValue: s.regFile.ReadReg(rs),
		RtValue: s.regFile.ReadReg(rt),
	}

	_, reg.RegWrite = inst.DestReg()
	reg.MemRead = inst.Format == insts.FormatLoad
	reg.MemWrite = inst.Format == insts.FormatStore
	reg.MemToReg = inst.Format == insts.FormatLoad
	reg.IsBranch = inst.Format == insts.FormatBranchZero ||
		inst.Format == insts.FormatBranchEq ||
		inst.Format == insts.FormatJumpReg

	return reg
}

// ExecuteStage runs the pure ALU over an ID/EX slot, applying any
// forwarded operand values the hazard unit selected for it in this EX cycle.
type ExecuteStage struct{}

// NewExecuteStage creates an execute stage.
func NewExecuteStage() *ExecuteStage {
	return &ExecuteStage{}
}

// Execute produces the EX/MEM slot for the given decoded instruction.
// forwardedRs/forwardedRt are the operand values to use in place of
// id.RsValue/id.RtValue — equal to them in no-forwarding mode, since the
// hazard unit there never sets the Forward* flags.
func (s *ExecuteStage) Execute(id *IDReg, forwardedRs, forwardedRt int32) EXReg {
	a, b := forwardedRs, forwardedRt
	if id.Inst.Format == insts.FormatIArith {
		b = id.Inst.Imm
	}

	result := emu.Execute(id.Inst, id.PC, a, b)

	return EXReg{
		Valid:        true,
		PC:           id.PC,
		Inst:         id.Inst,
		ALUResult:    result.Value,
		StoreValue:   forwardedRt,
		BranchTaken:  result.Taken,
		BranchTarget: result.Target,
		RegWrite:     id.RegWrite,
		MemRead:      id.MemRead,
		MemWrite:     id.MemWrite,
		MemToReg:     id.MemToReg,
	}
}

// MemoryStage performs the load/store access for instructions that need
// one; all other instructions pass their ALU result through untouched.
type MemoryStage struct {
	memory *emu.Memory
}

// NewMemoryStage creates a memory stage over the given memory.
func NewMemoryStage(memory *emu.Memory) *MemoryStage {
	return &MemoryStage{memory: memory}
}

// Access runs the EX/MEM slot through memory, returning the MEM/WB slot.
// An out-of-range or misaligned effective address is returned as an
// error; the caller treats it as fatal.
func (s *MemoryStage) Access(ex *EXReg) (MEMReg, error) {
	reg := MEMReg{
		Valid:     ex.Valid,
		PC:        ex.PC,
		Inst:      ex.Inst,
		ALUResult: ex.ALUResult,
		RegWrite:  ex.RegWrite,
		MemToReg:  ex.MemToReg,
	}
	if !ex.Valid {
		return reg, nil
	}

	if ex.MemRead {
		value, err := s.memory.Read(ex.ALUResult)
		if err != nil {
			return reg, fmt.Errorf("LDW at PC=%d: %w", ex.PC, err)
		}
		reg.MemResult = value
	} else if ex.MemWrite {
		if err := s.memory.Write(ex.ALUResult, ex.StoreValue); err != nil {
			return reg, fmt.Errorf("STW at PC=%d: %w", ex.PC, err)
		}
	}

	return reg, nil
}

// WritebackStage commits a MEM/WB slot's result to the register file.
type WritebackStage struct {
	regFile *emu.RegFile
}

// NewWritebackStage creates a writeback stage over the given register file.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{regFile: regFile}
}

// Writeback commits the slot's result, if any, to its destination
// register.
func (s *WritebackStage) Writeback(mem *MEMReg) {
	if !mem.Valid || !mem.RegWrite {
		return
	}
	dest, writes := mem.Inst.DestReg()
	if !writes {
		return
	}
	value := mem.ALUResult
	if mem.MemToReg {
		value = mem.MemResult
	}
	s.regFile.WriteReg(dest, value)
}
