// Package pipeline implements the classic 5-stage MIPS-lite pipeline,
// both without and with operand forwarding.
//
// The pipeline implements the classic 5-stage design:
//   - Fetch (IF): read the instruction word from memory
//   - Decode (ID): decode the instruction, read registers, detect stalls
//   - Execute (EX): ALU operation, effective-address calculation, branch
//     resolution, operand forwarding
//   - Memory (MEM): load/store memory access
//   - Writeback (WB): commit results to the register file
package pipeline

import (
	"github.com/mipslite/sim/emu"
	"github.com/mipslite/sim/insts"
)

// Pipeline is a 5-stage instruction pipeline.
type Pipeline struct {
	// Pipeline stages.
	fetchStage     *FetchStage
	decodeStage    *DecodeStage
	executeStage   *ExecuteStage
	memoryStage    *MemoryStage
	writebackStage *WritebackStage

	// Pipeline registers.
	ifReg  IFReg
	idReg  IDReg
	exReg  EXReg
	memReg MEMReg

	hazardUnit *HazardUnit
	forwarding bool

	regFile *emu.RegFile
	memory  *emu.Memory
	pc      int32

	// retiredPC is the PC of the most recent instruction to retire
	// through writeback — what Pipeline.PC() reports, since the fetch
	// pointer p.pc has by then advanced several instructions past it.
	retiredPC int32

	stats emu.Stats

	halted bool
	err    error
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithForwarding selects operand forwarding instead of stall-on-hazard.
func WithForwarding(forwarding bool) PipelineOption {
	return func(p *Pipeline) { p.forwarding = forwarding }
}

// NewPipeline creates a new 5-stage pipeline over the given register file
// and memory.
func NewPipeline(regFile *emu.RegFile, memory *emu.Memory, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		fetchStage:     NewFetchStage(memory),
		decodeStage:    NewDecodeStage(regFile),
		executeStage:   NewExecuteStage(),
		memoryStage:    NewMemoryStage(memory),
		writebackStage: NewWritebackStage(regFile),
		regFile:        regFile,
		memory:         memory,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.hazardUnit = NewHazardUnit(p.forwarding)

	return p
}

// PC returns the PC of the most recently retired instruction — the same
// quantity the functional emulator reports, and what terminates equal to
// HALT's own PC once the program halts. This is not the fetch pointer,
// which by the time an instruction retires has already advanced several
// words past it.
func (p *Pipeline) PC() int32 { return p.retiredPC }

// Halted reports whether HALT has retired through writeback.
func (p *Pipeline) Halted() bool { return p.halted }

// Err returns the fatal error that stopped the pipeline, if any.
func (p *Pipeline) Err() error { return p.err }

// Stats returns the counters accumulated so far, in the same shape the
// functional executor produces.
func (p *Pipeline) Stats() emu.Stats { return p.stats }

// RegFile returns the pipeline's register file.
func (p *Pipeline) RegFile() *emu.RegFile { return p.regFile }

// Memory returns the pipeline's memory.
func (p *Pipeline) Memory() *emu.Memory { return p.memory }

// Tick advances the pipeline by one cycle. WB and MEM run first, reading
// only their own slot's unmodified contents; decode then checks for a
// hazard against the instruction currently entering EX (p.idReg) and the
// instruction currently entering MEM (p.exReg) before deciding whether to
// admit a new instruction into ID/EX; execute then runs, applying
// forwarding if enabled; fetch runs last.
func (p *Pipeline) Tick() error {
	if p.halted || p.err != nil {
		return p.err
	}

	p.stats.Cycles++

	p.doWriteback()
	if p.halted {
		return nil
	}

	nextMemReg, err := p.memoryStage.Access(&p.exReg)
	if err != nil {
		p.err = err
		return err
	}

	producerInEX := Producer{Valid: p.idReg.Valid, Inst: p.idReg.Inst, RegWrite: p.idReg.RegWrite, MemRead: p.idReg.MemRead}
	producerInMEM := Producer{Valid: p.exReg.Valid, Inst: p.exReg.Inst, RegWrite: p.exReg.RegWrite}
	producerInWB := Producer{Valid: p.memReg.Valid, Inst: p.memReg.Inst, RegWrite: p.memReg.RegWrite}

	// Decode: decide whether a new instruction may be admitted into
	// ID/EX this cycle.
	var candidate IDReg
	haveCandidate := p.ifReg.Valid
	if haveCandidate {
		candidate = p.decodeStage.Decode(p.ifReg.Word, p.ifReg.PC)
	}

	stalled := false
	if haveCandidate {
		if p.forwarding {
			stalled = p.hazardUnit.DetectLoadUseStall(candidate.Inst, producerInEX)
		} else {
			stalled = p.hazardUnit.DetectStall(candidate.Inst, producerInEX, producerInMEM).Stall
		}
	}

	// Execute: run the ALU over the instruction currently in ID/EX,
	// forwarding operands from MEM/WB when enabled.
	var nextExReg EXReg
	if p.idReg.Valid {
		rs, rt := p.idReg.RsValue, p.idReg.RtValue
		if p.forwarding {
			decision := p.hazardUnit.DetectForwarding(p.idReg.Inst, producerInMEM, producerInWB)
			if decision.ForwardRsFromMEM {
				rs = p.exReg.ALUResult
			} else if decision.ForwardRsFromWB {
				rs = wbValue(&p.memReg)
			}
			if decision.ForwardRtFromMEM {
				rt = p.exReg.ALUResult
			} else if decision.ForwardRtFromWB {
				rt = wbValue(&p.memReg)
			}
		}
		nextExReg = p.executeStage.Execute(&p.idReg, rs, rt)
	}

	var nextIdReg IDReg
	var nextIfReg IFReg
	if stalled {
		p.stats.Stalls++
		nextIdReg = IDReg{} // bubble enters ID/EX in place of the stalled candidate
		nextIfReg = p.ifReg // held, re-decoded next cycle
	} else {
		if haveCandidate {
			nextIdReg = candidate
		}
		if word, ok := p.fetchStage.Fetch(p.pc); ok {
			nextIfReg = IFReg{Valid: true, PC: p.pc, Word: word}
		}
	}

	if !stalled {
		p.pc += 4
	}
	if nextExReg.Valid && nextExReg.BranchTaken {
		p.pc = nextExReg.BranchTarget
		nextIfReg.Clear()
		nextIdReg.Clear()
		p.stats.Flushes += 2
	}

	p.ifReg = nextIfReg
	p.idReg = nextIdReg
	p.exReg = nextExReg
	p.memReg = nextMemReg

	return nil
}

// doWriteback performs the writeback stage, committing the MEM/WB slot.
func (p *Pipeline) doWriteback() {
	if !p.memReg.Valid {
		return
	}
	p.writebackStage.Writeback(&p.memReg)
	p.stats.Record(p.memReg.Inst.Op.Class())
	p.retiredPC = p.memReg.PC
	if p.memReg.Inst.Format == insts.FormatHalt {
		p.halted = true
	}
}

// wbValue returns the value a MEM/WB slot is about to commit.
func wbValue(mem *MEMReg) int32 {
	if mem.MemToReg {
		return mem.MemResult
	}
	return mem.ALUResult
}

// Run ticks the pipeline until HALT retires, a fatal error occurs, or
// every slot is empty and fetch has run off the end of the program (in
// which case Halted reports false and Run returns nil).
func (p *Pipeline) Run() error {
	for !p.halted && p.err == nil {
		if !p.ifReg.Valid && !p.idReg.Valid && !p.exReg.Valid && !p.memReg.Valid {
			if _, ok := p.fetchStage.Fetch(p.pc); !ok {
				return nil
			}
		}
		if err := p.Tick(); err != nil {
			return err
		}
	}
	return p.err
}

// RunCycles ticks the pipeline at most n times, stopping early if HALT
// retires or a fatal error occurs.
func (p *Pipeline) RunCycles(n uint64) error {
	for i := uint64(0); i < n && !p.halted; i++ {
		if err := p.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// GetIFReg, GetIDReg, GetEXReg, and GetMEMReg expose the current pipeline
// slots for inspection, primarily by tests.
func (p *Pipeline) GetIFReg() IFReg   { return p.ifReg }
func (p *Pipeline) GetIDReg() IDReg   { return p.idReg }
func (p *Pipeline) GetEXReg() EXReg   { return p.exReg }
func (p *Pipeline) GetMEMReg() MEMReg { return p.memReg }
