package pipeline

import "github.com/mipslite/sim/insts"

// HazardUnit inspects the instruction about to enter ID (the consumer)
// against the instructions occupying EX and MEM (the producers) and
// decides whether to stall, and, in forwarding mode, which pipeline
// result to substitute for a register-file read once the consumer
// reaches EX.
type HazardUnit struct {
	forwarding bool
}

// NewHazardUnit creates a hazard unit for either mode.
func NewHazardUnit(forwarding bool) *HazardUnit {
	return &HazardUnit{forwarding: forwarding}
}

// Producer is the hazard-relevant shape of whatever instruction currently
// occupies a pipeline stage: enough to know its destination register and
// whether it is a load (for the load-use rule).
type Producer struct {
	Valid    bool
	Inst     insts.Instruction
	RegWrite bool
	MemRead  bool
}

// dest returns the register the producer writes, and whether it counts
// as a hazard source at all. R0 never does.
func (p Producer) dest() (reg uint8, writes bool) {
	if !p.Valid || !p.RegWrite {
		return 0, false
	}
	reg, writes = p.Inst.DestReg()
	if reg == insts.RegZero {
		return 0, false
	}
	return reg, writes
}

func matches(rs, rt uint8, n int, dest uint8) bool {
	if n >= 1 && rs == dest {
		return true
	}
	if n >= 2 && rt == dest {
		return true
	}
	return false
}

// StallResult reports whether the consumer being decoded must wait
// before it may enter ID/EX, and for how many cycles (informational —
// the controller simply re-evaluates the hazard every cycle until it
// clears).
type StallResult struct {
	Stall  bool
	Cycles int
}

// DetectStall runs the no-forwarding mode's stall rule for the
// instruction currently being decoded: a match against the producer
// occupying EX costs 2 cycles, a match against the producer occupying
// MEM (but not EX) costs 1, and a match only in WB is not a hazard — WB
// writes commit before ID reads in the same cycle.
func (h *HazardUnit) DetectStall(consumer insts.Instruction, producerInEX, producerInMEM Producer) StallResult {
	rs, rt, n := consumer.SourceRegs()

	if dest, writes := producerInEX.dest(); writes && matches(rs, rt, n, dest) {
		return StallResult{Stall: true, Cycles: 2}
	}
	if dest, writes := producerInMEM.dest(); writes && matches(rs, rt, n, dest) {
		return StallResult{Stall: true, Cycles: 1}
	}
	return StallResult{}
}

// DetectLoadUseStall runs forwarding mode's one hazard that forwarding
// cannot resolve: the instruction currently being decoded depends on the
// producer occupying EX, and that producer is a load. The loaded value
// isn't ready until MEM completes, one cycle too late for forwarding to
// supply it to the consumer's EX cycle, which coincides with the load's MEM.
func (h *HazardUnit) DetectLoadUseStall(consumer insts.Instruction, producerInEX Producer) bool {
	if !producerInEX.MemRead {
		return false
	}
	rs, rt, n := consumer.SourceRegs()
	dest, writes := producerInEX.dest()
	return writes && matches(rs, rt, n, dest)
}

// ForwardingDecision records, per operand, whether to take the value from
// the producer in MEM, the producer in WB, or the register file.
type ForwardingDecision struct {
	ForwardRsFromMEM, ForwardRsFromWB bool
	ForwardRtFromMEM, ForwardRtFromWB bool
}

// DetectForwarding runs the forwarding-mode logic for a consumer that is
// about to execute in EX this cycle: the producer occupying MEM has
// priority over the producer occupying WB.
func (h *HazardUnit) DetectForwarding(consumer insts.Instruction, producerInMEM, producerInWB Producer) ForwardingDecision {
	var d ForwardingDecision
	rs, rt, n := consumer.SourceRegs()
	memDest, memWrites := producerInMEM.dest()
	wbDest, wbWrites := producerInWB.dest()

	if n >= 1 {
		switch {
		case memWrites && rs == memDest:
			d.ForwardRsFromMEM = true
		case wbWrites && rs == wbDest:
			d.ForwardRsFromWB = true
		}
	}

	if n >= 2 {
		switch {
		case memWrites && rt == memDest:
			d.ForwardRtFromMEM = true
		case wbWrites && rt == wbDest:
			d.ForwardRtFromWB = true
		}
	}

	return d
}
