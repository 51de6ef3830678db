package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mipslite/sim/emu"
	"github.com/mipslite/sim/insts"
	"github.com/mipslite/sim/timing/pipeline"
)

func rWord(op insts.Op, rs, rt, rd uint8) uint32 {
	return uint32(op)<<26 | uint32(rs)<<21 | uint32(rt)<<16 | uint32(rd)<<11
}

func iWord(op insts.Op, rs, rt uint8, imm int32) uint32 {
	return uint32(op)<<26 | uint32(rs)<<21 | uint32(rt)<<16 | uint32(uint16(imm))
}

func newPipeline(program []uint32, forwarding bool) *pipeline.Pipeline {
	mem := emu.NewMemory()
	Expect(mem.LoadImage(program)).To(Succeed())
	regs := &emu.RegFile{}
	return pipeline.NewPipeline(regs, mem, pipeline.WithForwarding(forwarding))
}

var _ = Describe("Pipeline without forwarding", func() {
	It("stalls 2 cycles when the consumer immediately follows its producer", func() {
		program := []uint32{
			iWord(insts.OpADDI, 0, 1, 5), // R1 = 5
			rWord(insts.OpADD, 1, 1, 2), // R2 = R1 + R1
			rWord(insts.OpHALT, 0, 0, 0),
		}
		p := newPipeline(program, false)
		Expect(p.Run()).To(Succeed())

		stats := p.Stats()
		Expect(stats.Stalls).To(Equal(uint64(2)))
	})

	It("stalls 1 cycle when one independent instruction separates producer and consumer", func() {
		program := []uint32{
			iWord(insts.OpADDI, 0, 1, 5), // R1 = 5
			iWord(insts.OpADDI, 0, 2, 9), // R2 = 9, independent filler
			rWord(insts.OpADD, 1, 1, 3), // R3 = R1 + R1
			rWord(insts.OpHALT, 0, 0, 0),
		}
		p := newPipeline(program, false)
		Expect(p.Run()).To(Succeed())

		stats := p.Stats()
		Expect(stats.Stalls).To(Equal(uint64(1)))
	})

	It("produces correct final register state despite stalling", func() {
		program := []uint32{
			iWord(insts.OpADDI, 0, 1, 5),
			rWord(insts.OpADD, 1, 1, 2),
			rWord(insts.OpHALT, 0, 0, 0),
		}
		p := newPipeline(program, false)
		Expect(p.Run()).To(Succeed())
		Expect(p.Halted()).To(BeTrue())
		Expect(p.RegFile().ReadReg(1)).To(Equal(int32(5)))
		Expect(p.RegFile().ReadReg(2)).To(Equal(int32(10)))
	})
})

var _ = Describe("Pipeline with forwarding", func() {
	It("needs no stall for a back-to-back arithmetic RAW hazard", func() {
		program := []uint32{
			iWord(insts.OpADDI, 0, 1, 5), // R1 = 5
			rWord(insts.OpADD, 1, 1, 2), // R2 = R1 + R1, forwarded from EX/MEM or MEM/WB
			rWord(insts.OpHALT, 0, 0, 0),
		}
		p := newPipeline(program, true)
		Expect(p.Run()).To(Succeed())

		stats := p.Stats()
		Expect(stats.Stalls).To(Equal(uint64(0)))
	})

	It("still needs a 1-cycle load-use stall", func() {
		program := []uint32{
			iWord(insts.OpADDI, 0, 1, 0), // R1 = 0 (address)
			iWord(insts.OpSTW, 0, 1, 0), // M[0] = 0, just to have a defined word
			iWord(insts.OpLDW, 0, 2, 0), // R2 = M[R0 + 0]
			rWord(insts.OpADD, 2, 2, 3), // R3 = R2 + R2, depends on the load directly
			rWord(insts.OpHALT, 0, 0, 0),
		}
		p := newPipeline(program, true)
		Expect(p.Run()).To(Succeed())

		stats := p.Stats()
		Expect(stats.Stalls).To(Equal(uint64(1)))
	})
})

var _ = Describe("Pipeline branch squash", func() {
	It("flushes exactly the two younger in-flight slots on a taken branch", func() {
		program := []uint32{
			iWord(insts.OpADDI, 0, 1, 0),  // pc0: R1 = 0
			iWord(insts.OpBZ, 1, 0, 2),    // pc4: taken, target = 4 + 2*4 = 12
			iWord(insts.OpADDI, 0, 2, 99), // pc8: squashed, must never commit
			iWord(insts.OpADDI, 0, 3, 1),  // pc12: R3 = 1
			rWord(insts.OpHALT, 0, 0, 0),  // pc16
		}
		p := newPipeline(program, false)
		Expect(p.Run()).To(Succeed())

		stats := p.Stats()
		Expect(stats.Flushes).To(Equal(uint64(2)))
	})
})

// buildCrossValidationProgram exercises arithmetic, logic, memory, and a
// taken branch together, including a RAW hazard close enough to trigger
// both pipeline modes' hazard handling.
func buildCrossValidationProgram() []uint32 {
	return []uint32{
		iWord(insts.OpADDI, 0, 1, 10), // pc0:  R1 = 10
		iWord(insts.OpADDI, 0, 2, 3),  // pc4:  R2 = 3
		rWord(insts.OpSUB, 1, 2, 3),   // pc8:  R3 = R1 - R2 = 7
		iWord(insts.OpSTW, 0, 3, 0),   // pc12: M[0] = R3
		iWord(insts.OpLDW, 0, 4, 0),   // pc16: R4 = M[0]
		rWord(insts.OpAND, 4, 1, 5),   // pc20: R5 = R4 & R1, depends on the load
		iWord(insts.OpBZ, 0, 0, 2),    // pc24: R0==0 always, taken, target = 24+2*4=32
		iWord(insts.OpADDI, 0, 6, 99), // pc28: squashed, must never commit
		rWord(insts.OpXOR, 4, 5, 7),   // pc32: R7 = R4 ^ R5
		rWord(insts.OpHALT, 0, 0, 0),  // pc36
	}
}

var _ = Describe("Cross-validation across execution modes", func() {
	It("reaches identical final register and memory state in all three modes", func() {
		program := buildCrossValidationProgram()

		functionalMem := emu.NewMemory()
		Expect(functionalMem.LoadImage(program)).To(Succeed())
		functional := emu.NewEmulator(functionalMem)
		functionalResult := functional.Run()
		Expect(functionalResult.Halted).To(BeTrue())

		noForwarding := newPipeline(program, false)
		Expect(noForwarding.Run()).To(Succeed())
		Expect(noForwarding.Halted()).To(BeTrue())

		forwarding := newPipeline(program, true)
		Expect(forwarding.Run()).To(Succeed())
		Expect(forwarding.Halted()).To(BeTrue())

		for reg := uint8(1); reg < 32; reg++ {
			want := functional.RegFile().ReadReg(reg)
			Expect(noForwarding.RegFile().ReadReg(reg)).To(Equal(want), "register R%d (no forwarding)", reg)
			Expect(forwarding.RegFile().ReadReg(reg)).To(Equal(want), "register R%d (forwarding)", reg)
		}

		for word := int32(0); word < 4; word++ {
			want, err := functional.Memory().Read(word * 4)
			Expect(err).NotTo(HaveOccurred())

			got, err := noForwarding.Memory().Read(word * 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want), "memory word %d (no forwarding)", word)

			got, err = forwarding.Memory().Read(word * 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want), "memory word %d (forwarding)", word)
		}

		Expect(noForwarding.Stats().Total()).To(Equal(functional.Stats().Total()))
		Expect(forwarding.Stats().Total()).To(Equal(functional.Stats().Total()))
		Expect(noForwarding.RegFile().Written[6]).To(BeFalse(), "squashed ADDI must never commit")
		Expect(forwarding.RegFile().Written[6]).To(BeFalse(), "squashed ADDI must never commit")

		Expect(noForwarding.PC()).To(Equal(functional.PC()), "PC at termination (no forwarding)")
		Expect(forwarding.PC()).To(Equal(functional.PC()), "PC at termination (forwarding)")
	})
})
