package simulator_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mipslite/sim/insts"
	"github.com/mipslite/sim/simulator"
)

func rWord(op insts.Op, rs, rt, rd uint8) uint32 {
	return uint32(op)<<26 | uint32(rs)<<21 | uint32(rt)<<16 | uint32(rd)<<11
}

func iWord(op insts.Op, rs, rt uint8, imm int32) uint32 {
	return uint32(op)<<26 | uint32(rs)<<21 | uint32(rt)<<16 | uint32(uint16(imm))
}

var program = []uint32{
	iWord(insts.OpADDI, 0, 1, 5),
	iWord(insts.OpADDI, 0, 2, 9),
	rWord(insts.OpADD, 1, 2, 3),
	rWord(insts.OpHALT, 0, 0, 0),
}

var _ = Describe("ParseMode", func() {
	It("accepts 0, 1, and 2", func() {
		for n, want := range map[int]simulator.Mode{
			0: simulator.ModeFunctional,
			1: simulator.ModePipelinedNoForwarding,
			2: simulator.ModePipelinedForwarding,
		} {
			mode, err := simulator.ParseMode(n)
			Expect(err).NotTo(HaveOccurred())
			Expect(mode).To(Equal(want))
		}
	})

	It("rejects anything else", func() {
		_, err := simulator.ParseMode(3)
		Expect(err).To(HaveOccurred())
	})
})

var _ = DescribeTable("each mode runs the same program to the same final state",
	func(mode simulator.Mode) {
		sim, err := simulator.New(mode, program)
		Expect(err).NotTo(HaveOccurred())
		Expect(sim.Run()).To(Succeed())
		Expect(sim.Halted()).To(BeTrue())
		Expect(sim.RegFile().ReadReg(3)).To(Equal(int32(14)))
	},
	Entry("functional", simulator.ModeFunctional),
	Entry("pipelined, no forwarding", simulator.ModePipelinedNoForwarding),
	Entry("pipelined, forwarding", simulator.ModePipelinedForwarding),
)

var _ = Describe("New", func() {
	It("rejects an image too large for memory", func() {
		huge := make([]uint32, insts.MemoryWords+1)
		_, err := simulator.New(simulator.ModeFunctional, huge)
		Expect(err).To(HaveOccurred())
	})
})
