package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mipslite/sim/emu"
	"github.com/mipslite/sim/insts"
)

var _ = Describe("Execute", func() {
	It("computes R-type and I-type arithmetic/logic results", func() {
		Expect(emu.Execute(insts.Instruction{Op: insts.OpADD}, 0, 3, 4).Value).To(Equal(int32(7)))
		Expect(emu.Execute(insts.Instruction{Op: insts.OpSUBI}, 0, 10, -2).Value).To(Equal(int32(12)))
		Expect(emu.Execute(insts.Instruction{Op: insts.OpMUL}, 0, 3, 5).Value).To(Equal(int32(15)))
		Expect(emu.Execute(insts.Instruction{Op: insts.OpAND}, 0, 0b110, 0b011).Value).To(Equal(int32(0b010)))
		Expect(emu.Execute(insts.Instruction{Op: insts.OpOR}, 0, 0b110, 0b011).Value).To(Equal(int32(0b111)))
		Expect(emu.Execute(insts.Instruction{Op: insts.OpXOR}, 0, 0b110, 0b011).Value).To(Equal(int32(0b101)))
	})

	It("computes the effective address for LDW/STW as operand + imm", func() {
		inst := insts.Instruction{Op: insts.OpLDW, Imm: 8}
		Expect(emu.Execute(inst, 0, 100, 0).Value).To(Equal(int32(108)))
	})

	It("resolves BZ as taken when the operand is zero, target PC + imm*4", func() {
		inst := insts.Instruction{Op: insts.OpBZ, Imm: 3}
		result := emu.Execute(inst, 40, 0, 0)
		Expect(result.Taken).To(BeTrue())
		Expect(result.Target).To(Equal(int32(40 + 3*4)))

		result = emu.Execute(inst, 40, 1, 0)
		Expect(result.Taken).To(BeFalse())
	})

	It("resolves BEQ as taken when both operands are equal", func() {
		inst := insts.Instruction{Op: insts.OpBEQ, Imm: -2}
		Expect(emu.Execute(inst, 20, 5, 5).Taken).To(BeTrue())
		Expect(emu.Execute(inst, 20, 5, 6).Taken).To(BeFalse())
	})

	It("resolves JR as always taken, target is operand_a", func() {
		inst := insts.Instruction{Op: insts.OpJR}
		result := emu.Execute(inst, 20, 64, 0)
		Expect(result.Taken).To(BeTrue())
		Expect(result.Target).To(Equal(int32(64)))
	})
})
