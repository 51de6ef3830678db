package report_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mipslite/sim/emu"
	"github.com/mipslite/sim/report"
)

var _ = Describe("Write", func() {
	It("lists only written registers and memory words, and marks HALT", func() {
		regs := &emu.RegFile{}
		regs.WriteReg(1, 5)
		regs.WriteReg(3, 14)

		mem := emu.NewMemory()
		Expect(mem.LoadImage([]uint32{0, 0, 0, 0})).To(Succeed())
		Expect(mem.Write(0, 7)).To(Succeed())

		stats := emu.Stats{Arithmetic: 2, Control: 1, Cycles: 10, Stalls: 1}

		var buf strings.Builder
		report.Write(&buf, "functional", stats, 12, regs, mem, true)
		out := buf.String()

		Expect(out).To(ContainSubstring("R1  = 5"))
		Expect(out).To(ContainSubstring("R3  = 14"))
		Expect(out).NotTo(ContainSubstring("R2 "))
		Expect(out).To(ContainSubstring("[0] = 7"))
		Expect(out).To(ContainSubstring("final PC: 12"))
		Expect(out).To(ContainSubstring("data-hazard stalls: 1"))
		Expect(out).To(ContainSubstring("total cycles: 10"))
		Expect(out).To(ContainSubstring("Program Halted"))
	})

	It("warns instead of halting when the program ran off the end", func() {
		regs := &emu.RegFile{}
		mem := emu.NewMemory()
		Expect(mem.LoadImage([]uint32{0})).To(Succeed())

		var buf strings.Builder
		report.Write(&buf, "functional", emu.Stats{}, 4, regs, mem, false)

		Expect(buf.String()).To(ContainSubstring("warning: program ran off the end without HALT"))
		Expect(buf.String()).NotTo(ContainSubstring("Program Halted"))
	})
})
