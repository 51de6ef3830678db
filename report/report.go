// Package report formats a simulation's final state and performance
// counters into the human-readable summary spec.md §6 requires.
package report

import (
	"fmt"
	"io"

	"github.com/mipslite/sim/emu"
)

// Write prints the summary for one simulation run: instruction counts,
// final PC, every written register, total stalls, every written memory
// word, total cycles, and a halted/ran-off-end marker, in that order.
func Write(w io.Writer, modeName string, stats emu.Stats, pc int32, regs *emu.RegFile, mem *emu.Memory, halted bool) {
	fmt.Fprintf(w, "mode: %s\n", modeName)
	fmt.Fprintf(w, "instructions retired: %d (arithmetic=%d logical=%d memory=%d control=%d)\n",
		stats.Total(), stats.Arithmetic, stats.Logical, stats.Memory, stats.Control)
	fmt.Fprintf(w, "final PC: %d\n", pc)

	fmt.Fprintln(w, "registers written:")
	any := false
	for reg := 0; reg < len(regs.Written); reg++ {
		if !regs.Written[reg] {
			continue
		}
		any = true
		fmt.Fprintf(w, "  R%-2d = %d\n", reg, regs.ReadReg(uint8(reg)))
	}
	if !any {
		fmt.Fprintln(w, "  (none)")
	}

	fmt.Fprintf(w, "data-hazard stalls: %d\n", stats.Stalls)

	fmt.Fprintln(w, "memory written:")
	any = false
	for idx := 0; idx < len(mem.Written); idx++ {
		if !mem.Written[idx] {
			continue
		}
		any = true
		fmt.Fprintf(w, "  [%d] = %d\n", idx*4, mem.Words[idx])
	}
	if !any {
		fmt.Fprintln(w, "  (none)")
	}

	fmt.Fprintf(w, "total cycles: %d\n", stats.Cycles)

	if halted {
		fmt.Fprintln(w, "Program Halted")
	} else {
		fmt.Fprintln(w, "warning: program ran off the end without HALT")
	}
}
