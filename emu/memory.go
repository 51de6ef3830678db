package emu

import (
	"fmt"

	"github.com/mipslite/sim/insts"
)

// MemoryWords is the number of 32-bit words in simulated memory.
const MemoryWords = insts.MemoryWords

// Memory is the MIPS-lite data and instruction memory: 1024 little-endian
// 32-bit words (4 KiB), stored by word index; Read and Write take
// word-aligned byte addresses and convert them to that index.
// All three execution modes (functional, and both pipelined controllers)
// share one Memory per run.
type Memory struct {
	// Words holds the 1024-word memory image.
	Words [MemoryWords]int32

	// Written marks every word that has been stored to at least once, for
	// the summary report.
	Written [MemoryWords]bool

	// ProgramWords is the length, in words, of the loaded program image.
	// A fetch whose PC runs at or past this boundary without having hit
	// HALT has run off the end of the program, not of memory itself.
	ProgramWords int
}

// NewMemory returns a zeroed 1024-word memory.
func NewMemory() *Memory {
	return &Memory{}
}

// wordIndex converts a byte address into a word index, validating that the
// address is word-aligned and within bounds. Out-of-range or misaligned
// effective addresses are fatal at the call site, per spec.md §4.3.
func wordIndex(addr int32) (int, error) {
	if addr%4 != 0 {
		return 0, fmt.Errorf("unaligned memory address %d", addr)
	}
	idx := int(addr / 4)
	if idx < 0 || idx >= MemoryWords {
		return 0, fmt.Errorf("memory address %d out of range [0, %d)", addr, MemoryWords*4)
	}
	return idx, nil
}

// Read loads the word at the given byte address.
func (m *Memory) Read(addr int32) (int32, error) {
	idx, err := wordIndex(addr)
	if err != nil {
		return 0, err
	}
	return m.Words[idx], nil
}

// Write stores a word at the given byte address and marks it written.
func (m *Memory) Write(addr int32, value int32) error {
	idx, err := wordIndex(addr)
	if err != nil {
		return err
	}
	m.Words[idx] = value
	m.Written[idx] = true
	return nil
}

// LoadImage copies a program image into memory starting at word 0. It
// returns an error if the image is longer than memory can hold.
func (m *Memory) LoadImage(words []uint32) error {
	if len(words) > MemoryWords {
		return fmt.Errorf("image of %d words exceeds memory size %d", len(words), MemoryWords)
	}
	for i, w := range words {
		m.Words[i] = int32(w)
	}
	m.ProgramWords = len(words)
	return nil
}

// RanOffEnd reports whether the given byte address has reached or passed
// the end of the loaded program image.
func (m *Memory) RanOffEnd(addr int32) bool {
	return int(addr/4) >= m.ProgramWords
}
