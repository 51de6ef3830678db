// Package image loads a MIPS-lite program image from its text encoding:
// one 32-bit hexadecimal word per line, with or without a 0x prefix,
// optionally followed by a # comment.
package image

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mipslite/sim/insts"
)

// Load reads a program image from r. It stops after insts.MemoryWords
// words; any further lines are ignored. An image with no words at all is
// an error, since a simulator run with nothing to execute is never what
// was intended.
func Load(r io.Reader) ([]uint32, error) {
	var words []uint32

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(words) >= insts.MemoryWords {
			continue
		}

		digits := line
		if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
			digits = digits[2:]
		}
		value, err := strconv.ParseUint(digits, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("image line %d: %w", lineNum, err)
		}
		words = append(words, uint32(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("image is empty")
	}

	return words, nil
}
