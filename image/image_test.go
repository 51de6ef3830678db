package image_test

import (
	"strconv"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mipslite/sim/image"
	"github.com/mipslite/sim/insts"
)

var _ = Describe("Load", func() {
	It("parses one unprefixed hex word per line", func() {
		words, err := image.Load(strings.NewReader("0\n12345678\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(words).To(Equal([]uint32{0, 0x12345678}))
	})

	It("parses 0x-prefixed hex words", func() {
		words, err := image.Load(strings.NewReader("0x12345678\n0X1\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(words).To(Equal([]uint32{0x12345678, 1}))
	})

	It("skips blank lines and trailing comments", func() {
		words, err := image.Load(strings.NewReader("0x1 # first word\n\n  0x2  \n# whole line comment\n0x3\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(words).To(Equal([]uint32{1, 2, 3}))
	})

	It("rejects an image with no words at all", func() {
		_, err := image.Load(strings.NewReader("\n# nothing but comments\n"))
		Expect(err).To(HaveOccurred())
	})

	It("rejects a malformed word", func() {
		_, err := image.Load(strings.NewReader("0x1\nnot-a-number\n"))
		Expect(err).To(HaveOccurred())
	})

	It("stops at the memory word capacity and ignores trailing lines", func() {
		var sb strings.Builder
		for i := 0; i < insts.MemoryWords+5; i++ {
			sb.WriteString(strconv.FormatInt(int64(i), 16))
			sb.WriteByte('\n')
		}
		words, err := image.Load(strings.NewReader(sb.String()))
		Expect(err).NotTo(HaveOccurred())
		Expect(words).To(HaveLen(insts.MemoryWords))
		Expect(words[0]).To(Equal(uint32(0)))
		Expect(words[insts.MemoryWords-1]).To(Equal(uint32(insts.MemoryWords - 1)))
	})
})
