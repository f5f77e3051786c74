package chunker_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/contractminer/contractminer/pkg/chunker"
)

var _ = Describe("Split", func() {
	It("returns zero chunks for empty input", func() {
		chunks, err := chunker.Split("", 10, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(chunks).To(BeEmpty())
	})

	It("returns zero chunks for whitespace-only input", func() {
		chunks, err := chunker.Split(" \n\t  ", 10, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(chunks).To(BeEmpty())
	})

	It("rejects an overlap equal to or larger than the window", func() {
		_, err := chunker.Split("some text", 10, 10)
		Expect(err).To(HaveOccurred())

		_, err = chunker.Split("some text", 10, 15)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a non-positive window", func() {
		_, err := chunker.Split("some text", 0, 0)
		Expect(err).To(HaveOccurred())
	})

	It("emits a single chunk when the text fits one window", func() {
		chunks, err := chunker.Split("short text", 100, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(chunks).To(HaveLen(1))
		Expect(chunks[0].ID).To(Equal("chunk-0"))
		Expect(chunks[0].Text).To(Equal("short text"))
	})

	It("assigns sequential ids in scan order", func() {
		text := strings.Repeat("a", 25)
		chunks, err := chunker.Split(text, 10, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(chunks).To(HaveLen(3))
		Expect(chunks[0].ID).To(Equal("chunk-0"))
		Expect(chunks[1].ID).To(Equal("chunk-1"))
		Expect(chunks[2].ID).To(Equal("chunk-2"))
	})

	It("produces full windows except possibly the last", func() {
		text := strings.Repeat("x", 95)
		chunks, err := chunker.Split(text, 40, 10)
		Expect(err).NotTo(HaveOccurred())

		for i, c := range chunks {
			if i < len(chunks)-1 {
				Expect(c.Text).To(HaveLen(40))
			} else {
				Expect(len(c.Text)).To(BeNumerically("<=", 40))
			}
		}
	})

	It("overlaps consecutive chunks by the configured amount", func() {
		text := strings.Repeat("abcde", 20) // 100 chars
		chunks, err := chunker.Split(text, 30, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(chunks)).To(BeNumerically(">", 1))

		for i := 1; i < len(chunks); i++ {
			prevTail := chunks[i-1].Text[len(chunks[i-1].Text)-10:]
			Expect(strings.HasPrefix(chunks[i].Text, prevTail)).To(BeTrue())
		}
	})

	It("reconstructs the normalized text when overlap is trimmed", func() {
		text := "The  quick\nbrown fox   jumps over the lazy dog near the river bank today"
		normalized := "The quick brown fox jumps over the lazy dog near the river bank today"

		chunks, err := chunker.Split(text, 20, 5)
		Expect(err).NotTo(HaveOccurred())

		rebuilt := chunks[0].Text
		for _, c := range chunks[1:] {
			Expect(len(c.Text)).To(BeNumerically(">=", 5))
			rebuilt += c.Text[5:]
		}
		Expect(rebuilt).To(Equal(normalized))
	})

	It("normalizes whitespace runs to single spaces", func() {
		chunks, err := chunker.Split("a\t\tb\n\nc   d", 100, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(chunks).To(HaveLen(1))
		Expect(chunks[0].Text).To(Equal("a b c d"))
	})

	It("terminates once the window reaches the end of text", func() {
		// Window end lands exactly on the text end; the overlap step must not
		// spin up a duplicate tail chunk.
		text := strings.Repeat("z", 50)
		chunks, err := chunker.Split(text, 30, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(chunks).To(HaveLen(2))
		Expect(chunks[1].Text).To(HaveLen(30))
	})
})
