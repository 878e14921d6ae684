// Package textpos converts byte positions in file content into character
// positions, caching the conversions per immutable buffer.
package textpos

import (
	"sort"
	"sync"
	"unicode/utf8"
)

// sample records one known byte-to-character offset correspondence.
// charOff never exceeds byteOff since UTF-8 encodes every character in
// at least one byte.
type sample struct {
	byteOff int
	charOff int
}

// Converter translates byte offsets within one immutable buffer into
// character offsets. Every answered query becomes a new sample, so decode
// work for a query is bounded by its distance to the nearest earlier
// answer rather than by the buffer length.
type Converter struct {
	mu      sync.Mutex
	data    []byte
	samples []sample
	decoded int
}

// NewConverter creates a Converter for the given buffer. The buffer must
// not be mutated afterwards.
func NewConverter(data []byte) *Converter {
	return &Converter{
		data:    data,
		samples: []sample{{byteOff: 0, charOff: 0}},
	}
}

// CharOffset returns the character offset corresponding to byteOff.
// Offsets outside the buffer are clamped to its bounds. A byteOff that
// falls inside a multi-byte character is not a supported input.
func (c *Converter) CharOffset(byteOff int) int {
	if byteOff < 0 {
		byteOff = 0
	}
	if byteOff > len(c.data) {
		byteOff = len(c.data)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// i is the first sample at or beyond the query point
	i := sort.Search(len(c.samples), func(i int) bool {
		return c.samples[i].byteOff >= byteOff
	})

	if i < len(c.samples) && c.samples[i].byteOff == byteOff {
		return c.samples[i].charOff
	}

	var charOff int
	prev := c.samples[i-1]
	if i < len(c.samples) && c.samples[i].byteOff-byteOff < byteOff-prev.byteOff {
		next := c.samples[i]
		charOff = next.charOff - c.countRunes(byteOff, next.byteOff)
	} else {
		charOff = prev.charOff + c.countRunes(prev.byteOff, byteOff)
	}

	c.samples = append(c.samples, sample{})
	copy(c.samples[i+1:], c.samples[i:])
	c.samples[i] = sample{byteOff: byteOff, charOff: charOff}

	return charOff
}

// DecodedBytes returns how many bytes of the buffer have been decoded in
// total across all queries.
func (c *Converter) DecodedBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.decoded
}

// countRunes decodes the span [from, to) and returns its character count.
func (c *Converter) countRunes(from, to int) int {
	span := c.data[from:to]
	c.decoded += len(span)

	count := 0
	for len(span) > 0 {
		_, size := utf8.DecodeRune(span)
		span = span[size:]
		count++
	}
	return count
}
