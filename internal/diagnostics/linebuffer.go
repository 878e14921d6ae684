package diagnostics

import (
	"bytes"
)

// LineBuffer reassembles a byte stream into whole lines. Tool output
// arrives in arbitrary chunks; the buffer emits every completed line to
// the callback and holds the trailing partial line until Flush.
type LineBuffer struct {
	onLine func(line string)
	rest   []byte
}

// NewLineBuffer creates a LineBuffer delivering lines to onLine.
func NewLineBuffer(onLine func(line string)) *LineBuffer {
	return &LineBuffer{onLine: onLine}
}

// Write implements io.Writer and never fails.
func (b *LineBuffer) Write(p []byte) (int, error) {
	b.rest = append(b.rest, p...)
	for {
		i := bytes.IndexByte(b.rest, '\n')
		if i < 0 {
			return len(p), nil
		}
		b.emit(b.rest[:i])
		b.rest = b.rest[i+1:]
	}
}

// Flush emits the pending unterminated line, if any.
func (b *LineBuffer) Flush() {
	if len(b.rest) > 0 {
		b.emit(b.rest)
		b.rest = nil
	}
}

func (b *LineBuffer) emit(line []byte) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	b.onLine(string(line))
}
