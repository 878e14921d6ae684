package textpos

import (
	"crypto/sha256"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// mappedFile bundles the converter for one buffer with its line index.
// lines holds the byte offset of the first byte of every line.
type mappedFile struct {
	conv  *Converter
	lines []int
}

// Mapper resolves the byte columns reported by check tools into character
// columns. Converters are cached per file content, keyed by path and
// content hash, so an edited file never reuses stale samples.
type Mapper struct {
	files *lru.Cache[string, *mappedFile]
}

// NewMapper creates a Mapper caching up to size file buffers.
func NewMapper(size int) (*Mapper, error) {
	files, err := lru.New[string, *mappedFile](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create converter cache: %w", err)
	}
	return &Mapper{files: files}, nil
}

// CharColumn converts a 1-based byte column on a 1-based line of content
// into the matching 1-based character column.
func (m *Mapper) CharColumn(path string, content []byte, line, col int) (int, error) {
	if line < 1 || col < 1 {
		return 0, fmt.Errorf("position %d:%d is not 1-based", line, col)
	}

	mf := m.file(path, content)
	if line > len(mf.lines) {
		return 0, fmt.Errorf("line %d beyond end of %s", line, path)
	}

	lineStart := mf.lines[line-1]
	startChar := mf.conv.CharOffset(lineStart)
	atChar := mf.conv.CharOffset(lineStart + col - 1)
	return atChar - startChar + 1, nil
}

func (m *Mapper) file(path string, content []byte) *mappedFile {
	key := cacheKey(path, content)
	if mf, ok := m.files.Get(key); ok {
		return mf
	}

	mf := &mappedFile{
		conv:  NewConverter(content),
		lines: lineStarts(content),
	}
	m.files.Add(key, mf)
	return mf
}

// cacheKey ties a cached converter to one exact buffer; an edited file
// hashes to a new key instead of reusing stale samples.
func cacheKey(path string, content []byte) string {
	return fmt.Sprintf("%s@%x", path, sha256.Sum256(content))
}

// lineStarts indexes the byte offset of every line start in content.
func lineStarts(content []byte) []int {
	starts := []int{0}
	for i, b := range content {
		if b == '\n' && i+1 < len(content) {
			starts = append(starts, i+1)
		}
	}
	return starts
}
