package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("short text", 100, 20)
	assert.Equal(t, []string{"short text"}, chunks)
}

func TestSplitTextChunksOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 chars
	chunks := SplitText(text, 40, 10)

	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 40)
	}

	// Each chunk starts 'chunkSize - overlap' runes after the previous one,
	// so consecutive chunks share the overlap region.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		assert.Equal(t, prev[30:], chunks[i][:10])
	}

	// No content lost: stitching chunks without their overlap reproduces
	// the input.
	var sb strings.Builder
	sb.WriteString(chunks[0])
	for i := 1; i < len(chunks); i++ {
		sb.WriteString(chunks[i][10:])
	}
	assert.Equal(t, text, sb.String())
}

func TestSplitTextOverlapAtLeastChunkSize(t *testing.T) {
	text := strings.Repeat("x", 50)
	// Degenerate config: the step falls back to chunkSize so the loop
	// still advances.
	chunks := SplitText(text, 20, 20)
	assert.Equal(t, []string{
		strings.Repeat("x", 20),
		strings.Repeat("x", 20),
		strings.Repeat("x", 10),
	}, chunks)
}

func TestSplitTextShortMultibyteInputStaysWhole(t *testing.T) {
	// 40 runes but 120 bytes: under the chunk size in runes, so it must
	// come back as a single chunk.
	text := strings.Repeat("あ", 40)
	chunks := SplitText(text, 50, 10)
	assert.Equal(t, []string{text}, chunks)
}

func TestSplitTextMultibyte(t *testing.T) {
	text := strings.Repeat("héllo wörld ", 20)
	chunks := SplitText(text, 50, 10)

	// Rune-based slicing must never cut a multibyte sequence in half.
	assert.True(t, strings.HasPrefix(text, chunks[0]))
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
	}
}
