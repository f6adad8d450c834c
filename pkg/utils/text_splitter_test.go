package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("hello world", 1024, 128)
	assert.Equal(t, []string{"hello world"}, chunks)
}

func TestSplitTextChunkBounds(t *testing.T) {
	text := strings.Repeat("a", 2500)
	chunks := SplitText(text, 1024, 128)

	for i, c := range chunks {
		assert.LessOrEqual(t, len(c), 1024, "chunk %d exceeds max size", i)
	}
	// step = 1024-128 = 896, so chunks start at 0, 896, 1792
	assert.Len(t, chunks, 3)
}

func TestSplitTextOverlap(t *testing.T) {
	// Distinct runes let us check the shared region between neighbours.
	var sb strings.Builder
	for i := 0; i < 300; i++ {
		sb.WriteRune(rune('a' + i%26))
	}
	chunks := SplitText(sb.String(), 100, 20)

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-20:]
		assert.True(t, strings.HasPrefix(chunks[i], tail),
			"chunk %d does not start with the last 20 chars of chunk %d", i, i-1)
	}
}

func TestSplitTextOverlapGreaterThanSize(t *testing.T) {
	text := strings.Repeat("x", 50)
	chunks := SplitText(text, 10, 15)
	// Falls back to non-overlapping steps instead of looping forever.
	assert.Len(t, chunks, 5)
}

func TestSplitTextDeterministic(t *testing.T) {
	text := strings.Repeat("petsc vec create destroy ", 200)
	a := SplitText(text, 1024, 128)
	b := SplitText(text, 1024, 128)
	assert.Equal(t, a, b)
}

func TestNormalizeWhitespace(t *testing.T) {
	in := "Title  \n\n\n\nBody line\t\n\n\n  \nEnd\n\n"
	got := NormalizeWhitespace(in)
	assert.Equal(t, "Title\n\nBody line\n\nEnd", got)
}
