package utils

import "strings"

// SplitText splits a long string into chunks of at most 'chunkSize' characters.
// Consecutive chunks share 'overlap' characters so that content spanning a
// chunk boundary stays retrievable from either side.
// Character-based on purpose: chunk ids must stay stable across runs, and a
// tokenizer-aware splitter would tie them to a specific tokenizer version.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// NormalizeWhitespace collapses runs of blank lines and trims trailing spaces,
// so markup-derived text does not waste chunk budget on layout noise.
func NormalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
