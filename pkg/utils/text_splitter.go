package utils

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
)

var sentenceEnds = []string{". ", "! ", "? ", "\n\n"}

// Chunk is a slice of a document; StartChar and EndChar are rune offsets into the original text.
type Chunk struct {
	Index     int
	Text      string
	StartChar int
	EndChar   int
}

// SplitText splits text into chunks of at most chunkSize characters with overlap between neighbours.
// A chunk prefers to end right after the first sentence terminator (in priority order) found in its
// second half. Chunks are trimmed and empty ones dropped.
func SplitText(text string, chunkSize int, overlap int) []Chunk {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	runes := []rune(text)
	total := len(runes)
	if total <= chunkSize {
		return []Chunk{{Index: 0, Text: text, StartChar: 0, EndChar: total}}
	}

	var chunks []Chunk
	start := 0
	for start < total {
		end := start + chunkSize
		if end > total {
			end = total
		}

		if end < total {
			window := runes[start+chunkSize/2 : end]
			for _, marker := range sentenceEnds {
				if idx := lastIndexRunes(window, marker); idx != -1 {
					end = start + chunkSize/2 + idx + utf8.RuneCountInString(marker)
					break
				}
			}
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, Chunk{Index: len(chunks), Text: chunk, StartChar: start, EndChar: end})
		}

		if end >= total {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// lastIndexRunes returns the rune offset of the last occurrence of marker that lies fully inside window.
func lastIndexRunes(window []rune, marker string) int {
	byteIdx := strings.LastIndex(string(window), marker)
	if byteIdx == -1 {
		return -1
	}
	return utf8.RuneCountInString(string(window)[:byteIdx])
}

var wordPattern = regexp.MustCompile(`\w+`)

// EstimateTokenCount approximates tokens as 1.33 per word.
func EstimateTokenCount(text string) int {
	words := len(wordPattern.FindAllString(text, -1))
	return int(math.Floor(float64(words) * 1.33))
}

// Preview returns the first n characters followed by "..." when the text is longer.
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
