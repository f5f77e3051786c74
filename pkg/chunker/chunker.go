// Package chunker splits raw document text into overlapping fixed-size
// windows with stable ids. Chunks are the unit of indexing.
package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultWindowSize is the default chunk window in characters.
	DefaultWindowSize = 1000

	// DefaultOverlap is the default overlap between consecutive chunks.
	DefaultOverlap = 200
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// Chunk is a bounded contiguous slice of document text with a stable id.
// Immutable once created.
type Chunk struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Split normalizes whitespace in text and slides a window of windowSize
// characters across it, advancing by windowSize-overlap each step. Ids are
// assigned in scan order as chunk-0, chunk-1, and so on. The final chunk may
// be shorter than windowSize. Empty input yields zero chunks.
func Split(text string, windowSize, overlap int) ([]Chunk, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", windowSize)
	}
	if overlap < 0 || overlap >= windowSize {
		return nil, fmt.Errorf("overlap must satisfy 0 <= overlap < window size, got %d", overlap)
	}

	normalized := strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
	if normalized == "" {
		return nil, nil
	}

	runes := []rune(normalized)
	step := windowSize - overlap

	var chunks []Chunk
	for start, idx := 0, 0; start < len(runes); start, idx = start+step, idx+1 {
		end := start + windowSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			ID:   fmt.Sprintf("chunk-%d", idx),
			Text: string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}
