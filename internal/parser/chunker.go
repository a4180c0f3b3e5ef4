package parser

import (
	"errors"
	"fmt"
)

// ErrInvalidWindow is returned when the chunk window could never advance.
var ErrInvalidWindow = errors.New("invalid chunk window")

// ChunkText splits text into windows of maxChars characters where consecutive
// windows share overlap characters, so a span straddling a boundary appears
// whole in at least one chunk. The last window may be shorter. Splitting stops
// as soon as a window reaches the end of the text.
//
// Windows are measured in runes, not bytes.
func ChunkText(text string, maxChars, overlap int) ([]string, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidWindow, maxChars)
	}
	if overlap < 0 || overlap >= maxChars {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidWindow, overlap, maxChars)
	}

	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil, nil
	}

	var chunks []string
	for start := 0; start < n; {
		end := min(start+maxChars, n)
		chunks = append(chunks, string(runes[start:end]))
		if end == n {
			break
		}
		start = end - overlap
	}
	return chunks, nil
}

// JoinChunks reverses ChunkText: every chunk after the first contributes only
// what follows its overlap prefix.
func JoinChunks(chunks []string, overlap int) string {
	var out []rune
	for i, c := range chunks {
		r := []rune(c)
		if i > 0 {
			if overlap >= len(r) {
				continue
			}
			r = r[overlap:]
		}
		out = append(out, r...)
	}
	return string(out)
}
