package extract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidWindow is returned when the window would not advance
var ErrInvalidWindow = errors.New("invalid chunk window")

// Chunk splits text into windows of at most maxWords whitespace-delimited
// words. Consecutive windows start maxWords-overlapWords words apart, and
// iteration stops once a window reaches the end of the text.
func Chunk(text string, maxWords, overlapWords int) ([]string, error) {
	if maxWords <= 0 || overlapWords < 0 || overlapWords >= maxWords {
		return nil, fmt.Errorf("%w: max_words=%d overlap_words=%d", ErrInvalidWindow, maxWords, overlapWords)
	}

	words := strings.Fields(text)
	n := len(words)
	if n == 0 {
		return nil, nil
	}

	var chunks []string
	start := 0
	for {
		end := min(start+maxWords, n)
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == n {
			break
		}
		start = end - overlapWords
	}
	return chunks, nil
}

// ChunkCount returns how many windows Chunk produces for n words
func ChunkCount(n, maxWords, overlapWords int) int {
	if n == 0 {
		return 0
	}
	if n <= maxWords {
		return 1
	}
	step := maxWords - overlapWords
	return (n-maxWords+step-1)/step + 1
}
