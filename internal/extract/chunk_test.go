package extract

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(w, " ")
}

func TestChunk_Empty(t *testing.T) {
	chunks, err := Chunk("   \n\t ", 10, 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("Expected no chunks, got %d", len(chunks))
	}
}

func TestChunk_Windows(t *testing.T) {
	chunks, err := Chunk(words(10), 4, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := []string{
		"w0 w1 w2 w3",
		"w3 w4 w5 w6",
		"w6 w7 w8 w9",
	}
	if len(chunks) != len(want) {
		t.Fatalf("Expected %d chunks, got %d: %q", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("Chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestChunk_ShortFinalWindow(t *testing.T) {
	chunks, _ := Chunk(words(6), 4, 1)
	if len(chunks) != 2 || chunks[1] != "w3 w4 w5" {
		t.Errorf("Expected shorter final window, got %q", chunks)
	}
}

func TestChunk_InvalidWindow(t *testing.T) {
	for _, tc := range []struct{ max, overlap int }{{5, 5}, {5, 7}, {0, 0}, {5, -1}} {
		if _, err := Chunk("a b c", tc.max, tc.overlap); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("max=%d overlap=%d: expected ErrInvalidWindow, got %v", tc.max, tc.overlap, err)
		}
	}
}

func TestChunk_CoverageAndCount(t *testing.T) {
	for n := 0; n <= 60; n++ {
		for maxWords := 1; maxWords <= 12; maxWords++ {
			for overlap := 0; overlap < maxWords; overlap++ {
				text := words(n)
				chunks, err := Chunk(text, maxWords, overlap)
				if err != nil {
					t.Fatalf("n=%d max=%d overlap=%d: %v", n, maxWords, overlap, err)
				}

				if got, want := len(chunks), ChunkCount(n, maxWords, overlap); got != want {
					t.Fatalf("n=%d max=%d overlap=%d: expected %d chunks, got %d", n, maxWords, overlap, want, got)
				}

				// Every word appears, in order, when overlaps are removed
				var rebuilt []string
				for i, c := range chunks {
					cw := strings.Fields(c)
					if len(cw) > maxWords {
						t.Fatalf("n=%d max=%d: chunk %d has %d words", n, maxWords, i, len(cw))
					}
					if i > 0 {
						cw = cw[overlap:]
					}
					rebuilt = append(rebuilt, cw...)
				}
				if strings.Join(rebuilt, " ") != text {
					t.Fatalf("n=%d max=%d overlap=%d: chunks do not cover text in order", n, maxWords, overlap)
				}
			}
		}
	}
}

func TestChunkCount_Formula(t *testing.T) {
	cases := []struct {
		n, max, overlap, want int
	}{
		{0, 1000, 150, 0},
		{1, 1000, 150, 1},
		{1000, 1000, 150, 1},
		{1001, 1000, 150, 2},
		{1850, 1000, 150, 2},
		{1851, 1000, 150, 3},
	}
	for _, tc := range cases {
		if got := ChunkCount(tc.n, tc.max, tc.overlap); got != tc.want {
			t.Errorf("ChunkCount(%d, %d, %d) = %d, expected %d", tc.n, tc.max, tc.overlap, got, tc.want)
		}
	}
}
