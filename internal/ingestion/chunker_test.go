package ingestion

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkText_SplitsWithOverlap(t *testing.T) {
	chunker := NewChunker(10, 4)

	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := chunker.ChunkText(text)

	if len(chunks) == 0 {
		t.Fatal("Expected chunks, got none")
	}

	if chunks[0].Content != "abcdefghij" {
		t.Errorf("Expected first chunk 'abcdefghij', got %q", chunks[0].Content)
	}

	// Each window starts size-overlap after the previous one.
	if chunks[1].Start != 6 {
		t.Errorf("Expected second chunk to start at 6, got %d", chunks[1].Start)
	}

	last := chunks[len(chunks)-1]
	if last.End != len(text) {
		t.Errorf("Expected final chunk to end at %d, got %d", len(text), last.End)
	}

	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("Expected chunk %d to carry index %d, got %d", i, i, chunk.Index)
		}
	}
}

func TestChunkText_ShortTextYieldsSingleChunk(t *testing.T) {
	chunker := NewChunker(500, 100)

	chunks := chunker.ChunkText("short document")

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "short document" {
		t.Errorf("Expected full text in the single chunk, got %q", chunks[0].Content)
	}
}

func TestChunkText_InvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative overlap", 10, -1},
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunker := NewChunker(tt.size, tt.overlap)
			if chunks := chunker.ChunkText("some text"); len(chunks) != 0 {
				t.Errorf("Expected no chunks, got %d", len(chunks))
			}
		})
	}
}

func TestChunkText_CoversWholeText(t *testing.T) {
	chunker := NewChunker(7, 2)
	text := strings.Repeat("0123456789", 10)

	chunks := chunker.ChunkText(text)

	covered := 0
	for _, chunk := range chunks {
		if chunk.Content != text[chunk.Start:chunk.End] {
			t.Errorf("Chunk %d content does not match its range", chunk.Index)
		}
		if chunk.Start > covered {
			t.Errorf("Gap before chunk %d: start %d, covered up to %d", chunk.Index, chunk.Start, covered)
		}
		if chunk.End > covered {
			covered = chunk.End
		}
	}

	if covered != len(text) {
		t.Errorf("Expected chunks to cover %d bytes, covered %d", len(text), covered)
	}
}

func TestChunkText_NeverSplitsRunes(t *testing.T) {
	chunker := NewChunker(10, 3)

	// Every character is multi-byte, so naive byte windows would cut
	// through the middle of a rune.
	text := strings.Repeat("жанр日本語", 8)
	chunks := chunker.ChunkText(text)

	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}

	for _, chunk := range chunks {
		if !utf8.ValidString(chunk.Content) {
			t.Errorf("Chunk %d is not valid UTF-8: %q", chunk.Index, chunk.Content)
		}
		if chunk.Content != text[chunk.Start:chunk.End] {
			t.Errorf("Chunk %d content does not match its range", chunk.Index)
		}
	}

	last := chunks[len(chunks)-1]
	if last.End != len(text) {
		t.Errorf("Expected final chunk to end at %d, got %d", len(text), last.End)
	}
}

func TestChunkText_SizeBelowRuneWidthTakesWholeRune(t *testing.T) {
	chunker := NewChunker(2, 1)

	chunks := chunker.ChunkText("日本")

	for _, chunk := range chunks {
		if !utf8.ValidString(chunk.Content) {
			t.Errorf("Chunk %d is not valid UTF-8: %q", chunk.Index, chunk.Content)
		}
		if chunk.Content == "" {
			t.Errorf("Chunk %d is empty", chunk.Index)
		}
	}
}
