package ingestion

import "unicode/utf8"

// Chunker splits document text into fixed-size overlapping windows.
type Chunker struct {
	ChunkSize    int
	ChunkOverlap int
}

type Chunk struct {
	Index    int
	Start    int
	End      int
	Content  string
	Metadata map[string]string
}

func NewChunker(chunkSize, overlap int) *Chunker {
	return &Chunker{
		ChunkSize:    chunkSize,
		ChunkOverlap: overlap,
	}
}

// ChunkText slices text into windows of about ChunkSize bytes, each starting
// ChunkSize-ChunkOverlap after the previous one. Window edges snap to rune
// boundaries so a multi-byte character is never split across chunks. Invalid
// settings yield no chunks rather than an infinite loop.
func (c *Chunker) ChunkText(text string) []Chunk {
	if c.ChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return []Chunk{}
	}

	step := c.ChunkSize - c.ChunkOverlap
	results := []Chunk{}

	start, index := 0, 0
	for start < len(text) {
		end := start + c.ChunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
			if end == start {
				// ChunkSize smaller than the rune at start; take it whole.
				_, size := utf8.DecodeRuneInString(text[start:])
				end = start + size
			}
		}

		results = append(results, Chunk{
			Index:   index,
			Start:   start,
			End:     end,
			Content: text[start:end],
		})

		if end == len(text) {
			break
		}
		index++
		start += step
		for start < len(text) && !utf8.RuneStart(text[start]) {
			start++
		}
	}

	return results
}
