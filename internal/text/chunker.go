// Package text splits document content into overlapping chunks for embedding.
package text

import "strings"

// Chunk is a bounded segment of a document, ephemeral and derived on every
// question. Seq preserves the original order for retrieval tie-breaks.
type Chunk struct {
	Text string
	Seq  int
}

// Split cuts text into windows of at most chunkSize bytes. Window boundaries
// prefer the last occurrence of sep inside the window so chunks end on natural
// breaks; each subsequent window repeats the previous window's last overlap
// bytes. Concatenating the chunks minus those overlaps reproduces the input
// exactly.
//
// overlap must be smaller than chunkSize. Non-empty input always yields at
// least one chunk. Deterministic: same input, same chunks.
func Split(text string, chunkSize, overlap int, sep string) []Chunk {
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	var chunks []Chunk
	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end >= len(text) {
			chunks = append(chunks, Chunk{Text: text[start:], Seq: len(chunks)})
			break
		}

		// Prefer cutting after the last separator inside the window.
		if sep != "" {
			if i := strings.LastIndex(text[start:end], sep); i > 0 {
				end = start + i + len(sep)
			}
		}

		chunks = append(chunks, Chunk{Text: text[start:end], Seq: len(chunks)})

		next := end - overlap
		if next <= start {
			// The window was shorter than the overlap; skip the repeat
			// rather than walking backwards.
			next = end
		}
		start = next
	}

	return chunks
}
