package chunker

import "strings"

// Chunk is a contiguous run of lines from one document.
type Chunk struct {
	Index     int
	Text      string
	LineCount int
}

// SplitLines splits text after every '\n', keeping the terminator on each
// line. A trailing line without a newline is kept as is; empty text has no
// lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ChunkLines groups consecutive lines of text into chunks of exactly size
// lines; only the last chunk may be shorter. Joining every chunk's Text in
// order reproduces text exactly. A non-positive size yields no chunks.
func ChunkLines(text string, size int) []Chunk {
	if size <= 0 {
		return nil
	}
	lines := SplitLines(text)
	var chunks []Chunk
	for start := 0; start < len(lines); start += size {
		end := start + size
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, Chunk{
			Index:     len(chunks),
			Text:      strings.Join(lines[start:end], ""),
			LineCount: end - start,
		})
	}
	return chunks
}
