package extract

import (
	"strings"
)

// Chunks splits document text into at most maxChunks pieces of roughly
// size characters each, preferring paragraph boundaries and carrying
// overlap characters of trailing context into the next chunk. Text that
// fits in one chunk is returned as-is.
func Chunks(text string, size, overlap, maxChunks int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 || len(text) <= size {
		return []string{text}
	}
	if overlap >= size {
		overlap = size / 4
	}

	paragraphs := splitParagraphs(text)

	var chunks []string
	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, strings.TrimSpace(current.String()))
		current.Reset()
	}

	for _, p := range paragraphs {
		// Paragraphs larger than a whole chunk are split hard.
		for len(p) > size {
			if current.Len() > 0 {
				flush()
			}
			chunks = append(chunks, strings.TrimSpace(p[:size]))
			start := size - overlap
			if start < 0 {
				start = 0
			}
			p = p[start:]
		}

		if current.Len()+len(p)+2 > size && current.Len() > 0 {
			tail := overlapTail(current.String(), overlap)
			flush()
			if tail != "" {
				current.WriteString(tail)
			}
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	flush()

	// The generation budget caps how many chunks are processed; trailing
	// content beyond the cap is dropped, matching the merge semantics of
	// preferring earlier chunks.
	if maxChunks > 0 && len(chunks) > maxChunks {
		chunks = chunks[:maxChunks]
	}
	return chunks
}

func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	var out []string
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}

// overlapTail returns the last overlap characters of s, aligned to a word
// boundary where possible.
func overlapTail(s string, overlap int) string {
	if overlap <= 0 || len(s) <= overlap {
		return ""
	}
	tail := s[len(s)-overlap:]
	if idx := strings.IndexAny(tail, " \n\t"); idx >= 0 && idx < len(tail)-1 {
		tail = tail[idx+1:]
	}
	return strings.TrimSpace(tail)
}
