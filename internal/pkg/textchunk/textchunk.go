package textchunk

import "strings"

// separators in order of preference when choosing a break point.
var separators = []string{"\n\n", "\n", ". ", " "}

// Split cuts text into overlapping chunks of roughly size runes. Each cut
// prefers the last paragraph, line, sentence or word boundary in the window
// so chunks stay readable; consecutive chunks share overlap runes.
func Split(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); {
		end := start + size
		if end >= len(runes) {
			chunk := strings.TrimSpace(string(runes[start:]))
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := breakPoint(runes[start:end])
		if cut <= 0 {
			cut = size
		}
		chunk := strings.TrimSpace(string(runes[start : start+cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := start + cut - overlap
		if next <= start {
			next = start + cut
		}
		start = next
	}
	return chunks
}

// breakPoint returns the rune offset just past the best separator in the
// window, or 0 when no separator lands in its second half.
func breakPoint(window []rune) int {
	s := string(window)
	half := len(s) / 2
	for _, sep := range separators {
		idx := strings.LastIndex(s, sep)
		if idx >= half {
			return len([]rune(s[:idx+len(sep)]))
		}
	}
	return 0
}
