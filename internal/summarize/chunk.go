package summarize

import "strings"

// Window is a half-open range [Start, End) of word indexes.
type Window struct {
	Start int
	End   int
}

// Windows splits n words into windows of size words that advance by
// size-overlap words. The window that reaches n is the last one, so the
// windows cover [0, n) without gaps and consecutive windows share exactly
// overlap words. The last window may be shorter than size.
//
// Splitting is by word count, not sentence boundaries: a window may start or
// end mid-sentence. The overlap exists to give the model context across
// those cuts.
func Windows(n, size, overlap int) []Window {
	if n <= 0 || size <= 0 {
		return nil
	}
	stride := size - overlap
	if stride < 1 {
		stride = 1
	}
	var out []Window
	for start := 0; start < n; start += stride {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, Window{Start: start, End: end})
		if end == n {
			break
		}
	}
	return out
}

// Chunk splits text on whitespace and returns the words of each window
// joined by single spaces.
func Chunk(text string, size, overlap int) []string {
	words := strings.Fields(text)
	windows := Windows(len(words), size, overlap)
	chunks := make([]string, 0, len(windows))
	for _, w := range windows {
		chunks = append(chunks, strings.Join(words[w.Start:w.End], " "))
	}
	return chunks
}
