package retrieval

import "strings"

// WordIndex is a read-only, 0-based view over a document's words.
type WordIndex struct {
	words []string
}

// NewWordIndex wraps words without copying them. The caller must not mutate
// the slice while the index is in use.
func NewWordIndex(words []string) WordIndex {
	return WordIndex{words: words}
}

// Len returns the number of words.
func (w WordIndex) Len() int {
	return len(w.words)
}

// Slice returns the words in [start, end).
// Callers must guarantee 0 <= start <= end <= Len().
func (w WordIndex) Slice(start, end int) []string {
	return w.words[start:end:end]
}

// Text returns the words in [start, end) joined by single spaces.
func (w WordIndex) Text(start, end int) string {
	return strings.Join(w.Slice(start, end), " ")
}
