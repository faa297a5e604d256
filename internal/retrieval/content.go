package retrieval

import "strings"

// ParagraphSeparator joins the text units of a multi-range result.
const ParagraphSeparator = "\n\n"

// Paragraph locates one materialized range inside the concatenated output.
// Start and End are word offsets within the returned content, not document
// offsets.
type Paragraph struct {
	Index int `json:"index"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of words in the paragraph.
func (p Paragraph) Len() int {
	return p.End - p.Start
}

// Materialize returns one space-joined text unit per range, in order.
func Materialize(idx WordIndex, ranges []Range) []string {
	units := make([]string, len(ranges))
	for i, r := range ranges {
		units[i] = idx.Text(r.Start, r.End)
	}
	return units
}

// Segment lays the ranges end to end and returns one paragraph per range.
// The first paragraph starts at 0; each next one starts where the previous
// ended.
func Segment(ranges []Range) []Paragraph {
	paragraphs := make([]Paragraph, len(ranges))
	offset := 0
	for i, r := range ranges {
		paragraphs[i] = Paragraph{Index: i, Start: offset, End: offset + r.Len()}
		offset += r.Len()
	}
	return paragraphs
}

// JoinParagraphs concatenates text units with ParagraphSeparator.
func JoinParagraphs(units []string) string {
	return strings.Join(units, ParagraphSeparator)
}
