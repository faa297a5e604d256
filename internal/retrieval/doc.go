// Package retrieval resolves word-range requests against tokenized documents.
//
// A request selects one of three modes:
//
//   - index: no parameters; returns the document's page structure, or a single
//     synthesized page spanning the whole document.
//   - single: start/max_length; returns one contiguous slice plus has_more and
//     next_start hints for paging through the document.
//   - multi: a "start-end,start-end" list; ranges are clamped, merged and
//     sorted, then returned as paragraphs separated by a blank line.
//
// Ranges are half-open word offsets. Numeric edge cases (negative start,
// out-of-bounds ends, oversized max_length) are clamped rather than rejected;
// only malformed range syntax fails, with an *InvalidRangeError.
//
// Resolution is a pure function of the document and the request. A Resolver
// holds no mutable state and is safe for concurrent use.
package retrieval
