package retrieval

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidRange is matched by every *InvalidRangeError via errors.Is.
var ErrInvalidRange = errors.New("invalid range")

// InvalidRangeError reports a malformed token in a multi-range request.
type InvalidRangeError struct {
	Token  string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range %q: %s", e.Token, e.Reason)
}

// Is reports whether target is ErrInvalidRange.
func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// Range is a half-open interval [Start, End) of word offsets.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of words covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Empty reports whether the range covers no words.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

// Clamp caps both bounds to [0, total].
func (r Range) Clamp(total int) Range {
	return Range{
		Start: min(max(r.Start, 0), total),
		End:   min(max(r.End, r.Start, 0), total),
	}
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// ParseRanges parses a comma-separated list of "start-end" pairs.
// The result preserves input order. A single malformed pair fails the whole
// list; nothing is partially returned.
func ParseRanges(s string) ([]Range, error) {
	tokens := strings.Split(s, ",")
	out := make([]Range, 0, len(tokens))
	for _, tok := range tokens {
		r, err := parseRange(strings.TrimSpace(tok))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseRange(tok string) (Range, error) {
	if tok == "" {
		return Range{}, &InvalidRangeError{Token: tok, Reason: "empty range"}
	}
	startStr, endStr, ok := strings.Cut(tok, "-")
	if !ok {
		return Range{}, &InvalidRangeError{Token: tok, Reason: "expected start-end"}
	}
	start, err := parseOffset(startStr)
	if err != nil {
		return Range{}, &InvalidRangeError{Token: tok, Reason: "start: " + err.Error()}
	}
	end, err := parseOffset(endStr)
	if err != nil {
		return Range{}, &InvalidRangeError{Token: tok, Reason: "end: " + err.Error()}
	}
	if start > end {
		return Range{}, &InvalidRangeError{Token: tok, Reason: "start is greater than end"}
	}
	return Range{Start: start, End: end}, nil
}

// parseOffset accepts only unsigned decimal integers. Values too large for
// an int saturate at math.MaxInt and are clamped to the document later.
func parseOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("missing number")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%q is not a word offset", s)
		}
	}
	n, err := strconv.Atoi(s)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%q is not a word offset", s)
	}
	return n, nil
}

// Normalize clamps requested ranges to [0, total], sorts them by start (then
// end) and merges overlapping or adjacent ones. The input slice is not
// modified. Zero-length ranges survive only when exactly one range was
// requested.
func Normalize(requested []Range, total int) []Range {
	clamped := make([]Range, len(requested))
	for i, r := range requested {
		clamped[i] = r.Clamp(total)
	}
	slices.SortFunc(clamped, func(a, b Range) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})

	merged := make([]Range, 0, len(clamped))
	for _, r := range clamped {
		if n := len(merged); n > 0 && r.Start <= merged[n-1].End {
			merged[n-1].End = max(merged[n-1].End, r.End)
			continue
		}
		merged = append(merged, r)
	}

	if len(requested) > 1 {
		merged = slices.DeleteFunc(merged, Range.Empty)
	}
	return merged
}

// SingleRange computes the slice for single-range mode. start is clamped to
// [0, total]; maxLength must already be within limits.
func SingleRange(start, maxLength, total int) Range {
	start = min(max(start, 0), total)
	return Range{Start: start, End: min(start+maxLength, total)}
}
