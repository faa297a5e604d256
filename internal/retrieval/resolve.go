package retrieval

import (
	"errors"
	"slices"

	"github.com/jackzampolin/docuscribe/internal/types"
)

// Mode is the addressing mode of a request.
type Mode string

const (
	ModeIndex  Mode = "index"
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

const (
	// DefaultMaxLength is the single-range length used when none is given.
	DefaultMaxLength = 10000
	// MaxLengthCap is the largest single-range length ever returned.
	MaxLengthCap = 50000
)

// ErrNilDocument is returned when Resolve is called without a document.
var ErrNilDocument = errors.New("nil document")

// Request carries the raw, optional parameters of a fetch.
// Nil pointers and an empty Ranges string mean "not supplied".
type Request struct {
	Start     *int
	MaxLength *int
	Ranges    string
}

// Mode selects the addressing mode. Ranges wins over start/max_length.
func (r Request) Mode() Mode {
	switch {
	case r.Ranges != "":
		return ModeMulti
	case r.Start != nil || r.MaxLength != nil:
		return ModeSingle
	default:
		return ModeIndex
	}
}

// Limits bounds single-range requests.
type Limits struct {
	DefaultMaxLength int
	MaxLengthCap     int
}

// DefaultLimits returns the standard limits.
func DefaultLimits() Limits {
	return Limits{DefaultMaxLength: DefaultMaxLength, MaxLengthCap: MaxLengthCap}
}

// Response is the serialized result of a resolution.
type Response struct {
	Document DocumentView `json:"document"`
	Meta     Meta         `json:"meta"`
}

// DocumentView is the document part of a response. Content is nil in index
// mode so that an empty slice still serializes as "".
type DocumentView struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Content *string `json:"content,omitempty"`
	Index   bool    `json:"index,omitempty"`
}

// Meta is implemented by IndexMeta, SingleMeta and MultiMeta.
type Meta interface {
	ResponseMode() Mode
}

// IndexMeta describes a document's structure.
type IndexMeta struct {
	Mode  Mode         `json:"mode"`
	Pages []types.Page `json:"pages"`
}

func (IndexMeta) ResponseMode() Mode { return ModeIndex }

// SingleMeta carries pagination for a contiguous slice.
type SingleMeta struct {
	Mode          Mode `json:"mode"`
	TotalWords    int  `json:"total_words"`
	ReturnedWords int  `json:"returned_words"`
	Start         int  `json:"start"`
	MaxLength     int  `json:"max_length"`
	End           int  `json:"end"`
	HasMore       bool `json:"has_more"`
	NextStart     *int `json:"next_start,omitempty"`
}

func (SingleMeta) ResponseMode() Mode { return ModeSingle }

// MultiMeta reports both the ranges as requested and as returned, so callers
// can tell when clamping or merging changed their request.
type MultiMeta struct {
	Mode               Mode        `json:"mode"`
	TotalWords         int         `json:"total_words"`
	RequestedRanges    []Range     `json:"requested_ranges"`
	MergedRanges       []Range     `json:"merged_ranges"`
	Paragraphs         []Paragraph `json:"paragraphs"`
	TotalReturnedWords int         `json:"total_returned_words"`
}

func (MultiMeta) ResponseMode() Mode { return ModeMulti }

// Resolver resolves requests under fixed limits. It is immutable and safe
// for concurrent use.
type Resolver struct {
	limits Limits
}

// NewResolver creates a Resolver. Non-positive limits fall back to the
// defaults, and the default length never exceeds the cap.
func NewResolver(limits Limits) *Resolver {
	if limits.MaxLengthCap <= 0 {
		limits.MaxLengthCap = MaxLengthCap
	}
	if limits.DefaultMaxLength <= 0 {
		limits.DefaultMaxLength = DefaultMaxLength
	}
	limits.DefaultMaxLength = min(limits.DefaultMaxLength, limits.MaxLengthCap)
	return &Resolver{limits: limits}
}

// Limits returns the effective limits.
func (r *Resolver) Limits() Limits {
	return r.limits
}

var defaultResolver = NewResolver(DefaultLimits())

// Resolve resolves req against doc with the default limits.
func Resolve(doc *types.Document, req Request) (*Response, error) {
	return defaultResolver.Resolve(doc, req)
}

// Resolve computes the response for req. The only error besides
// ErrNilDocument is an *InvalidRangeError for malformed ranges.
func (r *Resolver) Resolve(doc *types.Document, req Request) (*Response, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	idx := NewWordIndex(doc.Words)

	switch req.Mode() {
	case ModeMulti:
		return r.resolveMulti(doc, idx, req.Ranges)
	case ModeSingle:
		return r.resolveSingle(doc, idx, req), nil
	default:
		return resolveIndex(doc, idx), nil
	}
}

// ClampMaxLength applies the default and the [1, cap] bounds.
func (r *Resolver) ClampMaxLength(maxLength *int) int {
	if maxLength == nil {
		return r.limits.DefaultMaxLength
	}
	return min(max(*maxLength, 1), r.limits.MaxLengthCap)
}

func resolveIndex(doc *types.Document, idx WordIndex) *Response {
	pages := slices.Clone(doc.Pages)
	if len(pages) == 0 {
		total := idx.Len()
		pages = []types.Page{{Page: 1, Start: 0, End: total, Length: total, Title: doc.Title}}
	}
	return &Response{
		Document: DocumentView{ID: doc.ID, Title: doc.Title, Index: true},
		Meta:     IndexMeta{Mode: ModeIndex, Pages: pages},
	}
}

func (r *Resolver) resolveSingle(doc *types.Document, idx WordIndex, req Request) *Response {
	start := 0
	if req.Start != nil {
		start = *req.Start
	}
	maxLength := r.ClampMaxLength(req.MaxLength)
	total := idx.Len()

	span := SingleRange(start, maxLength, total)
	content := idx.Text(span.Start, span.End)

	return &Response{
		Document: DocumentView{ID: doc.ID, Title: doc.Title, Content: &content},
		Meta:     paginate(span, maxLength, total),
	}
}

func paginate(span Range, maxLength, total int) SingleMeta {
	meta := SingleMeta{
		Mode:          ModeSingle,
		TotalWords:    total,
		ReturnedWords: span.Len(),
		Start:         span.Start,
		MaxLength:     maxLength,
		End:           span.End,
		HasMore:       span.End < total,
	}
	if meta.HasMore {
		next := span.End
		meta.NextStart = &next
	}
	return meta
}

func (r *Resolver) resolveMulti(doc *types.Document, idx WordIndex, raw string) (*Response, error) {
	requested, err := ParseRanges(raw)
	if err != nil {
		return nil, err
	}
	total := idx.Len()
	merged := Normalize(requested, total)
	paragraphs := Segment(merged)
	content := JoinParagraphs(Materialize(idx, merged))

	returned := 0
	for _, p := range paragraphs {
		returned += p.Len()
	}

	return &Response{
		Document: DocumentView{ID: doc.ID, Title: doc.Title, Content: &content},
		Meta: MultiMeta{
			Mode:               ModeMulti,
			TotalWords:         total,
			RequestedRanges:    requested,
			MergedRanges:       merged,
			Paragraphs:         paragraphs,
			TotalReturnedWords: returned,
		},
	}, nil
}

// ReturnedWords reports how many words of content the response carries.
func (r *Response) ReturnedWords() int {
	switch m := r.Meta.(type) {
	case SingleMeta:
		return m.ReturnedWords
	case MultiMeta:
		return m.TotalReturnedWords
	default:
		return 0
	}
}
