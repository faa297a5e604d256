package retrieval

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackzampolin/docuscribe/internal/types"
)

func intPtr(v int) *int { return &v }

// testDocument returns a document whose words are "w0", "w1", ... "w{n-1}".
func testDocument(n int) *types.Document {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return &types.Document{ID: "doc-1", Title: "Test Doc", Words: words}
}

func TestRequest_Mode(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Mode
	}{
		{"no parameters", Request{}, ModeIndex},
		{"start only", Request{Start: intPtr(0)}, ModeSingle},
		{"max_length only", Request{MaxLength: intPtr(10)}, ModeSingle},
		{"ranges", Request{Ranges: "0-10"}, ModeMulti},
		{"ranges win over start", Request{Start: intPtr(5), MaxLength: intPtr(5), Ranges: "0-10"}, ModeMulti},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Mode())
		})
	}
}

func TestResolve_ScenarioA_FirstPage(t *testing.T) {
	resp, err := Resolve(testDocument(5000), Request{Start: intPtr(0), MaxLength: intPtr(100)})
	require.NoError(t, err)

	meta := resp.Meta.(SingleMeta)
	assert.Equal(t, 5000, meta.TotalWords)
	assert.Equal(t, 100, meta.End)
	assert.Equal(t, 100, meta.ReturnedWords)
	assert.True(t, meta.HasMore)
	require.NotNil(t, meta.NextStart)
	assert.Equal(t, 100, *meta.NextStart)

	require.NotNil(t, resp.Document.Content)
	words := strings.Fields(*resp.Document.Content)
	assert.Len(t, words, 100)
	assert.Equal(t, "w0", words[0])
	assert.Equal(t, "w99", words[99])
}

func TestResolve_ScenarioB_LastPage(t *testing.T) {
	resp, err := Resolve(testDocument(5000), Request{Start: intPtr(4950), MaxLength: intPtr(100)})
	require.NoError(t, err)

	meta := resp.Meta.(SingleMeta)
	assert.Equal(t, 5000, meta.End)
	assert.Equal(t, 50, meta.ReturnedWords)
	assert.False(t, meta.HasMore)
	assert.Nil(t, meta.NextStart)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "next_start")
}

func TestResolve_ScenarioC_MultiRange(t *testing.T) {
	resp, err := Resolve(testDocument(5000), Request{Ranges: "0-100,50-150,400-450"})
	require.NoError(t, err)

	meta := resp.Meta.(MultiMeta)
	assert.Equal(t, []Range{{0, 100}, {50, 150}, {400, 450}}, meta.RequestedRanges)
	assert.Equal(t, []Range{{0, 150}, {400, 450}}, meta.MergedRanges)
	assert.Equal(t, []Paragraph{{Index: 0, Start: 0, End: 150}, {Index: 1, Start: 150, End: 200}}, meta.Paragraphs)
	assert.Equal(t, 200, meta.TotalReturnedWords)
	assert.Equal(t, 5000, meta.TotalWords)

	parts := strings.Split(*resp.Document.Content, ParagraphSeparator)
	require.Len(t, parts, 2)
	assert.True(t, strings.HasPrefix(parts[1], "w400 "))
	assert.True(t, strings.HasSuffix(parts[1], " w449"))
}

func TestResolve_ScenarioD_InvalidRanges(t *testing.T) {
	resp, err := Resolve(testDocument(5000), Request{Ranges: "10-5"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrInvalidRange)

	// One bad pair invalidates the whole request.
	resp, err = Resolve(testDocument(5000), Request{Ranges: "0-10,abc,20-30"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestResolve_HugeRangeEndClamped(t *testing.T) {
	resp, err := Resolve(testDocument(100), Request{Ranges: "90-99999999999999999999"})
	require.NoError(t, err)

	meta := resp.Meta.(MultiMeta)
	assert.Equal(t, []Range{{90, 100}}, meta.MergedRanges)
	assert.Equal(t, 10, meta.TotalReturnedWords)
}

func TestResolve_ScenarioE_SynthesizedIndex(t *testing.T) {
	resp, err := Resolve(testDocument(5000), Request{})
	require.NoError(t, err)

	assert.True(t, resp.Document.Index)
	assert.Nil(t, resp.Document.Content)
	meta := resp.Meta.(IndexMeta)
	require.Len(t, meta.Pages, 1)
	assert.Equal(t, 0, meta.Pages[0].Start)
	assert.Equal(t, 5000, meta.Pages[0].End)
	assert.Equal(t, 5000, meta.Pages[0].Length)
}

func TestResolve_IndexEchoesStoredPages(t *testing.T) {
	doc := testDocument(300)
	doc.Pages = []types.Page{
		{Page: 1, Start: 0, End: 120, Length: 120, Title: "Intro"},
		{Page: 2, Start: 120, End: 300, Length: 180, Title: "Usage"},
	}

	resp, err := Resolve(doc, Request{})
	require.NoError(t, err)
	assert.Equal(t, doc.Pages, resp.Meta.(IndexMeta).Pages)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"document": {"id": "doc-1", "title": "Test Doc", "index": true},
		"meta": {"mode": "index", "pages": [
			{"page": 1, "start": 0, "end": 120, "length": 120, "title": "Intro"},
			{"page": 2, "start": 120, "end": 300, "length": 180, "title": "Usage"}
		]}
	}`, string(raw))
}

func TestResolve_SingleDefaultsAndClamping(t *testing.T) {
	doc := testDocument(60000)

	tests := []struct {
		name          string
		req           Request
		wantStart     int
		wantEnd       int
		wantMaxLength int
	}{
		{"default max_length", Request{Start: intPtr(0)}, 0, 10000, 10000},
		{"default start", Request{MaxLength: intPtr(5)}, 0, 5, 5},
		{"negative start", Request{Start: intPtr(-10), MaxLength: intPtr(5)}, 0, 5, 5},
		{"zero max_length", Request{Start: intPtr(10), MaxLength: intPtr(0)}, 10, 11, 1},
		{"negative max_length", Request{Start: intPtr(10), MaxLength: intPtr(-4)}, 10, 11, 1},
		{"max_length capped", Request{Start: intPtr(0), MaxLength: intPtr(999999)}, 0, 50000, 50000},
		{"start past end", Request{Start: intPtr(70000), MaxLength: intPtr(10)}, 60000, 60000, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Resolve(doc, tt.req)
			require.NoError(t, err)
			meta := resp.Meta.(SingleMeta)
			assert.Equal(t, tt.wantStart, meta.Start)
			assert.Equal(t, tt.wantEnd, meta.End)
			assert.Equal(t, tt.wantMaxLength, meta.MaxLength)
			assert.Equal(t, meta.End-meta.Start, meta.ReturnedWords)
			assert.LessOrEqual(t, meta.End, meta.TotalWords)
			assert.Equal(t, meta.End < meta.TotalWords, meta.HasMore)
		})
	}
}

func TestResolve_SingleStartPastEndIsEmpty(t *testing.T) {
	resp, err := Resolve(testDocument(10), Request{Start: intPtr(10)})
	require.NoError(t, err)

	meta := resp.Meta.(SingleMeta)
	assert.False(t, meta.HasMore)
	assert.Nil(t, meta.NextStart)
	assert.Equal(t, 0, meta.ReturnedWords)
	require.NotNil(t, resp.Document.Content)
	assert.Equal(t, "", *resp.Document.Content)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"content":""`)
}

func TestResolve_PaginationWalk(t *testing.T) {
	doc := testDocument(1234)
	var collected []string
	start := 0
	for {
		resp, err := Resolve(doc, Request{Start: intPtr(start), MaxLength: intPtr(100)})
		require.NoError(t, err)
		collected = append(collected, strings.Fields(*resp.Document.Content)...)

		meta := resp.Meta.(SingleMeta)
		if !meta.HasMore {
			assert.Nil(t, meta.NextStart)
			break
		}
		start = *meta.NextStart
	}
	assert.Equal(t, doc.Words, collected)
}

func TestResolve_MultiEmptyRangePolicy(t *testing.T) {
	doc := testDocument(100)

	t.Run("sole empty range retained", func(t *testing.T) {
		resp, err := Resolve(doc, Request{Ranges: "5-5"})
		require.NoError(t, err)
		meta := resp.Meta.(MultiMeta)
		assert.Equal(t, []Range{{5, 5}}, meta.MergedRanges)
		assert.Equal(t, []Paragraph{{Index: 0, Start: 0, End: 0}}, meta.Paragraphs)
		assert.Equal(t, 0, meta.TotalReturnedWords)
		assert.Equal(t, "", *resp.Document.Content)
	})

	t.Run("empty range dropped among others", func(t *testing.T) {
		resp, err := Resolve(doc, Request{Ranges: "5-5,10-20"})
		require.NoError(t, err)
		meta := resp.Meta.(MultiMeta)
		assert.Equal(t, []Range{{5, 5}, {10, 20}}, meta.RequestedRanges)
		assert.Equal(t, []Range{{10, 20}}, meta.MergedRanges)
		assert.Len(t, meta.Paragraphs, 1)
	})

	t.Run("out of bounds degrades to empty", func(t *testing.T) {
		resp, err := Resolve(doc, Request{Ranges: "90-500,200-300"})
		require.NoError(t, err)
		meta := resp.Meta.(MultiMeta)
		assert.Equal(t, []Range{{90, 500}, {200, 300}}, meta.RequestedRanges)
		assert.Equal(t, []Range{{90, 100}}, meta.MergedRanges)
		assert.Equal(t, 10, meta.TotalReturnedWords)
	})

	t.Run("all dropped serializes empty lists", func(t *testing.T) {
		resp, err := Resolve(doc, Request{Ranges: "500-600,700-800"})
		require.NoError(t, err)
		raw, err := json.Marshal(resp.Meta)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"merged_ranges":[]`)
		assert.Contains(t, string(raw), `"paragraphs":[]`)
	})
}

func TestResolve_ParagraphPartition(t *testing.T) {
	doc := testDocument(1000)
	resp, err := Resolve(doc, Request{Ranges: "700-720,0-5,3-9,100-130,719-740"})
	require.NoError(t, err)
	meta := resp.Meta.(MultiMeta)

	// Rebuild the content from the paragraph spans over the concatenated words.
	var concatenated []string
	for _, r := range meta.MergedRanges {
		concatenated = append(concatenated, doc.Words[r.Start:r.End]...)
	}
	units := make([]string, len(meta.Paragraphs))
	prevEnd := 0
	for i, p := range meta.Paragraphs {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, prevEnd, p.Start, "paragraphs must be contiguous")
		units[i] = strings.Join(concatenated[p.Start:p.End], " ")
		prevEnd = p.End
	}
	assert.Equal(t, len(concatenated), prevEnd)
	assert.Equal(t, *resp.Document.Content, strings.Join(units, ParagraphSeparator))
	assert.Equal(t, prevEnd, meta.TotalReturnedWords)
}

func TestResolve_OrderIndependent(t *testing.T) {
	doc := testDocument(1000)
	a, err := Resolve(doc, Request{Ranges: "400-450,0-100,50-150"})
	require.NoError(t, err)
	b, err := Resolve(doc, Request{Ranges: "50-150,400-450,0-100"})
	require.NoError(t, err)

	ma, mb := a.Meta.(MultiMeta), b.Meta.(MultiMeta)
	assert.Equal(t, ma.MergedRanges, mb.MergedRanges)
	assert.Equal(t, ma.Paragraphs, mb.Paragraphs)
	assert.Equal(t, *a.Document.Content, *b.Document.Content)
	assert.NotEqual(t, ma.RequestedRanges, mb.RequestedRanges)
}

func TestResolve_Idempotent(t *testing.T) {
	doc := testDocument(2000)
	requests := []Request{
		{},
		{Start: intPtr(10), MaxLength: intPtr(300)},
		{Ranges: "0-100,50-150,1900-2500"},
	}
	for _, req := range requests {
		first, err := Resolve(doc, req)
		require.NoError(t, err)
		second, err := Resolve(doc, req)
		require.NoError(t, err)

		rawFirst, err := json.Marshal(first)
		require.NoError(t, err)
		rawSecond, err := json.Marshal(second)
		require.NoError(t, err)
		assert.Equal(t, rawFirst, rawSecond)
	}
}

func TestResolve_Concurrent(t *testing.T) {
	doc := testDocument(5000)
	want, err := Resolve(doc, Request{Ranges: "0-100,50-150,400-450"})
	require.NoError(t, err)
	wantRaw, _ := json.Marshal(want)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Resolve(doc, Request{Ranges: "400-450,0-100,50-150"})
			if err != nil {
				errs <- err
				return
			}
			gotMeta := got.Meta.(MultiMeta)
			gotMeta.RequestedRanges = want.Meta.(MultiMeta).RequestedRanges
			got.Meta = gotMeta
			raw, _ := json.Marshal(got)
			if string(raw) != string(wantRaw) {
				errs <- errors.New("concurrent resolution diverged")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestResolve_NilDocument(t *testing.T) {
	_, err := Resolve(nil, Request{})
	assert.ErrorIs(t, err, ErrNilDocument)
}

func TestNewResolver_Limits(t *testing.T) {
	r := NewResolver(Limits{})
	assert.Equal(t, DefaultLimits(), r.Limits())

	r = NewResolver(Limits{DefaultMaxLength: 500, MaxLengthCap: 200})
	assert.Equal(t, Limits{DefaultMaxLength: 200, MaxLengthCap: 200}, r.Limits())

	resp, err := r.Resolve(testDocument(1000), Request{Start: intPtr(0), MaxLength: intPtr(900)})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Meta.(SingleMeta).End)
}
