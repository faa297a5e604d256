package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jackzampolin/docuscribe/internal/api"
	"github.com/jackzampolin/docuscribe/internal/retrieval"
)

const (
	ToolListDocs = "list_all_docs"
	ToolFetchDoc = "fetch_doc_content"
	listDocsPath = "/api/list_all_docs"
	fetchDocPath = "/api/fetch_doc_content/"
)

const listDocsDescription = `Page through the catalog of available documents.

Returns {"documents": [{"id", "name", "hashtags"}]} most recently updated first,
plus "_request" echoing the normalized limit and offset.

Call this once to discover document ids, then use an id as doc_uid for
fetch_doc_content. Ids are stable, so keep them instead of listing again.
limit is clamped to 1..%d (default %d); offset is clamped to >= 0.`

const fetchDocDescription = `Read a document by word offset in one of three modes.

- ranges set ("0-120,400-550"): multi-range mode. Ranges are half-open word
  offsets; overlapping or adjacent ranges are merged and returned as paragraphs.
- start and/or max_length set: single-range mode. max_length defaults to %d
  and is capped at %d. Follow next_start while has_more is true.
- neither: index mode, returning the page map of the document.

Start with index mode to locate sections, then read them with single or
multi-range calls. Avoid refetching spans you already have.`

// ListDocsArgs are the list_all_docs tool arguments.
type ListDocsArgs struct {
	Limit  *int `json:"limit,omitempty" jsonschema:"maximum number of documents to return"`
	Offset *int `json:"offset,omitempty" jsonschema:"number of documents to skip (default 0)"`
}

// FetchDocArgs are the fetch_doc_content tool arguments.
type FetchDocArgs struct {
	DocUID    string `json:"doc_uid" jsonschema:"stable document id from list_all_docs"`
	Start     *int   `json:"start,omitempty" jsonschema:"first word offset for single-range mode"`
	MaxLength *int   `json:"max_length,omitempty" jsonschema:"words to return in single-range mode"`
	Ranges    string `json:"ranges,omitempty" jsonschema:"comma-separated start-end word ranges for multi-range mode"`
}

func (s *Server) registerTools() {
	limits := s.resolver.Limits()

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolListDocs,
		Description: fmt.Sprintf(listDocsDescription, s.listing.MaxLimit, s.listing.DefaultLimit),
	}, s.listDocs)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolFetchDoc,
		Description: fmt.Sprintf(fetchDocDescription, limits.DefaultMaxLength, limits.MaxLengthCap),
	}, s.fetchDoc)
}

func (s *Server) listDocs(ctx context.Context, _ *mcp.CallToolRequest, args ListDocsArgs) (*mcp.CallToolResult, any, error) {
	limit := s.listing.ClampLimit(args.Limit)
	offset := 0
	if args.Offset != nil {
		offset = max(*args.Offset, 0)
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var data map[string]any
	if err := s.backend.Get(ctx, listDocsPath, q, &data); err != nil {
		return s.failure(ToolListDocs, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	data["_request"] = map[string]int{"limit": limit, "offset": offset}
	return textResult(data)
}

func (s *Server) fetchDoc(ctx context.Context, _ *mcp.CallToolRequest, args FetchDocArgs) (*mcp.CallToolResult, any, error) {
	if args.DocUID == "" {
		return textResult(map[string]any{"error": "doc_uid is required"})
	}

	q := s.fetchQuery(args)
	var data struct {
		Document map[string]any `json:"document"`
		Meta     map[string]any `json:"meta"`
	}
	if err := s.backend.Get(ctx, fetchDocPath+url.PathEscape(args.DocUID), q, &data); err != nil {
		return s.failure(ToolFetchDoc, err)
	}

	result := map[string]any{
		"document": orEmpty(data.Document),
		"meta":     orEmpty(data.Meta),
	}
	if v, ok := data.Meta["has_more"]; ok {
		result["has_more"] = v
	}
	if v, ok := data.Meta["next_start"]; ok {
		result["next_start"] = v
	}
	return textResult(result)
}

// fetchQuery selects the mode and clamps single-range numbers before the
// backend sees them. Multi-range strings are forwarded untouched.
func (s *Server) fetchQuery(args FetchDocArgs) url.Values {
	req := retrieval.Request{Start: args.Start, MaxLength: args.MaxLength, Ranges: args.Ranges}
	q := url.Values{}
	switch req.Mode() {
	case retrieval.ModeMulti:
		q.Set("ranges", args.Ranges)
	case retrieval.ModeSingle:
		start := 0
		if args.Start != nil {
			start = max(*args.Start, 0)
		}
		q.Set("start", strconv.Itoa(start))
		q.Set("max_length", strconv.Itoa(s.resolver.ClampMaxLength(args.MaxLength)))
	}
	return q
}

func (s *Server) failure(tool string, err error) (*mcp.CallToolResult, any, error) {
	s.logger.Warn("backend call failed", "tool", tool, "error", err)

	if errors.Is(err, api.ErrDecode) {
		return textResult(map[string]any{"error": fmt.Sprintf("Failed to decode JSON from %s", tool)})
	}
	body := map[string]any{"error": tool + " failed"}
	if code := api.StatusCode(err); code != 0 {
		body["status"] = code
	} else {
		body["detail"] = err.Error()
	}
	return textResult(body)
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}, nil, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
