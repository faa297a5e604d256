package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackzampolin/docuscribe/internal/api"
	"github.com/jackzampolin/docuscribe/internal/config"
	"github.com/jackzampolin/docuscribe/internal/retrieval"
)

// backend records the query of every request and answers with handler.
type backend struct {
	mu      sync.Mutex
	queries []url.Values
	paths   []string
	handler http.HandlerFunc
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.queries = append(b.queries, r.URL.Query())
	b.paths = append(b.paths, r.URL.Path)
	b.mu.Unlock()
	b.handler(w, r)
}

func (b *backend) lastQuery() url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[len(b.queries)-1]
}

func (b *backend) lastPath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paths[len(b.paths)-1]
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

// connect starts the docuscribe MCP server against be and returns a client session.
func connect(t *testing.T, be *backend, opts ...Option) *mcp.ClientSession {
	t.Helper()

	httpSrv := httptest.NewServer(be)
	t.Cleanup(httpSrv.Close)

	client := api.NewClient(httpSrv.URL, api.WithRetry(2, time.Millisecond))
	srv := NewServer(client, "test", nil, opts...)

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := srv.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	mcpClient := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	session, err := mcpClient.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestListTools(t *testing.T) {
	session := connect(t, &backend{handler: jsonHandler(200, `{}`)})

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description)
	}
	assert.ElementsMatch(t, []string{ToolListDocs, ToolFetchDoc}, names)
}

func TestListDocs(t *testing.T) {
	docs := `{"documents":[{"id":"a","name":"Alpha","hashtags":["x"]}]}`

	tests := []struct {
		name       string
		args       map[string]any
		wantLimit  string
		wantOffset string
	}{
		{"defaults", map[string]any{}, "100", "0"},
		{"explicit", map[string]any{"limit": 50, "offset": 100}, "50", "100"},
		{"limit too small", map[string]any{"limit": 0}, "1", "0"},
		{"limit too large", map[string]any{"limit": 5000}, "1000", "0"},
		{"negative offset", map[string]any{"offset": -7}, "100", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := &backend{handler: jsonHandler(200, docs)}
			session := connect(t, be)

			out := callTool(t, session, ToolListDocs, tt.args)

			assert.Equal(t, "/api/list_all_docs", be.lastPath())
			assert.Equal(t, tt.wantLimit, be.lastQuery().Get("limit"))
			assert.Equal(t, tt.wantOffset, be.lastQuery().Get("offset"))

			require.Len(t, out["documents"], 1)
			req := out["_request"].(map[string]any)
			assert.Equal(t, tt.wantLimit, jsonNumber(req["limit"]))
			assert.Equal(t, tt.wantOffset, jsonNumber(req["offset"]))
		})
	}
}

func TestListDocs_BackendFailure(t *testing.T) {
	session := connect(t, &backend{handler: jsonHandler(http.StatusBadRequest, `{"error":"limit must be an integer"}`)})

	out := callTool(t, session, ToolListDocs, map[string]any{})
	assert.Equal(t, "list_all_docs failed", out["error"])
	assert.Equal(t, float64(400), out["status"])
}

func TestFetchDoc_ModeSelection(t *testing.T) {
	body := `{"document":{"id":"doc","title":"Doc","content":"a b"},"meta":{"mode":"single","has_more":true,"next_start":2}}`

	tests := []struct {
		name  string
		args  map[string]any
		query url.Values
	}{
		{
			name:  "index",
			args:  map[string]any{"doc_uid": "doc"},
			query: url.Values{},
		},
		{
			name:  "single defaults max length",
			args:  map[string]any{"doc_uid": "doc", "start": 20},
			query: url.Values{"start": {"20"}, "max_length": {"10000"}},
		},
		{
			name:  "single defaults start",
			args:  map[string]any{"doc_uid": "doc", "max_length": 500},
			query: url.Values{"start": {"0"}, "max_length": {"500"}},
		},
		{
			name:  "single clamps",
			args:  map[string]any{"doc_uid": "doc", "start": -5, "max_length": 999999},
			query: url.Values{"start": {"0"}, "max_length": {"50000"}},
		},
		{
			name:  "single clamps max length floor",
			args:  map[string]any{"doc_uid": "doc", "max_length": 0},
			query: url.Values{"start": {"0"}, "max_length": {"1"}},
		},
		{
			name:  "ranges win",
			args:  map[string]any{"doc_uid": "doc", "start": 3, "ranges": "0-10,20-30"},
			query: url.Values{"ranges": {"0-10,20-30"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := &backend{handler: jsonHandler(200, body)}
			session := connect(t, be)

			callTool(t, session, ToolFetchDoc, tt.args)
			assert.Equal(t, "/api/fetch_doc_content/doc", be.lastPath())
			assert.Equal(t, tt.query, be.lastQuery())
		})
	}
}

func TestConfiguredBounds(t *testing.T) {
	opts := []Option{
		WithListing(config.ListingConfig{DefaultLimit: 5, MaxLimit: 10}),
		WithLimits(retrieval.Limits{DefaultMaxLength: 200, MaxLengthCap: 500}),
	}

	t.Run("list", func(t *testing.T) {
		be := &backend{handler: jsonHandler(200, `{"documents":[]}`)}
		session := connect(t, be, opts...)

		callTool(t, session, ToolListDocs, map[string]any{})
		assert.Equal(t, "5", be.lastQuery().Get("limit"))

		callTool(t, session, ToolListDocs, map[string]any{"limit": 5000})
		assert.Equal(t, "10", be.lastQuery().Get("limit"))
	})

	t.Run("fetch", func(t *testing.T) {
		be := &backend{handler: jsonHandler(200, `{"document":{},"meta":{}}`)}
		session := connect(t, be, opts...)

		callTool(t, session, ToolFetchDoc, map[string]any{"doc_uid": "doc", "start": 0})
		assert.Equal(t, "200", be.lastQuery().Get("max_length"))

		callTool(t, session, ToolFetchDoc, map[string]any{"doc_uid": "doc", "max_length": 999999})
		assert.Equal(t, "500", be.lastQuery().Get("max_length"))
	})

	t.Run("descriptions", func(t *testing.T) {
		session := connect(t, &backend{handler: jsonHandler(200, `{}`)}, opts...)
		res, err := session.ListTools(context.Background(), nil)
		require.NoError(t, err)
		for _, tool := range res.Tools {
			switch tool.Name {
			case ToolListDocs:
				assert.Contains(t, tool.Description, "1..10 (default 5)")
			case ToolFetchDoc:
				assert.Contains(t, tool.Description, "defaults to 200")
				assert.Contains(t, tool.Description, "capped at 500")
			}
		}
	})

	t.Run("zero values keep defaults", func(t *testing.T) {
		be := &backend{handler: jsonHandler(200, `{"documents":[]}`)}
		session := connect(t, be, WithListing(config.ListingConfig{}), WithLimits(retrieval.Limits{}))

		callTool(t, session, ToolListDocs, map[string]any{"limit": 5000})
		assert.Equal(t, "1000", be.lastQuery().Get("limit"))
	})
}

func TestFetchDoc_ConvenienceKeys(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		body := `{"document":{"id":"doc","title":"Doc","content":"a b"},"meta":{"mode":"single","has_more":true,"next_start":2}}`
		session := connect(t, &backend{handler: jsonHandler(200, body)})

		out := callTool(t, session, ToolFetchDoc, map[string]any{"doc_uid": "doc", "start": 0, "max_length": 2})
		assert.Equal(t, true, out["has_more"])
		assert.Equal(t, float64(2), out["next_start"])
		assert.Equal(t, "a b", out["document"].(map[string]any)["content"])
		assert.Equal(t, "single", out["meta"].(map[string]any)["mode"])
	})

	t.Run("index has none", func(t *testing.T) {
		body := `{"document":{"id":"doc","title":"Doc","index":true},"meta":{"mode":"index","pages":[]}}`
		session := connect(t, &backend{handler: jsonHandler(200, body)})

		out := callTool(t, session, ToolFetchDoc, map[string]any{"doc_uid": "doc"})
		assert.NotContains(t, out, "has_more")
		assert.NotContains(t, out, "next_start")
		assert.Contains(t, out, "document")
		assert.Contains(t, out, "meta")
	})
}

func TestFetchDoc_Failures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantError  string
		wantStatus any
	}{
		{
			name:       "not found",
			handler:    jsonHandler(http.StatusNotFound, `{"error":"Not found"}`),
			wantError:  "fetch_doc_content failed",
			wantStatus: float64(404),
		},
		{
			name:       "invalid ranges",
			handler:    jsonHandler(http.StatusBadRequest, `{"error":"Invalid ranges"}`),
			wantError:  "fetch_doc_content failed",
			wantStatus: float64(400),
		},
		{
			name:       "server error after retries",
			handler:    jsonHandler(http.StatusInternalServerError, `{"error":"boom"}`),
			wantError:  "fetch_doc_content failed",
			wantStatus: float64(500),
		},
		{
			name:      "undecodable body",
			handler:   jsonHandler(200, `<html>`),
			wantError: "Failed to decode JSON from fetch_doc_content",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := connect(t, &backend{handler: tt.handler})
			out := callTool(t, session, ToolFetchDoc, map[string]any{"doc_uid": "doc", "ranges": "5-1"})
			assert.Equal(t, tt.wantError, out["error"])
			if tt.wantStatus != nil {
				assert.Equal(t, tt.wantStatus, out["status"])
			}
		})
	}
}

func TestFetchDoc_EscapesID(t *testing.T) {
	be := &backend{handler: jsonHandler(200, `{"document":{},"meta":{}}`)}
	session := connect(t, be)

	callTool(t, session, ToolFetchDoc, map[string]any{"doc_uid": "a b"})
	assert.Equal(t, "/api/fetch_doc_content/a b", be.lastPath())
}

func TestFetchDoc_MissingID(t *testing.T) {
	be := &backend{handler: jsonHandler(200, `{}`)}
	session := connect(t, be)

	out := callTool(t, session, ToolFetchDoc, map[string]any{"doc_uid": ""})
	assert.Equal(t, "doc_uid is required", out["error"])
	assert.Empty(t, be.paths)
}

func jsonNumber(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
