package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
)

func fastClient(url string) *Client {
	return NewClient(url, WithRetry(3, time.Millisecond))
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/list_all_docs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("unexpected limit: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"documents": [{"id": "a", "name": "A", "hashtags": []}]}`))
	}))
	defer server.Close()

	var out struct {
		Documents []struct {
			ID string `json:"id"`
		} `json:"documents"`
	}
	err := fastClient(server.URL+"/").Get(context.Background(), "/api/list_all_docs", url.Values{"limit": {"5"}}, &out)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(out.Documents) != 1 || out.Documents[0].ID != "a" {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestClient_Get_StatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCalls int32
		wantMsg   string
	}{
		{"not found is not retried", http.StatusNotFound, `{"error":"Not found"}`, 1, "server error (404): Not found"},
		{"bad request is not retried", http.StatusBadRequest, `{"error":"Invalid ranges"}`, 1, "server error (400): Invalid ranges"},
		{"plain body", http.StatusBadRequest, "nope\n", 1, "server error (400): nope"},
		{"server error is retried", http.StatusInternalServerError, `{"error":"boom"}`, 3, "server error (500): boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := fastClient(server.URL).Get(context.Background(), "/x", nil, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
			}
			if StatusCode(err) != tt.status {
				t.Errorf("StatusCode() = %d, want %d", StatusCode(err), tt.status)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestClient_Get_RecoversAfterServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	var out map[string]string
	if err := fastClient(server.URL).Get(context.Background(), "/health", nil, &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out["status"] != "ok" {
		t.Errorf("unexpected result: %v", out)
	}
}

func TestClient_Get_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	err := fastClient(addr).Get(context.Background(), "/health", nil, nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if StatusCode(err) != 0 {
		t.Errorf("transport error carries status %d", StatusCode(err))
	}
}

func TestClient_Get_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := fastClient(server.URL).Get(ctx, "/health", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestClient_Get_BadJSON(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	var out map[string]any
	err := fastClient(server.URL).Get(context.Background(), "/health", nil, &out)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
	if calls.Load() != 1 {
		t.Errorf("decode failures should not be retried, calls = %d", calls.Load())
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transport", errors.New("connection refused"), true},
		{"server error", &StatusError{Code: 503}, true},
		{"not found", &StatusError{Code: 404}, false},
		{"cancelled", context.Canceled, false},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), false},
		{"unrecoverable", retry.Unrecoverable(fmt.Errorf("%w: eof", ErrDecode)), false},
		{"unrecoverable server error", retry.Unrecoverable(&StatusError{Code: 502}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryable(tt.err); got != tt.want {
				t.Errorf("retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestOutputTo(t *testing.T) {
	data := struct {
		ID      string `json:"id"`
		HasMore bool   `json:"has_more"`
	}{ID: "doc-1", HasMore: true}

	var buf bytes.Buffer
	if err := OutputTo(&buf, OutputFormatYAML, data); err != nil {
		t.Fatalf("OutputTo(yaml) error = %v", err)
	}
	if got := buf.String(); got != "has_more: true\nid: doc-1\n" {
		t.Errorf("yaml output = %q", got)
	}

	buf.Reset()
	if err := OutputTo(&buf, OutputFormatJSON, data); err != nil {
		t.Fatalf("OutputTo(json) error = %v", err)
	}
	if !strings.Contains(buf.String(), `"has_more": true`) {
		t.Errorf("json output = %q", buf.String())
	}

	if err := OutputTo(&buf, OutputFormat("xml"), data); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSetOutputFormat(t *testing.T) {
	defer SetOutputFormat(string(DefaultOutput))

	SetOutputFormat("json")
	if GetOutputFormat() != OutputFormatJSON {
		t.Errorf("expected json, got %s", GetOutputFormat())
	}
	SetOutputFormat("toml")
	if GetOutputFormat() != DefaultOutput {
		t.Errorf("expected fallback to %s, got %s", DefaultOutput, GetOutputFormat())
	}
}
