// Package mcpserver exposes the docuscribe backend as MCP tools.
//
// The tools are thin: they normalize arguments the same way the backend
// does, forward the call over HTTP through api.Client and return the
// backend JSON as text content. Backend failures are reported inside the
// tool result rather than as protocol errors so that the calling model
// can read them.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jackzampolin/docuscribe/internal/api"
	"github.com/jackzampolin/docuscribe/internal/config"
	"github.com/jackzampolin/docuscribe/internal/retrieval"
)

// ServerName is the implementation name announced to MCP clients.
const ServerName = "Docuscribe"

// Server wraps an MCP server whose tools call the docuscribe backend.
type Server struct {
	mcp      *mcp.Server
	backend  *api.Client
	logger   *slog.Logger
	listing  config.ListingConfig
	resolver *retrieval.Resolver
}

// Option configures a Server.
type Option func(*Server)

// WithListing sets the limit bounds applied to list_all_docs. A config
// without a positive MaxLimit is ignored.
func WithListing(l config.ListingConfig) Option {
	return func(s *Server) {
		if l.MaxLimit > 0 {
			l.DefaultLimit = min(max(l.DefaultLimit, 1), l.MaxLimit)
			s.listing = l
		}
	}
}

// WithLimits sets the max_length default and cap applied to
// fetch_doc_content. Zero values use the defaults.
func WithLimits(l retrieval.Limits) Option {
	return func(s *Server) {
		s.resolver = retrieval.NewResolver(l)
	}
}

// NewServer creates a server with list_all_docs and fetch_doc_content
// registered against backend.
func NewServer(backend *api.Client, version string, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if version == "" {
		version = "dev"
	}
	s := &Server{
		mcp:      mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil),
		backend:  backend,
		logger:   logger.With("component", "mcp"),
		listing:  config.DefaultConfig().Listing,
		resolver: retrieval.NewResolver(retrieval.DefaultLimits()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// MCP returns the underlying server, for callers that need their own transport.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio", "backend", s.backend.BaseURL())
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
