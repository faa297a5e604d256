package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docuscribe/internal/api"
	"github.com/jackzampolin/docuscribe/internal/mcpserver"
	"github.com/jackzampolin/docuscribe/internal/retrieval"
	"github.com/jackzampolin/docuscribe/version"
)

var mcpBackendURL string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP tool server over stdio",
	Long: `Run an MCP server named "Docuscribe" on stdin/stdout.

The server exposes two tools, list_all_docs and fetch_doc_content, that call
a running docuscribe backend. The backend URL comes from backend_url in the
config file, DOCUSCRIBE_BACKEND_URL or SERVER_BACKEND_URL, and defaults to
http://localhost:9002. Logs go to stderr.

Examples:
  docuscribe mcp
  docuscribe mcp --backend http://docs.internal:9002`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		mgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		logger := newLogger(os.Stderr, cfg.LogLevel)

		backend := cfg.BackendURL
		if cmd.Flags().Changed("backend") {
			backend = mcpBackendURL
		}

		srv := mcpserver.NewServer(api.NewClient(backend), version.GitRelease, logger,
			mcpserver.WithListing(cfg.Listing),
			mcpserver.WithLimits(retrieval.Limits{
				DefaultMaxLength: cfg.Retrieval.DefaultMaxLength,
				MaxLengthCap:     cfg.Retrieval.MaxLengthCap,
			}),
		)
		return srv.Run(cmd.Context())
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpBackendURL, "backend", "", "Backend URL (overrides backend_url)")

	rootCmd.AddCommand(mcpCmd)
}
