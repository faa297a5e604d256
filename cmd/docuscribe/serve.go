package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docuscribe/internal/docstore"
	"github.com/jackzampolin/docuscribe/internal/retrieval"
	"github.com/jackzampolin/docuscribe/internal/server"
)

var (
	serveHost string
	servePort string
)

// defraReadyTimeout bounds the wait for DefraDB at startup.
const defraReadyTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Docuscribe HTTP server",
	Long: `Start the Docuscribe HTTP server.

Documents are read from the configured store. The file store loads .json,
.yaml and .yml documents from store.path (default ~/.docuscribe/data) and
reloads them when files change. The defra store reads the Document
collection from DefraDB at store.defra_url.

Retrieval limits are reloaded when the config file changes.

The server provides:
  - /health                       - Liveness check
  - /ready                        - Readiness check (includes the store)
  - /api/list_all_docs            - Document catalog
  - /api/fetch_doc_content/{id}   - Index, single-range and multi-range reads
  - /metrics                      - Prometheus metrics
  - /swagger.json, /swagger       - API documentation

Examples:
  docuscribe serve                    # Start on 127.0.0.1:9002
  docuscribe serve --port 3000        # Start on custom port
  docuscribe serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := getHome()
		if err != nil {
			return err
		}

		mgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		logger := newLogger(os.Stdout, cfg.LogLevel)
		if used := mgr.ConfigFileUsed(); used != "" {
			logger.Info("loaded config", "file", used)
			mgr.OnError(func(err error) {
				logger.Error("config reload rejected", "error", err)
			})
			mgr.WatchConfig()
		}

		host, port := cfg.Server.Host, cfg.Server.Port
		if cmd.Flags().Changed("host") {
			host = serveHost
		}
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		storePath, err := h.StorePath(cfg.Store.Path)
		if err != nil {
			return err
		}
		if cfg.Store.Type == docstore.TypeFile {
			if err := os.MkdirAll(storePath, 0o755); err != nil {
				return err
			}
		}

		srv, err := server.New(server.Config{
			Host: host,
			Port: port,
			StoreOptions: docstore.Options{
				Type:         cfg.Store.Type,
				Path:         storePath,
				DefraURL:     cfg.Store.DefraURL,
				ReadyTimeout: defraReadyTimeout,
			},
			Watch: cfg.Store.Watch,
			Limits: retrieval.Limits{
				DefaultMaxLength: cfg.Retrieval.DefaultMaxLength,
				MaxLengthCap:     cfg.Retrieval.MaxLengthCap,
			},
			Listing:       cfg.Listing,
			ConfigManager: mgr,
			Home:          h,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to (overrides server.host)")
	serveCmd.Flags().StringVar(&servePort, "port", "9002", "Port to listen on (overrides server.port)")

	rootCmd.AddCommand(serveCmd)
}
