package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docuscribe/internal/api"
	"github.com/jackzampolin/docuscribe/internal/docstore"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the configured document store without a server",
	Long: `Inspect the configured document store directly.

These commands open the store the same way 'docuscribe serve' does, which
makes them useful for checking documents before serving them.

Examples:
  docuscribe store check   # Validate every document and report health
  docuscribe store list    # List documents, newest first`,
}

// StoreReport is the output of 'store check'.
type StoreReport struct {
	Type      string `json:"type"`
	Location  string `json:"location"`
	Health    string `json:"health"`
	Error     string `json:"error,omitempty"`
	Documents int    `json:"documents"`
}

var storeCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the store and report its health",
	Long: `Load the store and report its health and document count.

For the file store, invalid documents are logged to stderr and skipped, as
they are when serving.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, opts, err := openStore(cmd)
		if err != nil {
			return err
		}

		report := StoreReport{Type: opts.Type, Location: opts.Path, Health: "healthy"}
		if opts.Type == docstore.TypeDefra {
			report.Location = opts.DefraURL
		}
		if err := store.HealthCheck(ctx); err != nil {
			report.Health = "unhealthy"
			report.Error = err.Error()
			return api.Output(report)
		}

		docs, err := store.List(ctx, 0, 0)
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		report.Documents = len(docs)
		return api.Output(report)
	},
}

var (
	storeListLimit  int
	storeListOffset int
)

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents directly from the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		docs, err := store.List(cmd.Context(), storeListLimit, max(storeListOffset, 0))
		if err != nil {
			return err
		}
		return api.Output(map[string]any{"documents": docs})
	},
}

// openStore resolves home and config and opens the configured store with
// logs on stderr.
func openStore(cmd *cobra.Command) (docstore.Store, docstore.Options, error) {
	h, err := getHome()
	if err != nil {
		return nil, docstore.Options{}, err
	}
	mgr, err := loadConfig(h)
	if err != nil {
		return nil, docstore.Options{}, err
	}
	cfg := mgr.Get()

	path, err := h.StorePath(cfg.Store.Path)
	if err != nil {
		return nil, docstore.Options{}, err
	}
	opts := docstore.Options{
		Type:         cfg.Store.Type,
		Path:         path,
		DefraURL:     cfg.Store.DefraURL,
		ReadyTimeout: 5 * time.Second,
	}

	store, err := docstore.Open(cmd.Context(), opts, newLogger(os.Stderr, cfg.LogLevel))
	if err != nil {
		return nil, opts, fmt.Errorf("failed to open %s store: %w", opts.Type, err)
	}
	return store, opts, nil
}

func init() {
	storeListCmd.Flags().IntVar(&storeListLimit, "limit", 100, "Maximum documents to return (0 for all)")
	storeListCmd.Flags().IntVar(&storeListOffset, "offset", 0, "Documents to skip")

	storeCmd.AddCommand(storeCheckCmd)
	storeCmd.AddCommand(storeListCmd)
	rootCmd.AddCommand(storeCmd)
}
