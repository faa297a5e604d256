// Package docstore provides read-only access to the documents served by
// docuscribe. Stores return immutable documents; callers must not mutate
// the returned values.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jackzampolin/docuscribe/internal/defra"
	"github.com/jackzampolin/docuscribe/internal/types"
)

// ErrNotFound is returned when a document id is unknown to the store.
var ErrNotFound = errors.New("document not found")

// Store is the document source consumed by the HTTP endpoints.
type Store interface {
	// Get returns the document with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*types.Document, error)

	// List returns document summaries, most recently updated first.
	// A non-positive limit returns every document from offset on.
	List(ctx context.Context, limit, offset int) ([]types.Summary, error)

	// HealthCheck reports whether the store can serve requests.
	HealthCheck(ctx context.Context) error
}

// Watcher is implemented by stores that can follow changes to their backing
// data until ctx is cancelled.
type Watcher interface {
	Watch(ctx context.Context, debounce time.Duration) error
}

// Store types accepted by Open.
const (
	TypeFile  = "file"
	TypeDefra = "defra"
)

// Options selects and configures a store.
type Options struct {
	Type     string
	Path     string
	DefraURL string
	// ReadyTimeout bounds the wait for DefraDB at startup.
	ReadyTimeout time.Duration
}

// Open creates the store described by opts.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch strings.ToLower(opts.Type) {
	case "", TypeFile:
		return NewFileStore(opts.Path, logger)
	case TypeDefra:
		client := defra.NewClient(opts.DefraURL)
		if opts.ReadyTimeout > 0 {
			if err := client.WaitReady(ctx, opts.ReadyTimeout); err != nil {
				// /ready reports the outage; serving continues.
				logger.Warn("defradb not ready", "url", client.URL(), "error", err)
			}
		}
		return NewDefraStore(client), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", opts.Type)
	}
}

// sortSummaries orders by UpdatedAt descending, then name, then id.
func sortSummaries(s []types.Summary) {
	slices.SortFunc(s, func(a, b types.Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// window returns a copy of s[offset:offset+limit], clamped to s.
func window(s []types.Summary, limit, offset int) []types.Summary {
	offset = max(offset, 0)
	if offset >= len(s) {
		return []types.Summary{}
	}
	end := len(s)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return slices.Clone(s[offset:end])
}
