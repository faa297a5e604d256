// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/docuscribe/internal/config"
	"github.com/jackzampolin/docuscribe/internal/docstore"
	"github.com/jackzampolin/docuscribe/internal/home"
	"github.com/jackzampolin/docuscribe/internal/metrics"
	"github.com/jackzampolin/docuscribe/internal/retrieval"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
// A Services value is never mutated once attached; config reloads
// attach a fresh copy.
type Services struct {
	Store    docstore.Store
	Resolver *retrieval.Resolver
	Listing  config.ListingConfig
	Metrics  *metrics.Recorder
	Logger   *slog.Logger
	Home     *home.Dir
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// StoreFrom extracts the document store from context.
func StoreFrom(ctx context.Context) docstore.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Store
	}
	return nil
}

// ResolverFrom extracts the range resolver from context, falling back to
// one with default limits.
func ResolverFrom(ctx context.Context) *retrieval.Resolver {
	if s := ServicesFrom(ctx); s != nil && s.Resolver != nil {
		return s.Resolver
	}
	return retrieval.NewResolver(retrieval.DefaultLimits())
}

// ListingFrom extracts the listing bounds from context.
func ListingFrom(ctx context.Context) config.ListingConfig {
	if s := ServicesFrom(ctx); s != nil && s.Listing.MaxLimit > 0 {
		return s.Listing
	}
	return config.DefaultConfig().Listing
}

// MetricsFrom extracts the metrics recorder from context.
// A nil recorder is safe to use.
func MetricsFrom(ctx context.Context) *metrics.Recorder {
	if s := ServicesFrom(ctx); s != nil {
		return s.Metrics
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
