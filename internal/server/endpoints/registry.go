package endpoints

import (
	"github.com/jackzampolin/docuscribe/internal/api"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	StoreType string
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{StoreType: cfg.StoreType},

		// Document endpoints
		&ListDocsEndpoint{},
		&FetchDocEndpoint{},

		// Observability
		&MetricsEndpoint{},
		&SwaggerEndpoint{},
		&SwaggerUIEndpoint{},
	}
}

// DocCommands returns the endpoints grouped under "docs" in the CLI.
func DocCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListDocsEndpoint{},
		&FetchDocEndpoint{},
	}
}
