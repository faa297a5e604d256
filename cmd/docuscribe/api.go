package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/docuscribe/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Docuscribe server via HTTP.

These commands require a running server (docuscribe serve).
Use --server to specify a custom server URL.

Examples:
  docuscribe api health                          # Check server health
  docuscribe api docs list                       # List documents
  docuscribe api docs fetch <id> --start 0       # Read the first words`,
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Document commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:9002", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerEndpoint{}).Command(getServerURL))

	// Documents as subcommand group
	for _, ep := range endpoints.DocCommands() {
		docsCmd.AddCommand(ep.Command(getServerURL))
	}

	apiCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(apiCmd)
}
