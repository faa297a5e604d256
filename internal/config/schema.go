package config

// Config holds docuscribe configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Server     ServerConfig    `mapstructure:"server" json:"server" yaml:"server"`
	Store      StoreConfig     `mapstructure:"store" json:"store" yaml:"store"`
	Retrieval  RetrievalConfig `mapstructure:"retrieval" json:"retrieval" yaml:"retrieval"`
	Listing    ListingConfig   `mapstructure:"listing" json:"listing" yaml:"listing"`
	BackendURL string          `mapstructure:"backend_url" json:"backend_url" yaml:"backend_url" validate:"required,url"` // Used by the MCP tools
	LogLevel   string          `mapstructure:"log_level" json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `mapstructure:"host" json:"host" yaml:"host" validate:"required"`
	Port string `mapstructure:"port" json:"port" yaml:"port" validate:"required,numeric"`
}

// StoreConfig selects the document store.
type StoreConfig struct {
	Type     string `mapstructure:"type" json:"type" yaml:"type" validate:"oneof=file defra"`
	Path     string `mapstructure:"path" json:"path" yaml:"path"` // Empty means {home}/data
	DefraURL string `mapstructure:"defra_url" json:"defra_url" yaml:"defra_url" validate:"required,url"`
	Watch    bool   `mapstructure:"watch" json:"watch" yaml:"watch"` // Reload the file store on changes
}

// RetrievalConfig bounds single-range fetches.
type RetrievalConfig struct {
	DefaultMaxLength int `mapstructure:"default_max_length" json:"default_max_length" yaml:"default_max_length" validate:"min=1,ltefield=MaxLengthCap"`
	MaxLengthCap     int `mapstructure:"max_length_cap" json:"max_length_cap" yaml:"max_length_cap" validate:"min=1"`
}

// ListingConfig bounds list_all_docs pagination.
type ListingConfig struct {
	DefaultLimit int `mapstructure:"default_limit" json:"default_limit" yaml:"default_limit" validate:"min=1,ltefield=MaxLimit"`
	MaxLimit     int `mapstructure:"max_limit" json:"max_limit" yaml:"max_limit" validate:"min=1"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "9002",
		},
		Store: StoreConfig{
			Type:     "file",
			DefraURL: "http://localhost:9181",
			Watch:    true,
		},
		Retrieval: RetrievalConfig{
			DefaultMaxLength: 10000,
			MaxLengthCap:     50000,
		},
		Listing: ListingConfig{
			DefaultLimit: 100,
			MaxLimit:     1000,
		},
		BackendURL: "http://localhost:9002",
		LogLevel:   "info",
	}
}

// ClampLimit applies listing bounds: a missing limit means DefaultLimit,
// anything else is clamped to [1, MaxLimit].
func (l ListingConfig) ClampLimit(limit *int) int {
	if limit == nil {
		return l.DefaultLimit
	}
	return min(max(*limit, 1), l.MaxLimit)
}
