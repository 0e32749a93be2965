package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// Access token lifetime in minutes.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// Refresh token lifetime in minutes. Must outlive the access token.
	RefreshTokenLifetimeMinutes int `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,gtfield=TokenLifetimeMinutes"`
}

// GenerationConfig contains flashcard generation settings. The API key is
// optional; when absent the generation endpoints are disabled rather than
// failing startup.
type GenerationConfig struct {
	GeminiAPIKey    string `mapstructure:"gemini_api_key"`
	ModelName       string `mapstructure:"model_name"`
	MaxCardsPerNote int    `mapstructure:"max_cards_per_note" validate:"omitempty,gt=0,lte=50"`
}

// Enabled reports whether flashcard generation is configured.
func (g GenerationConfig) Enabled() bool {
	return g.GeminiAPIKey != ""
}
