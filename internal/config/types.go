package config

// AppConfig holds runtime startup configuration loaded from YAML plus
// environment overrides. It is constructed once at startup and injected;
// nothing in the call chain reads the environment directly.
type AppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"` // "development" | "production"
	DSN            string         `yaml:"dsn"` // MySQL DSN, wins over database parts
	Database       DatabaseConfig `yaml:"database"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	JWTSecret      string         `yaml:"jwt_secret"`
	AI             AIConfig       `yaml:"ai"`
}

// DatabaseConfig assembles a MySQL DSN from parts when dsn is not given.
type DatabaseConfig struct {
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	User     string            `yaml:"user"`
	Password string            `yaml:"password"`
	Name     string            `yaml:"name"`
	Charset  string            `yaml:"charset"`
	Params   map[string]string `yaml:"params"`
}

// AIConfig configures the analysis provider pool.
type AIConfig struct {
	Providers []AIProvider `yaml:"providers"`
	// ReviewModel pins code review to a provider/model; when nil the first
	// enabled provider and its default model are used.
	ReviewModel *AIModelAssignment `yaml:"review_model"`
	// RequestTimeoutSeconds bounds one outbound analysis call. Zero means
	// the built-in default. There are never retries.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// AIModelAssignment selects a provider (and optionally overrides its model).
type AIModelAssignment struct {
	ProviderID string `yaml:"provider_id"`
	Model      string `yaml:"model"`
}

// AIProvider describes one external analysis endpoint.
type AIProvider struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // gemini | openai | anthropic | openai-compatible
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}
