package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort      = 5000
	defaultEnv       = "development"
	defaultDBHost    = "127.0.0.1"
	defaultDBPort    = 3306
	defaultDBUser    = "root"
	defaultDBName    = "codelens"
	defaultDBCharset = "utf8mb4"
	defaultJWTSecret = "codelens-secret-change-me"
	geminiProviderID = "gemini"
)

// Load reads the YAML config file (if it exists), applies environment
// overrides, and fills defaults. A missing file is not an error: the result
// is a pure default+env configuration.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	if path == "" {
		path = DefaultConfigPath
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	normalize(cfg)
	return cfg, nil
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "development") || c.Env == ""
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("ENV")); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_DSN")); v != "" {
		cfg.DSN = v
	} else if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("JWT_SECRET")); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		applyGeminiKey(cfg, v)
	}
}

// applyGeminiKey injects or updates a gemini provider from the legacy
// GEMINI_API_KEY environment variable so a bare deployment still analyzes.
func applyGeminiKey(cfg *AppConfig, key string) {
	for i := range cfg.AI.Providers {
		if strings.EqualFold(cfg.AI.Providers[i].Type, "gemini") {
			if cfg.AI.Providers[i].APIKey == "" {
				cfg.AI.Providers[i].APIKey = key
			}
			return
		}
	}
	cfg.AI.Providers = append(cfg.AI.Providers, AIProvider{
		ID:      geminiProviderID,
		Name:    "Google Gemini",
		Type:    "gemini",
		APIKey:  key,
		Enabled: true,
	})
}

func normalize(cfg *AppConfig) {
	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = defaultEnv
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		cfg.JWTSecret = defaultJWTSecret
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		cfg.DSN = buildDSN(cfg.Database)
	}
}

// buildDSN assembles a MySQL DSN from parts.
func buildDSN(db DatabaseConfig) string {
	host := db.Host
	if host == "" {
		host = defaultDBHost
	}
	port := db.Port
	if port == 0 {
		port = defaultDBPort
	}
	user := db.User
	if user == "" {
		user = defaultDBUser
	}
	name := db.Name
	if name == "" {
		name = defaultDBName
	}
	charset := db.Charset
	if charset == "" {
		charset = defaultDBCharset
	}

	params := []string{
		"charset=" + charset,
		"parseTime=True",
		"loc=Local",
	}
	extra := make([]string, 0, len(db.Params))
	for k, v := range db.Params {
		k = strings.TrimSpace(k)
		if k == "" || k == "charset" || k == "parseTime" || k == "loc" {
			continue
		}
		extra = append(extra, k+"="+v)
	}
	sort.Strings(extra)
	params = append(params, extra...)

	cred := user
	if db.Password != "" {
		cred += ":" + db.Password
	}
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?%s", cred, host, port, name, strings.Join(params, "&"))
}
