// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	IsDatabaseEnabled() bool
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// VapiConfig provides settings for the Vapi voice-calling gateway.
type VapiConfig interface {
	GetVapiBaseURL() string
	GetVapiPrivateKey() string
	GetVapiPublicKey() string
	GetVapiAssistantID() string
	GetVapiPhoneNumberID() string
	GetVapiTimeout() time.Duration
	IsVapiEnabled() bool
}

// CampaignConfig provides settings for campaign dispatch behavior.
type CampaignConfig interface {
	GetMaxDispatchAttempts() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	CORSAllowAll        bool
	CORSOrigins         []string
	CORSAllowCreds      bool
	VapiBaseURL         string
	VapiPrivateKey      string
	VapiPublicKey       string
	VapiAssistantID     string
	VapiPhoneNumberID   string
	VapiTimeout         time.Duration
	MaxDispatchAttempts int
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string  { return c.DatabaseURL }
func (c *Config) IsDatabaseEnabled() bool { return c.DatabaseURL != "" }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// VapiConfig implementation
func (c *Config) GetVapiBaseURL() string       { return c.VapiBaseURL }
func (c *Config) GetVapiPrivateKey() string    { return c.VapiPrivateKey }
func (c *Config) GetVapiPublicKey() string     { return c.VapiPublicKey }
func (c *Config) GetVapiAssistantID() string   { return c.VapiAssistantID }
func (c *Config) GetVapiPhoneNumberID() string { return c.VapiPhoneNumberID }
func (c *Config) GetVapiTimeout() time.Duration {
	return c.VapiTimeout
}

// IsVapiEnabled reports whether the gateway has the credentials it needs
// to place calls. The server still boots without them; call endpoints
// answer 503 until the gateway is configured.
func (c *Config) IsVapiEnabled() bool {
	return c.VapiPrivateKey != "" && c.VapiPublicKey != "" && c.VapiAssistantID != ""
}

// CampaignConfig implementation
func (c *Config) GetMaxDispatchAttempts() int { return c.MaxDispatchAttempts }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		CORSAllowCreds:      strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		VapiBaseURL:         getEnv("VAPI_BASE_URL", "https://api.vapi.ai"),
		VapiPrivateKey:      getEnv("VAPI_PRIVATE_KEY", ""),
		VapiPublicKey:       getEnv("VAPI_PUBLIC_KEY", ""),
		VapiAssistantID:     getEnv("VAPI_ASSISTANT_ID", ""),
		VapiPhoneNumberID:   getEnv("VAPI_TWILIO_PHONE_NUMBER_ID", ""),
		VapiTimeout:         mustDuration(getEnv("VAPI_TIMEOUT", "30s")),
		MaxDispatchAttempts: mustInt(getEnv("MAX_DISPATCH_ATTEMPTS", "0")),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
