// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config aggregates every subsystem's settings.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	NATS   NATSConfig
	JWT    JWTConfig
	Groq   GroqConfig
	Twilio TwilioConfig
}

// Load reads and validates configuration from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	db, err := loadDBConfig()
	if err != nil {
		return nil, err
	}

	jwt, err := loadJWTConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		DB:     db,
		NATS:   loadNATSConfig(),
		JWT:    jwt,
		Groq:   loadGroqConfig(),
		Twilio: loadTwilioConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8003"
	}

	// Allow passing ":8003" or "127.0.0.1:8003" directly.
	if strings.Contains(port, ":") {
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("config: invalid PORT value %q", port)
	}

	return ServerConfig{Addr: "0.0.0.0:" + port}, nil
}

// DBConfig holds the Postgres connection string.
type DBConfig struct {
	URL string
}

func loadDBConfig() (DBConfig, error) {
	url := strings.TrimSpace(os.Getenv("DB_URL"))
	if url == "" {
		return DBConfig{}, fmt.Errorf("config: DB_URL environment variable is not set")
	}
	return DBConfig{URL: url}, nil
}

// NATSConfig holds broker credentials. An empty URL disables cross-instance
// fan-out and the relay runs standalone.
type NATSConfig struct {
	URL      string
	CredFile string
	User     string
	Password string
}

func loadNATSConfig() NATSConfig {
	return NATSConfig{
		URL:      strings.TrimSpace(os.Getenv("NATS_URL")),
		CredFile: strings.TrimSpace(os.Getenv("NATS_CRED")),
		User:     strings.TrimSpace(os.Getenv("NATS_USER")),
		Password: os.Getenv("NATS_PASSWORD"),
	}
}

// JWTConfig holds token signing material and lifetimes.
type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func loadJWTConfig() (JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return JWTConfig{}, fmt.Errorf("config: JWT_SECRET environment variable is not set")
	}

	return JWTConfig{
		Secret:     secret,
		Issuer:     getEnvOrDefault("JWT_ISS", "sehat"),
		AccessTTL:  5 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, nil
}

// GroqConfig holds the LLM endpoint used for feed generation. Feed
// generation is disabled when the key is absent.
type GroqConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Enabled reports whether feed generation can run.
func (c GroqConfig) Enabled() bool { return c.APIKey != "" }

func loadGroqConfig() GroqConfig {
	return GroqConfig{
		APIKey:  strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		Model:   getEnvOrDefault("GROQ_MODEL", "llama-3.3-70b-versatile"),
		BaseURL: getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
	}
}

// TwilioConfig holds SMS credentials. Reminders and OTP delivery are
// skipped when unset.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// Enabled reports whether SMS sending is configured.
func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

func loadTwilioConfig() TwilioConfig {
	return TwilioConfig{
		AccountSID: strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
		AuthToken:  strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
		FromNumber: strings.TrimSpace(os.Getenv("TWILIO_FROM_NUMBER")),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
