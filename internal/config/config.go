// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingCredential reports a provider credential that is not configured.
var ErrMissingCredential = errors.New("missing credential")

// Store backends.
const (
	StoreSurreal  = "surreal"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Blob backends.
const (
	BlobS3         = "s3"
	BlobCloudinary = "cloudinary"
	BlobMemory     = "memory"
)

// LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderBedrock   = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// Record store
	StoreBackend string

	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	DatabaseURL      string
	DatabaseMaxConns int32

	// Blob store
	BlobBackend         string
	TempBucket          string
	S3Endpoint          string
	S3Region            string
	S3AccessKeyID       string
	S3SecretAccessKey   string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Transcription
	DeepgramAPIKey string
	DeepgramURL    string

	// Language model
	LLMProvider     string
	LLMModel        string
	LLMFastModel    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
	AWSRegion       string

	// Pipeline
	ExtractInsight  bool
	ExtractLocation bool
	Timezone        *time.Location

	// HTTP
	ServerPort  string
	CORSOrigins []string
	AuthHeader  string

	// MCP
	MCPUser string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// LoadDotEnv loads .env.local and .env when present. Variables already set in
// the process environment win.
func LoadDotEnv() {
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("failed to load env file", "file", f, "error", err)
		}
	}
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		StoreBackend: strings.ToLower(getEnv("JOURNAL_STORE", StoreSurreal)),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "journal"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "notes"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DatabaseMaxConns: int32(getEnvInt("DATABASE_MAX_CONNS", 10)),

		BlobBackend:         strings.ToLower(getEnv("JOURNAL_BLOB", BlobS3)),
		TempBucket:          getEnv("JOURNAL_TEMP_BUCKET", "voice-notes-temp"),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),
		S3Region:            getEnv("S3_REGION", "us-east-1"),
		S3AccessKeyID:       getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:   getEnv("S3_SECRET_ACCESS_KEY", ""),
		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		DeepgramAPIKey: getEnv("DEEPGRAM_API_KEY", ""),
		DeepgramURL:    getEnv("DEEPGRAM_URL", "https://api.deepgram.com/v1/listen"),

		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		LLMModel:        getEnv("LLM_MODEL", "gpt-4o"),
		LLMFastModel:    getEnv("LLM_FAST_MODEL", "gpt-4o-mini"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),

		ExtractInsight:  getEnvBool("JOURNAL_EXTRACT_INSIGHT", false),
		ExtractLocation: getEnvBool("JOURNAL_EXTRACT_LOCATION", false),
		Timezone:        parseTimezone(getEnv("JOURNAL_TIMEZONE", "UTC")),

		ServerPort:  getEnv("JOURNAL_SERVER_PORT", "8484"),
		CORSOrigins: splitList(getEnv("JOURNAL_CORS_ORIGINS", "http://localhost:3000")),
		AuthHeader:  getEnv("JOURNAL_AUTH_HEADER", "X-User-ID"),

		MCPUser: getEnv("JOURNAL_MCP_USER", ""),

		LogFile:  getEnv("JOURNAL_LOG_FILE", "/tmp/voicejournal.log"),
		LogLevel: parseLogLevel(getEnv("JOURNAL_LOG_LEVEL", "INFO")),
	}
}

// Validate reports every provider credential the selected backends need but
// lack. Each entry wraps ErrMissingCredential.
func (c Config) Validate() error {
	var errs []error
	missing := func(name string) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingCredential, name))
	}

	if c.DeepgramAPIKey == "" {
		missing("DEEPGRAM_API_KEY")
	}
	if name := c.LLMCredentialName(); name != "" && c.LLMCredential() == "" {
		missing(name)
	}

	switch c.StoreBackend {
	case StorePostgres:
		if c.DatabaseURL == "" {
			missing("DATABASE_URL")
		}
	case StoreSurreal, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported store backend: %s", c.StoreBackend))
	}

	switch c.BlobBackend {
	case BlobCloudinary:
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			missing("CLOUDINARY_CLOUD_NAME/CLOUDINARY_API_KEY/CLOUDINARY_API_SECRET")
		}
	case BlobS3, BlobMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported blob backend: %s", c.BlobBackend))
	}

	return errors.Join(errs...)
}

// LLMCredentialName returns the env var holding the credential for the
// configured provider, or "" when the provider needs none.
func (c Config) LLMCredentialName() string {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// LLMCredential returns the configured provider's API key.
func (c Config) LLMCredential() string {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", val)
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseTimezone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown timezone, using UTC", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
