package config

import (
	cryptoRand "crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// requiredVars must be present (from the environment or a .env file)
// before the server can start.
var requiredVars = []string{"DB_HOST", "DB_USER", "DB_PASSWORD"}

// envCandidateDirs are searched in order for the nearest .env file.
var envCandidateDirs = []string{".", ".."}

// Config holds application configuration. It is built once at startup
// and passed to collaborators; nothing mutates it afterwards.
type Config struct {
	Port      int
	LogLevel  string
	LogFormat string

	// Database
	DBHost     string
	DBUser     string
	DBPassword string
	DBPort     int
	AdminDB    string
	UIDB       string

	// Default admin seed
	AdminDefaultUser     string
	AdminDefaultEmail    string
	AdminDefaultPassword string

	// SMTP
	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPassword    string
	SMTPFromAddress string
	SMTPFromName    string
	SMTPSecure      string // ssl|smtps|tls|starttls|none|"" (port heuristic)

	// External surfaces
	AppBaseURL     string
	APIBaseURL     string
	InternalAPIKey string
	AllowedOrigins string // comma-separated browser origins

	// Mailgun fallback transport (optional)
	MailgunDomain string
	MailgunAPIKey string

	// UI session signing
	UISessionSecret string
}

// Load builds the configuration from environment variables, falling
// back to the nearest .env file when the required database variables
// are absent. Values already set in the process environment are never
// overwritten by the .env file.
func Load() (*Config, error) {
	if missingRequired() {
		for _, dir := range envCandidateDirs {
			path := filepath.Join(dir, ".env")
			if _, err := os.Stat(path); err != nil {
				continue
			}
			// godotenv.Load skips keys already present in the environment.
			_ = godotenv.Load(path)
			break
		}
	}

	if missingRequired() {
		return nil, fmt.Errorf("missing DB environment variables (DB_HOST / DB_USER / DB_PASSWORD)")
	}

	cfg := &Config{
		Port:      getEnvInt("PORT", 8080),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		AdminDB:    getEnv("DB_NAME", "axialy_admin"),
		UIDB:       getEnv("UI_DB_NAME", "axialy_ui"),

		AdminDefaultUser:     getEnv("ADMIN_DEFAULT_USER", ""),
		AdminDefaultEmail:    getEnv("ADMIN_DEFAULT_EMAIL", ""),
		AdminDefaultPassword: getEnv("ADMIN_DEFAULT_PASSWORD", ""),

		SMTPHost:        getEnv("SMTP_HOST", "localhost"),
		SMTPPort:        getEnvInt("SMTP_PORT", 25),
		SMTPUser:        getEnv("SMTP_USER", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SMTPFromAddress: getEnv("SMTP_FROM_ADDRESS", "support@axialy.ai"),
		SMTPFromName:    getEnv("SMTP_FROM_NAME", "Axialy"),
		SMTPSecure:      getEnv("SMTP_SECURE", ""),

		AppBaseURL:     getEnv("APP_BASE_URL", "http://localhost:8080"),
		APIBaseURL:     getEnv("API_BASE_URL", ""),
		InternalAPIKey: getEnv("INTERNAL_API_KEY", ""),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "https://axialy.ai,https://admin.axialy.ai,https://app.axialy.ai"),

		MailgunDomain: getEnv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey: getEnv("MAILGUN_API_KEY", ""),

		UISessionSecret: getEnv("UI_SESSION_SECRET", ""),
	}

	// Generate a per-process signing secret when none is configured.
	// Sessions then survive only until the next restart, but tokens can
	// never be forged against a known default.
	if cfg.UISessionSecret == "" {
		cfg.UISessionSecret = generateRandomSecret(32)
	}

	return cfg, nil
}

func generateRandomSecret(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	if _, err := cryptoRand.Read(result); err != nil {
		panic("failed to generate random secret: " + err.Error())
	}
	for i := range result {
		result[i] = charset[result[i]%byte(len(charset))]
	}
	return string(result)
}

func missingRequired() bool {
	for _, key := range requiredVars {
		if _, ok := os.LookupEnv(key); !ok {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
