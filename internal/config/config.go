package config // package config loads application configuration from environment variables

import (
	"encoding/hex"
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The three AES keys are hex encoded in the
// environment and decoded to raw 32-byte slices at load time.
type Config struct {
	Env           string        // application environment (e.g. "dev", "prod")
	Port          string        // HTTP port to listen on
	DBUser        string        // database username
	DBPass        string        // database password (optional)
	DBHost        string        // database host address
	DBPort        string        // database port number
	DBName        string        // database name
	PwdKey        []byte        // AES-256 key sealing customer passwords
	AdminPwdKey   []byte        // AES-256 key sealing admin passwords
	TokenKey      []byte        // AES-256 key sealing authentication tokens
	TokenIssuer   string        // 9-byte issuer tag baked into every token
	TokenValidity time.Duration // absolute token lifetime
	IdleTimeout   time.Duration // max inactivity before a session goes offline
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing or
// malformed values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),      // environment (dev/test/prod)
		Port:          must("APP_PORT"),     // port to bind the HTTP server
		DBUser:        must("DB_USER"),      // database user
		DBPass:        os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:        must("DB_HOST"),      // database host
		DBPort:        must("DB_PORT"),      // database port
		DBName:        must("DB_NAME"),      // database name
		PwdKey:        mustKey("AES_PWD_KEY"),
		AdminPwdKey:   mustKey("AES_ADMIN_PWD_KEY"),
		TokenKey:      mustKey("AES_TOKEN_KEY"),
		TokenIssuer:   mustIssuer("TOKEN_ISSUER"),
		TokenValidity: time.Duration(intOr("TOKEN_VALIDITY_HOURS", 24)) * time.Hour,
		IdleTimeout:   time.Duration(intOr("IDLE_TIMEOUT_MIN", 30)) * time.Minute,
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustKey decodes a required hex-encoded 32-byte AES key.
func mustKey(key string) []byte {
	raw, err := hex.DecodeString(must(key))
	if err != nil {
		log.Fatalf("invalid hex for %s: %v", key, err)
	}
	if len(raw) != 32 {
		log.Fatalf("%s must decode to 32 bytes, got %d", key, len(raw))
	}
	return raw
}

// mustIssuer enforces the fixed 9-byte issuer tag length.
func mustIssuer(key string) string {
	v := must(key)
	if len(v) != 9 {
		log.Fatalf("%s must be exactly 9 bytes, got %d", key, len(v))
	}
	return v
}

// intOr reads an optional integer environment variable with a default.
func intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
