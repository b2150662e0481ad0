package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Knowledge base sources accepted by KnowledgeSource.
const (
	KnowledgeBuiltin  = "builtin"
	KnowledgeYAML     = "yaml"
	KnowledgePostgres = "postgres"
)

// Load reads the .env file specified by INFORMED_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("INFORMED_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

// APIKey returns the static bearer token for /v1 routes.
// Authentication is disabled when empty.
func APIKey() string {
	return os.Getenv("API_KEY")
}

// KnowledgeSource returns where the knowledge base is loaded from.
// Defaults to "builtin" if not set.
// Valid values: builtin, yaml, postgres
func KnowledgeSource() string {
	s := os.Getenv("KNOWLEDGE_SOURCE")
	if s == "" {
		return KnowledgeBuiltin
	}
	return s
}

// KnowledgeBasePath is the YAML file read when KnowledgeSource is "yaml".
func KnowledgeBasePath() string {
	return os.Getenv("KNOWLEDGE_BASE_PATH")
}

// ConfidenceThreshold returns the posterior probability that ends a session.
// Defaults to 0.90 if not set or outside (0, 1].
func ConfidenceThreshold() float64 {
	t, err := strconv.ParseFloat(os.Getenv("CONFIDENCE_THRESHOLD"), 64)
	if err != nil || t <= 0 || t > 1 {
		return 0.90
	}
	return t
}

// SelectionWorkers returns how many goroutines evaluate candidate questions.
// Defaults to 1 (sequential) if not set.
func SelectionWorkers() int {
	n, err := strconv.Atoi(os.Getenv("SELECTION_WORKERS"))
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// SessionIdleTTL returns how long a session may sit idle before it is dropped.
// Defaults to 30m if not set.
func SessionIdleTTL() time.Duration {
	return duration("SESSION_IDLE_TTL", 30*time.Minute)
}

// SessionSweepInterval returns how often idle sessions are swept.
// Defaults to 5m if not set.
func SessionSweepInterval() time.Duration {
	return duration("SESSION_SWEEP_INTERVAL", 5*time.Minute)
}

func duration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
