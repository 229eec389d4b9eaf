package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	TablePrefix string
	CORSOrigins string
	// Token verification: exactly one of these is set.
	JWTSecret string
	JWKSURL   string
	// Role alias file (yaml) mapping IdP role names to the closed role set.
	RoleAliasFile string
	// ACL decision cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ACLCacheTTL   time.Duration
	// Audit event bus.
	AMQPURL    string
	AuditQueue string
	Debug      bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   env,
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		TablePrefix:   getTablePrefix(env),
		CORSOrigins:   getEnv("CORS_ORIGINS", "http://localhost:3000"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWKSURL:       getEnv("JWKS_URL", ""),
		RoleAliasFile: getEnv("ROLE_ALIAS_FILE", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		ACLCacheTTL:   time.Duration(getEnvInt("ACL_CACHE_TTL_SECONDS", 30)) * time.Second,
		AMQPURL:       getEnv("AMQP_URL", ""),
		AuditQueue:    getEnv("AUDIT_QUEUE", "audit.events"),
		Debug:         getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment.
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment.
func getTablePrefix(env string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
