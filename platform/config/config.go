// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// WebhookSources lists the integration names that can carry their own
// webhook secret (WEBHOOK_SECRET_<NAME>).
var WebhookSources = []string{"meta", "tiktok", "snapchat", "whatsapp", "generic"}

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RedisConfig provides settings for the shared Redis connection.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	IsRedisEnabled() bool
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// IntakeConfig provides settings for the lead intake pipeline.
type IntakeConfig interface {
	GetDefaultPhoneRegion() string
	GetAssignmentStrategy() string
	GetWorkerCacheTTL() time.Duration
}

// AuditConfig provides settings for the audit sink.
type AuditConfig interface {
	GetAuditMode() string
	GetAuditBufferSize() int
}

// WebhookConfig provides settings for inbound lead webhooks.
type WebhookConfig interface {
	GetWebhookVerifyToken() string
	GetWebhookSecret(source string) string
	GetWebhookAllowUnsigned() []string
	GetWebhookIntegrationKeys() map[string]string
	GetWebhookRatePerMinute() int
}

// SMTPConfig provides settings for outbound notification email.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFrom() string
	GetSMTPFromName() string
	IsSMTPEnabled() bool
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketWebhookPayloads() string
	IsMinIOEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                       string
	HTTPAddr                  string
	DatabaseURL               string
	JWTAccessSecret           string
	CORSAllowAll              bool
	CORSOrigins               []string
	CORSAllowCreds            bool
	RedisURL                  string
	RedisTLSInsecure          bool
	AsynqQueueName            string
	AsynqConcurrency          int
	DefaultPhoneRegion        string
	AssignmentStrategy        string
	WorkerCacheTTL            time.Duration
	AuditMode                 string
	AuditBufferSize           int
	WebhookVerifyToken        string
	WebhookSecrets            map[string]string
	WebhookAllowUnsigned      []string
	WebhookIntegrationKeys    map[string]string
	WebhookRatePerMinute      int
	SMTPHost                  string
	SMTPPort                  int
	SMTPUsername              string
	SMTPPassword              string
	SMTPFrom                  string
	SMTPFromName              string
	MinIOEndpoint             string
	MinIOAccessKey            string
	MinIOSecretKey            string
	MinIOUseSSL               bool
	MinioBucketWebhookPayload string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// RedisConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) IsRedisEnabled() bool      { return c.RedisURL != "" }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// IntakeConfig implementation
func (c *Config) GetDefaultPhoneRegion() string     { return c.DefaultPhoneRegion }
func (c *Config) GetAssignmentStrategy() string     { return c.AssignmentStrategy }
func (c *Config) GetWorkerCacheTTL() time.Duration { return c.WorkerCacheTTL }

// AuditConfig implementation
func (c *Config) GetAuditMode() string     { return c.AuditMode }
func (c *Config) GetAuditBufferSize() int { return c.AuditBufferSize }

// WebhookConfig implementation
func (c *Config) GetWebhookVerifyToken() string { return c.WebhookVerifyToken }
func (c *Config) GetWebhookSecret(source string) string {
	return c.WebhookSecrets[strings.ToLower(source)]
}
func (c *Config) GetWebhookAllowUnsigned() []string { return c.WebhookAllowUnsigned }
func (c *Config) GetWebhookIntegrationKeys() map[string]string {
	return c.WebhookIntegrationKeys
}
func (c *Config) GetWebhookRatePerMinute() int { return c.WebhookRatePerMinute }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string     { return c.SMTPHost }
func (c *Config) GetSMTPPort() int        { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string { return c.SMTPPassword }
func (c *Config) GetSMTPFrom() string     { return c.SMTPFrom }
func (c *Config) GetSMTPFromName() string { return c.SMTPFromName }
func (c *Config) IsSMTPEnabled() bool     { return c.SMTPHost != "" && c.SMTPFrom != "" }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string  { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool      { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketWebhookPayloads() string {
	return c.MinioBucketWebhookPayload
}
func (c *Config) IsMinIOEnabled() bool { return c.MinIOEndpoint != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (*Config, error) {
	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                       getEnv("APP_ENV", "development"),
		HTTPAddr:                  getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		JWTAccessSecret:           getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:              corsAllowAll,
		CORSOrigins:               corsOrigins,
		CORSAllowCreds:            strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		RedisURL:                  getEnv("REDIS_URL", ""),
		RedisTLSInsecure:          strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:            getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:          mustInt(getEnv("ASYNQ_CONCURRENCY", "10"), 10),
		DefaultPhoneRegion:        strings.ToUpper(getEnv("DEFAULT_PHONE_REGION", "NL")),
		AssignmentStrategy:        strings.ToLower(getEnv("ASSIGNMENT_STRATEGY", "random")),
		WorkerCacheTTL:            mustDuration(getEnv("WORKER_CACHE_TTL", "30s")),
		AuditMode:                 strings.ToLower(getEnv("AUDIT_MODE", "direct")),
		AuditBufferSize:           mustInt(getEnv("AUDIT_BUFFER", "1024"), 1024),
		WebhookVerifyToken:        getEnv("WEBHOOK_VERIFY_TOKEN", getEnv("WEBHOOK_SECRET", "")),
		WebhookSecrets:            loadWebhookSecrets(),
		WebhookAllowUnsigned:      lowerAll(splitCSV(getEnv("WEBHOOK_ALLOW_UNSIGNED", ""))),
		WebhookIntegrationKeys:    parsePairs(getEnv("WEBHOOK_INTEGRATION_KEYS", "")),
		WebhookRatePerMinute:      mustInt(getEnv("WEBHOOK_RATE_PER_MINUTE", "120"), 120),
		SMTPHost:                  getEnv("SMTP_HOST", ""),
		SMTPPort:                  mustInt(getEnv("SMTP_PORT", "587"), 587),
		SMTPUsername:              getEnv("SMTP_USER", ""),
		SMTPPassword:              getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:                  getEnv("SMTP_FROM", ""),
		SMTPFromName:              getEnv("SMTP_FROM_NAME", "Lead Desk"),
		MinIOEndpoint:             getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:            getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:            getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:               strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketWebhookPayload: getEnv("MINIO_BUCKET_WEBHOOK_PAYLOADS", "webhook-payloads"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	switch cfg.AssignmentStrategy {
	case "random", "round_robin", "least_loaded":
	default:
		return nil, fmt.Errorf("ASSIGNMENT_STRATEGY must be random, round_robin or least_loaded, got %q", cfg.AssignmentStrategy)
	}
	switch cfg.AuditMode {
	case "direct":
	case "queue":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when AUDIT_MODE is queue")
		}
	default:
		return nil, fmt.Errorf("AUDIT_MODE must be direct or queue, got %q", cfg.AuditMode)
	}

	return cfg, nil
}

// loadWebhookSecrets reads WEBHOOK_SECRET_<SOURCE> for every known source,
// falling back to WEBHOOK_SECRET.
func loadWebhookSecrets() map[string]string {
	fallback := getEnv("WEBHOOK_SECRET", "")
	secrets := make(map[string]string, len(WebhookSources))
	for _, source := range WebhookSources {
		secret := getEnv("WEBHOOK_SECRET_"+strings.ToUpper(source), fallback)
		if secret != "" {
			secrets[source] = secret
		}
	}
	return secrets
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
		return 0
	}
	return d
}

func mustInt(value string, fallback int) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || result <= 0 {
		return fallback
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

func lowerAll(values []string) []string {
	for i, v := range values {
		values[i] = strings.ToLower(v)
	}
	return values
}

// parsePairs parses "k1=v1,k2=v2". Entries without '=' are skipped.
func parsePairs(value string) map[string]string {
	pairs := make(map[string]string)
	for _, part := range splitCSV(value) {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.ToLower(strings.TrimSpace(val))
		if key != "" && val != "" {
			pairs[key] = val
		}
	}
	return pairs
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
