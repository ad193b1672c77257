// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"net/http"
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
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

// CookieConfig provides settings for refresh token cookies.
type CookieConfig interface {
	GetRefreshCookieName() string
	GetRefreshCookiePath() string
	GetRefreshCookieSecure() bool
	GetRefreshCookieSameSite() http.SameSite
	GetRefreshTokenTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RedisConfig provides the Redis connection used for remembered client state.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq worker and periodic audits.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetQualityAuditCron() string
	GetQualityAlertThreshold() int
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketReports() string
	IsMinIOEnabled() bool
}

// SMTPConfig provides settings for alert e-mails.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetAlertRecipients() []string
	IsSMTPEnabled() bool
}

// SentryConfig provides settings for error reporting.
type SentryConfig interface {
	GetSentryDSN() string
	GetEnv() string
}

// TenantConfig provides client selection policy settings.
type TenantConfig interface {
	GetTenantPriorityMatch() string
}

// ReportingConfig provides date-window and fetch settings for analytics.
type ReportingConfig interface {
	GetReportingLocation() *time.Location
	GetMetricsDefaultWindowMonths() int
	GetPipelineDefaultWindowMonths() int
	GetFetchMaxAttempts() int
	GetFetchRetryBaseDelay() time.Duration
	GetMetricsCacheTTL() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                         string
	HTTPAddr                    string
	DatabaseURL                 string
	JWTAccessSecret             string
	AccessTokenTTL              time.Duration
	RefreshTokenTTL             time.Duration
	RefreshCookieName           string
	RefreshCookiePath           string
	RefreshCookieSecure         bool
	RefreshCookieSameSite       http.SameSite
	CORSAllowAll                bool
	CORSOrigins                 []string
	CORSAllowCreds              bool
	RedisURL                    string
	RedisTLSInsecure            bool
	AsynqQueueName              string
	AsynqConcurrency            int
	QualityAuditCron            string
	QualityAlertThreshold       int
	MinIOEndpoint               string
	MinIOAccessKey              string
	MinIOSecretKey              string
	MinIOUseSSL                 bool
	MinIOMaxFileSize            int64
	MinioBucketReports          string
	SMTPHost                    string
	SMTPPort                    int
	SMTPUsername                string
	SMTPPassword                string
	EmailFromName               string
	EmailFromAddress            string
	AlertRecipients             []string
	SentryDSN                   string
	TenantPriorityMatch         string
	ReportingLocation           *time.Location
	MetricsDefaultWindowMonths  int
	PipelineDefaultWindowMonths int
	FetchMaxAttempts            int
	FetchRetryBaseDelay         time.Duration
	MetricsCacheTTL             time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetEnv() string { return c.Env }

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig / AuthServiceConfig implementation
func (c *Config) GetJWTAccessSecret() string        { return c.JWTAccessSecret }
func (c *Config) GetAccessTokenTTL() time.Duration  { return c.AccessTokenTTL }
func (c *Config) GetRefreshTokenTTL() time.Duration { return c.RefreshTokenTTL }

// CookieConfig implementation
func (c *Config) GetRefreshCookieName() string            { return c.RefreshCookieName }
func (c *Config) GetRefreshCookiePath() string            { return c.RefreshCookiePath }
func (c *Config) GetRefreshCookieSecure() bool            { return c.RefreshCookieSecure }
func (c *Config) GetRefreshCookieSameSite() http.SameSite { return c.RefreshCookieSameSite }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// RedisConfig / SchedulerConfig implementation
func (c *Config) GetRedisURL() string           { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool     { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string     { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int      { return c.AsynqConcurrency }
func (c *Config) GetQualityAuditCron() string   { return c.QualityAuditCron }
func (c *Config) GetQualityAlertThreshold() int { return c.QualityAlertThreshold }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string      { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string     { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string     { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool          { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64    { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketReports() string { return c.MinioBucketReports }
func (c *Config) IsMinIOEnabled() bool          { return c.MinIOEndpoint != "" }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string          { return c.SMTPHost }
func (c *Config) GetSMTPPort() int             { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string      { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string      { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string     { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string  { return c.EmailFromAddress }
func (c *Config) GetAlertRecipients() []string { return c.AlertRecipients }
func (c *Config) IsSMTPEnabled() bool {
	return c.SMTPHost != "" && c.EmailFromAddress != "" && len(c.AlertRecipients) > 0
}

// SentryConfig implementation
func (c *Config) GetSentryDSN() string { return c.SentryDSN }

// TenantConfig implementation
func (c *Config) GetTenantPriorityMatch() string { return c.TenantPriorityMatch }

// ReportingConfig implementation
func (c *Config) GetReportingLocation() *time.Location  { return c.ReportingLocation }
func (c *Config) GetMetricsDefaultWindowMonths() int    { return c.MetricsDefaultWindowMonths }
func (c *Config) GetPipelineDefaultWindowMonths() int   { return c.PipelineDefaultWindowMonths }
func (c *Config) GetFetchMaxAttempts() int              { return c.FetchMaxAttempts }
func (c *Config) GetFetchRetryBaseDelay() time.Duration { return c.FetchRetryBaseDelay }
func (c *Config) GetMetricsCacheTTL() time.Duration     { return c.MetricsCacheTTL }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	refreshCookieSecure := strings.EqualFold(getEnv("REFRESH_COOKIE_SECURE", ""), "true")
	if getEnv("REFRESH_COOKIE_SECURE", "") == "" {
		refreshCookieSecure = strings.EqualFold(getEnv("APP_ENV", "development"), "production")
	}

	location, err := time.LoadLocation(getEnv("REPORTING_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("REPORTING_TIMEZONE: %w", err)
	}

	cfg := &Config{
		Env:                         getEnv("APP_ENV", "development"),
		HTTPAddr:                    getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:                 getEnv("DATABASE_URL", ""),
		JWTAccessSecret:             getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:              mustDuration(getEnv("JWT_ACCESS_TTL", "15m")),
		RefreshTokenTTL:             mustDuration(getEnv("JWT_REFRESH_TTL", "720h")),
		RefreshCookieName:           getEnv("REFRESH_COOKIE_NAME", "dashboard_refresh"),
		RefreshCookiePath:           getEnv("REFRESH_COOKIE_PATH", "/api/v1/auth"),
		RefreshCookieSecure:         refreshCookieSecure,
		RefreshCookieSameSite:       parseSameSite(getEnv("REFRESH_COOKIE_SAMESITE", "Lax")),
		CORSAllowAll:                corsAllowAll,
		CORSOrigins:                 corsOrigins,
		CORSAllowCreds:              strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:                    getEnv("REDIS_URL", ""),
		RedisTLSInsecure:            strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:              getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:            mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		QualityAuditCron:            getEnv("QUALITY_AUDIT_CRON", "@daily"),
		QualityAlertThreshold:       mustInt(getEnv("QUALITY_ALERT_THRESHOLD", "60")),
		MinIOEndpoint:               getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:              getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:              getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:                 strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:            mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760")),
		MinioBucketReports:          getEnv("MINIO_BUCKET_REPORTS", "dashboard-reports"),
		SMTPHost:                    getEnv("SMTP_HOST", ""),
		SMTPPort:                    mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:                getEnv("SMTP_USERNAME", ""),
		SMTPPassword:                getEnv("SMTP_PASSWORD", ""),
		EmailFromName:               getEnv("EMAIL_FROM_NAME", "Dashboard"),
		EmailFromAddress:            getEnv("EMAIL_FROM_ADDRESS", ""),
		AlertRecipients:             splitCSV(getEnv("ALERT_RECIPIENTS", "")),
		SentryDSN:                   getEnv("SENTRY_DSN", ""),
		TenantPriorityMatch:         getEnv("TENANT_PRIORITY_MATCH", "hospital do cabelo"),
		ReportingLocation:           location,
		MetricsDefaultWindowMonths:  mustInt(getEnv("METRICS_DEFAULT_WINDOW_MONTHS", "6")),
		PipelineDefaultWindowMonths: mustInt(getEnv("PIPELINE_DEFAULT_WINDOW_MONTHS", "12")),
		FetchMaxAttempts:            mustInt(getEnv("FETCH_MAX_ATTEMPTS", "3")),
		FetchRetryBaseDelay:         mustDuration(getEnv("FETCH_RETRY_BASE_DELAY", "200ms")),
		MetricsCacheTTL:             mustDuration(getEnv("METRICS_CACHE_TTL", "60s")),
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
	if cfg.FetchMaxAttempts < 1 {
		return nil, fmt.Errorf("FETCH_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.MetricsDefaultWindowMonths < 1 || cfg.PipelineDefaultWindowMonths < 1 {
		return nil, fmt.Errorf("default window months must be positive")
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
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
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

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}
