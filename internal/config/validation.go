package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// Validator accumulates validation errors so every bad setting is reported
// at once.
type Validator struct {
	errors []ValidationError
}

// AddError records a validation error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Err folds the collected errors into one, or returns nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d error(s):", len(v.errors))
	for i, err := range v.errors {
		fmt.Fprintf(&sb, "\n  %d. %s", i+1, err.Error())
	}
	return fmt.Errorf("%s", sb.String())
}

// Required flags an empty value.
func (v *Validator) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "required environment variable not set")
	}
}

// URL checks that value parses and uses one of the given schemes.
func (v *Validator) URL(field, value string, schemes ...string) {
	if value == "" {
		return
	}
	parsed, err := url.Parse(value)
	if err != nil {
		v.AddError(field, fmt.Sprintf("invalid URL format: %v", err))
		return
	}
	for _, s := range schemes {
		if parsed.Scheme == s {
			return
		}
	}
	v.AddError(field, fmt.Sprintf("URL scheme must be one of: %s", strings.Join(schemes, ", ")))
}

// Addr checks a listen address of the form "host:port" or ":port".
func (v *Validator) Addr(field, value string) {
	if value == "" {
		return
	}
	if _, _, err := net.SplitHostPort(value); err != nil {
		v.AddError(field, fmt.Sprintf("invalid listen address: %v", err))
	}
}

// Enum checks that value is one of allowed.
func (v *Validator) Enum(field, value string, allowed []string) {
	for _, opt := range allowed {
		if value == opt {
			return
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s (got: %s)", strings.Join(allowed, ", "), value))
}

// Validate checks the loaded configuration.
func (c Config) Validate() error {
	v := &Validator{}

	v.Required("DATABASE_URL", c.DatabaseURL)
	v.URL("DATABASE_URL", c.DatabaseURL, "postgres", "postgresql")
	v.Required("REDIS_URL", c.RedisURL)
	v.URL("REDIS_URL", c.RedisURL, "redis", "rediss", "unix")
	v.Addr("CDN_ADDR", c.Addr)
	v.URL("CDN_IPC_URL", c.IPCURL, "http", "https")

	v.Required("CDN_SESSION_COOKIE", c.Session.CookieName)
	if c.Session.MaxAge <= 0 {
		v.AddError("CDN_SESSION_MAX_AGE", "must be a positive duration")
	}
	if c.Session.SecureSetting != "" {
		if _, err := strconv.ParseBool(c.Session.SecureSetting); err != nil {
			v.AddError("CDN_SESSION_SECURE", fmt.Sprintf("must be a boolean (got: %s)", c.Session.SecureSetting))
		}
	}
	if c.IPCTimeout <= 0 {
		v.AddError("CDN_IPC_TIMEOUT", "must be a positive duration")
	}
	if c.APIRateLimit < 0 {
		v.AddError("CDN_API_RATE_LIMIT", "must not be negative")
	}

	if c.S3.Enabled() {
		v.Required("CDN_S3_ACCESS_KEY", c.S3.AccessKey)
		v.Required("CDN_S3_SECRET_KEY", c.S3.SecretKey)
		v.Required("CDN_S3_BUCKET", c.S3.Bucket)
	}

	v.Enum("LOG_LEVEL", c.LogLevel, []string{"debug", "info", "warn", "error"})
	v.Enum("LOG_FORMAT", c.LogFormat, []string{"", "json", "text"})
	v.Enum("CDN_ENV", c.Env, []string{"development", "staging", "production"})

	return v.Err()
}
