package config

import "encoding/json"

// Sanitizer redacts sensitive fields before a Config is logged.
type Sanitizer interface {
	Sanitize(cfg *Config) *Config
}

// DefaultSanitizer implements Sanitizer.
type DefaultSanitizer struct {
	redactionValue string
}

// NewDefaultSanitizer returns a Sanitizer using "***REDACTED***".
func NewDefaultSanitizer() Sanitizer {
	return &DefaultSanitizer{redactionValue: "***REDACTED***"}
}

// NewSanitizer returns a Sanitizer using a custom redaction value.
func NewSanitizer(redactionValue string) Sanitizer {
	return &DefaultSanitizer{redactionValue: redactionValue}
}

// Sanitize deep-copies cfg and redacts fields that may carry embedded
// credentials (a Redis DSN may be user:pass@host) before the config is
// written to logs at startup.
func (s *DefaultSanitizer) Sanitize(cfg *Config) *Config {
	sanitized := s.deepCopy(cfg)
	if sanitized.Lock.RedisAddr != "" {
		sanitized.Lock.RedisAddr = s.redactionValue
	}
	return sanitized
}

func (s *DefaultSanitizer) deepCopy(cfg *Config) *Config {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return cfg
	}
	var copied Config
	if err := json.Unmarshal(raw, &copied); err != nil {
		return cfg
	}
	return &copied
}
