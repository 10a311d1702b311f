package config

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validator handles configuration validation
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateConfig validates the entire configuration
func (v *Validator) ValidateConfig(c *RunConfig) error {
	if c == nil {
		return invalid("config cannot be nil")
	}

	if err := v.validateBaseURL(c.BaseURL); err != nil {
		return err
	}

	if c.ReportPath == "" {
		return invalid("report_path is required")
	}

	if c.Pause < 0 {
		return invalid("pause cannot be negative")
	}

	if c.Timeouts.Health <= 0 {
		return invalid("timeouts.health must be positive")
	}

	if c.Timeouts.Request <= 0 {
		return invalid("timeouts.request must be positive")
	}

	if err := v.validateFixture(&c.Fixture); err != nil {
		return err
	}

	if c.Tunnel != nil {
		if err := v.validateTunnel(c); err != nil {
			return err
		}
	}

	return nil
}

func (v *Validator) validateBaseURL(raw string) error {
	if raw == "" {
		return invalid("base_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return invalid("base_url %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid("base_url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return invalid("base_url %q: host is required", raw)
	}
	return nil
}

func (v *Validator) validateFixture(f *Fixture) error {
	if f.EmailPrefix == "" {
		return invalid("fixture.email_prefix is required")
	}
	if f.EmailDomain == "" {
		return invalid("fixture.email_domain is required")
	}
	if f.Name == "" {
		return invalid("fixture.name is required")
	}
	if len(f.Password) < 6 {
		return invalid("fixture.password must be at least 6 characters")
	}
	return nil
}

func (v *Validator) validateTunnel(c *RunConfig) error {
	t := c.Tunnel
	if t.Host == "" {
		return invalid("tunnel: SSH host is required")
	}
	if t.User == "" {
		return invalid("tunnel: SSH user is required")
	}
	if t.KeyPath == "" && t.Password == "" {
		return invalid("tunnel: either SSH key path or password is required")
	}
	if t.Port < 0 || t.Port > 65535 {
		return invalid("tunnel: invalid port %d", t.Port)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
