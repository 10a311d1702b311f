package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"authcheck/ssh"
)

// Environment variables that override the file.
const (
	EnvBaseURL    = "AUTHCHECK_BASE_URL"
	EnvReportPath = "AUTHCHECK_REPORT_PATH"
)

// Defaults used when neither the file nor the environment set a value.
const (
	DefaultName        = "EmailCraft Pro Authentication Tests"
	DefaultBaseURL     = "http://localhost:3001/api"
	DefaultReportPath  = "auth_test_results.json"
	DefaultPause       = 500 * time.Millisecond
	DefaultEmailPrefix = "testuser"
	DefaultEmailDomain = "emailcraft.test"
	DefaultPassword    = "SecurePassword123!"
	DefaultUserName    = "Test User"
)

// RunConfig represents the configuration of one test run
type RunConfig struct {
	Name       string        `yaml:"name"`
	BaseURL    string        `yaml:"base_url"`
	ReportPath string        `yaml:"report_path"`
	Pause      time.Duration `yaml:"pause"`
	Timeouts   Timeouts      `yaml:"timeouts"`
	Fixture    Fixture       `yaml:"fixture"`

	// CORSOrigin is sent by the cors-preflight scenario.
	CORSOrigin string `yaml:"cors_origin,omitempty"`

	// Scenarios selects and orders the scenarios; empty means the default suite.
	Scenarios []string `yaml:"scenarios,omitempty"`

	// CollectEnv adds local host facts to the report.
	CollectEnv bool `yaml:"collect_env"`

	// Tunnel routes all requests through an SSH bastion when set.
	Tunnel *ssh.Config `yaml:"tunnel,omitempty"`
}

// Timeouts bound each request class
type Timeouts struct {
	Health  time.Duration `yaml:"health"`
	Request time.Duration `yaml:"request"`
}

// Fixture describes the test user created for the run
type Fixture struct {
	Name        string `yaml:"name"`
	Password    string `yaml:"password"`
	EmailPrefix string `yaml:"email_prefix"`
	EmailDomain string `yaml:"email_domain"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() *RunConfig {
	return &RunConfig{
		Name:       DefaultName,
		BaseURL:    DefaultBaseURL,
		ReportPath: DefaultReportPath,
		Pause:      DefaultPause,
		Timeouts: Timeouts{
			Health:  10 * time.Second,
			Request: 15 * time.Second,
		},
		Fixture: Fixture{
			Name:        DefaultUserName,
			Password:    DefaultPassword,
			EmailPrefix: DefaultEmailPrefix,
			EmailDomain: DefaultEmailDomain,
		},
	}
}

// LoadConfig builds the run configuration. The YAML file at filename is
// layered over the defaults, then environment overrides are applied. An
// empty filename skips the file. A .env file in the working directory is
// loaded first if present; variables already set win over it.
func LoadConfig(filename string) (*RunConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := Defaults()
	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
		}
	}

	config.applyEnv()

	validator := NewValidator()
	if err := validator.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *RunConfig) applyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvReportPath); v != "" {
		c.ReportPath = v
	}
}

// SaveConfig saves configuration to a YAML file
func (c *RunConfig) SaveConfig(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", filename, err)
	}

	return nil
}
