package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/core-tools/hsu-sandbox/pkg/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level configuration file structure
type Config struct {
	Version int `yaml:"version"`

	// BindAddress the sandbox service listens on. Localhost addresses keep
	// access local; "0.0.0.0" or "::" expose it to the network.
	BindAddress string `yaml:"bind_address"`

	// ServicePort for the sandbox HTTP service (default: 3000)
	ServicePort int `yaml:"service_port"`

	// BootMode for service registration: "user" (starts on login) or
	// "system" (starts on boot, requires root)
	BootMode string `yaml:"boot_mode,omitempty"`

	LogLevel string `yaml:"log_level,omitempty"`

	// Mounts declared as "hostPath:containerPath[:ro]" strings
	Mounts []string `yaml:"mounts,omitempty"`

	// Users allowed to authenticate against the network-exposed service
	Users []UserConfig `yaml:"users,omitempty"`

	// AllowUnauthenticatedNetwork suppresses the exposure warning when the
	// service is deliberately published without credentials
	AllowUnauthenticatedNetwork bool `yaml:"allow_unauthenticated_network,omitempty"`
}

// UserConfig represents a single service user entry
type UserConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

const (
	DefaultServicePort = 3000
	DefaultBindAddress = "127.0.0.1"
	DefaultBootMode    = "user"
	DefaultLogLevel    = "info"
)

// ValidationWarning is a non-fatal configuration issue with a suggested fix
type ValidationWarning struct {
	Field      string
	Message    string
	FixCommand string
}

// NewConfig creates a configuration populated with defaults
func NewConfig() *Config {
	return &Config{
		Version:     1,
		BindAddress: DefaultBindAddress,
		ServicePort: DefaultServicePort,
		BootMode:    DefaultBootMode,
		LogLevel:    DefaultLogLevel,
	}
}

// DefaultPath returns the per-user configuration file location
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.NewIOError("failed to resolve user config directory", err)
	}
	return filepath.Join(configDir, "hsu-sandbox", "config.yaml"), nil
}

// LoadFromFile loads configuration from a YAML file and applies defaults
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("configuration file not found", err).WithContext("filename", filename)
		}
		return nil, errors.NewIOError("failed to read configuration file", err).WithContext("filename", filename)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.NewValidationError("failed to parse YAML configuration", err).WithContext("filename", filename)
	}

	setConfigDefaults(&config)

	return &config, nil
}

// SaveToFile writes the configuration as YAML, creating parent directories
func SaveToFile(config *Config, filename string) error {
	if config == nil {
		return errors.NewValidationError("configuration cannot be nil", nil)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.NewInternalError("failed to serialize configuration", err)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return errors.NewIOError("failed to create configuration directory", err).WithContext("filename", filename)
	}

	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return errors.NewIOError("failed to write configuration file", err).WithContext("filename", filename)
	}

	return nil
}

func setConfigDefaults(config *Config) {
	if config.Version == 0 {
		config.Version = 1
	}
	if config.BindAddress == "" {
		config.BindAddress = DefaultBindAddress
	}
	if config.ServicePort == 0 {
		config.ServicePort = DefaultServicePort
	}
	if config.BootMode == "" {
		config.BootMode = DefaultBootMode
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}
}

// ValidateConfig checks the configuration in field order, returning the
// first fatal error, or the accumulated non-fatal warnings when it passes.
func ValidateConfig(config *Config) ([]ValidationWarning, error) {
	if config == nil {
		return nil, errors.NewValidationError("configuration cannot be nil", nil)
	}

	if config.ServicePort < 1024 || config.ServicePort > 65535 {
		return nil, errors.NewValidationError(
			fmt.Sprintf("service_port must be in range 1024-65535, got %d", config.ServicePort), nil,
		).WithContext("field", "service_port")
	}

	if err := validateBindAddress(config.BindAddress); err != nil {
		return nil, err
	}

	if config.BootMode != "user" && config.BootMode != "system" {
		return nil, errors.NewValidationError(
			fmt.Sprintf("boot_mode must be 'user' or 'system', got %q", config.BootMode), nil,
		).WithContext("field", "boot_mode")
	}

	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.NewValidationError(
			fmt.Sprintf("log_level must be one of debug, info, warn, error, got %q", config.LogLevel), nil,
		).WithContext("field", "log_level")
	}

	var warnings []ValidationWarning

	if config.IsNetworkExposed() && len(config.Users) == 0 && !config.AllowUnauthenticatedNetwork {
		warnings = append(warnings, ValidationWarning{
			Field:      "bind_address",
			Message:    "service is network exposed without authentication",
			FixCommand: "sandboxcli user add",
		})
	}

	return warnings, nil
}

func validateBindAddress(addr string) error {
	if addr == "localhost" {
		return nil
	}
	if net.ParseIP(addr) == nil {
		return errors.NewValidationError(
			fmt.Sprintf("bind_address must be 'localhost' or a valid IP address, got %q", addr), nil,
		).WithContext("field", "bind_address")
	}
	return nil
}

// IsNetworkExposed reports whether the bind address accepts non-local
// connections
func (c *Config) IsNetworkExposed() bool {
	switch c.BindAddress {
	case "localhost", "127.0.0.1", "::1":
		return false
	}
	ip := net.ParseIP(c.BindAddress)
	if ip == nil {
		return false
	}
	return !ip.IsLoopback()
}

// RemoveMounts drops every declared mount whose host path is in hostPaths
// and returns how many entries were removed.
func (c *Config) RemoveMounts(hostPaths []string) int {
	if len(hostPaths) == 0 || len(c.Mounts) == 0 {
		return 0
	}

	drop := make(map[string]bool, len(hostPaths))
	for _, p := range hostPaths {
		drop[p] = true
	}

	kept := c.Mounts[:0]
	removed := 0
	for _, spec := range c.Mounts {
		host := mountSpecHostPath(spec)
		if drop[host] {
			removed++
			continue
		}
		kept = append(kept, spec)
	}
	c.Mounts = kept
	return removed
}

// mountSpecHostPath extracts the host path prefix of a mount spec without
// requiring the spec to fully parse.
func mountSpecHostPath(spec string) string {
	for i := 0; i < len(spec); i++ {
		if spec[i] == ':' {
			return spec[:i]
		}
	}
	return spec
}
