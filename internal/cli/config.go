package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds CLI configuration
type Config struct {
	Endpoint string        `yaml:"endpoint"`
	Store    string        `yaml:"store"`
	StateDir string        `yaml:"state_dir"`
	RedisURL string        `yaml:"redis_url"`
	Profile  string        `yaml:"profile"`
	Timeout  time.Duration `yaml:"timeout"`
	Output   string        `yaml:"output"`
	Verbose  bool          `yaml:"verbose"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Endpoint: "http://localhost:8080/",
		Store:    "file",
		StateDir: defaultStateDir(),
		RedisURL: "redis://localhost:6379",
		Profile:  "default",
		Timeout:  30 * time.Second,
		Output:   "text",
	}
}

// LoadConfig layers the defaults, the YAML file at path (if any) and the
// BEANS_* environment. Flags are applied on top by the root command.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		data = []byte(os.ExpandEnv(string(data)))

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Endpoint = getEnvOrDefault("BEANS_ENDPOINT", c.Endpoint)
	c.Store = getEnvOrDefault("BEANS_STORE", c.Store)
	c.StateDir = getEnvOrDefault("BEANS_STATE_DIR", c.StateDir)
	c.RedisURL = getEnvOrDefault("BEANS_REDIS_URL", c.RedisURL)
	c.Profile = getEnvOrDefault("BEANS_PROFILE", c.Profile)
}

// Validate rejects settings the factory cannot use
func (c *Config) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New("endpoint must be set"))
	}
	switch c.Store {
	case "file", "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("store must be file, memory or redis, got %q", c.Store))
	}
	switch c.Output {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("output must be text or json, got %q", c.Output))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	return errors.Join(errs...)
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".minibeans"
	}
	return filepath.Join(home, ".minibeans")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
