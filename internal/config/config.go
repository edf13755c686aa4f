package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when CONFIG_PATH is not set
const DefaultConfigPath = "servermonitor.yaml"

// Config contains application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port int `yaml:"port"`

	// Origins allowed by the CORS policy. The defaults are local development
	// origins and must be narrowed before any other deployment.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ProviderConfig contains cloud provider connection parameters
type ProviderConfig struct {
	Region string `yaml:"region"`

	// Optional static credentials; the default AWS chain is used when empty
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`

	// Upper bound for a single provider API call
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8000,
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			},
		},
		Provider: ProviderConfig{
			Region:      "ap-northeast-2",
			CallTimeout: 30 * time.Second,
		},
	}
}

// Load loads configuration from the YAML file pointed to by CONFIG_PATH
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	config := Default()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.Provider.Region = os.ExpandEnv(config.Provider.Region)
	config.Provider.AccessKeyID = os.ExpandEnv(config.Provider.AccessKeyID)
	config.Provider.SecretAccessKey = os.ExpandEnv(config.Provider.SecretAccessKey)
	for i, origin := range config.Server.AllowedOrigins {
		config.Server.AllowedOrigins[i] = os.ExpandEnv(origin)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyEnv() error {
	if region := os.Getenv("AWS_REGION"); region != "" {
		c.Provider.Region = region
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT %q: %w", port, err)
		}
		c.Server.Port = p
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, o)
			}
		}
	}

	return nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", c.Server.Port)
	}

	if c.Provider.Region == "" {
		return fmt.Errorf("provider region is required (set provider.region in config file or AWS_REGION environment variable)")
	}

	if (c.Provider.AccessKeyID == "") != (c.Provider.SecretAccessKey == "") {
		return fmt.Errorf("access_key_id and secret_access_key must be set together")
	}

	if c.Provider.CallTimeout <= 0 {
		return fmt.Errorf("provider call_timeout must be positive, got %s", c.Provider.CallTimeout)
	}

	return nil
}
