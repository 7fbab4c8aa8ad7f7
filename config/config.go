package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// EnvAPIKey holds the bearer token for the document service.
	EnvAPIKey = "RAGFLOW_API_KEY"
	// EnvAPIURL overrides the service base URL.
	EnvAPIURL = "RAGFLOW_API_URL"

	defaultBaseURL = "http://127.0.0.1:9380"
)

// Duration wraps time.Duration so YAML can use strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// APIConfig configures the remote document service client.
type APIConfig struct {
	Key     string   `yaml:"key"`
	BaseURL string   `yaml:"baseUrl"`
	Timeout Duration `yaml:"timeout"`
}

// IngestConfig configures the local side of an ingestion run.
type IngestConfig struct {
	MaxFileSize      int64 `yaml:"maxFileSize"` // bytes
	MaxPDFPages      int   `yaml:"maxPdfPages"`
	PreflightWorkers int   `yaml:"preflightWorkers"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level       string   `yaml:"level"`
	Encoding    string   `yaml:"encoding"`
	OutputPaths []string `yaml:"outputPaths"`
}

// Config is the full tool configuration. It is built once at startup and
// passed down; nothing below main reads the process environment.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Ingest IngestConfig `yaml:"ingest"`
	Log    LogConfig    `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: defaultBaseURL,
			Timeout: Duration(5 * time.Minute),
		},
		Ingest: IngestConfig{
			MaxFileSize:      50 * 1024 * 1024, // 50MB
			MaxPDFPages:      1000,
			PreflightWorkers: 4,
		},
		Log: LogConfig{
			Level:       "info",
			Encoding:    "console",
			OutputPaths: []string{"stderr"},
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order. A .env file in the working directory is loaded
// first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.API.Key = key
	}
	if url := os.Getenv(EnvAPIURL); url != "" {
		cfg.API.BaseURL = url
	}

	return cfg, nil
}
