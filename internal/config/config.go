package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"go-screenshot-optimizer/internal/optimizer"
)

// Config carries everything the agent needs: the local control server,
// the capture sweep, the default optimization policy, and the uploader.
type Config struct {
	Host               string        `yaml:"host"`
	Port               string        `yaml:"port"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size"`

	CaptureDir    string        `yaml:"capture_dir"`
	OutputDir     string        `yaml:"output_dir"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	SweepWorkers  int           `yaml:"sweep_workers"`

	Policy optimizer.Policy `yaml:"policy"`

	Uploader       string `yaml:"uploader"` // "azure", "local" or "none"
	AzureAccount   string `yaml:"azure_account"`
	AzureKey       string `yaml:"azure_key"`
	AzureContainer string `yaml:"azure_container"`
	SpoolDir       string `yaml:"spool_dir"`

	ResultHistorySize int `yaml:"result_history_size"`
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// Load builds the configuration from an optional YAML file overlaid with
// environment variables. Environment always wins over the file.
func Load() (*Config, error) {
	cfg := defaults()

	if path := getEnvOrDefault("CONFIG_FILE", "optimizer.yaml"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("invalid config file %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Host:               "127.0.0.1",
		Port:               "8317",
		RequestTimeout:     30 * time.Second,
		MaxRequestBodySize: 25 * 1024 * 1024, // 25MB, raw screenshots are large
		CaptureDir:         "captures",
		OutputDir:          "",
		SweepInterval:      time.Minute,
		SweepWorkers:       1,
		Policy:             optimizer.DefaultPolicy(),
		Uploader:           "none",
		AzureContainer:     "screenshots",
		SpoolDir:           "spool",
		ResultHistorySize:  200,
	}
}

func applyEnv(cfg *Config) {
	cfg.Host = getEnvOrDefault("HOST", cfg.Host)
	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.RequestTimeout = parseDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.MaxRequestBodySize = parseIntOrDefault("MAX_REQUEST_BODY_SIZE", cfg.MaxRequestBodySize)

	cfg.CaptureDir = getEnvOrDefault("CAPTURE_DIR", cfg.CaptureDir)
	cfg.OutputDir = getEnvOrDefault("OUTPUT_DIR", cfg.OutputDir)
	cfg.SweepInterval = parseDurationOrDefault("SWEEP_INTERVAL", cfg.SweepInterval)
	cfg.SweepWorkers = int(parseIntOrDefault("SWEEP_WORKERS", int64(cfg.SweepWorkers)))

	if value := os.Getenv("OPTIMIZE_FORMAT"); value != "" {
		if format, err := optimizer.ParseFormat(value); err == nil {
			cfg.Policy.Format = format
		}
	}
	cfg.Policy.Quality = int(parseIntOrDefault("OPTIMIZE_QUALITY", int64(cfg.Policy.Quality)))
	cfg.Policy.MaxWidth = int(parseIntOrDefault("OPTIMIZE_MAX_WIDTH", int64(cfg.Policy.MaxWidth)))
	cfg.Policy.MaxHeight = int(parseIntOrDefault("OPTIMIZE_MAX_HEIGHT", int64(cfg.Policy.MaxHeight)))
	if value := os.Getenv("OPTIMIZE_STRIP_METADATA"); value != "" {
		cfg.Policy.StripMetadata = value == "true" || value == "1"
	}

	cfg.Uploader = getEnvOrDefault("UPLOADER", cfg.Uploader)
	cfg.AzureAccount = getEnvOrDefault("AZURE_STORAGE_ACCOUNT", cfg.AzureAccount)
	cfg.AzureKey = getEnvOrDefault("AZURE_STORAGE_KEY", cfg.AzureKey)
	cfg.AzureContainer = getEnvOrDefault("AZURE_STORAGE_CONTAINER", cfg.AzureContainer)
	cfg.SpoolDir = getEnvOrDefault("SPOOL_DIR", cfg.SpoolDir)

	cfg.ResultHistorySize = int(parseIntOrDefault("RESULT_HISTORY_SIZE", int64(cfg.ResultHistorySize)))
}

func (c *Config) validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", c.RequestTimeout)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be > 0 (got %s)", c.SweepInterval)
	}
	if c.SweepWorkers <= 0 {
		return fmt.Errorf("SWEEP_WORKERS must be > 0 (got %d)", c.SweepWorkers)
	}
	if c.ResultHistorySize <= 0 {
		return fmt.Errorf("RESULT_HISTORY_SIZE must be > 0 (got %d)", c.ResultHistorySize)
	}
	switch c.Uploader {
	case "azure":
		if c.AzureAccount == "" || c.AzureKey == "" {
			return fmt.Errorf("azure uploader requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
	case "local", "none":
	default:
		return fmt.Errorf("unknown uploader: %q", c.Uploader)
	}
	return c.Policy.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
