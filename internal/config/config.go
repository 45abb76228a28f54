package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config carries the editor engine's settings: where the document
// collaborator lives, how saving is paced and how the stub behaves.
type Config struct {
	Environment string `yaml:"environment"`
	APIBaseURL  string `yaml:"api_base_url"`
	APIToken    string `yaml:"api_token"`

	// DebounceMillis is the pause after the last edit before a save is
	// issued.
	DebounceMillis int `yaml:"debounce_millis"`

	// Rendering metrics for the headless caret locator.
	EditorWidth float64 `yaml:"editor_width"`

	// StubPort is where `inkwell stub` listens.
	StubPort string `yaml:"stub_port"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug"`
}

// Load builds the configuration: defaults, then an optional YAML file
// (INKWELL_CONFIG or ./inkwell.yaml), then environment overrides.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:    "dev",
		APIBaseURL:     "http://localhost:8080",
		DebounceMillis: 1000,
		EditorWidth:    680,
		StubPort:       "8080",
	}

	path := os.Getenv("INKWELL_CONFIG")
	if path == "" {
		if _, err := os.Stat("inkwell.yaml"); err == nil {
			path = "inkwell.yaml"
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.APIBaseURL = getEnv("INKWELL_API_URL", cfg.APIBaseURL)
	cfg.APIToken = getEnv("INKWELL_API_TOKEN", cfg.APIToken)
	cfg.StubPort = getEnv("INKWELL_STUB_PORT", cfg.StubPort)
	if raw := os.Getenv("INKWELL_DEBOUNCE_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("invalid INKWELL_DEBOUNCE_MS %q", raw)
		}
		cfg.DebounceMillis = ms
	}
	cfg.Debug = getEnv("DEBUG", defaultDebug(cfg.Environment)) == "true"

	return cfg, nil
}

// defaultDebug returns the default debug setting based on environment
func defaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
