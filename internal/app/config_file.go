package app

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the optional single-file configuration schema. Nested
// sections map naturally to the dotted flag names.
type FileConfig struct {
	Listen string `yaml:"listen"`

	LLM struct {
		BaseURL string `yaml:"base"`
		Key     string `yaml:"key"`
	} `yaml:"llm"`

	// Durations are strings in time.ParseDuration syntax ("30s", "2m");
	// yaml.v3 has no native duration decoding.
	Timeouts struct {
		Fetch      string `yaml:"fetch"`
		Generation string `yaml:"generation"`
	} `yaml:"timeouts"`

	Max struct {
		UploadBytes int `yaml:"uploadBytes"`
	} `yaml:"max"`

	Cache struct {
		Dir string `yaml:"dir"`
	} `yaml:"cache"`

	UserAgent string `yaml:"userAgent"`
	Verbose   bool   `yaml:"verbose"`
}

// MergeFileConfig reads a YAML config file and fills every Config field the
// caller left unset. Flags and environment take precedence over the file.
func MergeFileConfig(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fc.Listen
	}
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = fc.LLM.Key
	}
	if cfg.FetchTimeout <= 0 && fc.Timeouts.Fetch != "" {
		d, err := time.ParseDuration(fc.Timeouts.Fetch)
		if err != nil {
			return fmt.Errorf("timeouts.fetch: %w", err)
		}
		cfg.FetchTimeout = d
	}
	if cfg.GenerationTimeout <= 0 && fc.Timeouts.Generation != "" {
		d, err := time.ParseDuration(fc.Timeouts.Generation)
		if err != nil {
			return fmt.Errorf("timeouts.generation: %w", err)
		}
		cfg.GenerationTimeout = d
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = fc.Max.UploadBytes
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = fc.UserAgent
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
	return nil
}
