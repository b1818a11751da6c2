package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	// HTTP surface
	ListenAddr string

	// LLM backend (OpenAI-compatible local server)
	LLMBaseURL string
	LLMAPIKey  string

	// Timeouts
	FetchTimeout      time.Duration
	GenerationTimeout time.Duration

	// Limits
	MaxUploadBytes int

	// Behavior
	CacheDir  string
	UserAgent string
	Verbose   bool
}

// withDefaults fills unset fields with working local-development values.
func (c Config) withDefaults() Config {
	if c.ListenAddr == "" {
		c.ListenAddr = ":5000"
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.GenerationTimeout <= 0 {
		c.GenerationTimeout = 60 * time.Second
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 16 << 20
	}
	if c.UserAgent == "" {
		c.UserAgent = "letterpress/1.0 (+https://github.com/jkautto/letterpress)"
	}
	return c
}
