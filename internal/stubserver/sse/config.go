package sse

import "time"

// Config holds configuration for SSE connections.
type Config struct {
	// KeepAliveInterval is how often to send keep-alive comments to
	// prevent proxy timeouts on quiet streams.
	KeepAliveInterval time.Duration
}

// DefaultConfig returns the default SSE configuration.
func DefaultConfig() *Config {
	return &Config{
		KeepAliveInterval: 10 * time.Second,
	}
}
