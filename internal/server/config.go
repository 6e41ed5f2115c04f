package server

import (
	"net"
	"strconv"
	"time"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// API settings
	PathPrefix string

	// DownloadTimeout bounds a download triggered over HTTP. Zero leaves
	// the request context as the only bound.
	DownloadTimeout time.Duration

	// HTTP timeouts. WriteTimeout stays zero so streams are not cut off.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            8080,
		PathPrefix:      "/api/v1",
		DownloadTimeout: 30 * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    0,
		IdleTimeout:     120 * time.Second,
	}
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
