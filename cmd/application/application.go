// Package application provides the application interface for pagecast
// commands.
//
// Commands accept an Application rather than the concrete app type so they
// can be tested against a Mock:
//
//	mock := &application.Mock{
//	    ClientFunc: func() (pagecast.Client, error) { return client, nil },
//	}
//	cmd := download.NewCommand(mock)
package application

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/pagecast"
)

// Application provides the dependencies commands need.
//
// All methods must be safe for concurrent access.
type Application interface {
	// Client returns the pagecast client built from the registration file,
	// creating it lazily.
	Client() (pagecast.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Timeout bounds a single download. Zero means no bound.
	Timeout() time.Duration

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
