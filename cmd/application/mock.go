package application

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/pagecast"
)

// Mock implements Application for tests. A nil function field yields the
// zero value.
type Mock struct {
	ClientFunc       func() (pagecast.Client, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	TimeoutFunc      func() time.Duration
	VersionFunc      func() string
}

var _ Application = (*Mock)(nil)

// Client returns the mock client.
func (m *Mock) Client() (pagecast.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc()
	}
	return nil, nil
}

// Logger returns the mock logger or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	nop := zerolog.Nop()
	return &nop
}

// OutputFormat returns the mock format or json.
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Timeout returns the mock timeout.
func (m *Mock) Timeout() time.Duration {
	if m.TimeoutFunc != nil {
		return m.TimeoutFunc()
	}
	return 0
}

// Version returns the mock version or "test".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "test"
}

// Commit returns a fixed commit.
func (m *Mock) Commit() string { return "none" }

// Date returns a fixed build date.
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns a fixed builder.
func (m *Mock) BuiltBy() string { return "test" }
