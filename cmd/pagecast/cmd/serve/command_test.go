package serve

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pagecast"
	"github.com/agentstation/pagecast/cmd/application"
	"github.com/agentstation/pagecast/internal/server"
)

func flagsCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestConfigFromFlags(t *testing.T) {
	cfg, err := configFromFlags(flagsCommand(t, "--port", "9000", "--prefix", "/v2", "--read-timeout", "3s"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/v2", cfg.PathPrefix)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
	assert.Equal(t, server.DefaultConfig().Host, cfg.Host)
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "7001")
	t.Setenv("HTTP_HOST", "0.0.0.0")

	cfg, err := configFromFlags(flagsCommand(t))
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)

	// flags win over the environment
	cfg, err = configFromFlags(flagsCommand(t, "--port", "7002"))
	require.NoError(t, err)
	assert.Equal(t, 7002, cfg.Port)

	t.Setenv("HTTP_PORT", "not-a-port")
	_, err = configFromFlags(flagsCommand(t))
	assert.Error(t, err)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestRunServesUntilCanceled(t *testing.T) {
	c, err := pagecast.New()
	require.NoError(t, err)
	defer c.Close()

	app := &application.Mock{ClientFunc: func() (pagecast.Client, error) { return c, nil }}
	cfg := server.DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, app, cfg) }()

	url := "http://" + net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)) + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
