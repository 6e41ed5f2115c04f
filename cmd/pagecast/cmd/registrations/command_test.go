package registrations

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pagecast"
	"github.com/agentstation/pagecast/cmd/application"
	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/registration"
	"github.com/agentstation/pagecast/pkg/repository"
)

func newClient(t *testing.T) pagecast.Client {
	t.Helper()
	single := func() (repository.SinglePageRepository[string], error) { return nil, nil }
	multi := func() (repository.MultiPageRepository, error) { return nil, nil }
	c, err := pagecast.New(pagecast.WithRegistrations(
		registration.NewSinglePage(pages.NewType("article"), "api", single),
		registration.NewMultiPage(pages.NewType("article"), "disk", multi),
		registration.NewSinglePage(pages.NewVersionedType("video", "v2"), "api", single),
	))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func execute(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	c := newClient(t)
	app := &application.Mock{
		ClientFunc:       func() (pagecast.Client, error) { return c, nil },
		OutputFormatFunc: func() string { return format },
	}
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRegistrationsJSON(t *testing.T) {
	out, err := execute(t, "json")
	require.NoError(t, err)

	var rows []registration.Row
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Equal(t, []registration.Row{
		{DataType: "article", Shape: "single-page", Repository: "api"},
		{DataType: "article", Shape: "multi-page", Repository: "disk"},
		{DataType: "video/v2", Shape: "single-page", Repository: "api"},
	}, rows)
}

func TestRegistrationsTypeFilter(t *testing.T) {
	out, err := execute(t, "json", "--type", "video/v2")
	require.NoError(t, err)

	var rows []registration.Row
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "api", rows[0].Repository)
}

func TestRegistrationsTable(t *testing.T) {
	out, err := execute(t, "table")
	require.NoError(t, err)

	assert.Contains(t, strings.ToUpper(out), "REPOSITORY")
	assert.Contains(t, out, "video/v2")
	assert.Contains(t, out, "disk")
}
