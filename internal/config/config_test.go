package config_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pagecast/internal/config"
	"github.com/agentstation/pagecast/pkg/downloader"
	"github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/registration"
	"github.com/agentstation/pagecast/pkg/state"
)

const sample = `
family: site
policy: first-success
sources:
  - name: disk
    kind: files
    path: %s
  - name: api
    kind: http
    url: http://127.0.0.1:1
registrations:
  - type: article
    source: api
  - type: article
    source: disk
    shape: single
  - type: author/v2
    source: disk
    shape: multi
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAndBuild(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pages/article/hello.yaml", "title: Hello\n")
	path := writeFile(t, dir, "pagecast.yaml", fmtSample(filepath.Join(dir, "pages")))

	f, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "site", f.Family)
	assert.Equal(t, downloader.FirstSuccess, f.RacePolicy())

	regs, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, []registration.Row{
		{DataType: "article", Shape: "single-page", Repository: "api"},
		{DataType: "article", Shape: "multi-page", Repository: "api"},
		{DataType: "article", Shape: "single-page", Repository: "disk"},
		{DataType: "author/v2", Shape: "multi-page", Repository: "disk"},
	}, registration.Describe(regs))

	// the unreachable api fails, the disk source wins under first-success
	st := state.New()
	d := downloader.New[string](st, regs, downloader.WithRacePolicy(f.RacePolicy()))
	require.NoError(t, d.DownloadPage(context.Background(), pages.NewType("article"), "hello"))
	p, ok := st.History()[0].Page()
	require.True(t, ok)
	assert.Equal(t, "Hello", p.(*pages.Document).Fields["title"])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want func(error) bool
	}{
		{
			name: "unknown field",
			yaml: "registrations: []\nextra: true\n",
			want: func(err error) bool { var p *errors.ParseError; return errors.As(err, &p) },
		},
		{
			name: "no registrations",
			yaml: "sources: []\n",
			want: errors.IsValidationError,
		},
		{
			name: "unknown source",
			yaml: "registrations:\n  - type: article\n    source: nowhere\n",
			want: errors.IsValidationError,
		},
		{
			name: "bad shape",
			yaml: "sources:\n  - {name: d, kind: files, path: .}\nregistrations:\n  - {type: article, source: d, shape: many}\n",
			want: errors.IsValidationError,
		},
		{
			name: "bad policy",
			yaml: "policy: fastest\nsources:\n  - {name: d, kind: files, path: .}\nregistrations:\n  - {type: article, source: d}\n",
			want: errors.IsValidationError,
		},
		{
			name: "duplicate source",
			yaml: "sources:\n  - {name: d, kind: files, path: .}\n  - {name: d, kind: files, path: .}\nregistrations:\n  - {type: article, source: d}\n",
			want: errors.IsValidationError,
		},
		{
			name: "bad type",
			yaml: "sources:\n  - {name: d, kind: files, path: .}\nregistrations:\n  - {type: a/b/c, source: d}\n",
			want: errors.IsValidationError,
		},
		{
			name: "invalid source",
			yaml: "sources:\n  - {name: d, kind: http}\nregistrations:\n  - {type: article, source: d}\n",
			want: errors.IsValidationError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, tt.want(err), "unexpected error: %v", err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func fmtSample(path string) string {
	return fmt.Sprintf(sample, path)
}
