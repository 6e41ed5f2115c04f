package sources_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/pagecast/internal/sources"
	"github.com/agentstation/pagecast/pkg/errors"
)

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name  string
		spec  sources.Spec
		valid bool
	}{
		{"files", sources.Spec{Name: "disk", Kind: sources.KindFiles, Path: "./pages"}, true},
		{"files without path", sources.Spec{Name: "disk", Kind: sources.KindFiles}, false},
		{"http", sources.Spec{Name: "api", Kind: sources.KindHTTP, URL: "https://example.com"}, true},
		{"http without url", sources.Spec{Name: "api", Kind: sources.KindHTTP}, false},
		{"sqlite", sources.Spec{Name: "db", Kind: sources.KindSQLite, Path: "pages.db", Latency: "5ms"}, true},
		{"bad latency", sources.Spec{Name: "db", Kind: sources.KindSQLite, Path: "pages.db", Latency: "-1s"}, false},
		{"no name", sources.Spec{Kind: sources.KindFiles, Path: "."}, false},
		{"unknown kind", sources.Spec{Name: "x", Kind: "ftp"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.IsValidationError(err), "got %v", err)
			}
		})
	}
}

func TestSecret(t *testing.T) {
	t.Setenv("PAGECAST_TEST_TOKEN", "s3cret")
	spec := sources.Spec{Token: "$PAGECAST_TEST_TOKEN"}
	assert.Equal(t, "s3cret", spec.Secret())
}
