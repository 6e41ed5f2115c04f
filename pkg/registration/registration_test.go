package registration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/registration"
	"github.com/agentstation/pagecast/pkg/repository"
)

var (
	article = pages.NewType("article")
	author  = pages.NewType("author")
)

func single(t pages.Type, name string) registration.SinglePage[string] {
	return registration.NewSinglePage(t, name, func() (repository.SinglePageRepository[string], error) {
		return repository.SinglePageFunc[string](func(context.Context, string) (pages.Page, error) {
			return nil, nil
		}), nil
	})
}

func multi(t pages.Type, name string) registration.MultiPage {
	return registration.NewMultiPage(t, name, func() (repository.MultiPageRepository, error) {
		return repository.MultiPageFunc(func(context.Context) ([]pages.Page, error) {
			return nil, nil
		}), nil
	})
}

func names[R registration.Registration](rs []R) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.RepositoryName())
	}
	return out
}

func TestFind(t *testing.T) {
	regs := []registration.Registration{
		single(article, "fast"),
		multi(article, "list"),
		single(author, "people"),
		single(article, "slow"),
		multi(author, "directory"),
	}

	t.Run("single shape keeps source order", func(t *testing.T) {
		got, err := registration.Find[registration.SinglePage[string]](regs, article)
		require.NoError(t, err)
		assert.Equal(t, []string{"fast", "slow"}, names(got))
	})

	t.Run("multi shape", func(t *testing.T) {
		got, err := registration.Find[registration.MultiPage](regs, author)
		require.NoError(t, err)
		assert.Equal(t, []string{"directory"}, names(got))
	})

	t.Run("every returned entry matches shape and type", func(t *testing.T) {
		got, err := registration.Find[registration.SinglePage[string]](regs, article)
		require.NoError(t, err)
		for _, r := range got {
			assert.Equal(t, registration.ShapeSingle, r.Shape())
			assert.Equal(t, article, r.DataType())
		}
	})

	t.Run("id type is part of the shape", func(t *testing.T) {
		_, err := registration.Find[registration.SinglePage[int]](regs, article)
		assert.True(t, errors.IsNotRegistered(err))
	})
}

func TestFindNotRegistered(t *testing.T) {
	tests := []struct {
		name    string
		regs    []registration.Registration
		find    func([]registration.Registration) error
		message string
	}{
		{
			name: "empty set",
			regs: nil,
			find: func(r []registration.Registration) error {
				_, err := registration.Find[registration.SinglePage[string]](r, article)
				return err
			},
			message: "no repository registered for page article in the single-page set of registrations",
		},
		{
			name: "only the other shape",
			regs: []registration.Registration{single(author, "people")},
			find: func(r []registration.Registration) error {
				_, err := registration.Find[registration.MultiPage](r, author)
				return err
			},
			message: "no repository registered for page author in the multi-page set of registrations",
		},
		{
			name: "only other types",
			regs: []registration.Registration{multi(article, "list")},
			find: func(r []registration.Registration) error {
				_, err := registration.Find[registration.MultiPage](r, author)
				return err
			},
			message: "no repository registered for page author in the multi-page set of registrations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.find(tt.regs)
			require.Error(t, err)

			var nr *errors.NotRegisteredError
			require.ErrorAs(t, err, &nr)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestDescribe(t *testing.T) {
	regs := []registration.Registration{single(article, "fast"), multi(author, "directory"), single(article, "slow")}

	assert.Equal(t, []registration.Row{
		{DataType: "article", Shape: "single-page", Repository: "fast"},
		{DataType: "author", Shape: "multi-page", Repository: "directory"},
		{DataType: "article", Shape: "single-page", Repository: "slow"},
	}, registration.Describe(regs))

	assert.Equal(t, []pages.Type{article, author}, registration.Types(regs))
}
