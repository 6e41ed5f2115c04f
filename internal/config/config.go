// Package config loads the registration file that declares page sources and
// binds page types to them.
//
//	family: site
//	policy: first-settled
//	sources:
//	  - name: disk
//	    kind: files
//	    path: ./pages
//	  - name: api
//	    kind: http
//	    url: https://cms.example.com/v1
//	    token: $CMS_TOKEN
//	registrations:
//	  - type: article
//	    source: api
//	  - type: article
//	    source: disk
//	    shape: single
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/pagecast/internal/sources"
	"github.com/agentstation/pagecast/internal/sources/registry"
	"github.com/agentstation/pagecast/pkg/downloader"
	"github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/registration"
	"github.com/agentstation/pagecast/pkg/repository"
)

// Shape values accepted in a registration entry.
const (
	ShapeSingle = "single"
	ShapeMulti  = "multi"
	ShapeBoth   = "both"
)

// File is the decoded registration file.
type File struct {
	Family        string             `yaml:"family,omitempty"`
	Policy        string             `yaml:"policy,omitempty"`
	Sources       []sources.Spec     `yaml:"sources"`
	Registrations []RegistrationSpec `yaml:"registrations"`
}

// RegistrationSpec binds a page type to a source.
type RegistrationSpec struct {
	Type   string `yaml:"type"`
	Source string `yaml:"source"`
	Shape  string `yaml:"shape,omitempty"` // single, multi or both (default)
}

// Load reads and validates a registration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		var perr *errors.ParseError
		if errors.As(err, &perr) {
			perr.File = path
		}
		return nil, err
	}
	return f, nil
}

// Parse decodes and validates a registration file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
		return nil, errors.NewParseError("yaml", "", err.Error(), err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks sources, references and shapes.
func (f *File) Validate() error {
	if _, ok := downloader.ParsePolicy(f.Policy); !ok {
		return errors.NewValidationError("policy", f.Policy, "must be first-settled or first-success")
	}

	names := make(map[string]bool, len(f.Sources))
	for i, s := range f.Sources {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
		if names[s.Name] {
			return errors.NewValidationError(fmt.Sprintf("sources[%d].name", i), s.Name, "duplicate source name")
		}
		names[s.Name] = true
	}

	if len(f.Registrations) == 0 {
		return errors.NewValidationError("registrations", nil, "at least one registration is required")
	}
	for i, r := range f.Registrations {
		field := fmt.Sprintf("registrations[%d]", i)
		if _, err := pages.TypeFromString(r.Type); err != nil {
			return errors.NewValidationError(field+".type", r.Type, err.Error())
		}
		if !names[r.Source] {
			return errors.NewValidationError(field+".source", r.Source, "unknown source")
		}
		switch r.Shape {
		case "", ShapeSingle, ShapeMulti, ShapeBoth:
		default:
			return errors.NewValidationError(field+".shape", r.Shape, "must be single, multi or both")
		}
	}
	return nil
}

// RacePolicy returns the configured policy.
func (f *File) RacePolicy() downloader.Policy {
	p, _ := downloader.ParsePolicy(f.Policy)
	return p
}

// Build turns the file into a registration set in file order. Each entry
// instantiates a fresh repository through the source registry on every
// download.
func (f *File) Build() ([]registration.Registration, error) {
	specs := make(map[string]sources.Spec, len(f.Sources))
	for _, s := range f.Sources {
		specs[s.Name] = s
	}

	var regs []registration.Registration
	for _, r := range f.Registrations {
		t, err := pages.TypeFromString(r.Type)
		if err != nil {
			return nil, errors.NewValidationError("type", r.Type, err.Error())
		}
		spec, ok := specs[r.Source]
		if !ok {
			return nil, errors.NewValidationError("source", r.Source, "unknown source")
		}

		if r.Shape != ShapeMulti {
			regs = append(regs, registration.NewSinglePage(t, spec.Name, func() (repository.SinglePageRepository[string], error) {
				return registry.Get(spec, t)
			}))
		}
		if r.Shape != ShapeSingle {
			regs = append(regs, registration.NewMultiPage(t, spec.Name, func() (repository.MultiPageRepository, error) {
				return registry.Get(spec, t)
			}))
		}
	}
	return regs, nil
}
