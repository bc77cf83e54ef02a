package template

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"bidscore/internal/score"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Template is a named preset scoring configuration.
type Template struct {
	ID          string          `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	Config      score.RawConfig `yaml:"config" json:"config"`
}

type NotFoundError struct {
	message string
}

func (e *NotFoundError) Error() string {
	return e.message
}

func NewNotFoundError(id string) *NotFoundError {
	return &NotFoundError{message: "template not found: " + id}
}

// Repository holds validated templates in definition order.
// It is immutable after construction and safe for concurrent use.
type Repository struct {
	templates []Template
	index     map[string]int
}

// List returns all templates in definition order.
func (r *Repository) List() []Template {
	result := make([]Template, len(r.templates))
	copy(result, r.templates)
	return result
}

// Get returns the template with the given id or a *NotFoundError.
func (r *Repository) Get(id string) (Template, error) {
	i, found := r.index[id]
	if !found {
		return Template{}, NewNotFoundError(id)
	}
	return r.templates[i], nil
}

// NewRepository checks that every template has a unique id and a valid
// configuration.
func NewRepository(templates []Template) (*Repository, error) {
	repo := Repository{
		templates: templates,
		index:     make(map[string]int, len(templates)),
	}

	for i, t := range templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template %d: id must be specified", i)
		}
		if _, dup := repo.index[t.ID]; dup {
			return nil, fmt.Errorf("template %s: duplicate id", t.ID)
		}
		if _, err := score.Validate(t.Config); err != nil {
			return nil, fmt.Errorf("template %s: %w", t.ID, err)
		}
		repo.index[t.ID] = i
	}

	return &repo, nil
}

// Load parses a YAML list of templates.
func Load(content []byte) (*Repository, error) {
	var templates []Template
	if err := yaml.Unmarshal(content, &templates); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if len(templates) == 0 {
		return nil, errors.New("templates: at least one template must be defined")
	}
	return NewRepository(templates)
}

// LoadFromFile reads templates from file. An empty file name selects the
// built-in presets.
func LoadFromFile(file string) (*Repository, error) {
	if file == "" {
		return Default()
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return Load(content)
}

// Default returns the built-in presets.
func Default() (*Repository, error) {
	return Load(defaultTemplates)
}
