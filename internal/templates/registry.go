// Package templates holds the starter documents offered when creating a document.
package templates

import (
	"embed"
	"fmt"

	"quill/internal/domain"
	models "quill/internal/domain/models/versioning"
	versioningSvc "quill/internal/domain/services/versioning"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

type catalogFile struct {
	Templates []models.Template `yaml:"templates"`
}

// Registry is the read-only template catalogue loaded from embedded YAML
type Registry struct {
	templates []models.Template
	byID      map[string]int
}

var _ versioningSvc.TemplateCatalog = (*Registry)(nil)

// NewRegistry loads the embedded template catalogue
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/templates.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read templates.yaml: %w", err)
	}
	return parseRegistry(data)
}

func parseRegistry(data []byte) (*Registry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal templates.yaml: %w", err)
	}

	r := &Registry{
		templates: file.Templates,
		byID:      make(map[string]int, len(file.Templates)),
	}
	for i, t := range file.Templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template %d has no id", i)
		}
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		r.byID[t.ID] = i
	}

	return r, nil
}

// List returns all templates in catalogue order
func (r *Registry) List() []models.Template {
	out := make([]models.Template, len(r.templates))
	copy(out, r.templates)
	return out
}

// Get returns a template by ID
func (r *Registry) Get(id string) (*models.Template, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("template %q: %w", id, domain.ErrTemplateNotFound)
	}
	t := r.templates[i]
	return &t, nil
}
