package repository

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/degree-advisor-api/internal/models"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
)

//go:embed data/requirements.yaml
var defaultRequirements []byte

type requirementDocument struct {
	Programs []models.RequirementSpec `yaml:"programs"`
}

// ParseRequirementsYAML decodes requirement tables. Unknown fields are
// rejected so typos in the table fail at load time.
func ParseRequirementsYAML(data []byte) ([]models.RequirementSpec, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "requirements: payload is empty")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc requirementDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, "requirements: decode")
	}
	if len(doc.Programs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "requirements: no programs defined")
	}
	return doc.Programs, nil
}

// LoadRequirements reads the table at path, or the embedded default when
// path is empty.
func LoadRequirements(path string) ([]models.RequirementSpec, error) {
	if path == "" {
		return ParseRequirementsYAML(defaultRequirements)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status,
			fmt.Sprintf("requirements: read %s", path))
	}
	return ParseRequirementsYAML(content)
}
