package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/degree-advisor-api/internal/models"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
)

// RequirementRegistry maps each supported program to its validated rules.
type RequirementRegistry struct {
	specs map[models.Program]*models.RequirementSpec
}

// NewRequirementRegistry validates the tables and indexes them by program.
// Unknown programs, duplicate entries, empty sections and codes listed both
// as core and project courses are configuration errors.
func NewRequirementRegistry(specs []models.RequirementSpec, validate *validator.Validate) (*RequirementRegistry, error) {
	if validate == nil {
		validate = validator.New()
	}
	registry := &RequirementRegistry{specs: make(map[models.Program]*models.RequirementSpec, len(specs))}
	for i := range specs {
		spec := normalizeSpec(specs[i])
		if !spec.Program.Valid() {
			return nil, appErrors.Clonef(appErrors.ErrConfiguration, "requirements: unknown program %q", spec.Program)
		}
		if err := validate.Struct(spec); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status,
				fmt.Sprintf("requirements: program %s is malformed", spec.Program))
		}
		if _, dup := registry.specs[spec.Program]; dup {
			return nil, appErrors.Clonef(appErrors.ErrConfiguration, "requirements: program %s defined twice", spec.Program)
		}
		if err := checkSpecConsistency(&spec); err != nil {
			return nil, err
		}
		registry.specs[spec.Program] = &spec
	}
	return registry, nil
}

// Resolve returns the rules for a program or a ConfigurationError.
func (r *RequirementRegistry) Resolve(program models.Program) (*models.RequirementSpec, error) {
	if r != nil {
		if spec, ok := r.specs[program]; ok {
			return spec, nil
		}
	}
	return nil, appErrors.Clonef(appErrors.ErrConfiguration, "no graduation requirements configured for program %q", program)
}

// Programs lists the configured programs in enum order.
func (r *RequirementRegistry) Programs() []models.Program {
	out := []models.Program{}
	for _, p := range models.Programs {
		if _, ok := r.specs[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

func normalizeSpec(spec models.RequirementSpec) models.RequirementSpec {
	spec.Program = models.Program(strings.TrimSpace(string(spec.Program)))
	sections := make([]models.CoreSection, len(spec.CoreSections))
	for i, s := range spec.CoreSections {
		codes := make([]string, len(s.Codes))
		for j, c := range s.Codes {
			codes[j] = models.NormalizeCourseCode(c)
		}
		sections[i] = models.CoreSection{Name: strings.TrimSpace(s.Name), Codes: codes}
	}
	spec.CoreSections = sections
	project := make([]string, len(spec.ProjectAreas))
	for i, c := range spec.ProjectAreas {
		project[i] = models.NormalizeCourseCode(c)
	}
	spec.ProjectAreas = project
	return spec
}

func checkSpecConsistency(spec *models.RequirementSpec) error {
	names := make(map[string]struct{}, len(spec.CoreSections))
	for _, s := range spec.CoreSections {
		if _, dup := names[s.Name]; dup {
			return appErrors.Clonef(appErrors.ErrConfiguration, "requirements: program %s repeats core section %q", spec.Program, s.Name)
		}
		names[s.Name] = struct{}{}
	}
	core := spec.CoreCodes()
	seen := make(map[string]struct{}, len(spec.ProjectAreas))
	for _, code := range spec.ProjectAreas {
		if _, dup := seen[code]; dup {
			return appErrors.Clonef(appErrors.ErrConfiguration, "requirements: program %s repeats project course %s", spec.Program, code)
		}
		seen[code] = struct{}{}
		if _, clash := core[code]; clash {
			return appErrors.Clonef(appErrors.ErrConfiguration, "requirements: program %s lists %s as both core and project", spec.Program, code)
		}
	}
	return nil
}
