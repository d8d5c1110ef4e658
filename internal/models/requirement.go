package models

import "sort"

// Program identifies a supported degree program.
type Program string

const (
	ProgramIT      Program = "IT"
	ProgramMSECE   Program = "MSECE"
	ProgramMSECEAD Program = "MS_ECE_AD"
	ProgramEAI     Program = "EAI"
)

// Programs lists every supported program.
var Programs = []Program{ProgramIT, ProgramMSECE, ProgramMSECEAD, ProgramEAI}

// Valid reports whether p is one of the supported programs.
func (p Program) Valid() bool {
	for _, known := range Programs {
		if p == known {
			return true
		}
	}
	return false
}

// CoreSection is a named group of interchangeable required courses.
// One member present satisfies the section.
type CoreSection struct {
	Name  string   `yaml:"name" json:"name" validate:"required"`
	Codes []string `yaml:"codes" json:"codes" validate:"required,min=1,dive,required"`
}

// RequirementSpec holds the graduation rules for one program.
type RequirementSpec struct {
	Program          Program       `yaml:"program" json:"program" validate:"required"`
	MinTotalUnits    int           `yaml:"min_total_units" json:"min_total_units" validate:"gte=0"`
	MinSemesterUnits int           `yaml:"min_semester_units" json:"min_semester_units" validate:"gte=0"`
	MaxSemesterUnits int           `yaml:"max_semester_units" json:"max_semester_units" validate:"gt=0,gtefield=MinSemesterUnits"`
	MinCoreUnits     int           `yaml:"min_core_units" json:"min_core_units" validate:"gte=0"`
	MinProjectUnits  int           `yaml:"min_project_units" json:"min_project_units" validate:"gte=0"`
	CoreSections     []CoreSection `yaml:"core_sections" json:"core_sections" validate:"dive"`
	ProjectAreas     []string      `yaml:"project_areas" json:"project_areas" validate:"dive,required"`
}

// SortedSections returns the core sections ordered by name.
func (r *RequirementSpec) SortedSections() []CoreSection {
	out := make([]CoreSection, len(r.CoreSections))
	copy(out, r.CoreSections)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CoreCodes returns the union of every core section's codes.
func (r *RequirementSpec) CoreCodes() map[string]struct{} {
	codes := make(map[string]struct{})
	for _, s := range r.CoreSections {
		for _, c := range s.Codes {
			codes[c] = struct{}{}
		}
	}
	return codes
}

// ProjectCodes returns the project area codes as a set.
func (r *RequirementSpec) ProjectCodes() map[string]struct{} {
	codes := make(map[string]struct{}, len(r.ProjectAreas))
	for _, c := range r.ProjectAreas {
		codes[c] = struct{}{}
	}
	return codes
}
