package service

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/degree-advisor-api/internal/models"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
)

type auditObserver interface {
	ObserveAudit(program models.Program, valid bool)
}

// AuditService checks a whole plan against its program's graduation rules.
type AuditService struct {
	catalog      courseLookup
	requirements requirementResolver
	metrics      auditObserver
	logger       *zap.Logger
}

// NewAuditService wires the plan auditor.
func NewAuditService(catalog courseLookup, requirements requirementResolver, metrics auditObserver, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{catalog: catalog, requirements: requirements, metrics: metrics, logger: logger}
}

// Audit sweeps the plan once in semester order and reports every rule
// violation. It never stops at the first issue; only an unknown program
// aborts the audit.
func (s *AuditService) Audit(plan *models.DegreePlan) (*models.AuditReport, error) {
	if plan == nil {
		return nil, appErrors.Clone(appErrors.ErrMalformedInput, "degree plan is required")
	}
	spec, err := s.requirements.Resolve(plan.Program)
	if err != nil {
		return nil, err
	}

	report := &models.AuditReport{
		StudentID:        plan.StudentID,
		Program:          plan.Program,
		Issues:           []string{},
		Warnings:         []string{},
		SemesterAnalysis: []models.SemesterAnalysis{},
	}

	semesters := make([]models.SemesterSlot, len(plan.Semesters))
	copy(semesters, plan.Semesters)
	sort.SliceStable(semesters, func(i, j int) bool { return semesters[i].Ordinal < semesters[j].Ordinal })

	coreCodes := spec.CoreCodes()
	projectCodes := spec.ProjectCodes()
	coreCompleted := make(map[string]struct{})
	projectCompleted := make(map[string]struct{})

	for _, semester := range semesters {
		units := semester.TotalUnits()
		report.TotalUnits += units

		analysis := models.SemesterAnalysis{
			SemesterIndex: semester.Ordinal,
			Units:         units,
			Courses:       make([]models.AuditCourse, 0, len(semester.Courses)),
			Issues:        []string{},
		}

		for _, c := range semester.Courses {
			analysis.Courses = append(analysis.Courses, models.AuditCourse{Code: c.Code, Name: c.Name, Units: c.Units})

			if _, isCore := coreCodes[c.Code]; isCore {
				if _, counted := coreCompleted[c.Code]; !counted {
					coreCompleted[c.Code] = struct{}{}
					report.CoreUnits += c.Units
				}
			}
			if _, isProject := projectCodes[c.Code]; isProject {
				if _, counted := projectCompleted[c.Code]; !counted {
					projectCompleted[c.Code] = struct{}{}
					report.ProjectUnits += c.Units
				}
			}
		}

		switch {
		case units < spec.MinSemesterUnits:
			analysis.Issues = append(analysis.Issues,
				fmt.Sprintf("Insufficient units in semester %d: %d/%d", semester.Ordinal, units, spec.MinSemesterUnits))
			report.Issues = append(report.Issues,
				fmt.Sprintf("Semester %d has insufficient units (%d)", semester.Ordinal, units))
		case units > spec.MaxSemesterUnits:
			analysis.Issues = append(analysis.Issues,
				fmt.Sprintf("Too many units in semester %d: %d/%d", semester.Ordinal, units, spec.MaxSemesterUnits))
			report.Issues = append(report.Issues,
				fmt.Sprintf("Semester %d has too many units (%d)", semester.Ordinal, units))
		}

		report.SemesterAnalysis = append(report.SemesterAnalysis, analysis)
	}

	if report.TotalUnits < spec.MinTotalUnits {
		report.Issues = append(report.Issues, fmt.Sprintf("Insufficient total units: %d/%d", report.TotalUnits, spec.MinTotalUnits))
	}
	if report.CoreUnits < spec.MinCoreUnits {
		report.Issues = append(report.Issues, fmt.Sprintf("Insufficient core units: %d/%d", report.CoreUnits, spec.MinCoreUnits))
	}
	if report.ProjectUnits < spec.MinProjectUnits {
		report.Issues = append(report.Issues, fmt.Sprintf("Insufficient project units: %d/%d", report.ProjectUnits, spec.MinProjectUnits))
	}

	for _, section := range spec.SortedSections() {
		if sectionSatisfied(section, coreCompleted) {
			continue
		}
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"Core section %s is not yet satisfied. Take one of: %s", section.Name, s.describeCodes(section.Codes)))
	}

	for _, code := range spec.ProjectAreas {
		if _, done := projectCompleted[code]; done {
			continue
		}
		report.Issues = append(report.Issues, fmt.Sprintf("Missing project course: %s", s.describeCode(code)))
	}

	report.ElectiveUnits = report.TotalUnits - report.CoreUnits - report.ProjectUnits
	report.IsValid = len(report.Issues) == 0

	if s.metrics != nil {
		s.metrics.ObserveAudit(plan.Program, report.IsValid)
	}
	s.logger.Debug("plan audited",
		zap.String("student_id", plan.StudentID),
		zap.String("program", string(plan.Program)),
		zap.Bool("valid", report.IsValid),
		zap.Int("issues", len(report.Issues)),
		zap.Int("warnings", len(report.Warnings)),
	)
	return report, nil
}

func sectionSatisfied(section models.CoreSection, completed map[string]struct{}) bool {
	for _, code := range section.Codes {
		if _, ok := completed[code]; ok {
			return true
		}
	}
	return false
}

func (s *AuditService) describeCodes(codes []string) string {
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, s.describeCode(code))
	}
	return strings.Join(parts, " or ")
}

func (s *AuditService) describeCode(code string) string {
	if course, ok := s.catalog.Lookup(code); ok && course.Name != "" {
		return fmt.Sprintf("%s - %s", code, course.Name)
	}
	return code
}
