package service

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/degree-advisor-api/internal/models"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
)

type courseLookup interface {
	Lookup(code string) (models.Course, bool)
}

type requirementResolver interface {
	Resolve(program models.Program) (*models.RequirementSpec, error)
}

type admissionObserver interface {
	ObserveAdmission(rule models.AdmissionRule, allowed bool)
}

// AdmissionService decides whether one course may be added to one semester.
type AdmissionService struct {
	catalog      courseLookup
	requirements requirementResolver
	metrics      admissionObserver
	logger       *zap.Logger
}

// NewAdmissionService wires the admission checker.
func NewAdmissionService(catalog courseLookup, requirements requirementResolver, metrics admissionObserver, logger *zap.Logger) *AdmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdmissionService{catalog: catalog, requirements: requirements, metrics: metrics, logger: logger}
}

// Check runs the admission rules in order and stops at the first failure.
// A failed rule is a normal Decision; only malformed input or an unknown
// program is returned as an error.
func (s *AdmissionService) Check(plan *models.DegreePlan, code string, ordinal int) (models.Decision, error) {
	if plan == nil {
		return models.Decision{}, appErrors.Clone(appErrors.ErrMalformedInput, "degree plan is required")
	}
	code = models.NormalizeCourseCode(code)
	if code == "" {
		return models.Decision{}, appErrors.Clone(appErrors.ErrMalformedInput, "course code is required")
	}
	if ordinal < 1 {
		return models.Decision{}, appErrors.Clonef(appErrors.ErrMalformedInput, "semester must be a positive integer, got %d", ordinal)
	}
	spec, err := s.requirements.Resolve(plan.Program)
	if err != nil {
		return models.Decision{}, err
	}

	decision := s.evaluate(plan, spec, code, ordinal)
	if s.metrics != nil {
		s.metrics.ObserveAdmission(decision.Rule, decision.Allowed)
	}
	s.logger.Debug("admission checked",
		zap.String("student_id", plan.StudentID),
		zap.String("course", code),
		zap.Int("semester", ordinal),
		zap.Bool("allowed", decision.Allowed),
		zap.String("rule", string(decision.Rule)),
	)
	return decision, nil
}

func (s *AdmissionService) evaluate(plan *models.DegreePlan, spec *models.RequirementSpec, code string, ordinal int) models.Decision {
	course, ok := s.catalog.Lookup(code)
	if !ok {
		return reject(models.RuleExistence, "Course %s was not found in the course catalog.", code)
	}

	completed := plan.CompletedCourses(ordinal)
	for _, prereq := range course.Prerequisites {
		if _, done := completed[prereq]; !done {
			return reject(models.RulePrerequisite,
				"Cannot add course %s: Prerequisite %s is not met. Please ensure the course is taken in an earlier semester.", code, prereq)
		}
	}

	slot, hasSlot := plan.Slot(ordinal)
	if hasSlot && slot.Has(code) {
		return reject(models.RuleDuplicate, "Course %s is already added to semester %d.", code, ordinal)
	}

	term := models.TermForOrdinal(ordinal)
	if !course.OfferedIn(term) {
		offered := "no listed term"
		if names := course.OfferedTermNames(); len(names) > 0 {
			offered = strings.Join(names, ", ")
		}
		return reject(models.RuleTerm,
			"The course %s is not available in semester %d (%s). It is offered in %s.", code, ordinal, term, offered)
	}

	current := 0
	if hasSlot {
		current = slot.TotalUnits()
	}
	if current+course.Units > spec.MaxSemesterUnits {
		return reject(models.RuleCapacity,
			"Cannot add course %s to semester %d: Exceeds the maximum units allowed per semester (%d units). Semester %d currently has %d units and the course adds %d.",
			code, ordinal, spec.MaxSemesterUnits, ordinal, current, course.Units)
	}

	if other, found := plan.FindCourse(code); found {
		return reject(models.RuleUniqueness, "Course %s has already been scheduled in semester %d.", code, other)
	}

	return models.Decision{Allowed: true, Message: fmt.Sprintf("The course %s can be added to semester %d.", code, ordinal)}
}

func reject(rule models.AdmissionRule, format string, args ...any) models.Decision {
	return models.Decision{Allowed: false, Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// ParseAdmissionInput reads the "<course_code> semester <n>" form used by
// the chat tooling.
func ParseAdmissionInput(input string) (string, int, error) {
	lower := strings.ToLower(input)
	idx := strings.LastIndex(lower, "semester")
	if idx < 0 {
		return "", 0, appErrors.Clonef(appErrors.ErrMalformedInput, "expected '<course_code> semester <n>', got %q", input)
	}
	code := models.NormalizeCourseCode(input[:idx])
	rawOrdinal := strings.TrimSpace(input[idx+len("semester"):])
	if code == "" {
		return "", 0, appErrors.Clonef(appErrors.ErrMalformedInput, "missing course code in %q", input)
	}
	ordinal, err := strconv.Atoi(rawOrdinal)
	if err != nil || ordinal < 1 {
		return "", 0, appErrors.Clonef(appErrors.ErrMalformedInput, "semester %q is not a positive integer", rawOrdinal)
	}
	return code, ordinal, nil
}
