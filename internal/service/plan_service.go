package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/degree-advisor-api/internal/dto"
	"github.com/noah-isme/degree-advisor-api/internal/models"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
)

// PlanStore persists one degree plan per student.
type PlanStore interface {
	FindByStudent(ctx context.Context, studentID string) (*models.DegreePlan, error)
	Save(ctx context.Context, plan *models.DegreePlan) error
}

type admissionChecker interface {
	Check(plan *models.DegreePlan, code string, ordinal int) (models.Decision, error)
}

type planAuditor interface {
	Audit(plan *models.DegreePlan) (*models.AuditReport, error)
}

type auditCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

type mutationObserver interface {
	ObserveMutation(operation string, applied bool)
}

// PlanServiceConfig tunes plan service behaviour.
type PlanServiceConfig struct {
	AuditCacheTTL time.Duration
}

// PlanService is the entry point for reading, changing and auditing a
// student's plan. Every call that reads-then-writes a plan holds that
// student's lock for its whole duration.
type PlanService struct {
	store        PlanStore
	catalog      courseLookup
	requirements requirementResolver
	admission    admissionChecker
	auditor      planAuditor
	cache        auditCache
	metrics      mutationObserver
	locker       *PlanLocker
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          PlanServiceConfig
}

// NewPlanService wires the plan service.
func NewPlanService(store PlanStore, catalog courseLookup, requirements requirementResolver, admission admissionChecker, auditor planAuditor, cache auditCache, metrics mutationObserver, locker *PlanLocker, validate *validator.Validate, logger *zap.Logger, cfg PlanServiceConfig) *PlanService {
	if locker == nil {
		locker = NewPlanLocker()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanService{
		store:        store,
		catalog:      catalog,
		requirements: requirements,
		admission:    admission,
		auditor:      auditor,
		cache:        cache,
		metrics:      metrics,
		locker:       locker,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
	}
}

// Get returns the stored plan.
func (s *PlanService) Get(ctx context.Context, studentID string) (*models.DegreePlan, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, appErrors.Clone(appErrors.ErrMalformedInput, "student id is required")
	}
	plan, err := s.store.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return plan, nil
}

// Import replaces the student's plan with the payload. Known course codes
// take their details from the catalog; unknown ones keep the payload values.
// Entries without a code or name are dropped.
func (s *PlanService) Import(ctx context.Context, studentID string, payload dto.PlanPayload) (*models.DegreePlan, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan payload")
	}
	if payload.StudentID != "" && payload.StudentID != studentID {
		return nil, appErrors.Clonef(appErrors.ErrValidation, "payload student_id %q does not match %q", payload.StudentID, studentID)
	}
	if !payload.Program.Valid() {
		return nil, appErrors.Clonef(appErrors.ErrValidation, "unknown program %q", payload.Program)
	}
	if _, err := s.requirements.Resolve(payload.Program); err != nil {
		return nil, appErrors.FromError(err)
	}

	plan := &models.DegreePlan{StudentID: studentID, Program: payload.Program, Semesters: []models.SemesterSlot{}}
	for _, semester := range payload.Semesters {
		slot := models.SemesterSlot{Ordinal: semester.Semester, Courses: []models.Course{}}
		for _, entry := range semester.Courses {
			if strings.TrimSpace(entry.Code) == "" || strings.TrimSpace(entry.Name) == "" {
				continue
			}
			slot.Courses = append(slot.Courses, s.materialize(entry, payload.Program))
		}
		plan.Semesters = append(plan.Semesters, slot)
	}
	if err := plan.Normalize(); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(studentID)
	defer unlock()
	if err := s.store.Save(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save degree plan")
	}
	s.invalidateAudit(ctx, studentID)
	s.observe("import", true)
	s.logger.Info("degree plan imported",
		zap.String("student_id", studentID),
		zap.String("program", string(plan.Program)),
		zap.Int("semesters", len(plan.Semesters)),
		zap.Int("total_units", plan.TotalUnits()),
	)
	return plan, nil
}

func (s *PlanService) materialize(entry dto.PlanCoursePayload, program models.Program) models.Course {
	if course, ok := s.catalog.Lookup(entry.Code); ok {
		return course
	}
	discipline := entry.Program
	if discipline == "" {
		discipline = string(program)
	}
	return models.Course{
		Code:          models.NormalizeCourseCode(entry.Code),
		Name:          strings.TrimSpace(entry.Name),
		Units:         entry.Units,
		OfferedTerms:  parseAvailability(entry.SemesterAvailability),
		Prerequisites: ExtractPrerequisites(entry.Prerequisites),
		Discipline:    discipline,
	}
}

func parseAvailability(raw any) []models.Term {
	switch v := raw.(type) {
	case string:
		return ParseOfferedTerms(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return ParseOfferedTerms(strings.Join(parts, ","))
	case []string:
		return ParseOfferedTerms(strings.Join(v, ","))
	default:
		return []models.Term{}
	}
}

// CheckAdmission evaluates whether a course may join a semester without
// changing the plan.
func (s *PlanService) CheckAdmission(ctx context.Context, studentID string, req dto.AdmissionCheckRequest) (models.Decision, error) {
	code, ordinal, err := resolveAdmissionTarget(req)
	if err != nil {
		return models.Decision{}, err
	}
	plan, err := s.Get(ctx, studentID)
	if err != nil {
		return models.Decision{}, err
	}
	return s.admission.Check(plan, code, ordinal)
}

func resolveAdmissionTarget(req dto.AdmissionCheckRequest) (string, int, error) {
	if strings.TrimSpace(req.CourseCode) != "" {
		if req.Semester < 1 {
			return "", 0, appErrors.Clonef(appErrors.ErrMalformedInput, "semester must be a positive integer, got %d", req.Semester)
		}
		return models.NormalizeCourseCode(req.CourseCode), req.Semester, nil
	}
	if strings.TrimSpace(req.Input) != "" {
		return ParseAdmissionInput(req.Input)
	}
	return "", 0, appErrors.Clone(appErrors.ErrMalformedInput, "course_code and semester, or input, is required")
}

// AddCourse runs the admission check and, when it passes, schedules the
// course. A rejected course is a normal result with Applied false.
func (s *PlanService) AddCourse(ctx context.Context, studentID string, req dto.AddCourseRequest) (*models.MutationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedInput.Code, appErrors.ErrMalformedInput.Status, "invalid add course payload")
	}
	code := models.NormalizeCourseCode(req.CourseCode)

	unlock := s.locker.Lock(studentID)
	defer unlock()

	plan, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	decision, err := s.admission.Check(plan, code, req.Semester)
	if err != nil {
		return nil, err
	}
	result := &models.MutationResult{StudentID: studentID, Decision: &decision, Semester: req.Semester, Message: decision.Message}
	if !decision.Allowed {
		result.TotalUnits = plan.TotalUnits()
		s.observe("add", false)
		return result, nil
	}

	course, _ := s.catalog.Lookup(code)
	if err := plan.AddCourse(course, req.Semester); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save degree plan")
	}
	s.invalidateAudit(ctx, studentID)
	s.observe("add", true)

	result.Applied = true
	result.Course = &course
	result.TotalUnits = plan.TotalUnits()
	result.Message = fmt.Sprintf("Course %s has been added to semester %d.", code, req.Semester)
	s.logger.Info("course added to plan",
		zap.String("student_id", studentID),
		zap.String("course", code),
		zap.Int("semester", req.Semester),
	)
	return result, nil
}

// RemoveCourse drops a course from a semester.
func (s *PlanService) RemoveCourse(ctx context.Context, studentID, code string, ordinal int) (*models.MutationResult, error) {
	if ordinal < 1 {
		return nil, appErrors.Clonef(appErrors.ErrMalformedInput, "semester must be a positive integer, got %d", ordinal)
	}
	unlock := s.locker.Lock(studentID)
	defer unlock()

	plan, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	removed, err := plan.RemoveCourse(code, ordinal)
	if err != nil {
		s.observe("remove", false)
		return nil, err
	}
	if err := s.store.Save(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save degree plan")
	}
	s.invalidateAudit(ctx, studentID)
	s.observe("remove", true)
	s.logger.Info("course removed from plan",
		zap.String("student_id", studentID),
		zap.String("course", removed.Code),
		zap.Int("semester", ordinal),
	)
	return &models.MutationResult{
		StudentID:  studentID,
		Applied:    true,
		Course:     &removed,
		Semester:   ordinal,
		TotalUnits: plan.TotalUnits(),
		Message:    fmt.Sprintf("Course %s has been removed from semester %d.", removed.Code, ordinal),
	}, nil
}

// Audit returns the audit report for the stored plan, served from cache
// when the plan has not changed since the last audit.
func (s *PlanService) Audit(ctx context.Context, studentID string) (*models.AuditReport, bool, error) {
	plan, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, false, err
	}
	key, err := auditCacheKey(plan)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fingerprint plan")
	}
	if s.cache != nil {
		var cached models.AuditReport
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, true, nil
		}
	}
	report, err := s.auditor.Audit(plan)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, report, s.cfg.AuditCacheTTL)
	}
	return report, false, nil
}

// Courses lists the plan's courses flattened with their semesters.
func (s *PlanService) Courses(ctx context.Context, studentID string) ([]models.FlatCourse, error) {
	plan, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return plan.Flatten(), nil
}

func (s *PlanService) invalidateAudit(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, auditCachePrefix(studentID)+"*")
}

func (s *PlanService) observe(operation string, applied bool) {
	if s.metrics != nil {
		s.metrics.ObserveMutation(operation, applied)
	}
}

func auditCachePrefix(studentID string) string {
	return fmt.Sprintf("audit:%s:", studentID)
}

// auditCacheKey fingerprints the plan contents so any change yields a new key.
func auditCacheKey(plan *models.DegreePlan) (string, error) {
	raw, err := json.Marshal(plan)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return auditCachePrefix(plan.StudentID) + hex.EncodeToString(sum[:8]), nil
}
