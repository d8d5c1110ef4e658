package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/degree-advisor-api/internal/dto"
	"github.com/noah-isme/degree-advisor-api/internal/middleware"
	"github.com/noah-isme/degree-advisor-api/internal/models"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
	"github.com/noah-isme/degree-advisor-api/pkg/response"
)

type planService interface {
	Get(ctx context.Context, studentID string) (*models.DegreePlan, error)
	Import(ctx context.Context, studentID string, payload dto.PlanPayload) (*models.DegreePlan, error)
	CheckAdmission(ctx context.Context, studentID string, req dto.AdmissionCheckRequest) (models.Decision, error)
	AddCourse(ctx context.Context, studentID string, req dto.AddCourseRequest) (*models.MutationResult, error)
	RemoveCourse(ctx context.Context, studentID, code string, ordinal int) (*models.MutationResult, error)
	Audit(ctx context.Context, studentID string) (*models.AuditReport, bool, error)
	Courses(ctx context.Context, studentID string) ([]models.FlatCourse, error)
}

// PlanHandler exposes degree plan endpoints.
type PlanHandler struct {
	service planService
}

// NewPlanHandler builds a new handler.
func NewPlanHandler(service planService) *PlanHandler {
	return &PlanHandler{service: service}
}

// Get godoc
// @Summary Show a student's degree plan
// @Tags Plans
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /plans/{studentId} [get]
func (h *PlanHandler) Get(c *gin.Context) {
	plan, err := h.service.Get(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, plan)
}

// Import godoc
// @Summary Import or replace a student's degree plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param payload body dto.PlanPayload true "Plan payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /plans/{studentId} [put]
func (h *PlanHandler) Import(c *gin.Context) {
	var payload dto.PlanPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrMalformedInput.Code, http.StatusBadRequest, "invalid plan payload"))
		return
	}
	plan, err := h.service.Import(c.Request.Context(), c.Param("studentId"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, plan)
}

// CheckAdmission godoc
// @Summary Check whether a course can be added to a semester
// @Tags Plans
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param payload body dto.AdmissionCheckRequest true "Course and semester"
// @Success 200 {object} response.Envelope
// @Router /plans/{studentId}/admission [post]
func (h *PlanHandler) CheckAdmission(c *gin.Context) {
	var req dto.AdmissionCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrMalformedInput.Code, http.StatusBadRequest, "invalid admission request"))
		return
	}
	decision, err := h.service.CheckAdmission(c.Request.Context(), c.Param("studentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, decision)
}

// AddCourse godoc
// @Summary Add a course to a semester after an admission check
// @Description Rejected additions return 200 with applied=false and the failing rule.
// @Tags Plans
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param payload body dto.AddCourseRequest true "Course and semester"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Router /plans/{studentId}/courses [post]
func (h *PlanHandler) AddCourse(c *gin.Context) {
	var req dto.AddCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrMalformedInput.Code, http.StatusBadRequest, "invalid course request"))
		return
	}
	result, err := h.service.AddCourse(c.Request.Context(), c.Param("studentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Applied {
		response.Created(c, result)
		return
	}
	response.OK(c, result)
}

// RemoveCourse godoc
// @Summary Remove a course from a semester
// @Tags Plans
// @Produce json
// @Param studentId path string true "Student ID"
// @Param semester path int true "Semester ordinal"
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /plans/{studentId}/semesters/{semester}/courses/{code} [delete]
func (h *PlanHandler) RemoveCourse(c *gin.Context) {
	ordinal, err := strconv.Atoi(c.Param("semester"))
	if err != nil || ordinal < 1 {
		response.Error(c, appErrors.Clonef(appErrors.ErrMalformedInput, "semester must be a positive integer, got %q", c.Param("semester")))
		return
	}
	result, err := h.service.RemoveCourse(c.Request.Context(), c.Param("studentId"), c.Param("code"), ordinal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Courses godoc
// @Summary List the plan's courses with their semester
// @Tags Plans
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /plans/{studentId}/courses [get]
func (h *PlanHandler) Courses(c *gin.Context) {
	courses, err := h.service.Courses(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, courses, map[string]interface{}{"count": len(courses)})
}

// Audit godoc
// @Summary Audit the full plan against the program requirements
// @Tags Plans
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /plans/{studentId}/audit [get]
func (h *PlanHandler) Audit(c *gin.Context) {
	report, cached, err := h.service.Audit(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.OK(c, report, middleware.ExtractMeta(c))
}
