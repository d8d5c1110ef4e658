package dto

import (
	"github.com/noah-isme/degree-advisor-api/internal/models"
)

// PlanPayload is the degree plan shape exchanged with the student profile
// store. Semester availability and prerequisites may arrive as text or lists.
type PlanPayload struct {
	StudentID string                `json:"student_id"`
	Program   models.Program        `json:"program" validate:"required"`
	Semesters []PlanSemesterPayload `json:"semesters" validate:"dive"`
}

// PlanSemesterPayload is one semester of a PlanPayload.
type PlanSemesterPayload struct {
	Semester int                 `json:"semester" validate:"gte=1"`
	Courses  []PlanCoursePayload `json:"courses" validate:"dive"`
}

// PlanCoursePayload is one course entry of a semester.
type PlanCoursePayload struct {
	Code                 string `json:"course_code"`
	Name                 string `json:"course_name"`
	Units                int    `json:"units" validate:"gte=0"`
	SemesterAvailability any    `json:"semester_availability"`
	Prerequisites        any    `json:"prerequisites"`
	Program              string `json:"program"`
}

// AdmissionCheckRequest asks whether a course fits a semester. Either the
// structured fields or the free-form Input ("18-661 semester 2") is required.
type AdmissionCheckRequest struct {
	CourseCode string `json:"course_code"`
	Semester   int    `json:"semester" validate:"omitempty,gte=1"`
	Input      string `json:"input"`
}

// AddCourseRequest schedules a course after an admission check.
type AddCourseRequest struct {
	CourseCode string `json:"course_code" validate:"required"`
	Semester   int    `json:"semester" validate:"required,gte=1"`
}

// ExportRequest selects the export format via query string.
type ExportRequest struct {
	Format string `form:"format" validate:"omitempty,oneof=xlsx csv pdf"`
}

// ExportResponse describes a rendered export ready for download.
type ExportResponse struct {
	ExportID  string `json:"export_id"`
	Format    string `json:"format"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}
