package models

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Message string `json:"message"`
	// Rule names the first failing rule; empty when allowed.
	Rule AdmissionRule `json:"rule,omitempty"`
}

// AdmissionRule names a step of the admission pipeline.
type AdmissionRule string

const (
	RuleExistence    AdmissionRule = "existence"
	RulePrerequisite AdmissionRule = "prerequisite"
	RuleDuplicate    AdmissionRule = "duplicate_in_semester"
	RuleTerm         AdmissionRule = "term_availability"
	RuleCapacity     AdmissionRule = "unit_capacity"
	RuleUniqueness   AdmissionRule = "plan_uniqueness"
)

// AuditCourse is a course line in a semester breakdown.
type AuditCourse struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Units int    `json:"units"`
}

// SemesterAnalysis is the per-semester part of an audit report.
type SemesterAnalysis struct {
	SemesterIndex int           `json:"semester_index"`
	Units         int           `json:"units"`
	Courses       []AuditCourse `json:"courses"`
	Issues        []string      `json:"issues"`
}

// AuditReport is the result of a full plan audit.
type AuditReport struct {
	StudentID        string             `json:"student_id"`
	Program          Program            `json:"program"`
	IsValid          bool               `json:"is_valid"`
	TotalUnits       int                `json:"total_units"`
	CoreUnits        int                `json:"core_units"`
	ProjectUnits     int                `json:"project_units"`
	ElectiveUnits    int                `json:"elective_units"`
	Issues           []string           `json:"issues"`
	Warnings         []string           `json:"warnings"`
	SemesterAnalysis []SemesterAnalysis `json:"semester_analysis"`
}
