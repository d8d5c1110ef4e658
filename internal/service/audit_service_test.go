package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/degree-advisor-api/internal/models"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
)

type auditMetricsStub struct {
	valid []bool
}

func (m *auditMetricsStub) ObserveAudit(_ models.Program, valid bool) {
	m.valid = append(m.valid, valid)
}

func newAuditForTest(t *testing.T) (*AuditService, *CourseCatalog) {
	t.Helper()
	catalog := testCatalog()
	return NewAuditService(catalog, testRegistry(t), &auditMetricsStub{}, nil), catalog
}

func unitsCourse(code string, units int) models.Course {
	return models.Course{Code: code, Name: code, Units: units}
}

func TestAuditEmptyPlanReportsTotalShortfall(t *testing.T) {
	svc, _ := newAuditForTest(t)
	report, err := svc.Audit(&models.DegreePlan{StudentID: "s-1", Program: models.ProgramEAI})
	require.NoError(t, err)

	assert.False(t, report.IsValid)
	assert.Contains(t, report.Issues, "Insufficient total units: 0/144")
	assert.Empty(t, report.SemesterAnalysis)
	assert.Len(t, report.Warnings, 3)
}

func TestAuditSemesterBounds(t *testing.T) {
	svc, _ := newAuditForTest(t)
	plan := &models.DegreePlan{StudentID: "s-1", Program: models.ProgramEAI}
	for i, units := range []int{12, 12, 15} {
		require.NoError(t, plan.AddCourse(unitsCourse([]string{"10-001", "10-002", "10-003"}[i], units), 1))
	}
	for i, units := range []int{12, 12, 12, 12, 9} {
		require.NoError(t, plan.AddCourse(unitsCourse([]string{"10-011", "10-012", "10-013", "10-014", "10-015"}[i], units), 2))
	}

	report, err := svc.Audit(plan)
	require.NoError(t, err)
	require.Len(t, report.SemesterAnalysis, 2)

	first, second := report.SemesterAnalysis[0], report.SemesterAnalysis[1]
	assert.Equal(t, 39, first.Units)
	assert.Empty(t, first.Issues)
	assert.Equal(t, 57, second.Units)
	assert.Equal(t, []string{"Too many units in semester 2: 57/54"}, second.Issues)
	assert.Contains(t, report.Issues, "Semester 2 has too many units (57)")
	assert.Equal(t, 96, report.TotalUnits)
}

func TestAuditCreditsSharedCoreCourseOnce(t *testing.T) {
	svc, catalog := newAuditForTest(t)
	plan := planWith(t, catalog, map[int][]string{1: {"18-797"}})

	report, err := svc.Audit(plan)
	require.NoError(t, err)
	assert.Equal(t, 12, report.CoreUnits)
	assert.Equal(t, 0, report.ElectiveUnits)
	assert.Equal(t, []string{
		"Core section Stochastic is not yet satisfied. Take one of: 18-751 - Applied Stochastic Processes",
	}, report.Warnings)
}

func TestAuditProjectCoursesAreAllRequired(t *testing.T) {
	svc, catalog := newAuditForTest(t)
	plan := planWith(t, catalog, map[int][]string{1: {"04-651"}})

	report, err := svc.Audit(plan)
	require.NoError(t, err)
	assert.Equal(t, 12, report.ProjectUnits)
	assert.Contains(t, report.Issues, "Missing project course: 04-701 - Project II")
	assert.Contains(t, report.Issues, "Insufficient project units: 12/24")
}

func TestAuditValidPlan(t *testing.T) {
	svc, catalog := newAuditForTest(t)
	plan := planWith(t, catalog, map[int][]string{
		1: {"18-661", "18-751", "18-797"},
		2: {"18-786", "04-651", "04-701"},
		3: {"18-999"},
		4: {"18-980", "11-755"},
	})

	report, err := svc.Audit(plan)
	require.NoError(t, err)
	assert.True(t, report.IsValid, report.Issues)
	assert.Empty(t, report.Issues)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, 156, report.TotalUnits)
	assert.Equal(t, 48, report.CoreUnits)
	assert.Equal(t, 24, report.ProjectUnits)
	assert.Equal(t, 84, report.ElectiveUnits)
}

func TestAuditIsDeterministic(t *testing.T) {
	svc, catalog := newAuditForTest(t)
	plan := planWith(t, catalog, map[int][]string{1: {"18-661"}, 2: {"18-786"}, 4: {"04-701"}})

	first, err := svc.Audit(plan)
	require.NoError(t, err)
	second, err := svc.Audit(plan)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestAuditAddThenRemoveRestoresTotals(t *testing.T) {
	svc, catalog := newAuditForTest(t)
	plan := planWith(t, catalog, map[int][]string{1: {"18-661"}})
	before, err := svc.Audit(plan)
	require.NoError(t, err)

	course, _ := catalog.Lookup("18-751")
	require.NoError(t, plan.AddCourse(course, 3))
	_, err = plan.RemoveCourse("18-751", 3)
	require.NoError(t, err)

	after, err := svc.Audit(plan)
	require.NoError(t, err)
	assert.Equal(t, before.TotalUnits, after.TotalUnits)
	assert.Equal(t, before.CoreUnits, after.CoreUnits)
	assert.Equal(t, plan.TotalUnits(), after.TotalUnits)
}

func TestAuditUnknownProgram(t *testing.T) {
	svc, _ := newAuditForTest(t)
	_, err := svc.Audit(&models.DegreePlan{StudentID: "s-1", Program: models.ProgramIT})
	assert.True(t, errors.Is(err, appErrors.ErrConfiguration))

	_, err = svc.Audit(nil)
	assert.True(t, errors.Is(err, appErrors.ErrMalformedInput))
}
