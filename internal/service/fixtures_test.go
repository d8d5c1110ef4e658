package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/degree-advisor-api/internal/models"
)

func testCatalogRows() []models.CatalogRow {
	return []models.CatalogRow{
		{Code: "18-661", Name: "Introduction to Machine Learning", Units: "12", OfferedTerms: "['Fall', 'Spring']"},
		{Code: "18-661P", Name: "Machine Learning Practicum", Units: "6", OfferedTerms: "Fall"},
		{Code: "18-786", Name: "Introduction to Deep Learning", Units: "12", OfferedTerms: "['Spring']", Prerequisites: "18-661"},
		{Code: "18-794", Name: "Pattern Recognition Theory", Units: "12", OfferedTerms: "Fall, Spring", Prerequisites: "18-661P"},
		{Code: "18-751", Name: "Applied Stochastic Processes", Units: "12", OfferedTerms: "['Fall']"},
		{Code: "18-797", Name: "Machine Learning for Signal Processing", Units: "12", OfferedTerms: "Fall"},
		{Code: "11-755", Name: "Machine Learning for Signal Processing (SCS)", Units: "12", OfferedTerms: "Fall"},
		{Code: "04-651", Name: "Project I", Units: "12", OfferedTerms: "Fall, Spring"},
		{Code: "04-701", Name: "Project II", Units: "12", OfferedTerms: "Spring"},
		{Code: "18-980", Name: "Independent Study", Units: "24", OfferedTerms: "Fall, Spring"},
		{Code: "18-999", Name: "Thesis Block", Units: "48", OfferedTerms: "Fall, Spring"},
	}
}

func testCatalog() *CourseCatalog {
	return NewCourseCatalog(testCatalogRows(), nil)
}

func testSpec() models.RequirementSpec {
	return models.RequirementSpec{
		Program:          models.ProgramEAI,
		MinTotalUnits:    144,
		MinSemesterUnits: 36,
		MaxSemesterUnits: 54,
		MinCoreUnits:     24,
		MinProjectUnits:  24,
		CoreSections: []models.CoreSection{
			{Name: "Stochastic", Codes: []string{"18-751"}},
			{Name: "Machine Learning", Codes: []string{"18-661", "18-797"}},
			{Name: "Signal Processing", Codes: []string{"18-797", "11-755"}},
		},
		ProjectAreas: []string{"04-651", "04-701"},
	}
}

func testRegistry(t *testing.T) *RequirementRegistry {
	t.Helper()
	registry, err := NewRequirementRegistry([]models.RequirementSpec{testSpec()}, nil)
	require.NoError(t, err)
	return registry
}

// planWith builds a plan from ordinal -> catalog codes.
func planWith(t *testing.T, catalog *CourseCatalog, semesters map[int][]string) *models.DegreePlan {
	t.Helper()
	plan := &models.DegreePlan{StudentID: "s-1", Program: models.ProgramEAI}
	for ordinal, codes := range semesters {
		for _, code := range codes {
			course, ok := catalog.Lookup(code)
			require.True(t, ok, code)
			require.NoError(t, plan.AddCourse(course, ordinal))
		}
	}
	return plan
}
