package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/degree-advisor-api/internal/models"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
)

type catalogStub map[string]models.Course

func (s catalogStub) Lookup(code string) (models.Course, bool) {
	c, ok := s[models.NormalizeCourseCode(code)]
	return c, ok
}

type requirementsStub struct {
	specs map[models.Program]*models.RequirementSpec
}

func (s requirementsStub) Resolve(program models.Program) (*models.RequirementSpec, error) {
	if spec, ok := s.specs[program]; ok {
		return spec, nil
	}
	return nil, appErrors.Clonef(appErrors.ErrConfiguration, "no graduation requirements configured for program %q", program)
}

func (s requirementsStub) Programs() []models.Program {
	return []models.Program{models.ProgramEAI}
}

func newCatalogHandler() *CatalogHandler {
	return NewCatalogHandler(
		catalogStub{"18-661": {Code: "18-661", Name: "Introduction to Machine Learning", Units: 12}},
		requirementsStub{specs: map[models.Program]*models.RequirementSpec{models.ProgramEAI: {Program: models.ProgramEAI, MinTotalUnits: 144}}},
	)
}

func TestCatalogHandlerCourse(t *testing.T) {
	handler := newCatalogHandler()
	c, w := newJSONContext(http.MethodGet, "/courses/18-661", nil, gin.Params{{Key: "code", Value: "18-661"}})
	handler.Course(c)
	require.Equal(t, http.StatusOK, w.Code)

	var course models.Course
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &course))
	assert.Equal(t, 12, course.Units)

	c, w = newJSONContext(http.MethodGet, "/courses/99-999", nil, gin.Params{{Key: "code", Value: "99-999"}})
	handler.Course(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogHandlerRequirements(t *testing.T) {
	handler := newCatalogHandler()

	c, w := newJSONContext(http.MethodGet, "/programs/EAI/requirements", nil, gin.Params{{Key: "program", Value: "EAI"}})
	handler.Requirements(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newJSONContext(http.MethodGet, "/programs/MS_ECE_AD/requirements", nil, gin.Params{{Key: "program", Value: "MS_ECE_AD"}})
	handler.Requirements(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "CONFIGURATION_ERROR", decode(t, w).Error.Code)

	c, w = newJSONContext(http.MethodGet, "/programs/PHD/requirements", nil, gin.Params{{Key: "program", Value: "PHD"}})
	handler.Requirements(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
