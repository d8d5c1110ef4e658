package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/degree-advisor-api/internal/models"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
	"github.com/noah-isme/degree-advisor-api/pkg/response"
)

type catalogReader interface {
	Lookup(code string) (models.Course, bool)
}

type requirementReader interface {
	Resolve(program models.Program) (*models.RequirementSpec, error)
	Programs() []models.Program
}

// CatalogHandler exposes read-only course and program requirement lookups.
type CatalogHandler struct {
	catalog      catalogReader
	requirements requirementReader
}

// NewCatalogHandler builds a new handler.
func NewCatalogHandler(catalog catalogReader, requirements requirementReader) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, requirements: requirements}
}

// Course godoc
// @Summary Look up a catalog course
// @Tags Catalog
// @Produce json
// @Param code path string true "Course code, e.g. 18-661"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{code} [get]
func (h *CatalogHandler) Course(c *gin.Context) {
	course, ok := h.catalog.Lookup(c.Param("code"))
	if !ok {
		response.Error(c, appErrors.Clonef(appErrors.ErrNotFound, "course %s not found in catalog", c.Param("code")))
		return
	}
	response.OK(c, course)
}

// Programs godoc
// @Summary List programs with configured graduation requirements
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /programs [get]
func (h *CatalogHandler) Programs(c *gin.Context) {
	response.OK(c, h.requirements.Programs())
}

// Requirements godoc
// @Summary Show a program's graduation requirements
// @Tags Catalog
// @Produce json
// @Param program path string true "Program (IT, MSECE, MS_ECE_AD, EAI)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /programs/{program}/requirements [get]
func (h *CatalogHandler) Requirements(c *gin.Context) {
	program := models.Program(c.Param("program"))
	if !program.Valid() {
		response.Error(c, appErrors.Clonef(appErrors.ErrNotFound, "unknown program %q", program))
		return
	}
	spec, err := h.requirements.Resolve(program)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, spec)
}
