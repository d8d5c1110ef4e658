package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/degree-advisor-api/internal/models"
)

// CatalogRepository reads the course catalog from Postgres.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new repository instance.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListCourses returns every catalog row in insertion order so the first
// duplicate keeps precedence.
func (r *CatalogRepository) ListCourses(ctx context.Context) ([]models.CatalogRow, error) {
	const query = `SELECT course_code, course_name, COALESCE(course_units::text, '') AS course_units,
        COALESCE(course_semester, '') AS course_semester, COALESCE(prerequisites, '') AS prerequisites,
        COALESCE(discipline, '') AS discipline
        FROM courses ORDER BY id ASC`
	var rows []models.CatalogRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list catalog courses: %w", err)
	}
	return rows, nil
}
