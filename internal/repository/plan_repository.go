package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/degree-advisor-api/internal/models"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
)

type planRow struct {
	StudentID string        `db:"student_id"`
	Program   string        `db:"program"`
	Semesters pq.Int64Array `db:"semesters"`
	UpdatedAt time.Time     `db:"updated_at"`
}

type planCourseRow struct {
	Semester      int            `db:"semester"`
	Position      int            `db:"position"`
	Code          string         `db:"course_code"`
	Name          string         `db:"course_name"`
	Units         int            `db:"units"`
	OfferedTerms  pq.StringArray `db:"offered_terms"`
	Prerequisites pq.StringArray `db:"prerequisites"`
	Discipline    string         `db:"discipline"`
}

// PlanRepository persists degree plans in Postgres. The semester list lives on
// the plan row so empty semesters survive a round trip.
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository creates a new repository instance.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// FindByStudent loads the plan owned by the student.
func (r *PlanRepository) FindByStudent(ctx context.Context, studentID string) (*models.DegreePlan, error) {
	const planQuery = `SELECT student_id, program, semesters, updated_at FROM degree_plans WHERE student_id = $1`
	var row planRow
	if err := r.db.GetContext(ctx, &row, planQuery, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clonef(appErrors.ErrNotFound, "no degree plan for student %s", studentID)
		}
		return nil, fmt.Errorf("get degree plan: %w", err)
	}

	const courseQuery = `SELECT semester, position, course_code, course_name, units, offered_terms, prerequisites, discipline
        FROM degree_plan_courses WHERE student_id = $1 ORDER BY semester ASC, position ASC`
	var courses []planCourseRow
	if err := r.db.SelectContext(ctx, &courses, courseQuery, studentID); err != nil {
		return nil, fmt.Errorf("list degree plan courses: %w", err)
	}

	plan := &models.DegreePlan{StudentID: row.StudentID, Program: models.Program(row.Program), Semesters: []models.SemesterSlot{}}
	for _, ordinal := range row.Semesters {
		plan.Semesters = append(plan.Semesters, models.SemesterSlot{Ordinal: int(ordinal), Courses: []models.Course{}})
	}
	for _, c := range courses {
		slot, ok := plan.Slot(c.Semester)
		if !ok {
			plan.Semesters = append(plan.Semesters, models.SemesterSlot{Ordinal: c.Semester, Courses: []models.Course{}})
			slot = &plan.Semesters[len(plan.Semesters)-1]
		}
		prerequisites := []string{}
		prerequisites = append(prerequisites, c.Prerequisites...)
		terms := make([]models.Term, 0, len(c.OfferedTerms))
		for _, t := range c.OfferedTerms {
			terms = append(terms, models.Term(t))
		}
		slot.Courses = append(slot.Courses, models.Course{
			Code:          c.Code,
			Name:          c.Name,
			Units:         c.Units,
			OfferedTerms:  terms,
			Prerequisites: prerequisites,
			Discipline:    c.Discipline,
		})
	}
	if err := plan.Normalize(); err != nil {
		return nil, fmt.Errorf("stored plan for %s is inconsistent: %w", studentID, err)
	}
	return plan, nil
}

// Save replaces the stored plan in a single transaction.
func (r *PlanRepository) Save(ctx context.Context, plan *models.DegreePlan) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save degree plan: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback() //nolint:errcheck
		}
	}()

	ordinals := make([]int64, 0, len(plan.Semesters))
	for _, s := range plan.Semesters {
		ordinals = append(ordinals, int64(s.Ordinal))
	}
	const upsert = `INSERT INTO degree_plans (student_id, program, semesters, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (student_id) DO UPDATE SET program = EXCLUDED.program, semesters = EXCLUDED.semesters, updated_at = EXCLUDED.updated_at`
	if _, err := tx.ExecContext(ctx, upsert, plan.StudentID, string(plan.Program), pq.Array(ordinals), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert degree plan: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM degree_plan_courses WHERE student_id = $1`, plan.StudentID); err != nil {
		return fmt.Errorf("clear degree plan courses: %w", err)
	}

	const insert = `INSERT INTO degree_plan_courses
(student_id, semester, position, course_code, course_name, units, offered_terms, prerequisites, discipline)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, s := range plan.Semesters {
		for pos, c := range s.Courses {
			if _, err := tx.ExecContext(ctx, insert, plan.StudentID, s.Ordinal, pos, c.Code, c.Name, c.Units,
				pq.Array(c.OfferedTermNames()), pq.Array(c.Prerequisites), c.Discipline); err != nil {
				return fmt.Errorf("insert degree plan course %s: %w", c.Code, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit degree plan: %w", err)
	}
	commit = true
	return nil
}
