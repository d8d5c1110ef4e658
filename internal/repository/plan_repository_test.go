package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/degree-advisor-api/internal/models"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
)

func newPlanMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPlanRepositoryFindByStudent(t *testing.T) {
	db, mock, cleanup := newPlanMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id, program, semesters, updated_at FROM degree_plans WHERE student_id = $1")).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "program", "semesters", "updated_at"}).
			AddRow("s-1", "EAI", []byte("{1,2,3}"), time.Now()))
	mock.ExpectQuery("FROM degree_plan_courses WHERE student_id = \\$1 ORDER BY semester ASC, position ASC").
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"semester", "position", "course_code", "course_name", "units", "offered_terms", "prerequisites", "discipline"}).
			AddRow(1, 0, "18-661", "Intro to ML", 12, []byte("{Fall}"), nil, "ECE").
			AddRow(2, 0, "18-786", "Deep Learning", 12, []byte("{Spring}"), []byte("{18-661}"), "ECE").
			AddRow(2, 1, "04-651", "Project I", 12, []byte("{Fall,Spring}"), []byte("{}"), "ECE"))

	plan, err := repo.FindByStudent(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, models.Program("EAI"), plan.Program)
	require.Len(t, plan.Semesters, 3)
	assert.Len(t, plan.Semesters[0].Courses, 1)
	assert.Len(t, plan.Semesters[1].Courses, 2)
	assert.Empty(t, plan.Semesters[2].Courses)
	assert.Equal(t, []string{"18-661"}, plan.Semesters[1].Courses[0].Prerequisites)
	assert.Equal(t, []string{}, plan.Semesters[0].Courses[0].Prerequisites)
	raw, err := json.Marshal(plan.Semesters[0].Courses[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"prerequisites":[]`)
	assert.True(t, plan.Semesters[1].Courses[1].OfferedIn(models.TermFall))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryFindByStudentNotFound(t *testing.T) {
	db, mock, cleanup := newPlanMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectQuery("FROM degree_plans WHERE student_id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByStudent(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositorySave(t *testing.T) {
	db, mock, cleanup := newPlanMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	plan := &models.DegreePlan{StudentID: "s-1", Program: models.ProgramEAI}
	require.NoError(t, plan.AddCourse(models.Course{Code: "18-661", Name: "Intro to ML", Units: 12, OfferedTerms: []models.Term{models.TermFall}}, 1))
	require.NoError(t, plan.AddCourse(models.Course{Code: "18-786", Name: "Deep Learning", Units: 12}, 2))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO degree_plans").
		WithArgs("s-1", "EAI", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM degree_plan_courses WHERE student_id = $1")).
		WithArgs("s-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO degree_plan_courses").
		WithArgs("s-1", 1, 0, "18-661", "Intro to ML", 12, sqlmock.AnyArg(), sqlmock.AnyArg(), "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO degree_plan_courses").
		WithArgs("s-1", 2, 0, "18-786", "Deep Learning", 12, sqlmock.AnyArg(), sqlmock.AnyArg(), "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), plan))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositorySaveRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newPlanMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	plan := &models.DegreePlan{StudentID: "s-1", Program: models.ProgramEAI}
	require.NoError(t, plan.AddCourse(models.Course{Code: "18-661", Units: 12}, 1))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO degree_plans").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM degree_plan_courses").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO degree_plan_courses").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "18-661")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryPlanRepositoryIsolatesCopies(t *testing.T) {
	repo := NewMemoryPlanRepository()
	ctx := context.Background()

	_, err := repo.FindByStudent(ctx, "s-1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	plan := &models.DegreePlan{StudentID: "s-1", Program: models.ProgramIT}
	require.NoError(t, plan.AddCourse(models.Course{Code: "04-800", Units: 12}, 1))
	require.NoError(t, repo.Save(ctx, plan))

	require.NoError(t, plan.AddCourse(models.Course{Code: "04-801", Units: 12}, 1))
	stored, err := repo.FindByStudent(ctx, "s-1")
	require.NoError(t, err)
	assert.Len(t, stored.Semesters[0].Courses, 1)
}
