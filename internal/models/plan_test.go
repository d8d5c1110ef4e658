package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
)

func course(code string, units int) Course {
	return Course{Code: code, Name: "Course " + code, Units: units, OfferedTerms: []Term{TermFall, TermSpring}}
}

func samplePlan() *DegreePlan {
	return &DegreePlan{
		StudentID: "kwame",
		Program:   ProgramEAI,
		Semesters: []SemesterSlot{
			{Ordinal: 1, Courses: []Course{course("18-661", 12), course("04-650", 12)}},
			{Ordinal: 2, Courses: []Course{course("18-662", 12)}},
		},
	}
}

func sumSlots(p *DegreePlan) int {
	total := 0
	for _, s := range p.Semesters {
		total += s.TotalUnits()
	}
	return total
}

func TestTermForOrdinal(t *testing.T) {
	assert.Equal(t, TermFall, TermForOrdinal(1))
	assert.Equal(t, TermSpring, TermForOrdinal(2))
	assert.Equal(t, TermFall, TermForOrdinal(3))
	assert.Equal(t, TermSpring, TermForOrdinal(4))
}

func TestCompletedCoursesBoundedByOrdinal(t *testing.T) {
	plan := samplePlan()

	before2 := plan.CompletedCourses(2)
	assert.Len(t, before2, 2)
	assert.Contains(t, before2, "18-661")
	assert.NotContains(t, before2, "18-662")

	assert.Empty(t, plan.CompletedCourses(1))
	assert.Len(t, plan.CompletedCourses(0), 3)
}

func TestAddCourseCreatesSlotInOrder(t *testing.T) {
	plan := samplePlan()

	require.NoError(t, plan.AddCourse(course("04-651", 12), 4))
	require.NoError(t, plan.AddCourse(course("04-701", 12), 3))

	ordinals := []int{}
	for _, s := range plan.Semesters {
		ordinals = append(ordinals, s.Ordinal)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, ordinals)
	assert.Equal(t, 60, plan.TotalUnits())
}

func TestAddCourseRejectsBadInput(t *testing.T) {
	plan := samplePlan()

	err := plan.AddCourse(course("04-651", 12), 0)
	assert.True(t, errors.Is(err, appErrors.ErrMalformedInput))

	err = plan.AddCourse(course("18-661", 12), 1)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestRemoveCourseReportsMissing(t *testing.T) {
	plan := samplePlan()

	_, err := plan.RemoveCourse("18-661", 7)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = plan.RemoveCourse("11-785", 1)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	removed, err := plan.RemoveCourse("18-661", 1)
	require.NoError(t, err)
	assert.Equal(t, "18-661", removed.Code)
	assert.False(t, plan.Semesters[0].Has("18-661"))
}

func TestTotalUnitsNeverDrifts(t *testing.T) {
	plan := samplePlan()
	before := plan.TotalUnits()

	require.NoError(t, plan.AddCourse(course("11-785", 12), 2))
	assert.Equal(t, sumSlots(plan), plan.TotalUnits())

	require.NoError(t, plan.AddCourse(course("18-785", 12), 5))
	assert.Equal(t, sumSlots(plan), plan.TotalUnits())

	_, err := plan.RemoveCourse("11-785", 2)
	require.NoError(t, err)
	_, err = plan.RemoveCourse("18-785", 5)
	require.NoError(t, err)

	assert.Equal(t, before, plan.TotalUnits())
	assert.Equal(t, sumSlots(plan), plan.TotalUnits())
}

func TestFlattenAnnotatesSemester(t *testing.T) {
	rows := samplePlan().Flatten()
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].Semester)
	assert.Equal(t, TermFall, rows[0].Term)
	assert.Equal(t, "18-662", rows[2].Code)
	assert.Equal(t, TermSpring, rows[2].Term)
	assert.Equal(t, "kwame", rows[2].StudentID)
}

func TestNormalizeSortsAndRejectsDuplicates(t *testing.T) {
	plan := &DegreePlan{StudentID: "s1", Program: ProgramEAI, Semesters: []SemesterSlot{
		{Ordinal: 3, Courses: []Course{course("04-651", 12)}},
		{Ordinal: 1, Courses: []Course{course("18-661p", 12)}},
	}}
	require.NoError(t, plan.Normalize())
	assert.Equal(t, 1, plan.Semesters[0].Ordinal)
	assert.Equal(t, "18-661P", plan.Semesters[0].Courses[0].Code)

	dup := &DegreePlan{StudentID: "s1", Semesters: []SemesterSlot{{Ordinal: 1}, {Ordinal: 1}}}
	assert.True(t, errors.Is(dup.Normalize(), appErrors.ErrMalformedInput))

	missing := &DegreePlan{}
	assert.True(t, errors.Is(missing.Normalize(), appErrors.ErrMalformedInput))

	sameSemester := &DegreePlan{StudentID: "s1", Semesters: []SemesterSlot{
		{Ordinal: 1, Courses: []Course{course("18-661", 12), course("18-661", 12)}},
	}}
	assert.True(t, errors.Is(sameSemester.Normalize(), appErrors.ErrMalformedInput))

	acrossSemesters := &DegreePlan{StudentID: "s1", Semesters: []SemesterSlot{
		{Ordinal: 1, Courses: []Course{course("18-661", 12)}},
		{Ordinal: 2, Courses: []Course{course("18-661p", 12), course("18-661", 12)}},
	}}
	err := acrossSemesters.Normalize()
	assert.True(t, errors.Is(err, appErrors.ErrMalformedInput))
	assert.Contains(t, err.Error(), "semesters 1 and 2")

	zeroUnits := &DegreePlan{StudentID: "s1", Semesters: []SemesterSlot{
		{Ordinal: 1, Courses: []Course{course("55-555", 0)}},
	}}
	assert.True(t, errors.Is(zeroUnits.Normalize(), appErrors.ErrMalformedInput))
}

func TestCloneIsIndependent(t *testing.T) {
	plan := samplePlan()
	clone := plan.Clone()
	require.NoError(t, clone.AddCourse(course("11-785", 12), 1))
	assert.Len(t, plan.Semesters[0].Courses, 2)
	assert.Len(t, clone.Semesters[0].Courses, 3)
}
