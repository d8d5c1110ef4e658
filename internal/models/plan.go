package models

import (
	"sort"

	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
)

// SemesterSlot holds the courses a student schedules in one semester.
type SemesterSlot struct {
	Ordinal int      `json:"semester"`
	Courses []Course `json:"courses"`
}

// TotalUnits sums the units of every course in the slot.
func (s SemesterSlot) TotalUnits() int {
	total := 0
	for _, c := range s.Courses {
		total += c.Units
	}
	return total
}

// Has reports whether the slot already contains the normalised code.
func (s SemesterSlot) Has(code string) bool {
	code = NormalizeCourseCode(code)
	for _, c := range s.Courses {
		if c.Code == code {
			return true
		}
	}
	return false
}

// DegreePlan is a student's ordered semesters of chosen courses.
// Semesters are kept sorted by ordinal and ordinals are unique.
type DegreePlan struct {
	StudentID string         `json:"student_id"`
	Program   Program        `json:"program"`
	Semesters []SemesterSlot `json:"semesters"`
}

// FlatCourse is one course of a plan annotated with its semester, used by exports.
type FlatCourse struct {
	StudentID  string  `json:"student_id"`
	Program    Program `json:"program"`
	Semester   int     `json:"semester"`
	Term       Term    `json:"term"`
	Code       string  `json:"course_code"`
	Name       string  `json:"course_name"`
	Units      int     `json:"units"`
	Discipline string  `json:"discipline"`
}

// TotalUnits sums units across all semesters.
func (p *DegreePlan) TotalUnits() int {
	total := 0
	for _, s := range p.Semesters {
		total += s.TotalUnits()
	}
	return total
}

// Slot returns the semester with the given ordinal.
func (p *DegreePlan) Slot(ordinal int) (*SemesterSlot, bool) {
	for i := range p.Semesters {
		if p.Semesters[i].Ordinal == ordinal {
			return &p.Semesters[i], true
		}
	}
	return nil, false
}

// CompletedCourses returns the codes scheduled in semesters strictly before
// the given ordinal. A non-positive bound returns every code in the plan.
// Completed means scheduled earlier, not graded.
func (p *DegreePlan) CompletedCourses(before int) map[string]struct{} {
	completed := make(map[string]struct{})
	for _, s := range p.Semesters {
		if before > 0 && s.Ordinal >= before {
			continue
		}
		for _, c := range s.Courses {
			completed[c.Code] = struct{}{}
		}
	}
	return completed
}

// FindCourse returns the ordinal of the first semester that holds the code.
func (p *DegreePlan) FindCourse(code string) (int, bool) {
	code = NormalizeCourseCode(code)
	for _, s := range p.Semesters {
		if s.Has(code) {
			return s.Ordinal, true
		}
	}
	return 0, false
}

// AddCourse appends the course to the semester with the given ordinal,
// creating that semester when absent. It does not run admission rules.
func (p *DegreePlan) AddCourse(course Course, ordinal int) error {
	if ordinal < 1 {
		return appErrors.Clonef(appErrors.ErrMalformedInput, "semester must be a positive integer, got %d", ordinal)
	}
	course.Code = NormalizeCourseCode(course.Code)
	if course.Code == "" {
		return appErrors.Clone(appErrors.ErrMalformedInput, "course code is required")
	}
	if slot, ok := p.Slot(ordinal); ok {
		if slot.Has(course.Code) {
			return appErrors.Clonef(appErrors.ErrConflict, "course %s is already in semester %d", course.Code, ordinal)
		}
		slot.Courses = append(slot.Courses, course)
		return nil
	}
	idx := sort.Search(len(p.Semesters), func(i int) bool { return p.Semesters[i].Ordinal > ordinal })
	p.Semesters = append(p.Semesters, SemesterSlot{})
	copy(p.Semesters[idx+1:], p.Semesters[idx:])
	p.Semesters[idx] = SemesterSlot{Ordinal: ordinal, Courses: []Course{course}}
	return nil
}

// RemoveCourse removes the first course with the code from the semester and
// returns it. A missing semester or course is reported as ErrNotFound.
func (p *DegreePlan) RemoveCourse(code string, ordinal int) (Course, error) {
	code = NormalizeCourseCode(code)
	slot, ok := p.Slot(ordinal)
	if !ok {
		return Course{}, appErrors.Clonef(appErrors.ErrNotFound, "semester %d is not in the plan", ordinal)
	}
	for i, c := range slot.Courses {
		if c.Code != code {
			continue
		}
		slot.Courses = append(slot.Courses[:i], slot.Courses[i+1:]...)
		return c, nil
	}
	return Course{}, appErrors.Clonef(appErrors.ErrNotFound, "course %s is not in semester %d", code, ordinal)
}

// Flatten lists every course with its semester annotations in plan order.
func (p *DegreePlan) Flatten() []FlatCourse {
	out := make([]FlatCourse, 0)
	for _, s := range p.Semesters {
		for _, c := range s.Courses {
			out = append(out, FlatCourse{
				StudentID:  p.StudentID,
				Program:    p.Program,
				Semester:   s.Ordinal,
				Term:       TermForOrdinal(s.Ordinal),
				Code:       c.Code,
				Name:       c.Name,
				Units:      c.Units,
				Discipline: c.Discipline,
			})
		}
	}
	return out
}

// Normalize sorts semesters by ordinal and folds course codes. It rejects
// duplicate ordinals, courses scheduled more than once anywhere in the plan
// and courses without positive units.
func (p *DegreePlan) Normalize() error {
	if p.StudentID == "" {
		return appErrors.Clone(appErrors.ErrMalformedInput, "student_id is required")
	}
	seen := make(map[int]struct{}, len(p.Semesters))
	codes := make(map[string]int)
	for i := range p.Semesters {
		s := &p.Semesters[i]
		if s.Ordinal < 1 {
			return appErrors.Clonef(appErrors.ErrMalformedInput, "semester must be a positive integer, got %d", s.Ordinal)
		}
		if _, dup := seen[s.Ordinal]; dup {
			return appErrors.Clonef(appErrors.ErrMalformedInput, "semester %d appears more than once", s.Ordinal)
		}
		seen[s.Ordinal] = struct{}{}
		for j := range s.Courses {
			c := &s.Courses[j]
			c.Code = NormalizeCourseCode(c.Code)
			if first, dup := codes[c.Code]; dup {
				if first == s.Ordinal {
					return appErrors.Clonef(appErrors.ErrMalformedInput, "course %s appears twice in semester %d", c.Code, s.Ordinal)
				}
				return appErrors.Clonef(appErrors.ErrMalformedInput, "course %s is scheduled in semesters %d and %d", c.Code, first, s.Ordinal)
			}
			if c.Units <= 0 {
				return appErrors.Clonef(appErrors.ErrMalformedInput, "course %s must have positive units, got %d", c.Code, c.Units)
			}
			codes[c.Code] = s.Ordinal
		}
	}
	sort.SliceStable(p.Semesters, func(i, j int) bool { return p.Semesters[i].Ordinal < p.Semesters[j].Ordinal })
	return nil
}

// Clone returns a deep copy so callers can dry-run changes.
func (p *DegreePlan) Clone() *DegreePlan {
	if p == nil {
		return nil
	}
	out := &DegreePlan{StudentID: p.StudentID, Program: p.Program, Semesters: make([]SemesterSlot, len(p.Semesters))}
	for i, s := range p.Semesters {
		courses := make([]Course, len(s.Courses))
		copy(courses, s.Courses)
		out.Semesters[i] = SemesterSlot{Ordinal: s.Ordinal, Courses: courses}
	}
	return out
}

// MutationResult is returned by every plan mutation so callers thread the
// outcome explicitly instead of relying on shared session state.
type MutationResult struct {
	StudentID  string    `json:"student_id"`
	Applied    bool      `json:"applied"`
	Decision   *Decision `json:"decision,omitempty"`
	Course     *Course   `json:"course,omitempty"`
	Semester   int       `json:"semester"`
	TotalUnits int       `json:"total_units"`
	Message    string    `json:"message"`
}
