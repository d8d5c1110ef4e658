package models

import "strings"

// Term is the academic term a course can be scheduled in.
type Term string

const (
	TermFall   Term = "Fall"
	TermSpring Term = "Spring"
)

// TermForOrdinal maps a semester ordinal to its term: odd ordinals are Fall,
// even ordinals are Spring. Plans number their first semester 1 (a Fall start).
func TermForOrdinal(ordinal int) Term {
	if ordinal%2 == 1 {
		return TermFall
	}
	return TermSpring
}

// Course is an immutable catalog entry.
type Course struct {
	Code          string   `json:"course_code" db:"course_code"`
	Name          string   `json:"course_name" db:"course_name"`
	Units         int      `json:"units" db:"units"`
	OfferedTerms  []Term   `json:"semester_availability"`
	Prerequisites []string `json:"prerequisites"`
	Discipline    string   `json:"program" db:"discipline"`
}

// OfferedIn reports whether the course runs in the given term.
func (c Course) OfferedIn(term Term) bool {
	for _, t := range c.OfferedTerms {
		if t == term {
			return true
		}
	}
	return false
}

// OfferedTermNames returns the offered terms as plain strings.
func (c Course) OfferedTermNames() []string {
	names := make([]string, 0, len(c.OfferedTerms))
	for _, t := range c.OfferedTerms {
		names = append(names, string(t))
	}
	return names
}

// CatalogRow is a raw, unnormalised catalog record as read from a file or table.
type CatalogRow struct {
	Code          string `db:"course_code"`
	Name          string `db:"course_name"`
	Units         string `db:"course_units"`
	OfferedTerms  string `db:"course_semester"`
	Prerequisites string `db:"prerequisites"`
	Discipline    string `db:"discipline"`
}

// NormalizeCourseCode case-folds and trims a course code for lookups.
func NormalizeCourseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
