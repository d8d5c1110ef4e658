package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/degree-advisor-api/internal/models"
)

// courseCodePattern matches "18-661", "18-661P" and "18-787-K3". Qualifiers are
// upper case only so that "18-661and" does not swallow the following word.
var courseCodePattern = regexp.MustCompile(`\b(\d{2}-\d{3})(-[A-Z]\d|[A-Z])?`)

// CourseCatalog is an immutable lookup table of courses keyed by normalised code.
type CourseCatalog struct {
	courses map[string]models.Course
	order   []string
}

// NewCourseCatalog normalises raw rows into a catalog. Rows without a code or
// with unusable units are skipped; on duplicate codes the first row wins.
func NewCourseCatalog(rows []models.CatalogRow, logger *zap.Logger) *CourseCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &CourseCatalog{courses: make(map[string]models.Course, len(rows))}
	for i, row := range rows {
		code := models.NormalizeCourseCode(row.Code)
		if code == "" {
			logger.Warn("catalog row skipped: missing course code", zap.Int("row", i+1))
			continue
		}
		units, ok := parseUnits(row.Units)
		if !ok {
			logger.Warn("catalog row skipped: invalid units", zap.String("code", code), zap.String("units", row.Units))
			continue
		}
		if _, dup := c.courses[code]; dup {
			logger.Warn("catalog row ignored: duplicate course code", zap.String("code", code), zap.Int("row", i+1))
			continue
		}
		c.courses[code] = models.Course{
			Code:          code,
			Name:          strings.TrimSpace(row.Name),
			Units:         units,
			OfferedTerms:  ParseOfferedTerms(row.OfferedTerms),
			Prerequisites: ExtractPrerequisites(row.Prerequisites),
			Discipline:    strings.TrimSpace(row.Discipline),
		}
		c.order = append(c.order, code)
	}
	return c
}

// Lookup returns the course for a code, case-insensitively.
func (c *CourseCatalog) Lookup(code string) (models.Course, bool) {
	if c == nil {
		return models.Course{}, false
	}
	course, ok := c.courses[models.NormalizeCourseCode(code)]
	return course, ok
}

// Len returns the number of courses in the catalog.
func (c *CourseCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Codes returns every course code in load order.
func (c *CourseCatalog) Codes() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// ExtractPrerequisites pulls well-formed course codes out of a free-text or
// list-shaped field. Anything it cannot read yields an empty list.
func ExtractPrerequisites(raw any) []string {
	var texts []string
	switch v := raw.(type) {
	case string:
		texts = []string{v}
	case []string:
		texts = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				texts = append(texts, s)
			}
		}
	default:
		return []string{}
	}

	seen := make(map[string]struct{})
	out := []string{}
	for _, text := range texts {
		for _, code := range findCourseCodes(text) {
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			out = append(out, code)
		}
	}
	return out
}

// findCourseCodes returns the codes in text in order of appearance. A qualifier
// that runs into further letters or digits is dropped and the bare code kept.
func findCourseCodes(text string) []string {
	var codes []string
	for _, m := range courseCodePattern.FindAllStringSubmatchIndex(text, -1) {
		var code string
		switch {
		case m[4] >= 0 && !isWordByte(text, m[1]):
			code = text[m[2]:m[1]]
		case isDigitByte(text, m[3]):
			continue
		default:
			code = text[m[2]:m[3]]
		}
		codes = append(codes, models.NormalizeCourseCode(code))
	}
	return codes
}

func isWordByte(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	c := text[i]
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigitByte(text string, i int) bool {
	return i < len(text) && text[i] >= '0' && text[i] <= '9'
}

// ParseOfferedTerms reads "Fall, Spring", "['Fall']" or "Fall/Spring" into
// terms in canonical order.
func ParseOfferedTerms(raw string) []models.Term {
	lower := strings.ToLower(raw)
	terms := []models.Term{}
	if strings.Contains(lower, "fall") {
		terms = append(terms, models.TermFall)
	}
	if strings.Contains(lower, "spring") {
		terms = append(terms, models.TermSpring)
	}
	return terms
}

func parseUnits(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, n > 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f <= 0 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
