package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/degree-advisor-api/internal/models"
)

func TestCourseCatalogLookupIsCaseInsensitive(t *testing.T) {
	catalog := testCatalog()

	course, ok := catalog.Lookup(" 18-661p ")
	require.True(t, ok)
	assert.Equal(t, "18-661P", course.Code)
	assert.Equal(t, 6, course.Units)

	_, ok = catalog.Lookup("99-999")
	assert.False(t, ok)

	var nilCatalog *CourseCatalog
	_, ok = nilCatalog.Lookup("18-661")
	assert.False(t, ok)
}

func TestCourseCatalogSkipsBadRowsAndKeepsFirstDuplicate(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rows := []models.CatalogRow{
		{Code: "18-661", Name: "First", Units: "12", OfferedTerms: "Fall"},
		{Code: "18-661", Name: "Second", Units: "9", OfferedTerms: "Spring"},
		{Code: "", Name: "No code", Units: "12"},
		{Code: "18-100", Name: "No units", Units: "nan"},
		{Code: "18-101", Name: "Zero units", Units: "0"},
		{Code: "18-102", Name: "Fractional", Units: "4.5"},
		{Code: "18-103", Name: "Float units", Units: "12.0"},
	}
	catalog := NewCourseCatalog(rows, zap.New(core))

	assert.Equal(t, 2, catalog.Len())
	assert.Equal(t, []string{"18-661", "18-103"}, catalog.Codes())
	first, _ := catalog.Lookup("18-661")
	assert.Equal(t, "First", first.Name)
	assert.Equal(t, 5, logs.Len())
}

func TestExtractPrerequisites(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want []string
	}{
		{"free text", "18-661 or 10-601, and 18-661P", []string{"18-661", "10-601", "18-661P"}},
		{"qualified code", "Requires 18-787-K3", []string{"18-787-K3"}},
		{"lower case suffix is not a qualifier", "18-661p", []string{"18-661"}},
		{"word glued to code", "18-661and 04-650", []string{"18-661", "04-650"}},
		{"capitalised word glued to code", "18-661Recommended", []string{"18-661"}},
		{"qualifier glued to word", "18-787-K3only", []string{"18-787"}},
		{"longer number is not a code", "18-6612", []string{}},
		{"list", []string{"18-661", "18-661"}, []string{"18-661"}},
		{"any list", []any{"18-661", 12, nil, "junk"}, []string{"18-661"}},
		{"no codes", "Instructor permission", []string{}},
		{"nil", nil, []string{}},
		{"nan", math.NaN(), []string{}},
		{"number", 18661, []string{}},
		{"map", map[string]any{"code": "18-661"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractPrerequisites(tc.raw))
		})
	}
}

func TestParseOfferedTerms(t *testing.T) {
	assert.Equal(t, []models.Term{models.TermFall, models.TermSpring}, ParseOfferedTerms("['Spring', 'Fall']"))
	assert.Equal(t, []models.Term{models.TermFall}, ParseOfferedTerms("Fall"))
	assert.Equal(t, []models.Term{models.TermFall, models.TermSpring}, ParseOfferedTerms("Fall/Spring"))
	assert.Empty(t, ParseOfferedTerms("Summer"))
}
