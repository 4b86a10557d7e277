package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/achievemate/gradeflow/pkg/models"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		grade string
		want  models.GradeStatus
	}{
		{"4.00", models.StatusPassed},
		{"1.00", models.StatusPassed},
		{"5.00", models.StatusFailed},
		{"INC", models.StatusIncomplete},
		{"incomplete", models.StatusIncomplete},
		{"ABC", models.StatusUnknown},
		{"4.50", models.StatusUnknown},
		{"0.50", models.StatusUnknown},
		{"", models.StatusUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.grade, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.grade))
		})
	}
}

func TestAggregateGWA(t *testing.T) {
	doc := &models.GradeDocument{
		Courses: []models.CourseRecord{
			{Grade: "1.00", Units: "3"},
			{Grade: "2.00", Units: "3"},
		},
	}

	sum := Aggregate(doc)

	assert.True(t, sum.HasGWA)
	assert.InDelta(t, 1.50, sum.GWA, 1e-9)
	assert.Equal(t, 6.0, sum.TotalUnits)
	assert.Equal(t, 2, sum.TotalCourses)
	assert.Equal(t, 2, sum.Passed)
}

func TestAggregateSkipsNonContributingCourses(t *testing.T) {
	doc := &models.GradeDocument{
		Courses: []models.CourseRecord{
			{Grade: "1.00", Units: "3"},
			{Grade: "INC", Units: "3"},  // grade does not parse
			{Grade: "2.00", Units: "0"}, // zero units
			{Grade: "2.00", Units: "x"}, // units do not parse
		},
	}

	sum := Aggregate(doc)

	assert.InDelta(t, 1.00, sum.GWA, 1e-9)
	assert.Equal(t, 3.0, sum.TotalUnits)
	assert.Equal(t, 4, sum.TotalCourses)
	assert.Equal(t, 1, sum.Incomplete)
	assert.Equal(t, 1, sum.Unknown)
}

func TestAggregateNoContributingCourses(t *testing.T) {
	doc := &models.GradeDocument{
		Courses: []models.CourseRecord{{Grade: "INC", Units: "3"}},
	}

	sum := Aggregate(doc)

	assert.False(t, sum.HasGWA)
	assert.Equal(t, 0.0, sum.TotalUnits)
}

func TestAggregateDocumentDeclaredValuesWin(t *testing.T) {
	doc := &models.GradeDocument{
		Courses: []models.CourseRecord{
			{Grade: "1.00", Units: "3"},
		},
		GWA:          1.25,
		HasGWA:       true,
		TotalUnits:   21,
		TotalCourses: 7,
	}

	sum := Aggregate(doc)

	assert.Equal(t, 1.25, sum.GWA)
	assert.Equal(t, 21.0, sum.TotalUnits)
	assert.Equal(t, 7, sum.TotalCourses)
}

func TestRepresentativeSection(t *testing.T) {
	doc := &models.GradeDocument{
		Courses: []models.CourseRecord{
			{Grade: "1.00", Units: "3", Section: "IT-1A"},
			{Grade: "1.00", Units: "3", Section: "IT-1B"},
			{Grade: "1.00", Units: "3", Section: "IT-1A"},
			{Grade: "1.00", Units: "3"},
		},
	}

	assert.Equal(t, "IT-1A", Aggregate(doc).Section)

	// Ties go to the earlier-seen section
	tie := &models.GradeDocument{
		Courses: []models.CourseRecord{
			{Section: "IT-1B"},
			{Section: "IT-1A"},
		},
	}
	assert.Equal(t, "IT-1B", Aggregate(tie).Section)
}
