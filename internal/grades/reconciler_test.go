package grades

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/achievemate/gradeflow/pkg/models"
)

func docWithGrades(grades ...string) *models.GradeDocument {
	doc := &models.GradeDocument{}
	for _, g := range grades {
		doc.Courses = append(doc.Courses, models.CourseRecord{Grade: g})
	}
	return doc
}

func TestResolveCleanPrimaryWins(t *testing.T) {
	doc := docWithGrades("1.50", "175", "INC")

	source := NewReconciler().Resolve(doc, []string{"5.00", "5.00", "5.00"})

	assert.Equal(t, SourcePrimary, source)
	// Primary values are kept but normalized
	assert.Equal(t, "1.50", doc.Courses[0].Grade)
	assert.Equal(t, "1.75", doc.Courses[1].Grade)
	assert.Equal(t, "INC", doc.Courses[2].Grade)
}

func TestResolveSecondaryOverridesDirtyPrimary(t *testing.T) {
	doc := docWithGrades("1.50", "N/A", "2.00")

	source := NewReconciler().Resolve(doc, []string{"1.50", "2,75", "2.00"})

	assert.Equal(t, SourceSecondary, source)
	assert.Equal(t, "1.50", doc.Courses[0].Grade)
	assert.Equal(t, "2.75", doc.Courses[1].Grade)
	assert.Equal(t, "2.00", doc.Courses[2].Grade)
}

func TestResolveSecondaryShorterThanPrimary(t *testing.T) {
	doc := docWithGrades("N/A", "N/A", "2.00")

	source := NewReconciler().Resolve(doc, []string{"1.50"})

	assert.Equal(t, SourceSecondary, source)
	assert.Equal(t, "1.50", doc.Courses[0].Grade)
	// Courses beyond the secondary sequence are left untouched
	assert.Equal(t, "N/A", doc.Courses[1].Grade)
	assert.Equal(t, "2.00", doc.Courses[2].Grade)
}

func TestResolveFallbackKeepsPrimary(t *testing.T) {
	doc := docWithGrades("1.50", "N/A")

	source := NewReconciler().Resolve(doc, []string{"garbage", "also garbage"})

	assert.Equal(t, SourceFallback, source)
	assert.Equal(t, "1.50", doc.Courses[0].Grade)
	assert.Equal(t, "N/A", doc.Courses[1].Grade)
}

func TestResolveEmptyPrimaryIsNotClean(t *testing.T) {
	doc := docWithGrades()

	source := NewReconciler().Resolve(doc, nil)

	assert.Equal(t, SourceFallback, source)
	require.Empty(t, doc.Courses)
}

func TestResolveNeverIntroducesDisallowedValues(t *testing.T) {
	doc := docWithGrades("N/A", "1.50")

	source := NewReconciler().Resolve(doc, []string{"noise", "1.25", "noise", "2.00"})

	assert.Equal(t, SourceSecondary, source)
	for _, course := range doc.Courses {
		assert.True(t, IsAllowed(course.Grade), course.Grade)
	}
}
