package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const structuredText = `Republic of the Philippines
COURSE_CODE|COURSE_TITLE|UNITS|GRADE|SECTION|INSTRUCTOR
IT 201|Data Structures|3|1.50|IT-1A|Dr. Smith
IT 202|Database Systems|3|2.00|IT-1A|Dr. Cruz
SUMMARY:
General Weighted Average (GWA) 1.75
Total no of Units: 6
Total no of Courses: 2
1st Semester 2023-2024 2nd Year`

func TestExtractStructuredSection(t *testing.T) {
	doc := NewExtractor().Extract(structuredText)

	require.Len(t, doc.Courses, 2)

	first := doc.Courses[0]
	assert.Equal(t, 1, first.RowNumber)
	assert.Equal(t, "IT 201", first.CourseCode)
	assert.Equal(t, "Data Structures", first.CourseTitle)
	assert.Equal(t, "3", first.Units)
	assert.Equal(t, "1.50", first.Grade)
	assert.Equal(t, "IT-1A", first.Section)
	assert.Equal(t, "Dr. Smith", first.Instructor)

	assert.True(t, doc.HasGWA)
	assert.Equal(t, 1.75, doc.GWA)
	assert.Equal(t, 6.0, doc.TotalUnits)
	assert.Equal(t, 2, doc.TotalCourses)
	assert.Equal(t, "2023-2024", doc.AcademicYear)
	assert.Equal(t, "1st Semester", doc.Semester)
	assert.Equal(t, "2nd Year", doc.YearLevel)
}

func TestExtractIsIdempotent(t *testing.T) {
	e := NewExtractor()
	first := e.Extract(structuredText)
	second := e.Extract(structuredText)
	assert.Equal(t, first, second)
}

func TestExtractTableRows(t *testing.T) {
	text := `No. Course Code Course Title Units Grade
1 IT 201 Data Structures 3 1.50 IT-101 Dr. Smith
2 IT 202 Database Systems 3 2.00 IT-101 Dr. Cruz
** NOTHING FOLLOWS **`

	doc := NewExtractor().Extract(text)

	require.Len(t, doc.Courses, 2)
	assert.Equal(t, 1, doc.Courses[0].RowNumber)
	assert.Equal(t, "IT 201", doc.Courses[0].CourseCode)
	assert.Equal(t, "1.50", doc.Courses[0].Grade)
	assert.Equal(t, "IT-101", doc.Courses[0].Section)
	assert.Equal(t, 2, doc.Courses[1].RowNumber)
	assert.Equal(t, "Database Systems", doc.Courses[1].CourseTitle)
}

func TestExtractTableRowContinuation(t *testing.T) {
	// OCR wrapped one course row across two physical lines
	text := `Course Code Course Title Units Grade
1 IT 201 Data
Structures 3 1.50 IT-101 Dr. Smith
STUDENT INFO:`

	doc := NewExtractor().Extract(text)

	require.Len(t, doc.Courses, 1)
	assert.Equal(t, "Data Structures", doc.Courses[0].CourseTitle)
	assert.Equal(t, "1.50", doc.Courses[0].Grade)
}

func TestExtractMergesBothSectionsByRowNumber(t *testing.T) {
	text := `COURSE_CODE|COURSE_TITLE|UNITS|GRADE|SECTION|INSTRUCTOR
IT 201|Data Structures|3|1.50|IT-1A|Dr. Smith
IT 202|Database Systems|3|2.00|IT-1A|Dr. Cruz
SUMMARY:
Course Code Course Title Units Grade
1 IT 201 Data Structures 3 1.50 IT-101 Dr. Smith
2 IT 202 Database Systems 3 2.00 IT-101 Dr. Cruz
** NOTHING FOLLOWS **`

	doc := NewExtractor().Extract(text)

	// Table rows 1 and 2 collide with structured rows 1 and 2
	require.Len(t, doc.Courses, 2)
	assert.Equal(t, "IT 201", doc.Courses[0].CourseCode)
	assert.Equal(t, "IT-1A", doc.Courses[0].Section)
}

func TestExtractTerminationSentinels(t *testing.T) {
	tests := []struct {
		name     string
		sentinel string
	}{
		{"summary", "SUMMARY:"},
		{"student info", "STUDENT INFO:"},
		{"nothing follows", "** NOTHING FOLLOWS **"},
		{"total courses", "Total no of Courses: 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := "COURSE_CODE|COURSE_TITLE|UNITS|GRADE|SECTION|INSTRUCTOR\n" +
				"IT 201|Data Structures|3|1.50|IT-1A|Dr. Smith\n" +
				tt.sentinel + "\n" +
				"GE 101|Leaked Row|3|1.00|GE-1A|Dr. Leak\n"

			doc := NewExtractor().Extract(text)
			require.Len(t, doc.Courses, 1)
			assert.Equal(t, "IT 201", doc.Courses[0].CourseCode)
		})
	}
}

func TestExtractTableHeaderSwitchesOutOfStructuredMode(t *testing.T) {
	text := `COURSE_CODE|COURSE_TITLE|UNITS|GRADE|SECTION|INSTRUCTOR
IT 201|Data Structures|3|1.50|IT-1A|Dr. Smith
Course Code Course Title Units Grade
2 IT 202 Database Systems 3 2.00 IT-101 Dr. Cruz
SUMMARY:`

	doc := NewExtractor().Extract(text)

	require.Len(t, doc.Courses, 2)
	assert.Equal(t, "IT 201", doc.Courses[0].CourseCode)
	assert.Equal(t, "IT 202", doc.Courses[1].CourseCode)
}

func TestExtractEmptyAndMalformedInput(t *testing.T) {
	e := NewExtractor()

	for _, text := range []string{"", "   \n  \n", "no course data here at all"} {
		doc := e.Extract(text)
		assert.Empty(t, doc.Courses)
		assert.False(t, doc.HasGWA)
		assert.Empty(t, doc.AcademicYear)
	}
}

func TestExtractSkipsUnparseableTableRows(t *testing.T) {
	text := `Course Code Course Title Units Grade
1 nonsense
2 IT 201 Data Structures 3 1.50 IT-101 Dr. Smith
SUMMARY:`

	doc := NewExtractor().Extract(text)

	require.Len(t, doc.Courses, 1)
	assert.Equal(t, "IT 201", doc.Courses[0].CourseCode)
}

func TestNormalizeCourseCode(t *testing.T) {
	assert.Equal(t, "IT 201", NormalizeCourseCode("it   201"))
	assert.Equal(t, "IT 201", NormalizeCourseCode(" IT 201 "))
}

func TestFixTitleSpacing(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"QualityAssurance", "Quality Assurance"},
		{"Project2", "Project 2"},
		{"2ndSemester", "2 nd Semester"},
		{"Data Structures", "Data Structures"},
		{"Data   Structures", "Data Structures"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FixTitleSpacing(tt.in), tt.in)
	}
}
