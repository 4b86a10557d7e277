package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/achievemate/gradeflow/pkg/models"
)

// Document-level summary fields live on their own lines anywhere in the
// text, independent of the course sections, so they are scanned over the
// whole input. A missing field leaves its output zero-valued.
var (
	gwaRe = regexp.MustCompile(
		`(?i)(?:General\s+Weighted\s+Average\s*\(GWA\)|GWA)\s*:?\s*([0-9]+(?:\.[0-9]+)?)`)
	totalUnitsRe = regexp.MustCompile(
		`(?i)Total\s+(?:no\s+of\s+)?Units\s*:?\s*([0-9]+(?:\.[0-9]+)?)`)
	totalCoursesValueRe = regexp.MustCompile(
		`(?i)Total\s+(?:no\s+of\s+)?Courses?\s*:?\s*([0-9]+)`)
	academicYearRe = regexp.MustCompile(`\b(\d{4}\s*-\s*\d{4})\b`)
	spaceRe        = regexp.MustCompile(`\s+`)

	semesterFirstRe  = regexp.MustCompile(`(?i)\b(?:1st|first)\s+sem`)
	semesterSecondRe = regexp.MustCompile(`(?i)\b(?:2nd|second)\s+sem`)
	semesterSummerRe = regexp.MustCompile(`(?i)\b(?:summer|mid-?year)\b`)

	yearLevelRe = regexp.MustCompile(`(?i)\b(1st|first|2nd|second|3rd|third|4th|fourth)\s+year\b`)
)

// scanSummary populates the document's declared summary fields from
// whole-text regex scans.
func (e *Extractor) scanSummary(doc *models.GradeDocument) {
	text := doc.SourceText

	if m := gwaRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			doc.GWA = v
			doc.HasGWA = true
		}
	}
	if m := totalUnitsRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			doc.TotalUnits = v
		}
	}
	if m := totalCoursesValueRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			doc.TotalCourses = v
		}
	}
	if m := academicYearRe.FindStringSubmatch(text); m != nil {
		doc.AcademicYear = spaceRe.ReplaceAllString(m[1], "")
	}
	doc.Semester = normalizeSemester(text)
	doc.YearLevel = normalizeYearLevel(text)
}

func normalizeSemester(text string) string {
	switch {
	case semesterFirstRe.MatchString(text):
		return "1st Semester"
	case semesterSecondRe.MatchString(text):
		return "2nd Semester"
	case semesterSummerRe.MatchString(text):
		return "Summer"
	}
	return ""
}

func normalizeYearLevel(text string) string {
	m := yearLevelRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	switch strings.ToLower(m[1]) {
	case "1st", "first":
		return "1st Year"
	case "2nd", "second":
		return "2nd Year"
	case "3rd", "third":
		return "3rd Year"
	default:
		return "4th Year"
	}
}
