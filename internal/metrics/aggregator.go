// Package metrics computes derived academic figures from a resolved course
// list: the general weighted average, unit and course totals, and the
// per-course pass/fail/incomplete classification.
package metrics

import (
	"strconv"
	"strings"

	"github.com/achievemate/gradeflow/pkg/models"
)

// Summary holds the aggregated figures for one grade document.
type Summary struct {
	// GWA is the credit-weighted mean of numeric grades; HasGWA is false
	// when no course contributed (GWA renders as "N/A").
	GWA    float64 `json:"gwa"`
	HasGWA bool    `json:"has_gwa"`

	TotalUnits   float64 `json:"total_units"`
	TotalCourses int     `json:"total_courses"`

	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
	Incomplete int `json:"incomplete"`
	Unknown    int `json:"unknown"`

	// Section is the most frequent non-empty per-course section, used as
	// the document's representative section on the review sheet.
	Section string `json:"section,omitempty"`
}

// Status classifies one grade value. INC marks are incomplete, 5.00 is the
// failing mark, numeric grades from 1.00 through 4.00 pass, and anything
// unparsable or out of range is UNKNOWN. Pure function, no side effects.
func Status(grade string) models.GradeStatus {
	t := strings.ToUpper(strings.TrimSpace(grade))
	if t == "INC" || t == "INCOMPLETE" {
		return models.StatusIncomplete
	}
	n, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return models.StatusUnknown
	}
	switch {
	case n == 5.00:
		return models.StatusFailed
	case n >= 1.00 && n <= 4.00:
		return models.StatusPassed
	}
	return models.StatusUnknown
}

// Aggregate computes the document's summary. A course contributes to the
// GWA and computed totals only when both its grade and units parse as
// numbers and units are positive. Totals declared by the document's own
// summary lines are authoritative and take precedence over computed ones.
func Aggregate(doc *models.GradeDocument) Summary {
	var sum Summary
	var gradePoints, unitSum float64
	contributing := 0

	for _, course := range doc.Courses {
		switch Status(course.Grade) {
		case models.StatusPassed:
			sum.Passed++
		case models.StatusFailed:
			sum.Failed++
		case models.StatusIncomplete:
			sum.Incomplete++
		default:
			sum.Unknown++
		}

		grade, gerr := strconv.ParseFloat(course.Grade, 64)
		units, uerr := strconv.ParseFloat(course.Units, 64)
		if gerr != nil || uerr != nil || units <= 0 {
			continue
		}
		gradePoints += grade * units
		unitSum += units
		contributing++
	}

	if contributing > 0 {
		sum.GWA = gradePoints / unitSum
		sum.HasGWA = true
	}

	sum.TotalUnits = unitSum
	sum.TotalCourses = len(doc.Courses)
	if doc.HasGWA {
		sum.GWA = doc.GWA
		sum.HasGWA = true
	}
	if doc.TotalUnits > 0 {
		sum.TotalUnits = doc.TotalUnits
	}
	if doc.TotalCourses > 0 {
		sum.TotalCourses = doc.TotalCourses
	}

	sum.Section = representativeSection(doc.Courses)
	return sum
}

// representativeSection picks the most frequent non-empty section, breaking
// ties in favor of the earlier-seen one.
func representativeSection(courses []models.CourseRecord) string {
	counts := make(map[string]int)
	var order []string
	for _, course := range courses {
		if course.Section == "" {
			continue
		}
		if counts[course.Section] == 0 {
			order = append(order, course.Section)
		}
		counts[course.Section]++
	}
	best := ""
	for _, section := range order {
		if best == "" || counts[section] > counts[best] {
			best = section
		}
	}
	return best
}
