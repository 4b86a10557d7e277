// Package extract recovers structured course records from raw OCR text.
//
// Transcript OCR output arrives in two shapes, often both in one document:
// a pipe-delimited structured section emitted by the OCR service
// (COURSE_CODE|COURSE_TITLE|UNITS|GRADE|SECTION|INSTRUCTOR) and the raw
// tabular region of the scanned page, where OCR line-wrapping splits a
// single course row across several physical lines. The extractor walks the
// text line by line as an explicit finite-state machine, captures rows from
// both shapes, and merges them under a positional/code uniqueness rule.
//
// The extractor is best-effort by contract: it never returns an error.
// Unclassifiable lines and unparseable rows are skipped, and a fully
// malformed input yields an empty course list with absent summary fields.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/achievemate/gradeflow/internal/logger"
	"github.com/achievemate/gradeflow/pkg/models"
)

// scanState is the line scanner's mode. Transitions are driven by sentinel
// lines; the same termination sentinels end both capture modes.
type scanState int

const (
	// stateScanning is the default mode outside any course section.
	stateScanning scanState = iota
	// stateStructured captures pipe-delimited rows after the structured
	// schema header.
	stateStructured
	// stateTable reconstructs wrapped rows after a tabular column header.
	stateTable
)

// structuredHeader is the sentinel opening the pipe-delimited section.
const structuredHeader = "COURSE_CODE|COURSE_TITLE|UNITS|GRADE|SECTION|INSTRUCTOR"

var (
	rowStartRe      = regexp.MustCompile(`^(\d+)\s+`)
	totalCoursesRe  = regexp.MustCompile(`(?i)total\s+(?:no\s+of\s+)?courses?\b`)
	terminationKeys = []string{"SUMMARY:", "STUDENT INFO:", "** NOTHING FOLLOWS **"}
)

// Extractor parses raw OCR text into an ordered list of course records plus
// document-level summary fields.
type Extractor struct {
	log zerolog.Logger
}

// NewExtractor creates a grade text extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		log: logger.WithComponent("grade-extractor"),
	}
}

// tableRow accumulates the text of one numbered table row, including its
// continuation lines.
type tableRow struct {
	number int
	text   string
}

// Extract parses the raw text of one uploaded transcript. The returned
// document's course order is first-seen order; re-running Extract on the
// same text yields an identical result.
func (e *Extractor) Extract(text string) *models.GradeDocument {
	doc := &models.GradeDocument{SourceText: text}

	state := stateScanning
	structuredRow := 0
	var rows []tableRow

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch state {
		case stateScanning:
			if isStructuredHeader(line) {
				state = stateStructured
			} else if isTableHeader(line) {
				state = stateTable
			}

		case stateStructured:
			switch {
			case isTermination(line):
				state = stateScanning
			case isTableHeader(line):
				state = stateTable
			case strings.Count(line, "|") >= 5:
				structuredRow++
				if course, ok := parseStructuredRow(line, structuredRow); ok {
					e.addCourse(doc, course)
				}
			}

		case stateTable:
			switch {
			case isTermination(line):
				state = stateScanning
			case isStructuredHeader(line):
				state = stateStructured
			default:
				if m := rowStartRe.FindStringSubmatch(line); m != nil {
					num, _ := strconv.Atoi(m[1])
					rows = append(rows, tableRow{number: num, text: line})
				} else if len(rows) > 0 {
					// Continuation of an OCR-wrapped row
					rows[len(rows)-1].text += " " + line
				}
			}
		}
	}

	for _, row := range rows {
		course, ok := parseTableRow(row.text)
		if !ok {
			e.log.Debug().Str("row", row.text).Msg("Skipping unparseable table row")
			continue
		}
		course.RowNumber = row.number
		e.addCourse(doc, course)
	}

	e.scanSummary(doc)

	e.log.Info().
		Int("courses", len(doc.Courses)).
		Str("academic_year", doc.AcademicYear).
		Str("semester", doc.Semester).
		Bool("has_gwa", doc.HasGWA).
		Msg("Extraction completed")

	return doc
}

// addCourse appends a record unless it collides with an already-kept one.
// Records that both carry a row number collide on equal numbers; otherwise
// collision is decided by normalized course code. Losers are dropped
// silently.
func (e *Extractor) addCourse(doc *models.GradeDocument, course models.CourseRecord) {
	for _, kept := range doc.Courses {
		if kept.RowNumber > 0 && course.RowNumber > 0 {
			if kept.RowNumber == course.RowNumber {
				return
			}
			continue
		}
		if NormalizeCourseCode(kept.CourseCode) == NormalizeCourseCode(course.CourseCode) {
			return
		}
	}
	doc.Courses = append(doc.Courses, course)
}

// NormalizeCourseCode uppercases a code and collapses internal whitespace,
// the uniqueness key for records without row numbers.
func NormalizeCourseCode(code string) string {
	return strings.Join(strings.Fields(strings.ToUpper(code)), " ")
}

func isStructuredHeader(line string) bool {
	return strings.Contains(line, structuredHeader)
}

// isTableHeader detects the scanned page's column header row.
func isTableHeader(line string) bool {
	return strings.Contains(line, "Course Code") &&
		strings.Contains(line, "Course Title") &&
		strings.Contains(line, "Units") &&
		strings.Contains(line, "Grade")
}

// isTermination reports whether a line ends the current capture mode.
func isTermination(line string) bool {
	for _, key := range terminationKeys {
		if strings.Contains(line, key) {
			return true
		}
	}
	return totalCoursesRe.MatchString(line)
}

// parseStructuredRow maps a pipe-delimited line positionally to the six
// course fields. Extra pipes fold into the instructor field.
func parseStructuredRow(line string, rowNumber int) (models.CourseRecord, bool) {
	parts := strings.Split(line, "|")
	if len(parts) < 6 {
		return models.CourseRecord{}, false
	}
	course := models.CourseRecord{
		RowNumber:   rowNumber,
		CourseCode:  strings.TrimSpace(parts[0]),
		CourseTitle: strings.TrimSpace(parts[1]),
		Units:       strings.TrimSpace(parts[2]),
		Grade:       strings.TrimSpace(parts[3]),
		Section:     strings.TrimSpace(parts[4]),
		Instructor:  strings.TrimSpace(strings.Join(parts[5:], " ")),
	}
	if course.CourseCode == "" {
		return models.CourseRecord{}, false
	}
	return course, true
}
