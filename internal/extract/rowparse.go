package extract

import (
	"regexp"
	"strings"

	"github.com/achievemate/gradeflow/pkg/models"
)

var (
	// courseNumberRe is the bare 2-3 digit course number terminating a code,
	// e.g. the "201" in "IT 201".
	courseNumberRe = regexp.MustCompile(`^\d{2,3}$`)

	// Section tokens are letter-led and digit-heavy, e.g. "IT-BA-2101" or
	// "CS2101". Plain words and grades never qualify.
	sectionAlnumRe  = regexp.MustCompile(`^[A-Za-z]+[A-Za-z0-9-]*\d{2,}$`)
	sectionDashedRe = regexp.MustCompile(`^[A-Za-z]{2,}-\d{3,}$`)

	lowerUpperRe  = regexp.MustCompile(`([a-z])([A-Z])`)
	letterDigitRe = regexp.MustCompile(`([a-zA-Z])(\d)`)
	digitLetterRe = regexp.MustCompile(`(\d)([a-zA-Z])`)
)

// parseTableRow recovers one course record from an accumulated table row.
// The layout is positional with unreliable spacing, so parsing anchors on
// two landmarks: the digits that terminate the course code, and the
// section-like token near the end. Rows missing either landmark are
// rejected.
func parseTableRow(text string) (models.CourseRecord, bool) {
	tokens := strings.Fields(strings.ReplaceAll(text, "|", " "))
	if len(tokens) < 2 {
		return models.CourseRecord{}, false
	}

	// Leading token is the row number
	tokens = tokens[1:]

	// Accumulate the course code up to and including its 2-3 digit number
	codeEnd := -1
	for i, tok := range tokens {
		if courseNumberRe.MatchString(tok) {
			codeEnd = i
			break
		}
	}
	if codeEnd < 1 {
		// A code needs at least a letter prefix before its number
		return models.CourseRecord{}, false
	}
	code := strings.Join(tokens[:codeEnd+1], " ")

	rest := tokens[codeEnd+1:]

	// Find the section token from the end; units and grade sit directly
	// before it, the instructor after it.
	sectionIdx := -1
	for i := len(rest) - 1; i >= 0; i-- {
		if isSectionToken(rest[i]) {
			sectionIdx = i
			break
		}
	}
	if sectionIdx < 2 {
		return models.CourseRecord{}, false
	}

	return models.CourseRecord{
		CourseCode:  code,
		CourseTitle: FixTitleSpacing(strings.Join(rest[:sectionIdx-2], " ")),
		Units:       rest[sectionIdx-2],
		Grade:       rest[sectionIdx-1],
		Section:     rest[sectionIdx],
		Instructor:  strings.Join(rest[sectionIdx+1:], " "),
	}, true
}

func isSectionToken(tok string) bool {
	return sectionAlnumRe.MatchString(tok) || sectionDashedRe.MatchString(tok)
}

// FixTitleSpacing repairs course titles whose words were visually merged by
// OCR, e.g. "QualityAssurance" or "Project2". Spaces are inserted at
// lowercase-to-uppercase, letter-to-digit and digit-to-letter boundaries,
// and runs of whitespace collapse to one space. Clean titles pass through
// unchanged.
func FixTitleSpacing(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	title = lowerUpperRe.ReplaceAllString(title, "$1 $2")
	title = letterDigitRe.ReplaceAllString(title, "$1 $2")
	title = digitLetterRe.ReplaceAllString(title, "$1 $2")
	return strings.Join(strings.Fields(title), " ")
}
