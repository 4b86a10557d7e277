// Package curriculum reconciles extracted course records against the
// institution's authoritative subject catalog. Matching is a pure function
// over immutable inputs (the catalog snapshot and normalized codes); only
// the catalog client performs IO.
package curriculum

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog"

	"github.com/achievemate/gradeflow/internal/logger"
	"github.com/achievemate/gradeflow/pkg/models"
)

var nonAlnumRe = regexp.MustCompile(`[^A-Z0-9 ]+`)

// NormalizeCode canonicalizes a course code for comparison: uppercase,
// non-alphanumeric characters stripped, whitespace collapsed.
func NormalizeCode(code string) string {
	c := strings.ToUpper(code)
	c = nonAlnumRe.ReplaceAllString(c, "")
	return strings.Join(strings.Fields(c), " ")
}

// Similarity is the normalized Levenshtein similarity of two strings in
// [0,1]: (maxLen - editDistance) / maxLen. Two empty strings score zero.
func Similarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return float64(maxLen-dist) / float64(maxLen)
}

// Matcher reconciles course codes against a catalog snapshot. The
// similarity threshold and suggestion cap come from configuration.
type Matcher struct {
	threshold float64
	limit     int
	log       zerolog.Logger
}

// NewMatcher creates a curriculum matcher with the given suggestion
// threshold and cap.
func NewMatcher(threshold float64, limit int) *Matcher {
	return &Matcher{
		threshold: threshold,
		limit:     limit,
		log:       logger.WithComponent("curriculum-matcher"),
	}
}

// Match reconciles one course against the catalog. Strategies run in
// strict order, first hit wins: exact normalized equality, equality
// ignoring all whitespace, then prefix containment in either direction.
// A miss yields an unmatched result carrying up to limit suggestions with
// similarity above the threshold, ordered by descending similarity.
func (m *Matcher) Match(course models.CourseRecord, catalog []models.CurriculumSubject) models.MatchResult {
	norm := NormalizeCode(course.CourseCode)
	compact := strings.ReplaceAll(norm, " ", "")

	for _, subject := range catalog {
		if NormalizeCode(subject.Code) == norm {
			return models.MatchResult{Course: course, Matched: true, Subject: subject, Strategy: models.MatchExact}
		}
	}
	for _, subject := range catalog {
		if strings.ReplaceAll(NormalizeCode(subject.Code), " ", "") == compact {
			return models.MatchResult{Course: course, Matched: true, Subject: subject, Strategy: models.MatchNoSpaces}
		}
	}
	for _, subject := range catalog {
		subjNorm := NormalizeCode(subject.Code)
		if subjNorm == "" || norm == "" {
			continue
		}
		if strings.HasPrefix(subjNorm, norm) || strings.HasPrefix(norm, subjNorm) {
			return models.MatchResult{Course: course, Matched: true, Subject: subject, Strategy: models.MatchPartial}
		}
	}

	return models.MatchResult{
		Course:      course,
		Matched:     false,
		Suggestions: m.suggest(norm, catalog),
	}
}

// MatchAll reconciles every course, preserving input order.
func (m *Matcher) MatchAll(courses []models.CourseRecord, catalog []models.CurriculumSubject) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(courses))
	matched := 0
	for _, course := range courses {
		result := m.Match(course, catalog)
		if result.Matched {
			matched++
		}
		results = append(results, result)
	}
	m.log.Info().
		Int("courses", len(courses)).
		Int("matched", matched).
		Int("unmatched", len(courses)-matched).
		Msg("Curriculum matching completed")
	return results
}

// suggest scores the catalog against an unmatched code and keeps the top
// candidates above the similarity threshold.
func (m *Matcher) suggest(norm string, catalog []models.CurriculumSubject) []models.Suggestion {
	var candidates []models.Suggestion
	for _, subject := range catalog {
		score := Similarity(norm, NormalizeCode(subject.Code))
		if score > m.threshold {
			candidates = append(candidates, models.Suggestion{Subject: subject, Similarity: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > m.limit {
		candidates = candidates[:m.limit]
	}
	return candidates
}

// BuildValidatedCourseList assembles the set of courses eligible for
// persistence: matched courses bound to their subject, plus unmatched
// courses corrected automatically from their single best suggestion.
// Unmatched courses with no qualifying suggestion are excluded entirely.
func (m *Matcher) BuildValidatedCourseList(results []models.MatchResult) []models.CourseRecord {
	var validated []models.CourseRecord
	for _, result := range results {
		course := result.Course
		switch {
		case result.Matched:
			course.SubjectID = result.Subject.SubjectID
			validated = append(validated, course)
		case len(result.Suggestions) > 0:
			best := result.Suggestions[0].Subject
			course.CourseCode = best.Code
			course.CourseTitle = best.Title
			course.Units = best.Units
			course.SubjectID = best.SubjectID
			course.SuggestionApplied = true
			m.log.Info().
				Str("original_code", result.Course.CourseCode).
				Str("corrected_code", best.Code).
				Float64("similarity", result.Suggestions[0].Similarity).
				Msg("Applied best curriculum suggestion to unmatched course")
			validated = append(validated, course)
		default:
			m.log.Warn().
				Str("course_code", course.CourseCode).
				Msg("Excluding unmatched course with no curriculum suggestions")
		}
	}
	return validated
}
