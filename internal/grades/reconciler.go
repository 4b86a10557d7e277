package grades

import (
	"github.com/rs/zerolog"

	"github.com/achievemate/gradeflow/internal/logger"
	"github.com/achievemate/gradeflow/pkg/models"
)

// Source names which grade sequence the reconciler ended up using.
type Source string

const (
	// SourcePrimary means the OCR-extracted sequence was clean and used as-is.
	SourcePrimary Source = "primary"
	// SourceSecondary means the cross-check sequence overrode the primary.
	SourceSecondary Source = "secondary"
	// SourceFallback means neither source was clean; the primary sequence
	// was kept with its invalid values for downstream flagging.
	SourceFallback Source = "fallback"
)

// Reconciler cross-checks the OCR-derived grade column against an optional
// secondary grade sequence pulled from an independently rendered source.
// The grade column is the most OCR-fragile part of a transcript, so when
// the primary sequence contains any token that does not resolve into the
// allowed set, the cleaner secondary source wins positionally.
type Reconciler struct {
	log zerolog.Logger
}

// NewReconciler creates a grade value reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{
		log: logger.WithComponent("grade-reconciler"),
	}
}

// Resolve applies the decision rule to the document's courses in place and
// reports which source was used. Grade overrides happen before aggregation;
// the reconciler is the only step allowed to rewrite grade values.
//
// Rule: a non-empty, fully-allowed primary sequence is kept (normalized).
// Otherwise the secondary sequence, filtered to allowed values, overrides
// index-aligned; excess or missing entries leave the course untouched. If
// neither source is clean the primary values stay as-is, and downstream
// consumers flag them UNKNOWN.
func (r *Reconciler) Resolve(doc *models.GradeDocument, secondary []string) Source {
	primaryClean := len(doc.Courses) > 0
	for _, course := range doc.Courses {
		if !IsAllowed(course.Grade) {
			primaryClean = false
			break
		}
	}

	if primaryClean {
		for i := range doc.Courses {
			normalized, _ := Normalize(doc.Courses[i].Grade)
			doc.Courses[i].Grade = normalized
		}
		r.log.Debug().Int("courses", len(doc.Courses)).Msg("Primary grade sequence is clean")
		return SourcePrimary
	}

	var filtered []string
	for _, tok := range secondary {
		if normalized, ok := Normalize(tok); ok {
			filtered = append(filtered, normalized)
		}
	}

	if len(filtered) > 0 {
		overridden := 0
		for i := range doc.Courses {
			if i >= len(filtered) {
				break
			}
			doc.Courses[i].Grade = filtered[i]
			overridden++
		}
		r.log.Info().
			Int("courses", len(doc.Courses)).
			Int("overridden", overridden).
			Int("secondary_values", len(filtered)).
			Msg("Grade values overridden from secondary source")
		return SourceSecondary
	}

	r.log.Warn().
		Int("courses", len(doc.Courses)).
		Msg("No clean grade source available, keeping primary values")
	return SourceFallback
}
