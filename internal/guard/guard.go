// Package guard blocks re-submission of course grades already persisted
// for the same student, subject, academic year and semester.
//
// Two deliberately different strictness levels coexist here, preserved
// from the product's observed behavior and flagged for review: a period
// duplicate found by the pre-save check blocks the entire upload, while a
// server-detected duplicate during an individual insert (HTTP 409) fails
// only that course.
package guard

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/achievemate/gradeflow/internal/backend"
	"github.com/achievemate/gradeflow/internal/logger"
	"github.com/achievemate/gradeflow/pkg/models"
)

// Policy makes the guard's availability trade-off explicit. FailOpen means
// an unreachable or malformed duplicate-check service is treated as "no
// duplicates" instead of blocking the student; this favors availability
// over strictness for a flaky network service.
type Policy struct {
	FailOpen bool
}

// PeriodConflictError blocks an upload whose academic period already has
// persisted grades for at least one of its subjects.
type PeriodConflictError struct {
	AcademicYear string
	Semester     string
	Duplicates   []models.DuplicateCheckResult
}

// Error implements the error interface.
func (e *PeriodConflictError) Error() string {
	return fmt.Sprintf("grades already recorded for %s, %s (%d subject(s)); this upload cannot be saved",
		e.Semester, e.AcademicYear, len(e.Duplicates))
}

// Guard checks candidate courses against the persisted-grades store.
type Guard struct {
	store  backend.GradeStore
	policy Policy
	log    zerolog.Logger
}

// New creates a duplicate guard with the given policy.
func New(store backend.GradeStore, policy Policy) *Guard {
	return &Guard{
		store:  store,
		policy: policy,
		log:    logger.WithComponent("duplicate-guard"),
	}
}

// Check queries the store for existing grades matching the candidate
// courses. Any reported duplicate returns a PeriodConflictError covering
// the whole upload; no partial save is attempted. A failed check follows
// the policy: fail-open proceeds as though no duplicates exist, fail-closed
// surfaces the error.
func (g *Guard) Check(ctx context.Context, studentID, academicYear, semester string, courses []models.CourseRecord) error {
	if len(courses) == 0 {
		return nil
	}

	req := backend.CheckRequest{StudentID: studentID}
	yearID := backend.AcademicYearID(academicYear)
	for _, course := range courses {
		req.Courses = append(req.Courses, backend.CheckCourse{
			CourseCode:     course.CourseCode,
			SubjectID:      course.SubjectID,
			Grade:          course.Grade,
			Semester:       semester,
			AcademicYearID: yearID,
		})
	}

	duplicates, err := g.store.CheckExistingGrades(ctx, req)
	if err != nil {
		if g.policy.FailOpen {
			g.log.Warn().
				Err(err).
				Str("student_id", studentID).
				Msg("Duplicate check unavailable, failing open")
			return nil
		}
		return err
	}

	if len(duplicates) > 0 {
		g.log.Info().
			Str("student_id", studentID).
			Str("academic_year", academicYear).
			Str("semester", semester).
			Int("duplicates", len(duplicates)).
			Msg("Period conflict found, blocking upload")
		return &PeriodConflictError{
			AcademicYear: academicYear,
			Semester:     semester,
			Duplicates:   duplicates,
		}
	}

	return nil
}
