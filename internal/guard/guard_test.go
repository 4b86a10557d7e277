package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/achievemate/gradeflow/internal/backend"
	"github.com/achievemate/gradeflow/pkg/models"
)

type fakeStore struct {
	duplicates []models.DuplicateCheckResult
	err        error
	requests   []backend.CheckRequest
}

func (f *fakeStore) CheckExistingGrades(ctx context.Context, req backend.CheckRequest) ([]models.DuplicateCheckResult, error) {
	f.requests = append(f.requests, req)
	return f.duplicates, f.err
}

func (f *fakeStore) InsertGrade(ctx context.Context, req backend.InsertRequest) (*backend.InsertResponse, error) {
	panic("guard must never insert")
}

var testCourses = []models.CourseRecord{
	{CourseCode: "IT 201", SubjectID: "7", Grade: "1.50"},
	{CourseCode: "IT 202", SubjectID: "8", Grade: "2.00"},
}

func TestCheckNoDuplicates(t *testing.T) {
	store := &fakeStore{}
	g := New(store, Policy{FailOpen: true})

	err := g.Check(context.Background(), "2021-00123", "2023-2024", "1st Semester", testCourses)

	require.NoError(t, err)
	require.Len(t, store.requests, 1)
	req := store.requests[0]
	assert.Equal(t, "2021-00123", req.StudentID)
	require.Len(t, req.Courses, 2)
	assert.Equal(t, 26, req.Courses[0].AcademicYearID)
	assert.Equal(t, "1st Semester", req.Courses[0].Semester)
}

func TestCheckBlocksWholePeriodOnAnyDuplicate(t *testing.T) {
	store := &fakeStore{
		duplicates: []models.DuplicateCheckResult{{CourseCode: "IT 201", ExistingGrade: "1.75"}},
	}
	g := New(store, Policy{FailOpen: true})

	err := g.Check(context.Background(), "2021-00123", "2023-2024", "1st Semester", testCourses)

	var conflict *PeriodConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "2023-2024", conflict.AcademicYear)
	assert.Equal(t, "1st Semester", conflict.Semester)
	require.Len(t, conflict.Duplicates, 1)
	assert.Contains(t, conflict.Error(), "1st Semester, 2023-2024")
}

func TestCheckFailsOpenOnStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	g := New(store, Policy{FailOpen: true})

	err := g.Check(context.Background(), "2021-00123", "2023-2024", "1st Semester", testCourses)

	assert.NoError(t, err)
}

func TestCheckFailsClosedWhenConfigured(t *testing.T) {
	storeErr := errors.New("connection refused")
	g := New(&fakeStore{err: storeErr}, Policy{FailOpen: false})

	err := g.Check(context.Background(), "2021-00123", "2023-2024", "1st Semester", testCourses)

	assert.ErrorIs(t, err, storeErr)
}

func TestCheckSkipsEmptyCourseList(t *testing.T) {
	store := &fakeStore{err: errors.New("must not be called")}
	g := New(store, Policy{FailOpen: false})

	err := g.Check(context.Background(), "2021-00123", "2023-2024", "1st Semester", nil)

	assert.NoError(t, err)
	assert.Empty(t, store.requests)
}
