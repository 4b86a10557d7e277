package curriculum

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectsFieldResolution(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/curriculum_subjects.php", r.URL.Path)
		w.Write([]byte(`[
			{"id": 7, "Code": "IT 201", "Course_Title": "Data Structures", "Units": "3", "curriculum_id": "5"},
			{"subject_id": "8", "course_code": "IT 202", "course_title": "Database Systems", "credit_units": 3, "curriculum_id": "5"}
		]`))
	}))
	defer srv.Close()

	client := NewHTTPCatalogClient(srv.URL, time.Minute)
	subjects, err := client.Subjects(context.Background(), "5")

	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "7", subjects[0].SubjectID)
	assert.Equal(t, "IT 201", subjects[0].Code)
	assert.Equal(t, "Data Structures", subjects[0].Title)
	assert.Equal(t, "3", subjects[0].Units)
	assert.Equal(t, "8", subjects[1].SubjectID)
	assert.Equal(t, "IT 202", subjects[1].Code)
	assert.Equal(t, "3", subjects[1].Units)
}

func TestSubjectsWrappedResponseAndFiltering(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"subjects": [
			{"subject_id": "1", "code": "IT 201", "curriculum_id": "5"},
			{"subject_id": "2", "code": "CS 101", "curriculum_id": "9"}
		]}`))
	}))
	defer srv.Close()

	client := NewHTTPCatalogClient(srv.URL, time.Minute)
	subjects, err := client.Subjects(context.Background(), "5")

	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "IT 201", subjects[0].Code)
}

func TestSubjectsCachesSnapshot(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`[{"subject_id": "1", "code": "IT 201"}]`))
	}))
	defer srv.Close()

	client := NewHTTPCatalogClient(srv.URL, time.Minute)
	_, err := client.Subjects(context.Background(), "5")
	require.NoError(t, err)
	_, err = client.Subjects(context.Background(), "5")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestSubjectsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPCatalogClient(srv.URL, time.Minute)
	_, err := client.Subjects(context.Background(), "5")

	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestSubjectsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	client := NewHTTPCatalogClient(srv.URL, time.Minute)
	_, err := client.Subjects(context.Background(), "5")

	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}
