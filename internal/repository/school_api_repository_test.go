package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-console/internal/dto"
	"github.com/noah-isme/school-console/internal/models"
	"github.com/noah-isme/school-console/pkg/config"
	appErrors "github.com/noah-isme/school-console/pkg/errors"
	"github.com/noah-isme/school-console/pkg/middleware/requestid"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveUpstream(operation string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, operation)
}

func staticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

func newSchoolAPI(t *testing.T, handler http.HandlerFunc) (*SchoolAPIRepository, *recordingObserver) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	observer := &recordingObserver{}
	repo := NewSchoolAPIRepository(config.UpstreamConfig{BaseURL: server.URL + "/", Timeout: time.Second}, observer, nil)
	return repo.ForToken(staticToken("tok-123")), observer
}

func TestSchoolAPIGenericDataSendsFiltersAndToken(t *testing.T) {
	repo, observer := newSchoolAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/genericData", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "7", r.URL.Query().Get("classId"))
		assert.Equal(t, "CA", r.URL.Query().Get("questionType"))
		assert.Empty(t, r.URL.Query().Get("termId"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"classes":[{"id":7,"name":"JSS1 A"}],"questions":{"items":[],"totalRecords":0,"totalPages":0}}`))
	})

	resp, err := repo.GenericData(context.Background(), dto.GenericDataQuery{ClassID: "7", QuestionType: models.QuestionTypeCA, Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, resp.Classes, 1)
	assert.Equal(t, models.ID("7"), resp.Classes[0].ID)
	assert.Equal(t, []string{"generic_data"}, observer.calls)
}

func TestSchoolAPIUnauthorizedMapsToSentinel(t *testing.T) {
	repo, _ := newSchoolAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := repo.GenericData(context.Background(), dto.GenericDataQuery{Page: 1, PageSize: 10})
	require.Error(t, err)
	assert.True(t, appErrors.IsUnauthorized(err))
}

func TestSchoolAPIValidationMessageSurfaced(t *testing.T) {
	repo, _ := newSchoolAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"data":{"message":"name already exists"}}`))
	})

	err := repo.Submit(context.Background(), dto.ClassPayload{Name: "JSS1", ClassTypeID: "1", SessionID: "2"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "name already exists", appErr.Message)
}

func TestSchoolAPISubmitPostsPayload(t *testing.T) {
	repo, _ := newSchoolAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/subjects", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Physics", body["name"])
		assert.Equal(t, "12", body["id"])
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, repo.Submit(context.Background(), dto.SubjectPayload{ID: "12", Name: "Physics", ClassTypeID: "3"}))
}

func TestSchoolAPIDeleteEscapesID(t *testing.T) {
	repo, _ := newSchoolAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/questions/a b", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, repo.Delete(context.Background(), models.ResourceQuestions, "a b"))
}

func TestSchoolAPIForwardsRequestID(t *testing.T) {
	repo, _ := newSchoolAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-9", r.Header.Get(requestid.HeaderKey))
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := requestid.NewContext(context.Background(), "req-9")
	require.NoError(t, repo.Delete(ctx, models.ResourceClasses, "3"))
}

func TestSchoolAPIListStudents(t *testing.T) {
	repo, _ := newSchoolAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/students":
			assert.Equal(t, "1", r.URL.Query().Get("sessionId"))
			assert.Equal(t, "4", r.URL.Query().Get("classId"))
			_, _ = w.Write([]byte(`[{"id":1,"name":"Ada","balance":-500}]`))
		case "/students/all":
			assert.Equal(t, "ada", r.URL.Query().Get("search"))
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			_, _ = w.Write([]byte(`{"studentRecords":[{"id":1,"name":"Ada"}],"totalRecords":11}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	students, err := repo.ListClassStudents(context.Background(), "1", "4")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, -500.0, students[0].Balance)

	all, err := repo.ListAllStudents(context.Background(), dto.AllStudentsQuery{Page: 2, PageSize: 10, Search: "  ada "})
	require.NoError(t, err)
	assert.Equal(t, 11, all.Count())
}

func TestSchoolAPITokenSourceErrorShortCircuits(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer server.Close()

	repo := NewSchoolAPIRepository(config.UpstreamConfig{BaseURL: server.URL}, nil, nil).
		ForToken(func(context.Context) (string, error) { return "", appErrors.ErrLoginRequired })

	_, err := repo.GenericData(context.Background(), dto.GenericDataQuery{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrLoginRequired))
	assert.False(t, called)
}

func TestSchoolAPITransportFailureIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	repo := NewSchoolAPIRepository(config.UpstreamConfig{BaseURL: url, Timeout: time.Second}, nil, nil)
	_, err := repo.GenericData(context.Background(), dto.GenericDataQuery{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUpstream))
}
