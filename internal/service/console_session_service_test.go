package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-console/internal/dto"
	"github.com/noah-isme/school-console/internal/models"
	"github.com/noah-isme/school-console/internal/repository"
	appErrors "github.com/noah-isme/school-console/pkg/errors"
)

type fakeTokenStore struct {
	mu      sync.Mutex
	records map[string]repository.TokenRecord
	ttls    map[string]time.Duration
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{records: map[string]repository.TokenRecord{}, ttls: map[string]time.Duration{}}
}

func (f *fakeTokenStore) Get(_ context.Context, id string) (*repository.TokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, appErrors.ErrCacheMiss
	}
	return &record, nil
}

func (f *fakeTokenStore) Save(_ context.Context, record repository.TokenRecord, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.SessionID] = record
	f.ttls[record.SessionID] = ttl
	return nil
}

func (f *fakeTokenStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, id)
	return nil
}

func (f *fakeTokenStore) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.records[id]
	return ok
}

// fakeSchoolAPI records calls and resolves the bearer token through the bound source.
type fakeSchoolAPI struct {
	mu          sync.Mutex
	tokens      repository.TokenSource
	seenTokens  []string
	genericErr  error
	generic     dto.GenericDataResponse
	submitted   []dto.EntityPayload
	deleted     []string
	submitErr   error
	students    []models.Student
	allStudents dto.StudentsResponse
	allQueries  []dto.AllStudentsQuery
}

func (f *fakeSchoolAPI) bind(ts repository.TokenSource) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = ts
}

func (f *fakeSchoolAPI) token(ctx context.Context) error {
	f.mu.Lock()
	source := f.tokens
	f.mu.Unlock()
	if source == nil {
		return nil
	}
	token, err := source(ctx)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.seenTokens = append(f.seenTokens, token)
	f.mu.Unlock()
	return nil
}

func (f *fakeSchoolAPI) GenericData(ctx context.Context, _ dto.GenericDataQuery) (dto.GenericDataResponse, error) {
	if err := f.token(ctx); err != nil {
		return dto.GenericDataResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generic, f.genericErr
}

func (f *fakeSchoolAPI) Submit(ctx context.Context, payload dto.EntityPayload) error {
	if err := f.token(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, payload)
	return f.submitErr
}

func (f *fakeSchoolAPI) Delete(ctx context.Context, resource models.Resource, id models.ID) error {
	if err := f.token(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, string(resource)+"/"+id.String())
	return f.submitErr
}

func (f *fakeSchoolAPI) ListClassStudents(ctx context.Context, _, _ string) ([]models.Student, error) {
	if err := f.token(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.students, nil
}

func (f *fakeSchoolAPI) ListAllStudents(ctx context.Context, query dto.AllStudentsQuery) (dto.StudentsResponse, error) {
	if err := f.token(ctx); err != nil {
		return dto.StudentsResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allQueries = append(f.allQueries, query)
	return f.allStudents, nil
}

func signedToken(t *testing.T, subject string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("login-service-secret"))
	require.NoError(t, err)
	return signed
}

func newSessionService(t *testing.T, api *fakeSchoolAPI) (*ConsoleSessionService, *fakeTokenStore) {
	t.Helper()
	store := newFakeTokenStore()
	svc := NewConsoleSessionService(store, func(ts repository.TokenSource) SchoolAPI {
		api.bind(ts)
		return api
	}, nil, nil, nil, ConsoleSessionConfig{TTL: time.Hour, Leeway: time.Second, Scheduler: &fakeScheduler{}})
	t.Cleanup(func() { svc.CloseAll(context.Background()) })
	return svc, store
}

func TestConsoleSessionOpenAndResolve(t *testing.T) {
	api := &fakeSchoolAPI{generic: classesResponse("JSS1")}
	svc, store := newSessionService(t, api)

	token := signedToken(t, "admin@school", time.Now().Add(30*time.Minute))
	session, err := svc.Open(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "admin@school", session.Subject)
	assert.True(t, session.ExpiresAt.Before(time.Now().Add(31*time.Minute)))
	assert.True(t, store.has(session.ID))
	assert.LessOrEqual(t, store.ttls[session.ID], 31*time.Minute)

	session.Dashboard.Wait()
	assert.Len(t, session.Dashboard.Data().Classes, 1)
	api.mu.Lock()
	assert.Equal(t, []string{token}, api.seenTokens)
	api.mu.Unlock()

	resolved, err := svc.Resolve(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Same(t, session, resolved)
}

func TestConsoleSessionRejectsExpiredToken(t *testing.T) {
	svc, _ := newSessionService(t, &fakeSchoolAPI{})

	_, err := svc.Open(context.Background(), signedToken(t, "x", time.Now().Add(-time.Hour)))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrLoginRequired)
	assert.Equal(t, 0, svc.Count())
}

func TestConsoleSessionAcceptsOpaqueToken(t *testing.T) {
	svc, _ := newSessionService(t, &fakeSchoolAPI{})

	session, err := svc.Open(context.Background(), "opaque-token")
	require.NoError(t, err)
	assert.Empty(t, session.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)
}

func TestConsoleSessionResolveUnknown(t *testing.T) {
	svc, _ := newSessionService(t, &fakeSchoolAPI{})

	_, err := svc.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrLoginRequired)
}

func TestConsoleSessionRevokedTokenTearsDown(t *testing.T) {
	svc, store := newSessionService(t, &fakeSchoolAPI{})
	session, err := svc.Open(context.Background(), "opaque-token")
	require.NoError(t, err)
	session.Dashboard.Wait()

	require.NoError(t, store.Delete(context.Background(), session.ID))

	_, err = svc.Resolve(context.Background(), session.ID)
	assert.ErrorIs(t, err, appErrors.ErrLoginRequired)
	assert.Equal(t, 0, svc.Count())
}

func TestConsoleSessionUnauthorizedFetchSignsOut(t *testing.T) {
	api := &fakeSchoolAPI{genericErr: appErrors.Clone(appErrors.ErrUnauthorized, "")}
	svc, store := newSessionService(t, api)

	session, err := svc.Open(context.Background(), "opaque-token")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return svc.Count() == 0 }, time.Second, 5*time.Millisecond)
	assert.False(t, store.has(session.ID))
}

func TestConsoleSessionCloseAndReap(t *testing.T) {
	svc, store := newSessionService(t, &fakeSchoolAPI{})

	first, err := svc.Open(context.Background(), "a")
	require.NoError(t, err)
	second, err := svc.Open(context.Background(), "b")
	require.NoError(t, err)

	require.NoError(t, svc.Close(context.Background(), first.ID))
	assert.False(t, store.has(first.ID))
	assert.ErrorIs(t, svc.Close(context.Background(), first.ID), appErrors.ErrLoginRequired)

	svc.now = func() time.Time { return second.ExpiresAt.Add(time.Minute) }
	assert.Equal(t, 1, svc.Reap(context.Background()))
	assert.Equal(t, 0, svc.Count())
}
