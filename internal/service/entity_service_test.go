package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-console/internal/dto"
	"github.com/noah-isme/school-console/internal/models"
	appErrors "github.com/noah-isme/school-console/pkg/errors"
)

type recordingAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (r *recordingAudit) Record(entry AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

type recordingUnauthorized struct {
	ids []string
}

func (r *recordingUnauthorized) HandleUnauthorized(id string) {
	r.ids = append(r.ids, id)
}

func newEntitySession(t *testing.T, api *fakeSchoolAPI) *ConsoleSession {
	t.Helper()
	dash := NewDashboardContext(DashboardContextConfig{Fetcher: api, Scheduler: &fakeScheduler{}})
	t.Cleanup(dash.Close)
	return &ConsoleSession{ID: "sess-1", Subject: "admin", Dashboard: dash, API: api}
}

func fetchCount(api *fakeSchoolAPI) int {
	api.mu.Lock()
	defer api.mu.Unlock()
	return len(api.seenTokens)
}

func TestEntityServiceSubmitRequiresFields(t *testing.T) {
	api := &fakeSchoolAPI{}
	session := newEntitySession(t, api)
	svc := NewEntityService(nil, nil, nil, nil, 0)

	_, err := svc.Submit(context.Background(), session, dto.ClassPayload{Name: "JSS1 A"})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "classTypeId")
	assert.Contains(t, appErr.Message, "sessionId")
	assert.Empty(t, api.submitted)
}

func TestEntityServiceSubmitRefetchesAndAudits(t *testing.T) {
	api := &fakeSchoolAPI{tokens: staticTokenSource("tok")}
	session := newEntitySession(t, api)
	audit := &recordingAudit{}
	svc := NewEntityService(nil, audit, nil, nil, 0)

	ack, err := svc.Submit(context.Background(), session, dto.QuestionPayload{
		SubjectID: "1", ClassID: "2", Type: "1", TermID: "3", SessionID: "4", QuestionFile: "exam.pdf",
	})
	require.NoError(t, err)
	session.Dashboard.Wait()

	assert.True(t, ack.Refetched)
	assert.False(t, ack.Updated)
	require.Len(t, api.submitted, 1)
	submitted := api.submitted[0].(dto.QuestionPayload)
	assert.Equal(t, "Exam", submitted.Type)
	// one call for submit, one for the refetch
	assert.Equal(t, 2, fetchCount(api))

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionSubmit, audit.entries[0].Action)
	assert.Equal(t, models.ResourceQuestions, audit.entries[0].Resource)
	assert.NoError(t, audit.entries[0].Err)
}

func TestEntityServiceUpdateAck(t *testing.T) {
	api := &fakeSchoolAPI{}
	session := newEntitySession(t, api)
	svc := NewEntityService(nil, nil, nil, nil, 0)

	ack, err := svc.Submit(context.Background(), session, dto.SessionPayload{ID: "7", Name: "2025/2026"})
	require.NoError(t, err)
	assert.True(t, ack.Updated)
	assert.Equal(t, models.ID("7"), ack.ID)
}

func TestEntityServiceUnauthorizedSignsOut(t *testing.T) {
	api := &fakeSchoolAPI{submitErr: appErrors.Clone(appErrors.ErrUnauthorized, "")}
	session := newEntitySession(t, api)
	unauthorized := &recordingUnauthorized{}
	audit := &recordingAudit{}
	svc := NewEntityService(nil, audit, unauthorized, nil, 0)

	_, err := svc.Delete(context.Background(), session, models.ResourceSubjects, "9")

	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrLoginRequired)
	assert.Equal(t, []string{"sess-1"}, unauthorized.ids)
	require.Len(t, audit.entries, 1)
	assert.Error(t, audit.entries[0].Err)
}

func TestEntityServiceDeleteRejectsUnknownResource(t *testing.T) {
	svc := NewEntityService(nil, nil, nil, nil, 0)
	session := newEntitySession(t, &fakeSchoolAPI{})

	_, err := svc.Delete(context.Background(), session, models.Resource("teachers"), "1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestEntityServiceAllStudentsPagination(t *testing.T) {
	total := 23
	api := &fakeSchoolAPI{allStudents: dto.StudentsResponse{
		StudentRecords: []models.Student{{ID: "1", Name: "Ada"}},
		TotalRecords:   &total,
	}}
	session := newEntitySession(t, api)
	svc := NewEntityService(nil, nil, nil, nil, 5)

	view, err := svc.AllStudents(context.Background(), session, dto.AllStudentsQuery{Page: 0, Search: "  ada "})
	require.NoError(t, err)

	require.Len(t, api.allQueries, 1)
	assert.Equal(t, "ada", api.allQueries[0].Search)
	assert.Equal(t, 1, api.allQueries[0].Page)
	assert.Equal(t, 10, api.allQueries[0].PageSize)
	assert.Equal(t, 3, view.Students.TotalPages)
	assert.Equal(t, 1, view.Summary.From)
	assert.Equal(t, 10, view.Summary.To)
	assert.Equal(t, []int{1, 2, 3}, view.Window.Pages)
}

func TestEntityServiceClassStudentsUsesBundle(t *testing.T) {
	api := &fakeSchoolAPI{
		generic: dto.GenericDataResponse{
			Classes:  []models.Class{{ID: "2", Name: "JSS2", ClassTypeID: "1", SessionID: "5"}},
			Subjects: []models.Subject{{ID: "10", Name: "Maths", ClassTypeID: "1"}, {ID: "11", Name: "Physics", ClassTypeID: "2"}},
		},
		students: []models.Student{{ID: "1", Name: "Ada", Balance: -200}},
	}
	session := newEntitySession(t, api)
	session.Dashboard.Start()
	session.Dashboard.Wait()
	svc := NewEntityService(nil, nil, nil, nil, 0)

	view, err := svc.ClassStudents(context.Background(), session, "2", "")
	require.NoError(t, err)

	assert.Equal(t, "JSS2", view.Class.Name)
	assert.Equal(t, "5", view.SessionID)
	require.Len(t, view.Subjects, 1)
	assert.Equal(t, "Maths", view.Subjects[0].Name)
	assert.Equal(t, -200.0, view.Students[0].Balance)
}

func staticTokenSource(token string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return token, nil }
}
