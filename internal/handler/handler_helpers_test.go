package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-console/internal/dto"
	"github.com/noah-isme/school-console/internal/middleware"
	"github.com/noah-isme/school-console/internal/models"
	"github.com/noah-isme/school-console/internal/service"
)

type envelopeBody struct {
	Data       json.RawMessage        `json:"data"`
	Error      *envelopeError         `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var body envelopeBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

type recordingFetcher struct {
	mu      sync.Mutex
	resp    dto.GenericDataResponse
	queries []dto.GenericDataQuery
}

func (f *recordingFetcher) GenericData(_ context.Context, query dto.GenericDataQuery) (dto.GenericDataResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return f.resp, nil
}

func (f *recordingFetcher) last() dto.GenericDataQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func (f *recordingFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func intRef(v int) *int { return &v }

func schoolData() dto.GenericDataResponse {
	return dto.GenericDataResponse{
		Sessions:   []models.Session{{ID: "1", Name: "2024/2025"}},
		Classes:    []models.Class{{ID: "10", Name: "JSS1", ClassTypeID: "7", SessionID: "1"}},
		Terms:      []models.Term{{ID: "3", Name: "First Term"}},
		Subjects:   []models.Subject{{ID: "20", Name: "Maths", ClassTypeID: "7"}},
		ClassTypes: []models.ClassType{{ID: "7", Name: "Junior"}},
		Questions: dto.QuestionsEnvelope{
			Items:        []dto.QuestionRecord{{ID: "1", SubjectID: "20", ClassID: "10", SessionID: "1", TermID: "3", Type: "CA", QuestionText: "2+2?"}},
			TotalRecords: intRef(25),
		},
		StudentsPerClass:         []dto.StudentsPerClassRecord{{ClassID: "10", ClassName: "JSS1", TotalStudents: intRef(30)}},
		FeePaymentStatusPerClass: []dto.FeePaymentRecord{{ClassID: "10", ClassName: "JSS1", TotalStudents: 30, FirstTermPaid: 20, FirstTermUnpaid: 10}},
	}
}

// newTestSession builds a console session whose dashboard has committed its
// initial fetch. The debounce is long enough that filter edits never fire.
func newTestSession(t *testing.T, fetcher *recordingFetcher) *service.ConsoleSession {
	t.Helper()
	dash := service.NewDashboardContext(service.DashboardContextConfig{
		Fetcher:  fetcher,
		Debounce: time.Hour,
		PageSize: 10,
	})
	dash.Start()
	dash.Wait()
	t.Cleanup(dash.Close)
	return &service.ConsoleSession{ID: "sess-1", Subject: "admin", Dashboard: dash}
}

func newTestRouter(session *service.ConsoleSession) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	r.Use(func(c *gin.Context) {
		if session != nil {
			c.Set(middleware.ContextSessionKey, session)
		}
		c.Next()
	})
	return r
}
