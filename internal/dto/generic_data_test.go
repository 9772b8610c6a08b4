package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-console/internal/models"
)

func TestGenericDataQueryValuesOmitsEmpty(t *testing.T) {
	q := GenericDataQuery{SessionID: "3", QuestionType: models.QuestionTypeExam, Page: 2, PageSize: 10}
	values := q.Values()

	assert.Equal(t, "3", values.Get("sessionId"))
	assert.Equal(t, "Exam", values.Get("questionType"))
	assert.Equal(t, "2", values.Get("page"))
	assert.Equal(t, "10", values.Get("pageSize"))
	_, hasTerm := values["termId"]
	_, hasClass := values["classId"]
	assert.False(t, hasTerm)
	assert.False(t, hasClass)
}

func TestQuestionsEnvelopeAcceptsBareArray(t *testing.T) {
	var env QuestionsEnvelope
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1,"type":"CA"},{"id":"2","type":"Exam"}]`), &env))

	require.Len(t, env.Items, 2)
	assert.Nil(t, env.TotalRecords)
	assert.Equal(t, models.ID("1"), env.Items[0].ID)
}

func TestToBundleDerivesTotalsWhenMissing(t *testing.T) {
	payload := `{
		"sessions":[{"id":1,"name":"2024/2025"}],
		"questions":[{"id":1,"type":"CA"},{"id":2,"type":"CA"},{"id":3,"type":"Exam"}],
		"studentsPerClass":[{"classId":1,"class":"JSS1","count":12}]
	}`
	var resp GenericDataResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))

	bundle := resp.ToBundle(GenericDataQuery{Page: 1, PageSize: 2})

	assert.Equal(t, 3, bundle.Questions.TotalRecords)
	assert.Equal(t, 2, bundle.Questions.TotalPages)
	require.Len(t, bundle.StudentsPerClass, 1)
	assert.Equal(t, "JSS1", bundle.StudentsPerClass[0].ClassName)
	assert.Equal(t, 12, bundle.StudentsPerClass[0].TotalStudents)
	assert.NotNil(t, bundle.Classes)
	assert.NotNil(t, bundle.FeePaymentStatusPerClass)
}

func TestToBundleKeepsServerTotals(t *testing.T) {
	payload := `{"questions":{"items":[{"id":"9","subject":{"id":4,"name":"Maths"},"class":{"id":2,"name":"JSS2"},"type":"Exam"}],"totalRecords":41,"totalPages":5}}`
	var resp GenericDataResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))

	bundle := resp.ToBundle(GenericDataQuery{Page: 3, PageSize: 10})

	assert.Equal(t, 41, bundle.Questions.TotalRecords)
	assert.Equal(t, 5, bundle.Questions.TotalPages)
	require.Len(t, bundle.Questions.Items, 1)
	q := bundle.Questions.Items[0]
	assert.Equal(t, models.ID("4"), q.SubjectID)
	assert.Equal(t, "Maths", q.SubjectName)
	assert.Equal(t, models.ID("2"), q.ClassID)
}

func TestToBundlePicksFeeVariantFromTermFilter(t *testing.T) {
	payload := `{"feePaymentStatusPerClass":[{"classId":1,"className":"JSS1","totalStudents":10,
		"firstTermPaid":3,"firstTermUnpaid":7,"paidCount":4,"unpaidCount":6}]}`
	var resp GenericDataResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))

	perTerm := resp.ToBundle(GenericDataQuery{PageSize: 10})
	require.Len(t, perTerm.FeePaymentStatusPerClass, 1)
	assert.Equal(t, models.FeeShapePerTerm, perTerm.FeePaymentStatusPerClass[0].Fees.Shape())

	selected := resp.ToBundle(GenericDataQuery{TermID: "1", PageSize: 10})
	fees, ok := selected.FeePaymentStatusPerClass[0].Fees.(models.SelectedTermFees)
	require.True(t, ok)
	assert.Equal(t, 4, fees.Paid)
	assert.Equal(t, 6, fees.Unpaid)
}

func TestStudentsResponseCountFallback(t *testing.T) {
	var withTotal StudentsResponse
	require.NoError(t, json.Unmarshal([]byte(`{"studentRecords":[{"id":1,"name":"Ada"}],"total":23}`), &withTotal))
	page := withTotal.ToPage(1, 10)
	assert.Equal(t, 23, page.TotalRecords)
	assert.Equal(t, 3, page.TotalPages)

	var bare StudentsResponse
	require.NoError(t, json.Unmarshal([]byte(`[]`), &bare))
	empty := bare.ToPage(1, 10)
	assert.Equal(t, 0, empty.TotalRecords)
	assert.Equal(t, 1, empty.TotalPages)
	assert.NotNil(t, empty.Items)
}

func TestIsUpdate(t *testing.T) {
	assert.False(t, IsUpdate(ClassPayload{}))
	assert.False(t, IsUpdate(ClassPayload{ID: "0"}))
	assert.True(t, IsUpdate(ClassPayload{ID: "12"}))
}
