package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-console/internal/models"
)

func pageViewSnapshot() DashboardSnapshot {
	bundle := models.EmptyBundle()
	bundle.Sessions = []models.Session{{ID: "1", Name: "2023/2024"}, {ID: "2", Name: "2024/2025"}}
	bundle.ClassTypes = []models.ClassType{{ID: "7", Name: "Junior"}, {ID: "8", Name: "Senior"}}
	bundle.Classes = []models.Class{{ID: "10", Name: "JSS1", ClassTypeID: "7", SessionID: "2"}, {ID: "11", Name: "SSS1", ClassTypeID: "9", SessionID: "3"}}
	bundle.Subjects = []models.Subject{{ID: "20", Name: "Maths", ClassTypeID: "7"}, {ID: "21", Name: "Physics", ClassTypeID: "8"}}
	bundle.Questions = models.QuestionPage{Items: []models.Question{{ID: "1"}, {ID: "2"}}, TotalRecords: 23}
	bundle.StudentsPerClass = []models.StudentsPerClass{{ClassID: "10", ClassName: "JSS1", TotalStudents: 4}, {ClassID: "11", ClassName: "SSS1", TotalStudents: 12}}
	bundle.FeePaymentStatusPerClass = []models.FeePaymentStatus{
		{ClassID: "10", ClassName: "JSS1", TotalStudents: 4, Fees: models.SelectedTermFees{Paid: 1, Unpaid: 3}},
		{ClassID: "11", ClassName: "SSS1", TotalStudents: 12, Fees: models.SelectedTermFees{Paid: 10, Unpaid: 2}},
	}

	filters := models.DefaultFilters(10)
	filters.ClassID = "10"
	filters.Page = 2
	return DashboardSnapshot{
		Data:                   bundle,
		Filters:                filters,
		DisplayNames:           models.DeriveDisplayNames(filters, bundle),
		AvailableQuestionTypes: models.AvailableQuestionTypes(),
	}
}

func TestPageViewQuestionsDerivesPager(t *testing.T) {
	view := NewPageViewService(5).Questions(pageViewSnapshot())

	assert.Len(t, view.Questions, 2)
	assert.Equal(t, "Showing 11 to 20 of 23 results", view.Summary.Text)
	assert.Equal(t, 3, view.Window.TotalPages)
	assert.Equal(t, []int{1, 2, 3}, view.Window.Pages)
	require.Len(t, view.ActiveFilters, 1)
	assert.Equal(t, "JSS1", view.ActiveFilters[0].Name)
	assert.Len(t, view.AvailableQuestionTypes, 2)
}

func TestPageViewClassesResolvesNames(t *testing.T) {
	view := NewPageViewService(0).Classes(pageViewSnapshot(), "", "")

	require.Len(t, view.Classes, 2)
	assert.Equal(t, "2024/2025", view.Classes[0].SessionName)
	assert.Equal(t, "Junior", view.Classes[0].ClassTypeName)
	assert.Equal(t, "3", view.Classes[1].SessionName)
	assert.Equal(t, "9", view.Classes[1].ClassTypeName)
}

func TestPageViewClassesFilterBySessionAndSearch(t *testing.T) {
	svc := NewPageViewService(0)
	snap := pageViewSnapshot()
	snap.Data.Classes = append(snap.Data.Classes, models.Class{ID: "12", Name: "JSS2", ClassTypeID: "7", SessionID: "2"})

	view := svc.Classes(snap, "2", "")
	require.Len(t, view.Classes, 2)
	assert.Equal(t, "2", view.SessionID)

	view = svc.Classes(snap, "2", " jss2 ")
	require.Len(t, view.Classes, 1)
	assert.Equal(t, models.ID("12"), view.Classes[0].ID)
	assert.Equal(t, "jss2", view.Search)

	snap.Filters.SessionID = "3"
	view = svc.Classes(snap, "", "")
	require.Len(t, view.Classes, 1)
	assert.Equal(t, "SSS1", view.Classes[0].Name)
	assert.Equal(t, "3", view.SessionID)

	assert.Empty(t, svc.Classes(snap, "9", "").Classes)
}

func TestPageViewSubjectsFilterByClassType(t *testing.T) {
	svc := NewPageViewService(0)

	all := svc.Subjects(pageViewSnapshot(), "")
	assert.Len(t, all.Subjects, 2)

	senior := svc.Subjects(pageViewSnapshot(), "8")
	require.Len(t, senior.Subjects, 1)
	assert.Equal(t, "Physics", senior.Subjects[0].Name)
	assert.Equal(t, "Senior", senior.Subjects[0].ClassTypeName)
}

func TestPageViewDashboardSortsAndTotals(t *testing.T) {
	view := NewPageViewService(0).Dashboard(pageViewSnapshot())

	assert.Equal(t, models.ID("11"), view.StudentsPerClass[0].ClassID)
	assert.Equal(t, models.ID("11"), view.FeePayment[0].ClassID)
	assert.Equal(t, 16, view.TotalStudents)
	assert.Equal(t, 2, view.TotalClasses)
	assert.Equal(t, 2, view.TotalSubjects)
	assert.Equal(t, models.FeeShapeSelectedTerm, view.FeeTotals.Shape)
	assert.Equal(t, 11, view.FeeTotals.TotalPaid)
	assert.Equal(t, 5, view.FeeTotals.TotalUnpaid)
}
