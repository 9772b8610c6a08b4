package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-console/internal/dto"
	"github.com/noah-isme/school-console/internal/models"
	appErrors "github.com/noah-isme/school-console/pkg/errors"
	"github.com/noah-isme/school-console/pkg/export"
)

func exportSnapshot(termID string) DashboardSnapshot {
	bundle := models.EmptyBundle()
	bundle.Classes = []models.Class{{ID: "1", Name: "JSS1"}, {ID: "2", Name: "JSS2"}}
	bundle.Terms = []models.Term{{ID: "3", Name: "First Term"}}
	bundle.Sessions = []models.Session{{ID: "4", Name: "2024/2025"}}
	bundle.StudentsPerClass = []models.StudentsPerClass{{ClassID: "1", ClassName: "JSS1", TotalStudents: 5}, {ClassID: "2", ClassName: "JSS2", TotalStudents: 9}}
	bundle.Questions = models.QuestionPage{Items: []models.Question{{ID: "1", SubjectName: "Maths", ClassID: "2", SessionID: "4", TermID: "3", Type: models.QuestionTypeCA, QuestionFile: "q1.pdf"}}, TotalRecords: 1, TotalPages: 1}
	if termID != "" {
		bundle.FeePaymentStatusPerClass = []models.FeePaymentStatus{
			{ClassID: "1", ClassName: "JSS1", TotalStudents: 5, Fees: models.SelectedTermFees{Paid: 2, Unpaid: 3}},
			{ClassID: "2", ClassName: "JSS2", TotalStudents: 9, Fees: models.SelectedTermFees{Paid: 8, Unpaid: 1}},
		}
	} else {
		bundle.FeePaymentStatusPerClass = []models.FeePaymentStatus{
			{ClassID: "1", ClassName: "JSS1", TotalStudents: 5, Fees: models.PerTermFees{First: models.PaidUnpaid{Paid: 1, Unpaid: 4}}},
		}
	}
	filters := models.DefaultFilters(10)
	filters.TermID = termID
	return DashboardSnapshot{
		Data:           bundle,
		Filters:        filters,
		DisplayNames:   models.DeriveDisplayNames(filters, bundle),
		CommittedQuery: dto.GenericDataQuery{TermID: termID, Page: 1, PageSize: 10},
	}
}

func newTestExportService() *ExportService {
	svc := NewExportService(nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

func TestExportServiceSelectedTermFeesCSV(t *testing.T) {
	file, err := newTestExportService().Export(exportSnapshot("3"), ExportReportFees, export.FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "fees-20250102-030405.csv", file.Filename)
	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Class,Students,Paid,Unpaid", lines[0])
	assert.Equal(t, "JSS2,9,8,1", lines[1])
	assert.Equal(t, "Total,14,10,4", lines[3])
}

func TestExportServicePerTermFeesHeaders(t *testing.T) {
	file, err := newTestExportService().Export(exportSnapshot(""), ExportReportFees, export.FormatCSV)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(file.Data), "Class,Students,1st Paid,1st Unpaid"))
}

func TestExportServiceQuestionsResolvesNames(t *testing.T) {
	file, err := newTestExportService().Export(exportSnapshot(""), ExportReportQuestions, export.FormatCSV)
	require.NoError(t, err)
	assert.Contains(t, string(file.Data), "Maths,JSS2,2024/2025,First Term,CA,q1.pdf")
}

func TestExportServiceStudentsPDF(t *testing.T) {
	file, err := newTestExportService().Export(exportSnapshot(""), ExportReportStudents, export.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Data), "%PDF"))
}

func TestExportServiceUnknownReport(t *testing.T) {
	_, err := newTestExportService().Export(exportSnapshot(""), ExportReport("grades"), export.FormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
