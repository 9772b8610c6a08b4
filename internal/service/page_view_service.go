package service

import (
	"strings"

	"github.com/noah-isme/school-console/internal/dto"
	"github.com/noah-isme/school-console/internal/models"
)

// PageViewService projects a dashboard snapshot onto the console pages. It
// holds no state; every view is derived from the snapshot it is given.
type PageViewService struct {
	pageWindow int
}

// NewPageViewService constructs the service with the pager width.
func NewPageViewService(pageWindow int) *PageViewService {
	if pageWindow <= 0 {
		pageWindow = models.DefaultPageWindow
	}
	return &PageViewService{pageWindow: pageWindow}
}

// Questions builds the questions page: the current page of questions, the
// filter selectors and chips, and the pager.
func (s *PageViewService) Questions(snap DashboardSnapshot) dto.QuestionsPageView {
	bundle := snap.Data
	page := bundle.Questions
	totalPages := page.TotalPages
	if totalPages == 0 {
		totalPages = models.TotalPagesFor(page.TotalRecords, snap.Filters.PageSize)
	}
	return dto.QuestionsPageView{
		Questions:              page.Items,
		Filters:                snap.Filters,
		ActiveFilters:          models.ActiveFilters(snap.Filters, snap.DisplayNames),
		DisplayNames:           snap.DisplayNames,
		AvailableQuestionTypes: snap.AvailableQuestionTypes,
		Sessions:               bundle.Sessions,
		Terms:                  bundle.Terms,
		Classes:                bundle.Classes,
		Summary:                models.NewPageSummary(snap.Filters.Page, snap.Filters.PageSize, page.TotalRecords),
		Window:                 models.NewPageWindow(snap.Filters.Page, totalPages, s.pageWindow),
		IsLoading:              snap.IsLoading,
	}
}

// Classes lists the classes of one session with their session and class type
// resolved. An empty sessionID falls back to the dashboard session filter;
// when that is empty too every session is listed. search narrows by a
// case-insensitive substring of the class name.
func (s *PageViewService) Classes(snap DashboardSnapshot, sessionID, search string) dto.ClassesPageView {
	bundle := snap.Data
	if sessionID == "" {
		sessionID = snap.Filters.SessionID
	}
	search = strings.TrimSpace(search)
	needle := strings.ToLower(search)

	rows := make([]dto.ClassRow, 0, len(bundle.Classes))
	for _, class := range bundle.Classes {
		if sessionID != "" && class.SessionID.String() != sessionID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(class.Name), needle) {
			continue
		}
		rows = append(rows, dto.ClassRow{
			Class:         class,
			SessionName:   bundle.SessionName(class.SessionID),
			ClassTypeName: bundle.ClassTypeName(class.ClassTypeID),
		})
	}
	return dto.ClassesPageView{
		Classes:    rows,
		SessionID:  sessionID,
		Search:     search,
		Sessions:   bundle.Sessions,
		ClassTypes: bundle.ClassTypes,
		IsLoading:  snap.IsLoading,
	}
}

// Subjects lists subjects, optionally narrowed to one class type.
func (s *PageViewService) Subjects(snap DashboardSnapshot, classTypeID string) dto.SubjectsPageView {
	bundle := snap.Data
	subjects := models.SubjectsForClassType(bundle, classTypeID)
	rows := make([]dto.SubjectRow, 0, len(subjects))
	for _, subject := range subjects {
		rows = append(rows, dto.SubjectRow{
			Subject:       subject,
			ClassTypeName: bundle.ClassTypeName(subject.ClassTypeID),
		})
	}
	return dto.SubjectsPageView{Subjects: rows, ClassTypes: bundle.ClassTypes, IsLoading: snap.IsLoading}
}

// Sessions lists the academic sessions.
func (s *PageViewService) Sessions(snap DashboardSnapshot) dto.SessionsPageView {
	return dto.SessionsPageView{Sessions: snap.Data.Sessions, IsLoading: snap.IsLoading}
}

// Dashboard builds the landing page charts, largest classes first.
func (s *PageViewService) Dashboard(snap DashboardSnapshot) dto.DashboardPageView {
	bundle := snap.Data
	students := models.SortStudentsPerClass(bundle.StudentsPerClass)
	total := 0
	for _, row := range students {
		total += row.TotalStudents
	}
	fees := models.SortFeePaymentStatus(bundle.FeePaymentStatusPerClass)
	return dto.DashboardPageView{
		StudentsPerClass: students,
		FeePayment:       fees,
		FeeTotals:        models.SumFees(fees),
		TotalStudents:    total,
		TotalClasses:     len(bundle.Classes),
		TotalSubjects:    len(bundle.Subjects),
		DisplayNames:     snap.DisplayNames,
		IsLoading:        snap.IsLoading,
	}
}
