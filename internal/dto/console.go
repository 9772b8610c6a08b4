package dto

import (
	"time"

	"github.com/noah-isme/school-console/internal/models"
)

// OpenSessionRequest signs a console user in with a token issued by the login service.
type OpenSessionRequest struct {
	Token string `json:"token" validate:"required"`
}

// ConsoleSessionResponse is returned after sign-in.
type ConsoleSessionResponse struct {
	SessionID string    `json:"sessionId"`
	Header    string    `json:"header"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RefetchRequest carries optional filter overrides for a one-off fetch.
type RefetchRequest struct {
	Overrides *models.FilterPatch `json:"overrides,omitempty"`
}

// PageRequest moves the questions listing to another page.
type PageRequest struct {
	Page int `json:"page" validate:"required,min=1"`
}

// QuestionsPageView backs the questions page.
type QuestionsPageView struct {
	Questions              []models.Question           `json:"questions"`
	Filters                models.Filters              `json:"filters"`
	ActiveFilters          []models.ActiveFilter       `json:"activeFilters"`
	DisplayNames           models.FilterDisplayNames   `json:"displayNames"`
	AvailableQuestionTypes []models.QuestionTypeOption `json:"availableQuestionTypes"`
	Sessions               []models.Session            `json:"sessions"`
	Terms                  []models.Term               `json:"terms"`
	Classes                []models.Class              `json:"classes"`
	Summary                models.PageSummary          `json:"summary"`
	Window                 models.PageWindow           `json:"window"`
	IsLoading              bool                        `json:"isLoading"`
}

// ClassRow is one class row with its resolved session and class type names.
type ClassRow struct {
	models.Class
	SessionName   string `json:"sessionName"`
	ClassTypeName string `json:"classTypeName"`
}

// ClassesPageView backs the classes page.
type ClassesPageView struct {
	Classes    []ClassRow         `json:"classes"`
	SessionID  string             `json:"sessionId"`
	Search     string             `json:"search"`
	Sessions   []models.Session   `json:"sessions"`
	ClassTypes []models.ClassType `json:"classTypes"`
	IsLoading  bool               `json:"isLoading"`
}

// ClassStudentsView lists the students of one class in one session.
type ClassStudentsView struct {
	Class     models.Class     `json:"class"`
	SessionID string           `json:"sessionId"`
	Students  []models.Student `json:"students"`
	Subjects  []models.Subject `json:"subjects"`
}

// SubjectRow is one subject row with its class type name.
type SubjectRow struct {
	models.Subject
	ClassTypeName string `json:"classTypeName"`
}

// SubjectsPageView backs the subjects page.
type SubjectsPageView struct {
	Subjects   []SubjectRow       `json:"subjects"`
	ClassTypes []models.ClassType `json:"classTypes"`
	IsLoading  bool               `json:"isLoading"`
}

// SessionsPageView backs the academic sessions page.
type SessionsPageView struct {
	Sessions  []models.Session `json:"sessions"`
	IsLoading bool             `json:"isLoading"`
}

// StudentsPageView backs the all-students page.
type StudentsPageView struct {
	Students models.StudentPage `json:"students"`
	Search   string             `json:"search,omitempty"`
	Summary  models.PageSummary `json:"summary"`
	Window   models.PageWindow  `json:"window"`
}

// DashboardPageView backs the landing dashboard with sorted chart rows.
type DashboardPageView struct {
	StudentsPerClass []models.StudentsPerClass `json:"studentsPerClass"`
	FeePayment       []models.FeePaymentStatus `json:"feePaymentStatusPerClass"`
	FeeTotals        models.FeeTotals          `json:"feeTotals"`
	TotalStudents    int                       `json:"totalStudents"`
	TotalClasses     int                       `json:"totalClasses"`
	TotalSubjects    int                       `json:"totalSubjects"`
	DisplayNames     models.FilterDisplayNames `json:"displayNames"`
	IsLoading        bool                      `json:"isLoading"`
}

// ExportRequest selects the dataset and output format of an export.
type ExportRequest struct {
	Report string `form:"report" validate:"required,oneof=fees students questions"`
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// FilterUpdateResponse reports the filters after a mutation. Debounced is set
// when the resulting fetch waits for the debounce window.
type FilterUpdateResponse struct {
	Filters   models.Filters `json:"filters"`
	Changed   bool           `json:"changed"`
	Debounced bool           `json:"debounced"`
	IsLoading bool           `json:"isLoading"`
}

// RefetchResponse reports the sequence number of a manual fetch.
type RefetchResponse struct {
	Sequence  uint64 `json:"sequence"`
	IsLoading bool   `json:"isLoading"`
}
