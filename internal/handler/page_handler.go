package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/school-console/internal/dto"
	"github.com/noah-isme/school-console/internal/middleware"
	"github.com/noah-isme/school-console/internal/models"
	"github.com/noah-isme/school-console/internal/service"
	"github.com/noah-isme/school-console/pkg/response"
)

type pageViewBuilder interface {
	Questions(snap service.DashboardSnapshot) dto.QuestionsPageView
	Classes(snap service.DashboardSnapshot, sessionID, search string) dto.ClassesPageView
	Subjects(snap service.DashboardSnapshot, classTypeID string) dto.SubjectsPageView
	Sessions(snap service.DashboardSnapshot) dto.SessionsPageView
	Dashboard(snap service.DashboardSnapshot) dto.DashboardPageView
}

type studentLister interface {
	ClassStudents(ctx context.Context, session *service.ConsoleSession, classID, sessionID string) (dto.ClassStudentsView, error)
	AllStudents(ctx context.Context, session *service.ConsoleSession, query dto.AllStudentsQuery) (dto.StudentsPageView, error)
}

// PageHandler serves the console page views.
type PageHandler struct {
	sessionScope
	views    pageViewBuilder
	students studentLister
	validate *validator.Validate
	pageSize int
}

// NewPageHandler constructs the handler. pageSize is the default size of the
// all-students listing.
func NewPageHandler(views pageViewBuilder, students studentLister, validate *validator.Validate, pageSize int, loginPath string) *PageHandler {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return &PageHandler{
		sessionScope: sessionScope{loginPath: loginPath},
		views:        views,
		students:     students,
		validate:     validate,
		pageSize:     pageSize,
	}
}

// Questions godoc
// @Summary Questions page
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /pages/questions [get]
func (h *PageHandler) Questions(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	view := h.views.Questions(session.Dashboard.Snapshot())
	response.JSON(c, http.StatusOK, view, questionsPagination(view))
}

// SetQuestionsPage godoc
// @Summary Move the questions listing to another page
// @Tags Pages
// @Accept json
// @Produce json
// @Param payload body dto.PageRequest true "Page"
// @Success 200 {object} response.Envelope
// @Router /pages/questions/page [put]
func (h *PageHandler) SetQuestionsPage(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, invalidPayload(err))
		return
	}
	if err := validateRequest(h.validate, req); err != nil {
		h.fail(c, err)
		return
	}
	page := req.Page
	session.Dashboard.UpdateFilters(models.FilterPatch{Page: &page})
	view := h.views.Questions(session.Dashboard.Snapshot())
	response.JSON(c, http.StatusOK, view, questionsPagination(view))
}

// Classes godoc
// @Summary Classes page
// @Description Classes of one session (defaults to the dashboard session filter), optionally narrowed by name.
// @Tags Pages
// @Produce json
// @Param sessionId query string false "Session id"
// @Param search query string false "Case-insensitive class name search"
// @Success 200 {object} response.Envelope
// @Router /pages/classes [get]
func (h *PageHandler) Classes(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	view := h.views.Classes(session.Dashboard.Snapshot(), c.Query("sessionId"), c.Query("search"))
	response.JSON(c, http.StatusOK, view, nil)
}

// ClassStudents godoc
// @Summary Students of one class
// @Tags Pages
// @Produce json
// @Param classId path string true "Class ID"
// @Param sessionId query string false "Session ID, defaults to the session filter then the class's session"
// @Success 200 {object} response.Envelope
// @Router /pages/classes/{classId}/students [get]
func (h *PageHandler) ClassStudents(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	view, err := h.students.ClassStudents(c.Request.Context(), session, c.Param("classId"), strings.TrimSpace(c.Query("sessionId")))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Students godoc
// @Summary All students page
// @Tags Pages
// @Produce json
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Param search query string false "Search keyword"
// @Success 200 {object} response.Envelope
// @Router /pages/students [get]
func (h *PageHandler) Students(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	query := dto.AllStudentsQuery{Page: 1, PageSize: h.pageSize, Search: strings.TrimSpace(c.Query("search"))}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.Query("pageSize")); err == nil && size > 0 {
		query.PageSize = size
	}

	view, err := h.students.AllStudents(c.Request.Context(), session, query)
	if err != nil {
		h.fail(c, err)
		return
	}
	pagination := &models.Pagination{
		Page:       view.Students.Page,
		PageSize:   view.Students.PageSize,
		TotalCount: view.Students.TotalRecords,
		TotalPages: view.Students.TotalPages,
	}
	response.JSON(c, http.StatusOK, view, pagination)
}

// Subjects godoc
// @Summary Subjects page
// @Tags Pages
// @Produce json
// @Param classTypeId query string false "Class type filter"
// @Success 200 {object} response.Envelope
// @Router /pages/subjects [get]
func (h *PageHandler) Subjects(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	view := h.views.Subjects(session.Dashboard.Snapshot(), strings.TrimSpace(c.Query("classTypeId")))
	response.JSON(c, http.StatusOK, view, nil)
}

// Sessions godoc
// @Summary Academic sessions page
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /pages/sessions [get]
func (h *PageHandler) Sessions(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.views.Sessions(session.Dashboard.Snapshot()), nil)
}

// Dashboard godoc
// @Summary Landing dashboard page
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /pages/dashboard [get]
func (h *PageHandler) Dashboard(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	view := h.views.Dashboard(session.Dashboard.Snapshot())
	middleware.SetLoading(c, view.IsLoading)
	response.JSON(c, http.StatusOK, view, nil, withMeta(c))
}

func questionsPagination(view dto.QuestionsPageView) *models.Pagination {
	return &models.Pagination{
		Page:       view.Filters.Page,
		PageSize:   view.Filters.PageSize,
		TotalCount: view.Summary.TotalRecords,
		TotalPages: view.Window.TotalPages,
	}
}
