package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-console/internal/dto"
	"github.com/noah-isme/school-console/internal/models"
	appErrors "github.com/noah-isme/school-console/pkg/errors"
)

type unauthorizedHandler interface {
	HandleUnauthorized(id string)
}

// EntityService submits and deletes school entities on behalf of a console
// session and refreshes its dashboard afterwards.
type EntityService struct {
	validator    *validator.Validate
	audit        AuditRecorder
	unauthorized unauthorizedHandler
	logger       *zap.Logger
	pageWindow   int
}

// NewEntityService constructs the service.
func NewEntityService(validate *validator.Validate, audit AuditRecorder, unauthorized unauthorizedHandler, logger *zap.Logger, pageWindow int) *EntityService {
	if validate == nil {
		validate = validator.New()
	}
	validate.RegisterTagNameFunc(jsonFieldName)
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageWindow <= 0 {
		pageWindow = models.DefaultPageWindow
	}
	return &EntityService{
		validator:    validate,
		audit:        audit,
		unauthorized: unauthorized,
		logger:       logger,
		pageWindow:   pageWindow,
	}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

// Submit validates the payload, sends it upstream and refetches the dashboard.
func (s *EntityService) Submit(ctx context.Context, session *ConsoleSession, payload dto.EntityPayload) (dto.EntityAck, error) {
	if err := s.validate(payload); err != nil {
		return dto.EntityAck{}, err
	}
	if q, ok := payload.(dto.QuestionPayload); ok {
		payload = normaliseQuestion(q)
	}

	err := session.API.Submit(ctx, payload)
	s.record(session, models.AuditActionSubmit, payload.Resource(), payload.EntityID(), payload, err)
	if err != nil {
		return dto.EntityAck{}, s.upstreamError(session, err)
	}

	session.Dashboard.RefetchData(nil)
	return dto.EntityAck{
		Resource:  payload.Resource(),
		ID:        payload.EntityID(),
		Updated:   dto.IsUpdate(payload),
		Refetched: true,
	}, nil
}

// Delete removes an entity upstream and refetches the dashboard.
func (s *EntityService) Delete(ctx context.Context, session *ConsoleSession, resource models.Resource, id models.ID) (dto.EntityAck, error) {
	if !resource.Valid() {
		return dto.EntityAck{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown resource %q", resource))
	}
	if id == "" {
		return dto.EntityAck{}, appErrors.Clone(appErrors.ErrValidation, "id is required")
	}

	err := session.API.Delete(ctx, resource, id)
	s.record(session, models.AuditActionDelete, resource, id, nil, err)
	if err != nil {
		return dto.EntityAck{}, s.upstreamError(session, err)
	}

	session.Dashboard.RefetchData(nil)
	return dto.EntityAck{Resource: resource, ID: id, Refetched: true}, nil
}

// ClassStudents lists the students of one class. The session defaults to the
// session filter and then to the class's own session.
func (s *EntityService) ClassStudents(ctx context.Context, session *ConsoleSession, classID, sessionID string) (dto.ClassStudentsView, error) {
	bundle := session.Dashboard.Data()
	class, ok := bundle.ClassByID(classID)
	if !ok {
		class = models.Class{ID: models.ID(classID)}
	}
	if sessionID == "" {
		sessionID = session.Dashboard.Filters().SessionID
	}
	if sessionID == "" {
		sessionID = class.SessionID.String()
	}

	students, err := session.API.ListClassStudents(ctx, sessionID, classID)
	if err != nil {
		return dto.ClassStudentsView{}, s.upstreamError(session, err)
	}
	return dto.ClassStudentsView{
		Class:     class,
		SessionID: sessionID,
		Students:  students,
		Subjects:  models.SubjectsForClass(bundle, classID),
	}, nil
}

// AllStudents returns one page of the school-wide student listing.
func (s *EntityService) AllStudents(ctx context.Context, session *ConsoleSession, query dto.AllStudentsQuery) (dto.StudentsPageView, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = models.DefaultPageSize
	}
	query.Search = strings.TrimSpace(query.Search)

	resp, err := session.API.ListAllStudents(ctx, query)
	if err != nil {
		return dto.StudentsPageView{}, s.upstreamError(session, err)
	}
	page := resp.ToPage(query.Page, query.PageSize)
	return dto.StudentsPageView{
		Students: page,
		Search:   query.Search,
		Summary:  models.NewPageSummary(page.Page, page.PageSize, page.TotalRecords),
		Window:   models.NewPageWindow(page.Page, page.TotalPages, s.pageWindow),
	}, nil
}

func (s *EntityService) validate(payload dto.EntityPayload) error {
	if err := s.validator.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: missing %s", payload.Resource(), strings.Join(fields, ", ")))
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	return nil
}

// upstreamError signs the session out on 401 and reports it as login required.
func (s *EntityService) upstreamError(session *ConsoleSession, err error) error {
	if appErrors.IsUnauthorized(err) {
		if s.unauthorized != nil {
			s.unauthorized.HandleUnauthorized(session.ID)
		}
		return appErrors.Wrap(err, appErrors.ErrLoginRequired.Code, appErrors.ErrLoginRequired.Status, appErrors.ErrLoginRequired.Message)
	}
	return err
}

func (s *EntityService) record(session *ConsoleSession, action models.AuditAction, resource models.Resource, id models.ID, payload interface{}, err error) {
	if s.audit == nil {
		return
	}
	s.audit.Record(AuditEntry{
		SessionID:  session.ID,
		Subject:    session.Subject,
		Action:     action,
		Resource:   resource,
		ResourceID: id,
		Payload:    payload,
		Err:        err,
	})
}

// normaliseQuestion converts a selector index in Type into the symbolic name.
func normaliseQuestion(q dto.QuestionPayload) dto.QuestionPayload {
	if qt, ok := models.QuestionTypeForIndex(q.Type); ok {
		q.Type = string(qt)
	}
	return q
}
