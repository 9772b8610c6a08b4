package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-console/internal/models"
	appErrors "github.com/noah-isme/school-console/pkg/errors"
	"github.com/noah-isme/school-console/pkg/jobs"
)

type auditStore interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, int, error)
}

type auditMetrics interface {
	ObserveAuditWrite(err error)
}

// AuditEntry describes one console action to record.
type AuditEntry struct {
	SessionID  string
	Subject    string
	Action     models.AuditAction
	Resource   models.Resource
	ResourceID models.ID
	Payload    interface{}
	Err        error
}

// AuditRecorder is what callers need to record console actions.
type AuditRecorder interface {
	Record(entry AuditEntry)
}

// AuditService writes the console audit trail off the request path.
type AuditService struct {
	store   auditStore
	queue   *jobs.Queue[models.AuditLog]
	metrics auditMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewAuditService wires the trail to store through a worker queue.
func NewAuditService(store auditStore, metrics auditMetrics, logger *zap.Logger, cfg jobs.QueueConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Logger = logger
	svc := &AuditService{
		store:   store,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
	svc.queue = jobs.NewQueue[models.AuditLog]("audit", svc.write, cfg)
	return svc
}

// Start launches the queue workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop flushes buffered records and stops the workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Record enqueues an audit record. It never blocks the caller; a full queue
// drops the record with a warning.
func (s *AuditService) Record(entry AuditEntry) {
	if s == nil {
		return
	}
	record := models.AuditLog{
		ConsoleSessionID: entry.SessionID,
		Action:           entry.Action,
		Resource:         string(entry.Resource),
		Status:           models.AuditStatusSucceeded,
		CreatedAt:        s.now().UTC(),
	}
	if entry.Subject != "" {
		subject := entry.Subject
		record.Subject = &subject
	}
	if entry.ResourceID != "" {
		id := entry.ResourceID.String()
		record.ResourceID = &id
	}
	if entry.Payload != nil {
		payload, err := json.Marshal(entry.Payload)
		if err != nil {
			s.logger.Warn("marshal audit payload", zap.Error(err))
		} else {
			record.Payload = payload
		}
	}
	if entry.Err != nil {
		msg := entry.Err.Error()
		record.Status = models.AuditStatusFailed
		record.ErrorMessage = &msg
	}

	if err := s.queue.TryEnqueue(jobs.Job[models.AuditLog]{Payload: record}); err != nil {
		s.logger.Warn("drop audit record", zap.String("action", string(entry.Action)), zap.Error(err))
	}
}

func (s *AuditService) write(ctx context.Context, job jobs.Job[models.AuditLog]) error {
	record := job.Payload
	err := s.store.Create(ctx, &record)
	if s.metrics != nil {
		s.metrics.ObserveAuditWrite(err)
	}
	return err
}

// List pages through the recorded trail, latest first.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, *models.Pagination, error) {
	if s == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrUnavailable, "audit trail disabled")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	logs, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit trail")
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	return logs, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
		TotalPages: models.TotalPagesFor(total, filter.PageSize),
	}, nil
}
