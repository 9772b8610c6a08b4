package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-console/internal/dto"
	"github.com/noah-isme/school-console/internal/models"
	"github.com/noah-isme/school-console/internal/repository"
	appErrors "github.com/noah-isme/school-console/pkg/errors"
)

// SchoolAPI is the upstream surface one console session talks to.
type SchoolAPI interface {
	GenericDataFetcher
	Submit(ctx context.Context, payload dto.EntityPayload) error
	Delete(ctx context.Context, resource models.Resource, id models.ID) error
	ListClassStudents(ctx context.Context, sessionID, classID string) ([]models.Student, error)
	ListAllStudents(ctx context.Context, query dto.AllStudentsQuery) (dto.StudentsResponse, error)
}

type tokenStore interface {
	Get(ctx context.Context, sessionID string) (*repository.TokenRecord, error)
	Save(ctx context.Context, record repository.TokenRecord, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

type sessionMetrics interface {
	FetchMetrics
	SessionOpened()
	SessionClosed()
}

// ConsoleSession is one signed-in console user with its own dashboard context.
type ConsoleSession struct {
	ID        string
	Subject   string
	CreatedAt time.Time
	ExpiresAt time.Time
	Dashboard *DashboardContext
	API       SchoolAPI
}

// Info returns the serialisable view of the session.
func (s *ConsoleSession) Info() models.ConsoleSession {
	return models.ConsoleSession{ID: s.ID, Subject: s.Subject, CreatedAt: s.CreatedAt, ExpiresAt: s.ExpiresAt}
}

// ConsoleSessionConfig tunes session lifetime and the per-session dashboard.
type ConsoleSessionConfig struct {
	TTL            time.Duration
	Leeway         time.Duration
	Debounce       time.Duration
	PageSize       int
	RequestTimeout time.Duration
	Scheduler      Scheduler
}

// ConsoleSessionService signs console users in and out and owns the registry
// of live dashboard contexts.
type ConsoleSessionService struct {
	tokens      tokenStore
	newUpstream func(repository.TokenSource) SchoolAPI
	audit       AuditRecorder
	metrics     sessionMetrics
	logger      *zap.Logger
	cfg         ConsoleSessionConfig
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*ConsoleSession
}

// NewConsoleSessionService constructs the service. newUpstream binds the
// school API client to a session's token source.
func NewConsoleSessionService(tokens tokenStore, newUpstream func(repository.TokenSource) SchoolAPI, audit AuditRecorder, metrics sessionMetrics, logger *zap.Logger, cfg ConsoleSessionConfig) *ConsoleSessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	return &ConsoleSessionService{
		tokens:      tokens,
		newUpstream: newUpstream,
		audit:       audit,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
		sessions:    make(map[string]*ConsoleSession),
	}
}

// Open signs a user in with a bearer token from the login service. A JWT whose
// exp has passed is rejected; opaque tokens are accepted and checked by the
// school API on first use.
func (s *ConsoleSessionService) Open(ctx context.Context, token string) (*ConsoleSession, error) {
	if token == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "token is required")
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.cfg.TTL)
	var subject string
	if claims, ok := s.peekClaims(token); ok {
		subject = claims.Subject
		if claims.ExpiresAt != nil {
			exp := claims.ExpiresAt.Time
			if !exp.Add(s.cfg.Leeway).After(now) {
				return nil, appErrors.Clone(appErrors.ErrLoginRequired, "token expired")
			}
			if exp.Before(expiresAt) {
				expiresAt = exp
			}
		}
	}

	id := uuid.NewString()
	record := repository.TokenRecord{SessionID: id, Token: token, Subject: subject, CreatedAt: now, ExpiresAt: expiresAt}
	if err := s.tokens.Save(ctx, record, expiresAt.Sub(now)+s.cfg.Leeway); err != nil {
		return nil, err
	}

	api := s.newUpstream(s.tokenSource(id))
	session := &ConsoleSession{
		ID:        id,
		Subject:   subject,
		CreatedAt: now,
		ExpiresAt: expiresAt,
		API:       api,
	}
	session.Dashboard = NewDashboardContext(DashboardContextConfig{
		Fetcher:        api,
		Debounce:       s.cfg.Debounce,
		RequestTimeout: s.cfg.RequestTimeout,
		PageSize:       s.cfg.PageSize,
		Scheduler:      s.cfg.Scheduler,
		Metrics:        s.metrics,
		Logger:         s.logger.With(zap.String("console_session", id)),
		OnUnauthorized: func() { s.handleUnauthorized(id) },
	})

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	s.record(session, models.AuditActionSignIn, nil)
	s.logger.Info("console session opened", zap.String("console_session", id), zap.Time("expires_at", expiresAt))

	session.Dashboard.Start()
	return session, nil
}

// peekClaims reads JWT claims without verifying the signature. Verification is
// the school API's job; the console only needs exp and sub.
func (s *ConsoleSessionService) peekClaims(token string) (*jwt.RegisteredClaims, bool) {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

func (s *ConsoleSessionService) tokenSource(id string) repository.TokenSource {
	return func(ctx context.Context) (string, error) {
		record, err := s.tokens.Get(ctx, id)
		if err != nil {
			if errors.Is(err, appErrors.ErrCacheMiss) {
				return "", appErrors.ErrLoginRequired
			}
			return "", appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "token store unavailable")
		}
		return record.Token, nil
	}
}

// Resolve returns the live session for id. Unknown, expired or revoked
// sessions yield ErrLoginRequired; a revoked one is also torn down.
func (s *ConsoleSessionService) Resolve(ctx context.Context, id string) (*ConsoleSession, error) {
	if id == "" {
		return nil, appErrors.ErrLoginRequired
	}
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.ErrLoginRequired
	}

	if !s.now().Before(session.ExpiresAt.Add(s.cfg.Leeway)) {
		s.teardown(ctx, id, models.AuditActionSignOut)
		return nil, appErrors.Clone(appErrors.ErrLoginRequired, "session expired")
	}

	if _, err := s.tokens.Get(ctx, id); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			s.teardown(ctx, id, models.AuditActionSignOut)
			return nil, appErrors.ErrLoginRequired
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "token store unavailable")
	}
	return session, nil
}

// Close signs the session out.
func (s *ConsoleSessionService) Close(ctx context.Context, id string) error {
	if !s.teardown(ctx, id, models.AuditActionSignOut) {
		return appErrors.ErrLoginRequired
	}
	return nil
}

// HandleUnauthorized signs the session out after the school API rejected its token.
func (s *ConsoleSessionService) HandleUnauthorized(id string) {
	s.handleUnauthorized(id)
}

func (s *ConsoleSessionService) handleUnauthorized(id string) {
	s.logger.Warn("school api rejected console token, signing out", zap.String("console_session", id))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.teardown(ctx, id, models.AuditActionSignOut)
}

func (s *ConsoleSessionService) teardown(ctx context.Context, id string, action models.AuditAction) bool {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}

	session.Dashboard.Close()
	if err := s.tokens.Delete(ctx, id); err != nil {
		s.logger.Warn("delete console token", zap.String("console_session", id), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.SessionClosed()
	}
	s.record(session, action, nil)
	s.logger.Info("console session closed", zap.String("console_session", id))
	return true
}

// Reap closes sessions whose lifetime has elapsed and returns how many it closed.
func (s *ConsoleSessionService) Reap(ctx context.Context) int {
	now := s.now()
	s.mu.RLock()
	expired := make([]string, 0)
	for id, session := range s.sessions {
		if !now.Before(session.ExpiresAt.Add(s.cfg.Leeway)) {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	closed := 0
	for _, id := range expired {
		if s.teardown(ctx, id, models.AuditActionSignOut) {
			closed++
		}
	}
	return closed
}

// RunReaper calls Reap every interval until ctx is done.
func (s *ConsoleSessionService) RunReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Reap(ctx); n > 0 {
				s.logger.Info("reaped expired console sessions", zap.Int("count", n))
			}
		}
	}
}

// CloseAll signs every session out.
func (s *ConsoleSessionService) CloseAll(ctx context.Context) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.teardown(ctx, id, models.AuditActionSignOut)
	}
}

// Count returns the number of live sessions.
func (s *ConsoleSessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *ConsoleSessionService) record(session *ConsoleSession, action models.AuditAction, err error) {
	if s.audit == nil {
		return
	}
	s.audit.Record(AuditEntry{
		SessionID: session.ID,
		Subject:   session.Subject,
		Action:    action,
		Err:       err,
	})
}
