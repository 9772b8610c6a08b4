package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-console/internal/dto"
	"github.com/noah-isme/school-console/internal/models"
	"github.com/noah-isme/school-console/pkg/config"
	appErrors "github.com/noah-isme/school-console/pkg/errors"
	"github.com/noah-isme/school-console/pkg/middleware/requestid"
)

// TokenSource yields the bearer token for the next upstream call.
type TokenSource func(ctx context.Context) (string, error)

// UpstreamObserver records upstream call latency.
type UpstreamObserver interface {
	ObserveUpstream(operation string, status int, duration time.Duration)
}

// SchoolAPIRepository talks to the school REST API on behalf of one console session.
type SchoolAPIRepository struct {
	baseURL  string
	client   *http.Client
	tokens   TokenSource
	observer UpstreamObserver
	logger   *zap.Logger
}

// NewSchoolAPIRepository constructs an unbound repository; use ForToken to bind
// it to a console session.
func NewSchoolAPIRepository(cfg config.UpstreamConfig, observer UpstreamObserver, logger *zap.Logger) *SchoolAPIRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SchoolAPIRepository{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		observer: observer,
		logger:   logger,
	}
}

// ForToken returns a copy that authenticates every call with tokens. The HTTP
// client is shared.
func (r *SchoolAPIRepository) ForToken(tokens TokenSource) *SchoolAPIRepository {
	clone := *r
	clone.tokens = tokens
	return &clone
}

// GenericData fetches the reference data bundle for the query.
func (r *SchoolAPIRepository) GenericData(ctx context.Context, query dto.GenericDataQuery) (dto.GenericDataResponse, error) {
	var resp dto.GenericDataResponse
	err := r.do(ctx, "generic_data", http.MethodGet, "/genericData", query.Values(), nil, &resp)
	return resp, err
}

// Submit creates or updates an entity; the payload id decides which.
func (r *SchoolAPIRepository) Submit(ctx context.Context, payload dto.EntityPayload) error {
	resource := payload.Resource()
	return r.do(ctx, "submit_"+string(resource), http.MethodPost, "/"+string(resource), nil, payload, nil)
}

// Delete removes an entity by id.
func (r *SchoolAPIRepository) Delete(ctx context.Context, resource models.Resource, id models.ID) error {
	path := fmt.Sprintf("/%s/%s", resource, url.PathEscape(id.String()))
	return r.do(ctx, "delete_"+string(resource), http.MethodDelete, path, nil, nil, nil)
}

// ListClassStudents returns the students of one class in one session.
func (r *SchoolAPIRepository) ListClassStudents(ctx context.Context, sessionID, classID string) ([]models.Student, error) {
	values := url.Values{}
	values.Set("sessionId", sessionID)
	values.Set("classId", classID)

	var resp dto.StudentsResponse
	if err := r.do(ctx, "class_students", http.MethodGet, "/students", values, nil, &resp); err != nil {
		return nil, err
	}
	if resp.StudentRecords == nil {
		return []models.Student{}, nil
	}
	return resp.StudentRecords, nil
}

// ListAllStudents returns one page of the school-wide student listing.
func (r *SchoolAPIRepository) ListAllStudents(ctx context.Context, query dto.AllStudentsQuery) (dto.StudentsResponse, error) {
	var resp dto.StudentsResponse
	err := r.do(ctx, "all_students", http.MethodGet, "/students/all", query.Values(), nil, &resp)
	return resp, err
}

func (r *SchoolAPIRepository) do(ctx context.Context, operation, method, path string, query url.Values, body, dest interface{}) error {
	target := r.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if reqID := requestid.FromContext(ctx); reqID != "" {
		req.Header.Set(requestid.HeaderKey, reqID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.tokens != nil {
		token, err := r.tokens(ctx)
		if err != nil {
			return err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	duration := time.Since(start)

	statusCode := http.StatusServiceUnavailable
	if resp != nil {
		statusCode = resp.StatusCode
	}
	if r.observer != nil {
		r.observer.ObserveUpstream(operation, statusCode, duration)
	}

	if err != nil {
		r.logger.Warn("school api request failed", zap.String("operation", operation), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return r.statusError(operation, resp)
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil && err != io.EOF {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed school api response")
	}
	return nil
}

func (r *SchoolAPIRepository) statusError(operation string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	message := upstreamMessage(raw)
	cause := fmt.Errorf("%s: status %d", operation, resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return appErrors.Wrap(cause, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, appErrors.ErrUnauthorized.Message)
	case resp.StatusCode == http.StatusForbidden:
		return appErrors.Wrap(cause, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, orDefault(message, appErrors.ErrForbidden.Message))
	case resp.StatusCode == http.StatusNotFound:
		return appErrors.Wrap(cause, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, orDefault(message, appErrors.ErrNotFound.Message))
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return appErrors.Wrap(cause, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, orDefault(message, appErrors.ErrValidation.Message))
	case resp.StatusCode == http.StatusConflict:
		return appErrors.Wrap(cause, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, orDefault(message, appErrors.ErrConflict.Message))
	default:
		r.logger.Warn("school api returned error status", zap.String("operation", operation), zap.Int("status", resp.StatusCode))
		return appErrors.Wrap(cause, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, orDefault(message, appErrors.ErrUpstream.Message))
	}
}

// upstreamMessage extracts "message" or "data.message" from an error body.
func upstreamMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Data    struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Data.Message
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
