package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/school-console/pkg/errors"
)

// TokenRecord is the stored bearer token of one console session.
type TokenRecord struct {
	SessionID string    `json:"sessionId"`
	Token     string    `json:"token"`
	Subject   string    `json:"subject,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenRepository persists console bearer tokens in Redis.
type TokenRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewTokenRepository constructs a token repository. Keys are namespaced by prefix.
func NewTokenRepository(client *redis.Client, prefix string, logger *zap.Logger) *TokenRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = "console"
	}
	return &TokenRepository{client: client, prefix: prefix, logger: logger}
}

func (r *TokenRepository) key(sessionID string) string {
	return fmt.Sprintf("%s:session:%s:token", r.prefix, sessionID)
}

// Get loads the token record; a missing or expired key yields ErrCacheMiss.
func (r *TokenRepository) Get(ctx context.Context, sessionID string) (*TokenRecord, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get token %s: %w", sessionID, err)
	}

	var record TokenRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("unmarshal token record %s: %w", sessionID, err)
	}
	return &record, nil
}

// Save stores the record until ttl elapses.
func (r *TokenRepository) Save(ctx context.Context, record TokenRecord, ttl time.Duration) error {
	if r.client == nil {
		return appErrors.Clone(appErrors.ErrUnavailable, "token store not configured")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal token record %s: %w", record.SessionID, err)
	}

	if err := r.client.Set(ctx, r.key(record.SessionID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set token %s: %w", record.SessionID, err)
	}
	return nil
}

// Delete removes the token of one session.
func (r *TokenRepository) Delete(ctx context.Context, sessionID string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete token %s: %w", sessionID, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *TokenRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
