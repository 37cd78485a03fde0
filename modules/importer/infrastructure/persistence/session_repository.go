package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/akdemia/akdemia/modules/importer/domain/importsession"
)

const sessionKeyPrefix = "import:session:"

// sessionModel is the wire shape stored in Redis. Only plain strings,
// numbers and nested string slices: the session must survive serialization
// across stateless workers.
type sessionModel struct {
	Token     string                `json:"token"`
	TargetID  string                `json:"target_id"`
	FilePath  string                `json:"file_path"`
	SheetName string                `json:"sheet_name"`
	RangeExpr string                `json:"range_expr"`
	Headers   []string              `json:"headers"`
	Rows      [][]string            `json:"rows"`
	Mapping   importsession.Mapping `json:"mapping,omitempty"`
	State     string                `json:"state"`
	CreatedAt time.Time             `json:"created_at"`
	ExpiresAt time.Time             `json:"expires_at"`
}

func toModel(s *importsession.Session) sessionModel {
	return sessionModel{
		Token:     s.Token().String(),
		TargetID:  s.TargetID(),
		FilePath:  s.FilePath(),
		SheetName: s.SheetName(),
		RangeExpr: s.RangeExpr(),
		Headers:   s.Headers(),
		Rows:      s.Rows(),
		Mapping:   s.Mapping(),
		State:     string(s.State()),
		CreatedAt: s.CreatedAt(),
		ExpiresAt: s.ExpiresAt(),
	}
}

func toDomain(m sessionModel) (*importsession.Session, error) {
	token, err := uuid.Parse(m.Token)
	if err != nil {
		return nil, errors.Wrap(err, "parse session token")
	}
	return importsession.Hydrate(
		token,
		m.TargetID, m.FilePath, m.SheetName, m.RangeExpr,
		m.Headers, m.Rows, m.Mapping,
		importsession.State(m.State),
		m.CreatedAt, m.ExpiresAt,
	), nil
}

// RedisSessionRepository stores sessions in Redis with the remaining TTL as
// the key expiry, so abandoned sessions disappear on their own.
type RedisSessionRepository struct {
	client *redis.Client
}

func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func sessionKey(token uuid.UUID) string {
	return sessionKeyPrefix + token.String()
}

func (r *RedisSessionRepository) Save(ctx context.Context, session *importsession.Session) error {
	payload, err := json.Marshal(toModel(session))
	if err != nil {
		return errors.Wrap(err, "marshal import session")
	}
	ttl := time.Until(session.ExpiresAt())
	if ttl <= 0 {
		return importsession.ErrExpired
	}
	if err := r.client.Set(ctx, sessionKey(session.Token()), payload, ttl).Err(); err != nil {
		return errors.Wrap(err, "save import session")
	}
	return nil
}

func (r *RedisSessionRepository) Get(ctx context.Context, token uuid.UUID) (*importsession.Session, error) {
	payload, err := r.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, importsession.ErrNotFound
		}
		return nil, errors.Wrap(err, "get import session")
	}
	var m sessionModel
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, errors.Wrap(err, "unmarshal import session")
	}
	session, err := toDomain(m)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now().UTC()) {
		return nil, importsession.ErrExpired
	}
	return session, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, token uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return errors.Wrap(err, "delete import session")
	}
	return nil
}
