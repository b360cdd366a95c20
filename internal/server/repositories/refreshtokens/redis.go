package refreshtokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hrscreen/internal/common"
	"github.com/dmitrijs2005/hrscreen/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "hrscreen:rt:"

func tokenKey(token string) string { return keyPrefix + token }
func userKey(userID string) string { return keyPrefix + "user:" + userID }

// RedisRepository keeps each refresh token under its own key with a TTL equal
// to the remaining validity, and tracks a user's tokens in a set so they can
// be revoked together. The token string doubles as the record ID.
//
// It does not take part in SQL transactions.
type RedisRepository struct {
	rdb redis.Cmdable
	now func() time.Time
}

func NewRedisRepository(rdb redis.Cmdable) *RedisRepository {
	return &RedisRepository{rdb: rdb, now: time.Now}
}

func (r *RedisRepository) Create(ctx context.Context, userID string, token string, expires time.Time) error {
	now := r.now()
	ttl := expires.Sub(now)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(models.RefreshToken{
		ID:        token,
		UserID:    userID,
		Token:     token,
		Expires:   expires,
		CreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}

	// every token of a user shares the configured lifetime, so the newest one
	// is the last to expire and the set can follow its TTL
	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, tokenKey(token), data, ttl)
		p.SAdd(ctx, userKey(userID), token)
		p.Expire(ctx, userKey(userID), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	val, err := r.rdb.Get(ctx, tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	rt := &models.RefreshToken{}
	if err := json.Unmarshal(val, rt); err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	return rt, nil
}

func (r *RedisRepository) DeleteByID(ctx context.Context, id string) (int64, error) {
	return r.DeleteByToken(ctx, id)
}

// DeleteByToken removes the token. DEL is atomic, so of two concurrent
// callers only one observes a count of 1.
func (r *RedisRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	rt, err := r.Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, nil
		}
		return 0, err
	}

	n, err := r.rdb.Del(ctx, tokenKey(token)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	if n > 0 {
		if err := r.rdb.SRem(ctx, userKey(rt.UserID), token).Err(); err != nil {
			return n, fmt.Errorf("redis error: %w", err)
		}
	}
	return n, nil
}

func (r *RedisRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	tokens, err := r.rdb.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(tokens))
	for _, t := range tokens {
		keys = append(keys, tokenKey(t))
	}

	var del *redis.IntCmd
	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, keys...)
		p.Del(ctx, userKey(userID))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	return del.Val(), nil
}
