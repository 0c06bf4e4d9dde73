package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	errx "github.com/Chative-core-poc-v1/intake/internal/core/error"
	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisStore(rdb redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (r *RedisStore) stateKey(cid string) string {
	return fmt.Sprintf("intake:session:%s", cid)
}

func (r *RedisStore) transcriptKey(cid string) string {
	return fmt.Sprintf("intake:session:%s:turns", cid)
}

// touch extends TTL on both keys.
func (r *RedisStore) touch(ctx context.Context, keys ...string) error {
	if r.ttl <= 0 {
		return nil
	}
	for _, key := range keys {
		if _, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		}
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, cid string) (*model.State, bool, error) {
	key := r.stateKey(cid)
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session from redis")
		return nil, false, errx.WrapRedis(err)
	}
	var st model.State
	if err := json.Unmarshal(raw, &st); err != nil {
		logx.Error().Err(err).Str("conversationID", cid).Msg("failed to unmarshal session")
		return nil, false, fmt.Errorf("unmarshal session %s: %w", cid, err)
	}
	if !st.Stage.Valid() {
		logx.Warn().Str("conversationID", cid).Str("stage", string(st.Stage)).Msg("discarding session with unknown stage")
		return nil, false, nil
	}
	return &st, true, nil
}

func (r *RedisStore) Put(ctx context.Context, cid string, st *model.State) error {
	b, err := json.Marshal(st)
	if err != nil {
		logx.Error().Err(err).Str("conversationID", cid).Msg("failed to marshal session")
		return fmt.Errorf("marshal session: %w", err)
	}
	key := r.stateKey(cid)
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to write session to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, cid string) error {
	if err := r.rdb.Del(ctx, r.stateKey(cid), r.transcriptKey(cid)).Err(); err != nil {
		logx.Error().Err(err).Str("conversationID", cid).Msg("failed to delete session from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisStore) AppendTurn(ctx context.Context, cid string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}
	key := r.transcriptKey(cid)
	vals := make([]any, 0, len(turns))
	for _, t := range turns {
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal turn: %w", err)
		}
		vals = append(vals, b)
	}
	if err := r.rdb.RPush(ctx, key, vals...).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push turn to redis")
		return errx.WrapRedis(err)
	}
	return r.touch(ctx, key)
}

func (r *RedisStore) LoadTurns(ctx context.Context, cid string) ([]Turn, error) {
	key := r.transcriptKey(cid)
	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Turn{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load transcript from redis")
		return nil, errx.WrapRedis(err)
	}
	out := make([]Turn, 0, len(rows))
	for i, s := range rows {
		var t Turn
		if err := json.Unmarshal([]byte(s), &t); err != nil {
			logx.Error().Err(err).Str("conversationID", cid).Int("index", i).Msg("failed to unmarshal turn")
			return nil, fmt.Errorf("unmarshal turn at index %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

var (
	_ Store      = (*RedisStore)(nil)
	_ Transcript = (*RedisStore)(nil)
)
