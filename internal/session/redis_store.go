package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cidade-aberta/internal/utils"
)

// RedisStore keeps sessions as JSON strings with a TTL equal to the
// inactivity window.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore returns a store writing keys under prefix.
func NewRedisStore(rdb *redis.Client, ttl time.Duration, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (s *RedisStore) key(id string) string { return s.prefix + ":" + id }

func (s *RedisStore) Create(ctx context.Context, sess Session) (string, error) {
	id, err := utils.NewSessionID()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	sess.CreatedAt, sess.LastSeen = now, now
	body, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, s.key(id), body, s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	var sess Session
	if id == "" {
		return sess, ErrNotFound
	}
	// GETEX reads and pushes the expiry forward in one round trip.
	body, err := s.rdb.GetEx(ctx, s.key(id), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return sess, ErrNotFound
	}
	if err != nil {
		return sess, err
	}
	if err := json.Unmarshal(body, &sess); err != nil {
		return sess, err
	}
	sess.LastSeen = time.Now().UTC()
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.rdb.Del(ctx, s.key(id)).Err()
}
