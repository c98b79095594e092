package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "portal:session:"

// RedisStore is a TokenStore backed by Redis, for deployments running more
// than one portal process. Expiry is enforced twice: the key TTL makes Redis
// drop dead sessions on its own, and the stored expiry keeps Resolve's
// behavior identical to the in-memory store.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, token string, rec Record) error {
	ttl := time.Until(rec.Expiry)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	ok, err := s.client.SetNX(ctx, redisKeyPrefix+token, encodeRecord(rec), ttl).Result()
	if err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	if !ok {
		return ErrTokenExists
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (Record, bool, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+token).Result()
	if err == redis.Nil {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("redis get: %w", err)
	}

	rec, err := decodeRecord(val)
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	// DEL on a missing key is a no-op, which gives idempotent revocation.
	if err := s.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

func encodeRecord(rec Record) string {
	return strconv.FormatUint(uint64(rec.UserID), 10) + "|" + strconv.FormatInt(rec.Expiry.Unix(), 10)
}

func decodeRecord(val string) (Record, error) {
	userPart, expiryPart, found := strings.Cut(val, "|")
	if !found {
		return Record{}, fmt.Errorf("corrupt session record %q", val)
	}

	userID, err := strconv.ParseUint(userPart, 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("corrupt session user id: %w", err)
	}
	expiry, err := strconv.ParseInt(expiryPart, 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("corrupt session expiry: %w", err)
	}

	return Record{UserID: uint(userID), Expiry: time.Unix(expiry, 0)}, nil
}
