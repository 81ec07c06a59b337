package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore holds one-time codes keyed by phone number. The redis
// implementation leans on TTLs for expiry and SetNX for send rate limiting.
type OTPStore interface {
	SaveCode(ctx context.Context, phone, code string, ttl time.Duration) error
	GetCode(ctx context.Context, phone string) (string, error)
	DeleteCode(ctx context.Context, phone string) error
	// AcquireSendSlot returns false when a code was already sent inside the
	// rate-limit window.
	AcquireSendSlot(ctx context.Context, phone string, window time.Duration) (bool, error)
}

type redisOTPStore struct {
	rdb *redis.Client
}

func NewRedisOTPStore(rdb *redis.Client) OTPStore {
	return &redisOTPStore{rdb: rdb}
}

func codeKey(phone string) string {
	return fmt.Sprintf("otp:code:%s", phone)
}

func (s *redisOTPStore) SaveCode(ctx context.Context, phone, code string, ttl time.Duration) error {
	return s.rdb.Set(ctx, codeKey(phone), code, ttl).Err()
}

func (s *redisOTPStore) GetCode(ctx context.Context, phone string) (string, error) {
	return s.rdb.Get(ctx, codeKey(phone)).Result()
}

func (s *redisOTPStore) DeleteCode(ctx context.Context, phone string) error {
	return s.rdb.Del(ctx, codeKey(phone)).Err()
}

func (s *redisOTPStore) AcquireSendSlot(ctx context.Context, phone string, window time.Duration) (bool, error) {
	key := fmt.Sprintf("otp:ratelimit:%s", phone)
	wasSet, err := s.rdb.SetNX(ctx, key, "locked", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check otp rate limit in redis: %w", err)
	}
	return wasSet, nil
}
