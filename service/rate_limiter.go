package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/wallet-backend/wallet-backend/configuration"
	"github.com/wallet-backend/wallet-backend/utils"
)

// WBSigninRateLimiter throttles repeated sign-in attempts per identifier.
// After the allowed attempts within the window the identifier is blocked for
// the block duration. A nil limiter allows everything.
type WBSigninRateLimiter struct {
	redisRing     *redis.Ring
	attempts      int
	window        time.Duration
	blockDuration time.Duration
}

func NewSigninRateLimiter(redisRing *redis.Ring, attempts int, window time.Duration, blockDuration time.Duration) *WBSigninRateLimiter {
	return &WBSigninRateLimiter{
		redisRing:     redisRing,
		attempts:      attempts,
		window:        window,
		blockDuration: blockDuration,
	}
}

// NewSigninRateLimiterFromConfiguration builds the limiter from the redis
// configuration section, nil when the section is absent.
func NewSigninRateLimiterFromConfiguration() *WBSigninRateLimiter {
	c, ok := configuration.Manager.GetJSON("redis", "signin_rate_limiter")
	if !ok {
		return nil
	}

	address, _ := c[`address`].(string)
	if address == "" {
		return nil
	}
	password, _ := c[`password`].(string)

	attempts := int64(5)
	if v, err := utils.ConvertToInt64(c[`attempts`]); err == nil && v > 0 {
		attempts = v
	}
	windowSeconds := int64(300)
	if v, err := utils.ConvertToInt64(c[`window_seconds`]); err == nil && v > 0 {
		windowSeconds = v
	}
	blockSeconds := int64(900)
	if v, err := utils.ConvertToInt64(c[`block_seconds`]); err == nil && v > 0 {
		blockSeconds = v
	}

	ring := redis.NewRing(&redis.RingOptions{
		Addrs:    map[string]string{"signin": address},
		Password: password,
	})
	return NewSigninRateLimiter(ring, int(attempts), time.Duration(windowSeconds)*time.Second, time.Duration(blockSeconds)*time.Second)
}

func (r *WBSigninRateLimiter) attemptKey(identifier string) string {
	return fmt.Sprintf("signin_attempts:%s", identifier)
}

func (r *WBSigninRateLimiter) blockKey(identifier string) string {
	return fmt.Sprintf("signin_blocked:%s", identifier)
}

// IsAllowed reports whether the identifier may attempt a sign-in and counts
// the attempt.
func (r *WBSigninRateLimiter) IsAllowed(ctx context.Context, identifier string) (bool, error) {
	if r == nil {
		return true, nil
	}

	blocked, err := r.redisRing.Exists(ctx, r.blockKey(identifier)).Result()
	if err != nil {
		return false, err
	}
	if blocked == 1 {
		return false, nil
	}

	attemptsKey := r.attemptKey(identifier)
	attempts, err := r.redisRing.Get(ctx, attemptsKey).Int()
	if err == redis.Nil {
		err = r.redisRing.Set(ctx, attemptsKey, 1, r.window).Err()
		return err == nil, err
	}
	if err != nil {
		return false, err
	}

	if attempts >= r.attempts {
		err = r.redisRing.Set(ctx, r.blockKey(identifier), true, r.blockDuration).Err()
		if err != nil {
			return false, err
		}
		err = r.redisRing.Del(ctx, attemptsKey).Err()
		return false, err
	}

	err = r.redisRing.Incr(ctx, attemptsKey).Err()
	return err == nil, err
}

// Reset clears the identifier's attempts after a successful sign-in.
func (r *WBSigninRateLimiter) Reset(ctx context.Context, identifier string) error {
	if r == nil {
		return nil
	}

	pipe := r.redisRing.Pipeline()
	pipe.Del(ctx, r.attemptKey(identifier))
	pipe.Del(ctx, r.blockKey(identifier))
	_, err := pipe.Exec(ctx)
	return err
}
