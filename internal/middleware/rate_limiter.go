package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/Baaaki/message-board/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const bannedIPsKey = "banned_ips"

// RateLimiterConfig is a fixed-window budget per client IP.
type RateLimiterConfig struct {
	MaxRequests int
	Window      time.Duration
}

// RateLimiter counts requests per IP in Redis so every replica shares the
// same budget.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimiterConfig
}

func NewRateLimiter(redisClient *redis.Client, config RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		clientIP := c.ClientIP()

		banned, err := rl.IsIPBanned(ctx, clientIP)
		if err != nil {
			logger.Log.Warn("Ban list lookup failed", zap.String("ip", clientIP), zap.Error(err))
		}
		if banned {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Your IP address has been banned",
			})
			return
		}

		allowed, retryAfter, err := rl.CheckLimit(ctx, clientIP)
		if err != nil {
			// fail open
			logger.Log.Warn("Rate limit check failed", zap.String("ip", clientIP), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			seconds := int(retryAfter.Seconds())
			logger.Log.Info("Rate limit exceeded",
				zap.String("ip", clientIP),
				zap.String("path", c.FullPath()),
			)
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message":     "Too many requests. Please try again later.",
				"retry_after": seconds,
			})
			return
		}

		c.Next()
	}
}

// CheckLimit increments the counter for ip and reports whether the request
// fits in the current window, plus how long until the window resets.
func (rl *RateLimiter) CheckLimit(ctx context.Context, ip string) (bool, time.Duration, error) {
	key := fmt.Sprintf("ratelimit:%s", ip)

	count, err := rl.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}

	// first hit opens the window
	if count == 1 {
		if err := rl.redis.Expire(ctx, key, rl.config.Window).Err(); err != nil {
			return false, 0, err
		}
	}

	if count <= int64(rl.config.MaxRequests) {
		return true, 0, nil
	}

	ttl, err := rl.redis.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		ttl = rl.config.Window
	}
	return false, ttl, nil
}

func (rl *RateLimiter) IsIPBanned(ctx context.Context, ip string) (bool, error) {
	return rl.redis.SIsMember(ctx, bannedIPsKey, ip).Result()
}

func (rl *RateLimiter) BanIP(ctx context.Context, ip string) error {
	return rl.redis.SAdd(ctx, bannedIPsKey, ip).Err()
}

func (rl *RateLimiter) UnbanIP(ctx context.Context, ip string) error {
	return rl.redis.SRem(ctx, bannedIPsKey, ip).Err()
}

// BannedIPs lists the ban list, sorted.
func (rl *RateLimiter) BannedIPs(ctx context.Context) ([]string, error) {
	ips, err := rl.redis.SMembers(ctx, bannedIPsKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ips)
	return ips, nil
}
