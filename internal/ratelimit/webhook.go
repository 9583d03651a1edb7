package ratelimit

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/Tijo-11/Vector-Ecom-sub001/internal/config"
)

const keyWebhookProvider = "webhook:payments:"

// WebhookLimiter bounds inbound payment callbacks per provider. Disabled or
// Redis-less deployments pass everything through.
type WebhookLimiter struct {
	enabled bool
	bucket  *TokenBucket
	rate    float64
	burst   int
}

func NewWebhookLimiter(cfg config.Config, client *redis.Client) *WebhookLimiter {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled || client == nil {
		return nil
	}
	return &WebhookLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    limitCfg.WebhookRate,
		burst:   limitCfg.WebhookBurst,
	}
}

func (l *WebhookLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowProvider consumes one token for the given provider's bucket.
func (l *WebhookLimiter) AllowProvider(ctx context.Context, provider string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, keyWebhookProvider+strings.TrimSpace(provider), l.rate, l.burst)
}
