// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"profilesvc/modules/clock"

	"golang.org/x/time/rate"
)

var _ RateLimiter = (*TokenBucketRateLimiter)(nil)

// TokenBucketRateLimiter is the in-process limiter used when no Redis is
// configured. Each key gets a bucket holding limit tokens that refills at
// limit per window. Counts are not shared between replicas.
type TokenBucketRateLimiter struct {
	clock  clock.Clock
	limit  int64
	window time.Duration
	every  rate.Limit

	mu      sync.Mutex
	buckets map[Key]*bucket
	maxIdle time.Duration
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func TokenBucketFactory(clk clock.Clock) LimiterFactory {
	return func(limit int64, window time.Duration) RateLimiter {
		return NewTokenBucket(clk, limit, window)
	}
}

func NewTokenBucket(clk clock.Clock, limit int64, window time.Duration) *TokenBucketRateLimiter {
	limit = max(limit, 1)
	return &TokenBucketRateLimiter{
		clock:   clk,
		limit:   limit,
		window:  window,
		every:   rate.Limit(float64(limit) / window.Seconds()),
		buckets: make(map[Key]*bucket),
		maxIdle: window * 2,
	}
}

// Allow implements RateLimiter.
func (t *TokenBucketRateLimiter) Allow(_ context.Context, key Key) (Result, error) {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.buckets[key]
	if !ok {
		t.evictIdle(now)
		b = &bucket{lim: rate.NewLimiter(t.every, int(min(t.limit, math.MaxInt32)))}
		t.buckets[key] = b
	}
	b.lastSeen = now

	allowed := b.lim.AllowN(now, 1)
	tokens := b.lim.TokensAt(now)

	res := Result{
		Allowed:   allowed,
		Remaining: int64(max(math.Floor(tokens), 0)),
		Limit:     t.limit,
		Window:    t.window,
	}
	// Time until the bucket is full again.
	res.WindowResetIn = t.refillIn(float64(t.limit) - tokens)
	if !allowed {
		res.RetryAfter = t.refillIn(1 - tokens)
	}
	return res, nil
}

func (t *TokenBucketRateLimiter) refillIn(missing float64) time.Duration {
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / float64(t.every) * float64(time.Second))
}

// evictIdle drops buckets that have been full for a while. Caller holds mu.
func (t *TokenBucketRateLimiter) evictIdle(now time.Time) {
	for k, b := range t.buckets {
		if now.Sub(b.lastSeen) > t.maxIdle {
			delete(t.buckets, k)
		}
	}
}
