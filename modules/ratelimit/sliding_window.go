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
	"fmt"
	"math/bits"
	"time"

	"profilesvc/modules/clock"
)

var _ RateLimiter = (*SlidingWindowRateLimiter)(nil)

// SlidingWindowRateLimiter approximates a sliding window with two fixed
// windows, weighting the previous one by how much of it still overlaps the
// sliding window ending now.
type SlidingWindowRateLimiter struct {
	clock     clock.Clock
	counter   CounterStore
	keyPrefix string

	limit  uint64
	window time.Duration
}

func SlidingWindowFactory(clk clock.Clock, counter CounterStore, keyPrefix string) LimiterFactory {
	return func(limit int64, window time.Duration) RateLimiter {
		return NewSlidingWindow(clk, counter, keyPrefix, limit, window)
	}
}

func NewSlidingWindow(clk clock.Clock, counter CounterStore, keyPrefix string, limit int64, window time.Duration) *SlidingWindowRateLimiter {
	return &SlidingWindowRateLimiter{
		clock:     clk,
		counter:   counter,
		keyPrefix: keyPrefix,
		limit:     uint64(max(limit, 0)),
		window:    window,
	}
}

// Allow implements RateLimiter. Every call counts, including rejected ones.
func (s *SlidingWindowRateLimiter) Allow(ctx context.Context, key Key) (Result, error) {
	windowNs := s.window.Nanoseconds()
	nowNs := s.clock.Now().UnixNano()
	idx := nowNs / windowNs

	cur, err := s.counter.Incr(ctx, s.windowKey(key, idx), s.window*2)
	if err != nil {
		return Result{}, err
	}
	prev, err := s.counter.Get(ctx, s.windowKey(key, idx-1))
	if err != nil {
		return Result{}, err
	}

	elapsed := min(max(nowNs-idx*windowNs, 0), windowNs)
	prevWeight := windowNs - elapsed
	resetIn := max(s.window-time.Duration(elapsed), 0)

	// usage = cur*window + prev*prevWeight, kept as 128 bits so the
	// comparison against limit*window stays exact.
	w := uint64(windowNs)
	usageHi, usageLo := mulAdd(uint64(max(cur, 0)), w, uint64(max(prev, 0)), uint64(prevWeight))
	limitHi, limitLo := bits.Mul64(s.limit, w)
	allowed := usageHi < limitHi || (usageHi == limitHi && usageLo <= limitLo)

	used := ceilDiv(usageHi, usageLo, w)
	var remaining uint64
	if used < s.limit {
		remaining = s.limit - used
	}

	res := Result{
		Allowed:       allowed,
		Remaining:     int64(remaining),
		Limit:         int64(s.limit),
		Window:        s.window,
		WindowResetIn: resetIn,
	}
	if !allowed {
		res.RetryAfter = resetIn
	}
	return res, nil
}

func (s *SlidingWindowRateLimiter) windowKey(key Key, idx int64) string {
	return fmt.Sprintf("%s:%s:%d", s.keyPrefix, key, idx)
}

// mulAdd returns a*b + c*d as a 128 bit value.
func mulAdd(a, b, c, d uint64) (hi, lo uint64) {
	h1, l1 := bits.Mul64(a, b)
	h2, l2 := bits.Mul64(c, d)
	lo, carry := bits.Add64(l1, l2, 0)
	hi, _ = bits.Add64(h1, h2, carry)
	return hi, lo
}

// ceilDiv returns ceil((hi,lo) / d), saturating at MaxUint64.
func ceilDiv(hi, lo, d uint64) uint64 {
	if hi >= d {
		return ^uint64(0)
	}
	q, r := bits.Div64(hi, lo, d)
	if r != 0 && q != ^uint64(0) {
		q++
	}
	return q
}
