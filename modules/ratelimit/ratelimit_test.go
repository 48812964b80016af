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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time          { return c.now }
func (c *stepClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type mapCounter struct {
	mu sync.Mutex
	m  map[string]int64
}

func newMapCounter() *mapCounter { return &mapCounter{m: map[string]int64{}} }

func (c *mapCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key]++
	return c.m[key], nil
}

func (c *mapCounter) Get(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m[key], nil
}

func TestSlidingWindow(t *testing.T) {
	ctx := context.Background()
	// aligned on a window boundary
	clk := &stepClock{now: time.Unix(600, 0)}
	counter := newMapCounter()
	lim := SlidingWindowFactory(clk, counter, "rl")(3, time.Minute)

	for want := int64(2); want >= 0; want-- {
		res, err := lim.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, want, res.Remaining)
		assert.Zero(t, res.RetryAfter)
	}

	res, err := lim.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Minute, res.RetryAfter)
	assert.Equal(t, int64(3), res.Limit)

	t.Run("other keys are independent", func(t *testing.T) {
		res, err := lim.Allow(ctx, "bob")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("previous window is weighted by overlap", func(t *testing.T) {
		// half way into the next window: 1 + 4*0.5 = 3 requests in use
		clk.Advance(90 * time.Second)
		res, err := lim.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Zero(t, res.Remaining)
		assert.Equal(t, 30*time.Second, res.WindowResetIn)

		res, err = lim.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, res.Allowed)
	})

	assert.Equal(t, int64(4), counter.m["rl:alice:10"])
}

func TestTokenBucket(t *testing.T) {
	ctx := context.Background()
	clk := &stepClock{now: time.Unix(1000, 0)}
	lim := TokenBucketFactory(clk)(2, time.Second)

	res, err := lim.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(1), res.Remaining)

	res, _ = lim.Allow(ctx, "alice")
	assert.True(t, res.Allowed)
	assert.Zero(t, res.Remaining)

	res, _ = lim.Allow(ctx, "alice")
	assert.False(t, res.Allowed)
	assert.Equal(t, 500*time.Millisecond, res.RetryAfter)

	res, _ = lim.Allow(ctx, "bob")
	assert.True(t, res.Allowed)

	clk.Advance(500 * time.Millisecond)
	res, _ = lim.Allow(ctx, "alice")
	assert.True(t, res.Allowed)
}

func TestTokenBucketEvictsIdleKeys(t *testing.T) {
	clk := &stepClock{now: time.Unix(1000, 0)}
	lim := NewTokenBucket(clk, 1, time.Second)

	_, _ = lim.Allow(context.Background(), "alice")
	clk.Advance(time.Minute)
	_, _ = lim.Allow(context.Background(), "bob")

	lim.mu.Lock()
	defer lim.mu.Unlock()
	assert.NotContains(t, lim.buckets, Key("alice"))
	assert.Contains(t, lim.buckets, Key("bob"))
}
