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

package ratelimit_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"profilesvc/modules/clock"
	mwrl "profilesvc/modules/middleware/ratelimit"
	rl "profilesvc/modules/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *mwrl.RestHTTPConfig {
	return &mwrl.RestHTTPConfig{
		Enabled:             true,
		KeyStrategy:         mwrl.RemoteIpKeyStrategy,
		DefaultPolicy:       mwrl.EndpointRule{Limit: 2, Window: time.Minute},
		UploadPolicy:        mwrl.UploadRule{Limit: 1, Window: time.Minute},
		AllowIfNoIdentifier: true,
	}
}

func newHandler(t *testing.T, factory rl.LimiterFactory, cfg *mwrl.RestHTTPConfig) http.Handler {
	t.Helper()
	policy, err := mwrl.ParsePolicy(factory, cfg, mwrl.DefaultKeyStrategies)
	require.NoError(t, err)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mwrl.NewRateLimitMiddleware(policy)(ok)
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRateLimitMiddleware(t *testing.T) {
	clk := clock.FixedClock{At: time.Unix(1000, 0)}
	h := newHandler(t, rl.TokenBucketFactory(clk), testConfig())

	rec := do(h, http.MethodGet, "/user/profiles")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Window-Seconds"))

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/user/profiles").Code)

	rec = do(h, http.MethodGet, "/user/profiles")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitMiddlewareUploadRoute(t *testing.T) {
	clk := clock.FixedClock{At: time.Unix(1000, 0)}
	h := newHandler(t, rl.TokenBucketFactory(clk), testConfig())

	target := "/user/profile/upload-image?user_id=1"
	rec := do(h, http.MethodPost, target)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodPost, target).Code)

	// the default budget is separate
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/user/profile?user_id=1").Code)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, rl.Key) (rl.Result, error) {
	return rl.Result{}, errors.New("counter store down")
}

func TestRateLimitMiddlewareLimiterError(t *testing.T) {
	factory := func(int64, time.Duration) rl.RateLimiter { return failingLimiter{} }
	h := newHandler(t, factory, testConfig())

	rec := do(h, http.MethodGet, "/user/profiles")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestParsePolicy(t *testing.T) {
	factory := rl.TokenBucketFactory(clock.RealClockProvider())

	t.Run("unknown key strategy", func(t *testing.T) {
		cfg := testConfig()
		cfg.KeyStrategy = "session"
		_, err := mwrl.ParsePolicy(factory, cfg, mwrl.DefaultKeyStrategies)
		assert.Error(t, err)
	})

	t.Run("zero default window", func(t *testing.T) {
		cfg := testConfig()
		cfg.DefaultPolicy.Window = 0
		_, err := mwrl.ParsePolicy(factory, cfg, mwrl.DefaultKeyStrategies)
		assert.Error(t, err)
	})
}

func TestKeyFuncs(t *testing.T) {
	tests := []struct {
		name   string
		fn     mwrl.KeyFunc
		target string
		xff    string
		want   rl.Key
	}{
		{name: "peer address", fn: mwrl.RemoteIpKeyFunc, target: "/", want: "192.0.2.1"},
		{name: "last forwarded hop", fn: mwrl.RemoteIpKeyFunc, target: "/", xff: "203.0.113.7, 198.51.100.2", want: "198.51.100.2"},
		{name: "blank forwarded hop", fn: mwrl.RemoteIpKeyFunc, target: "/", xff: "203.0.113.7, ", want: "192.0.2.1"},
		{name: "user id", fn: mwrl.UserIdKeyFunc, target: "/user/profile?user_id=42", want: "user:42"},
		{name: "user id falls back to ip", fn: mwrl.UserIdKeyFunc, target: "/user/profiles", want: "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, tt.fn(r))
		})
	}
}
