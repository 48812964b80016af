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
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"profilesvc/modules/middleware/problem"
	rl "profilesvc/modules/ratelimit"
)

type (
	// Pattern is "METHOD /path", the same shape the router registers.
	Pattern string

	// KeyFunc extracts the caller identity from a request.
	KeyFunc func(*http.Request) rl.Key

	Policy struct {
		Limiter rl.RateLimiter
		KeyFn   KeyFunc
	}

	// RuntimePolicy is the compiled form of RestHTTPConfig.
	RuntimePolicy struct {
		policyMap     map[Pattern]Policy
		defaultPolicy Policy

		AllowIfNoIdentifier bool
	}
)

var DefaultKeyStrategies = map[KeyStrategyId]KeyFunc{
	RemoteIpKeyStrategy: RemoteIpKeyFunc,
	UserIdKeyStrategy:   UserIdKeyFunc,
}

func routeOf(r *http.Request) Pattern {
	return Pattern(r.Method + " " + r.URL.Path)
}

func (p *RuntimePolicy) findPolicy(r *http.Request) (Policy, bool) {
	if px, ok := p.policyMap[routeOf(r)]; ok {
		return px, true
	}
	return p.defaultPolicy, false
}

func ParsePolicy(factory rl.LimiterFactory, cfg *RestHTTPConfig, keyStrategies map[KeyStrategyId]KeyFunc) (*RuntimePolicy, error) {
	ks, ok := keyStrategies[cfg.KeyStrategy]
	if !ok {
		return nil, fmt.Errorf("ratelimit parse policy: no such key strategy %q", cfg.KeyStrategy)
	}
	if cfg.DefaultPolicy.Window <= 0 {
		return nil, errors.New("ratelimit parse policy: default window must be positive")
	}

	rtp := &RuntimePolicy{
		policyMap: make(map[Pattern]Policy),
		defaultPolicy: Policy{
			Limiter: factory(cfg.DefaultPolicy.Limit, cfg.DefaultPolicy.Window),
			KeyFn:   ks,
		},
		AllowIfNoIdentifier: cfg.AllowIfNoIdentifier,
	}

	for pat, rule := range cfg.Routes() {
		if rule.Window <= 0 {
			continue
		}
		rtp.policyMap[pat] = Policy{
			Limiter: factory(rule.Limit, rule.Window),
			KeyFn:   ks,
		}
	}
	return rtp, nil
}

func NewRateLimitMiddleware(p *RuntimePolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			px, explicit := p.findPolicy(r)

			key := px.KeyFn(r)
			if key == "" {
				if p.AllowIfNoIdentifier {
					next.ServeHTTP(w, r)
					return
				}
				slog.WarnContext(ctx, "no rate limit key",
					slog.String("middleware", "rate_limiter"),
					slog.String("url", r.URL.Path),
				)
				problem.Write(w, problem.TooManyRequests(http.StatusText(http.StatusTooManyRequests)))
				return
			}

			result, err := px.Limiter.Allow(ctx, key)
			if err != nil {
				// Counter store may be down.
				slog.ErrorContext(ctx, "rate limit error",
					slog.Any("error", err),
					slog.String("url", r.URL.Path),
				)
				problem.Write(w, problem.Internal(http.StatusText(http.StatusInternalServerError)))
				return
			}

			writeRateLimitHeaders(w, result)

			if !result.Allowed {
				slog.DebugContext(ctx, "rate limited",
					slog.String("middleware", "rate_limiter"),
					slog.String("url", r.URL.Path),
					slog.Bool("explicit_policy", explicit),
				)
				w.Header().Set("Retry-After", strconv.FormatInt(ceilSeconds(result), 10))
				problem.Write(w, problem.TooManyRequests(http.StatusText(http.StatusTooManyRequests)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeRateLimitHeaders(w http.ResponseWriter, result rl.Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
	h.Set("X-RateLimit-Window-Seconds", strconv.FormatInt(int64(result.Window.Seconds()), 10))
	h.Set("X-RateLimit-Reset-Seconds", strconv.FormatInt(int64(result.WindowResetIn.Seconds()), 10))
}

func ceilSeconds(result rl.Result) int64 {
	s := int64(result.RetryAfter.Seconds())
	if result.RetryAfter > 0 && float64(s) < result.RetryAfter.Seconds() {
		s++
	}
	return max(s, 1)
}

// RemoteIpKeyFunc uses the last X-Forwarded-For hop, the one appended by
// the closest proxy, or the peer address when the header is absent.
func RemoteIpKeyFunc(r *http.Request) rl.Key {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		if last := strings.TrimSpace(hops[len(hops)-1]); last != "" {
			return rl.Key(last)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return rl.Key(r.RemoteAddr)
	}
	return rl.Key(host)
}

// UserIdKeyFunc trusts the user_id query parameter. There is no
// authentication in front of this service.
func UserIdKeyFunc(r *http.Request) rl.Key {
	if id := r.URL.Query().Get("user_id"); id != "" {
		return rl.Key("user:" + id)
	}
	return RemoteIpKeyFunc(r)
}
