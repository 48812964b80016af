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

package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/rueidisotel"
)

// NewRueidisClient connects to the Redis holding the rate limit counters
// and PINGs it so a bad URL fails at startup rather than on first request.
func NewRueidisClient(ctx context.Context, cfg *RedisConfig) (rueidis.Client, error) {
	opt, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	newClient := rueidis.NewClient
	if cfg.EnableOtel {
		newClient = func(o rueidis.ClientOption) (rueidis.Client, error) {
			return rueidisotel.NewClient(o)
		}
	}
	cli, err := newClient(opt)
	if err != nil {
		return nil, fmt.Errorf("rueidis: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := cli.Do(pingCtx, cli.B().Ping().Build()).Error(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("rueidis: ping: %w", err)
	}

	slog.InfoContext(ctx, "redis client ready",
		slog.Any("addresses", opt.InitAddress),
		slog.Bool("tls", opt.TLSConfig != nil),
		slog.Bool("otel", cfg.EnableOtel))
	return cli, nil
}

// clientOptions turns the config into rueidis options. Client side caching
// is off: counters must always be read fresh.
func clientOptions(cfg *RedisConfig) (rueidis.ClientOption, error) {
	if cfg.URL == "" {
		return rueidis.ClientOption{}, errors.New("rueidis: URL must not be empty")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return rueidis.ClientOption{}, fmt.Errorf("rueidis: parse url: %w", err)
	}
	if cfg.RequireTLS && u.Scheme != "rediss" {
		return rueidis.ClientOption{}, fmt.Errorf("rueidis: REQUIRE_TLS is set but the URL scheme is %q, use rediss://", u.Scheme)
	}

	opt, err := rueidis.ParseURL(cfg.URL)
	if err != nil {
		return rueidis.ClientOption{}, fmt.Errorf("rueidis: %w", err)
	}
	opt.ClientName = cfg.ClientName
	opt.DisableRetry = cfg.DisableRetry
	opt.DisableCache = true
	if cfg.ConnWriteTimeout > 0 {
		opt.ConnWriteTimeout = cfg.ConnWriteTimeout
	}

	// only touch TLS when the URL asked for it, otherwise a plaintext
	// server would suddenly be spoken to over TLS
	if cfg.SkipTLSVerify && opt.TLSConfig != nil {
		tc := opt.TLSConfig.Clone()
		tc.InsecureSkipVerify = true //nolint:gosec
		opt.TLSConfig = tc
	}
	return opt, nil
}
