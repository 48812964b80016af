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

package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"profilesvc/core/profile/adapters/blob"
	"profilesvc/core/profile/adapters/persistence/memory"
	persistence "profilesvc/core/profile/adapters/persistence/pg"
	profile_http "profilesvc/core/profile/adapters/rest"
	"profilesvc/core/profile/domain"
	"profilesvc/modules/appconfig"
	"profilesvc/modules/clock"
	"profilesvc/modules/db/postgres"
	"profilesvc/modules/db/redis"
	"profilesvc/modules/db/redis/counter"
	"profilesvc/modules/middleware"
	"profilesvc/modules/middleware/ratelimit"
	rl "profilesvc/modules/ratelimit"
	"profilesvc/modules/server"
	"profilesvc/modules/services"
	"profilesvc/modules/telemetry"
)

// OpenAPI documents for request validation at runtime
//
//go:embed modules/oapi/*.yaml
var validationSpecFS embed.FS

const profileSpecPath = "modules/oapi/openapi-profile.yaml"

// errRolledBack stops startup after POSTGRES_MIGRATE=down.
var errRolledBack = errors.New("migration rolled back")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.ErrorContext(ctx, "profile service stopped", slog.Any("error", err))
		cancel()
		os.Exit(1)
	}
}

// run wires every dependency by hand. Deferred cleanups run in reverse
// order once the server has drained.
func run(ctx context.Context) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	clk := clock.RealClockProvider()

	otelProviders, err := telemetry.Setup(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := otelProviders.Shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.ErrorContext(ctx, "telemetry shutdown error", slog.Any("error", err))
		}
	}()

	// --- infrastructure ---

	reader, writer, closeStore, err := openStore(ctx, cfg)
	if errors.Is(err, errRolledBack) {
		slog.InfoContext(ctx, "latest migration rolled back, exiting")
		return nil
	}
	if err != nil {
		return err
	}
	defer closeStore()

	blobs, blobSvc, err := openBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	rateLimit, closeLimiter, err := newRateLimitMiddleware(ctx, cfg, clk)
	if err != nil {
		return err
	}
	defer closeLimiter()

	// --- application layer ---

	app := domain.NewApp(reader, writer, blobs, domain.WithClock(clk))
	profileSvc := services.NewProfileAPIService(
		profile_http.NewProfileAPI(app),
		validationSpecFS,
		profileSpecPath,
	)

	httpMetrics, err := telemetry.NewHTTPMetrics(cfg.Otel.ServiceName)
	if err != nil {
		slog.WarnContext(ctx, "failed to initialize HTTP metrics, continuing without metrics", slog.Any("error", err))
		httpMetrics = nil
	}

	svcs := []server.RegistrableService{profileSvc}
	if blobSvc != nil {
		svcs = append(svcs, blobSvc)
	}

	opts := append(server.FromConfig(cfg.HTTP),
		server.WithServices(svcs...),
		server.WithGlobalMiddlewares(
			profile_http.RecoverHTTPMiddleware(),
			middleware.RequestID(),
			middleware.AccessLog(logger),
			// Telemetry reads r.Pattern after the mux ran, nothing between
			// here and the mux may replace the request.
			middleware.Telemetry(httpMetrics),
			rateLimit,
		),
	)
	srv, err := server.New(cfg.HTTP.Host, cfg.HTTP.Port, opts...)
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	return srv.Run(ctx)
}

func newLogger(cfg *appconfig.Config) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsDev() {
		return slog.New(slog.NewTextHandler(os.Stdout, hopts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, hopts))
}

func openStore(ctx context.Context, cfg *appconfig.Config) (domain.ProfileReadStore, domain.ProfileWriteStore, func(), error) {
	if cfg.Storage == appconfig.StorageMemory {
		slog.WarnContext(ctx, "using in-memory storage, data is lost on restart")
		store := memory.New()
		return store, store, func() {}, nil
	}

	pool, err := postgres.New(ctx, &cfg.Postgres, postgres.OptionsFromConfig(&cfg.Postgres))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("database: %w", err)
	}
	closePool := func() {
		if err := pool.Shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.ErrorContext(ctx, "database shutdown error", slog.Any("error", err))
		}
	}

	if err := pool.HealthCheck(ctx); err != nil {
		closePool()
		return nil, nil, nil, fmt.Errorf("database health check: %w", err)
	}
	if err := postgres.Migrate(ctx, pool, cfg.Postgres.Migrate); err != nil {
		closePool()
		return nil, nil, nil, fmt.Errorf("migrate %s: %w", cfg.Postgres.Migrate, err)
	}
	if cfg.Postgres.Migrate == postgres.MigrateDown {
		closePool()
		return nil, nil, nil, errRolledBack
	}

	return persistence.NewPostgresProfileReader(pool), persistence.NewPostgresProfileWriter(pool), closePool, nil
}

// openBlobStore returns the configured store and, for the local store, the
// service serving the stored files back.
func openBlobStore(ctx context.Context, cfg *appconfig.Config) (domain.BlobStore, server.RegistrableService, error) {
	metrics, err := telemetry.NewBlobMetrics(cfg.Otel.ServiceName)
	if err != nil {
		slog.WarnContext(ctx, "failed to initialize blob metrics", slog.Any("error", err))
		metrics = nil
	}

	switch cfg.Blob.Provider {
	case appconfig.BlobCloudinary:
		store, err := blob.NewCloudinaryStore(&cfg.Blob.Cloudinary)
		if err != nil {
			return nil, nil, fmt.Errorf("cloudinary: %w", err)
		}
		return blob.Instrument(store, metrics), nil, nil
	case appconfig.BlobLocal:
		store, err := blob.NewLocalStore(&cfg.Blob.Local)
		if err != nil {
			return nil, nil, err
		}
		return blob.Instrument(store, metrics), store, nil
	default:
		return nil, nil, errors.New("unknown blob provider " + cfg.Blob.Provider)
	}
}

func newRateLimitMiddleware(ctx context.Context, cfg *appconfig.Config, clk clock.Clock) (func(next http.Handler) http.Handler, func(), error) {
	noop := func() {}
	if !cfg.RateLimit.Enabled {
		return func(next http.Handler) http.Handler { return next }, noop, nil
	}

	factory := rl.TokenBucketFactory(clk)
	closeFn := noop
	if cfg.Redis.Enabled {
		client, err := redis.NewRueidisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		closeFn = client.Close
		factory = rl.SlidingWindowFactory(clk, counter.NewRedisCounterStore(client, "profilesvc"), "rl")
	} else {
		slog.InfoContext(ctx, "redis disabled, rate limits are per instance")
	}

	slog.DebugContext(ctx, "app rate limit config", slog.Any("rate_limit_config", cfg.RateLimit))

	rtp, err := ratelimit.ParsePolicy(factory, &cfg.RateLimit, ratelimit.DefaultKeyStrategies)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("ratelimit config: %w", err)
	}
	return ratelimit.NewRateLimitMiddleware(rtp), closeFn, nil
}
