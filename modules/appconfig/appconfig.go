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

package appconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"profilesvc/core/profile/adapters/blob"
	"profilesvc/modules/db/postgres"
	"profilesvc/modules/db/redis"
	"profilesvc/modules/middleware/ratelimit"
	"profilesvc/modules/server"
	"profilesvc/modules/telemetry"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	BlobLocal      = "local"
	BlobCloudinary = "cloudinary"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	HTTP server.Config `envPrefix:"HTTP_"`

	// --- core infra ----
	Storage  string                  `env:"STORAGE_DRIVER" envDefault:"postgres"`
	Postgres postgres.PostgresConfig `envPrefix:"POSTGRES_"`
	Redis    redis.RedisConfig       `envPrefix:"REDIS_"`

	Blob BlobConfig `envPrefix:"BLOB_"`

	// --- middlewares ----
	RateLimit ratelimit.RestHTTPConfig `envPrefix:"RATE_LIMIT_"`

	// OTel variables follow their own naming conventions, no prefix.
	Otel telemetry.Config
}

type BlobConfig struct {
	Provider   string                `env:"PROVIDER" envDefault:"local"`
	Local      blob.LocalConfig      `envPrefix:"LOCAL_"`
	Cloudinary blob.CloudinaryConfig `envPrefix:"CLOUDINARY_"`
}

// Load reads an optional .env file, then the process environment. Variables
// already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func validate(c *Config) error {
	var errs []error

	switch c.Storage {
	case StorageMemory, StoragePostgres:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER: unknown driver %q", c.Storage))
	}

	switch strings.ToLower(c.Blob.Provider) {
	case BlobLocal:
	case BlobCloudinary:
		if err := c.Blob.Cloudinary.Validate(); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, fmt.Errorf("BLOB_PROVIDER: unknown provider %q", c.Blob.Provider))
	}

	if c.Storage == StoragePostgres {
		if err := c.Postgres.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Env == "prod" && c.Storage == StorageMemory {
		errs = append(errs, errors.New("STORAGE_DRIVER=memory is not allowed in prod"))
	}

	return errors.Join(errs...)
}
