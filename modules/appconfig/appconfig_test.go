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
	"log/slog"
	"testing"
	"time"

	"profilesvc/modules/db/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDev())
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, BlobLocal, cfg.Blob.Provider)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, postgres.MigrateOff, cfg.Postgres.Migrate)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, int64(20), cfg.RateLimit.UploadPolicy.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.DefaultPolicy.Window)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", "staging")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("POSTGRES_PRIMARY_HOST", "db.internal")
	t.Setenv("POSTGRES_MIGRATE", "down")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("RATE_LIMIT_UPLOAD_LIMIT", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsDev())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "db.internal", cfg.Postgres.WriteConfig.Host)
	assert.Equal(t, postgres.MigrateDown, cfg.Postgres.Migrate)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, int64(5), cfg.RateLimit.UploadPolicy.Limit)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown storage", env: map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{name: "unknown blob provider", env: map[string]string{"BLOB_PROVIDER": "s3"}},
		{name: "cloudinary without credentials", env: map[string]string{"BLOB_PROVIDER": "cloudinary"}},
		{name: "unknown migrate mode", env: map[string]string{"POSTGRES_MIGRATE": "sideways"}},
		{name: "memory storage in prod", env: map[string]string{"ENV": "prod", "STORAGE_DRIVER": "memory"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSlogLevelFallsBackToInfo(t *testing.T) {
	cfg := &Config{LogLevel: "loud"}
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
