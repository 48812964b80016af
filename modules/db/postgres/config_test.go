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

package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfigURLs(t *testing.T) {
	cfg := PoolConfig{
		Host:         "db.internal",
		Port:         5433,
		User:         "profiles",
		Password:     "p@ss word",
		Database:     "profiles",
		SSLMode:      "require",
		PoolMaxConns: 12,
	}

	u := cfg.URL()
	assert.Equal(t, "db.internal:5433", u.Host)
	assert.Equal(t, "/profiles", u.Path)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
	assert.False(t, u.Query().Has("pool_max_conns"), "dbmate does not understand pgx parameters")

	pc, err := pgxpool.ParseConfig(cfg.connString())
	require.NoError(t, err)
	assert.Equal(t, int32(12), pc.MaxConns)
	assert.Equal(t, "p@ss word", pc.ConnConfig.Password)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
}

func TestOptionsFromConfig(t *testing.T) {
	pc, err := pgxpool.ParseConfig("postgres://u:p@localhost:5432/db")
	require.NoError(t, err)

	opts := OptionsFromConfig(&PostgresConfig{PgBouncer: true})
	require.Len(t, opts.WriterOptions, 1)
	require.Len(t, opts.ReaderOptions, 1)
	opts.WriterOptions[0](pc)
	assert.Equal(t, pgx.QueryExecModeSimpleProtocol, pc.ConnConfig.DefaultQueryExecMode)

	WithMaxConnIdleTime(time.Minute)(pc)
	assert.Equal(t, time.Minute, pc.MaxConnIdleTime)

	assert.Empty(t, OptionsFromConfig(&PostgresConfig{}).WriterOptions)
}
