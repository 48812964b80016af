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
	"context"
	"fmt"
	"io"
	"log/slog"

	"profilesvc/modules/db"
	"profilesvc/modules/db/migrations"

	"github.com/amacneil/dbmate/v2/pkg/dbmate"
	_ "github.com/amacneil/dbmate/v2/pkg/driver/postgres"
)

func (p *PostgresConnectionPool) migrator() *dbmate.DB {
	m := dbmate.New(p.primary.URL())
	m.FS = migrations.FS
	m.MigrationsDir = []string{"."}
	m.AutoDumpSchema = false
	m.Log = io.Discard
	return m
}

// MigrateUp implements db.ConnectionPool. The database is created first
// when it does not exist yet.
func (p *PostgresConnectionPool) MigrateUp(ctx context.Context) error {
	slog.InfoContext(ctx, "applying migrations", slog.String("database", p.primary.Database))
	return p.migrator().CreateAndMigrate()
}

// MigrateDown implements db.ConnectionPool. Only the latest migration
// is rolled back.
func (p *PostgresConnectionPool) MigrateDown(ctx context.Context) error {
	slog.InfoContext(ctx, "rolling back latest migration", slog.String("database", p.primary.Database))
	return p.migrator().Rollback()
}

// Migrate runs the direction selected by mode against m.
func Migrate(ctx context.Context, m db.MigrationManager, mode string) error {
	switch mode {
	case MigrateOff:
		return nil
	case MigrateUp:
		return m.MigrateUp(ctx)
	case MigrateDown:
		return m.MigrateDown(ctx)
	}
	return fmt.Errorf("unknown migrate mode %q", mode)
}
