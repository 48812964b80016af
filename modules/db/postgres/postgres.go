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
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"profilesvc/modules/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"
)

var _ db.ConnectionPool = (*PostgresConnectionPool)(nil)

// PostgresConnectionPool holds one pgx pool for the primary and one per
// read replica, each exposed through bob.
type PostgresConnectionPool struct {
	writer  bob.DB
	readers []bob.DB
	next    atomic.Uint64

	// the migration driver opens its own connection from this
	primary PoolConfig
}

func New(ctx context.Context, config *PostgresConfig, opts PostgresOptions) (*PostgresConnectionPool, error) {
	writer, err := openPool(ctx, &config.WriteConfig, opts.WriterOptions...)
	if err != nil {
		return nil, fmt.Errorf("postgres primary: %w", err)
	}

	p := &PostgresConnectionPool{writer: writer, primary: config.WriteConfig}
	for i := range config.ReadConfigs {
		reader, err := openPool(ctx, &config.ReadConfigs[i], opts.ReaderOptions...)
		if err != nil {
			_ = p.Shutdown(ctx)
			return nil, fmt.Errorf("postgres replica %d: %w", i, err)
		}
		p.readers = append(p.readers, reader)
	}

	slog.InfoContext(ctx, "postgres pool ready",
		slog.String("host", config.WriteConfig.Host),
		slog.String("database", config.WriteConfig.Database),
		slog.Int("replicas", len(p.readers)))
	return p, nil
}

func openPool(ctx context.Context, config *PoolConfig, opts ...PgxConfigOption) (bob.DB, error) {
	poolConfig, err := pgxpool.ParseConfig(config.connString())
	if err != nil {
		return bob.DB{}, err
	}
	for _, opt := range opts {
		if opt != nil {
			opt(poolConfig)
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return bob.DB{}, err
	}
	return bob.NewDB(stdlib.OpenDBFromPool(pool)), nil
}

// HealthCheck implements db.ConnectionPool. Every pool is pinged, a dead
// replica fails the check just like a dead primary.
func (p *PostgresConnectionPool) HealthCheck(ctx context.Context) error {
	errs := []error{ping(ctx, "primary", p.writer)}
	for i, r := range p.readers {
		errs = append(errs, ping(ctx, fmt.Sprintf("replica %d", i), r))
	}
	return errors.Join(errs...)
}

func ping(ctx context.Context, name string, conn bob.DB) error {
	if _, err := conn.ExecContext(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("postgres %s: %w", name, err)
	}
	return nil
}

// Reader implements db.ConnectionPool. Replicas are used round robin, the
// primary serves reads when there are none.
func (p *PostgresConnectionPool) Reader() db.Querier {
	if len(p.readers) == 0 {
		return p.writer
	}
	i := p.next.Add(1) % uint64(len(p.readers))
	return p.readers[i]
}

// Writer implements db.ConnectionPool.
func (p *PostgresConnectionPool) Writer() db.Querier {
	return p.writer
}

// WithTimeoutTx implements db.ConnectionPool.
func (p *PostgresConnectionPool) WithTimeoutTx(ctx context.Context, timeout time.Duration, fn db.TxFn) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.WithTx(ctx, fn)
}

// WithTx implements db.ConnectionPool. fn's error, or a panic inside it,
// rolls the transaction back; anything else commits.
func (p *PostgresConnectionPool) WithTx(ctx context.Context, fn db.TxFn) error {
	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	return p.writer.RunInTx(ctx, opts, func(ctx context.Context, exec bob.Executor) error {
		return fn(ctx, exec)
	})
}

// Shutdown implements db.ConnectionPool.
func (p *PostgresConnectionPool) Shutdown(_ context.Context) error {
	if p == nil {
		return nil
	}
	errs := []error{p.writer.Close()}
	for _, r := range p.readers {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}
