// Package pgstore is the PostgreSQL league backend, built on gorm.
//
// Transactions run at READ COMMITTED. Matchmaking takes row locks with
// SELECT ... FOR UPDATE; join candidates are locked with SKIP LOCKED so a
// request never queues behind a slot another request is already claiming and
// falls through to the next candidate or to opening its own match.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/roach88/rinkleague/internal/store"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique index conflict.
const uniqueViolation = "23505"

const oneWaitingIndex = `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_one_waiting
	ON matches (home_team_id)
	WHERE status = 'WAITING_OPPONENT' AND away_team_id IS NULL
`

// Store is a PostgreSQL league database.
type Store struct {
	db *gorm.DB
}

var _ store.Backend = (*Store)(nil)

// Option configures Open.
type Option func(*gorm.Config)

// WithLogger replaces the gorm logger. The default is silent.
func WithLogger(l logger.Interface) Option {
	return func(c *gorm.Config) {
		c.Logger = l
	}
}

// Open connects to dsn and migrates the schema.
func Open(dsn string, opts ...Option) (*Store, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	for _, opt := range opts {
		opt(cfg)
	}
	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := migrate(db); err != nil {
		if sqlDB, e := db.DB(); e == nil {
			sqlDB.Close()
		}
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := db.Exec(oneWaitingIndex).Error; err != nil {
		return fmt.Errorf("migrate: waiting index: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB returns the underlying gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Atomically runs fn in one transaction.
func (s *Store) Atomically(ctx context.Context, fn func(store.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

// gormTx implements store.Tx over an open gorm transaction.
type gormTx struct {
	db *gorm.DB
}

var _ store.Tx = (*gormTx)(nil)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
