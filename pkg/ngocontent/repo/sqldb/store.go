// Package sqldb implements ngocontent.Store with bun over SQLite or MySQL.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/tendant/ngo-content/pkg/ngocontent"
)

// Config selects the driver and connection for a Store
type Config struct {
	Driver string // "sqlite" or "mysql"
	DSN    string
	// MaxOpenConns limits the pool; SQLite in-memory databases need 1
	MaxOpenConns int
	// Debug logs every query through bundebug, BUNDEBUG overrides it
	Debug bool
}

// Store implements ngocontent.Store on a bun database
type Store struct {
	db *bun.DB
}

var _ ngocontent.Store = (*Store)(nil)

// Open connects to the configured database
func Open(ctx context.Context, cfg Config) (*Store, error) {
	var (
		sqlDB *sql.DB
		db    *bun.DB
		err   error
	)

	switch cfg.Driver {
	case "sqlite", "sqlite3":
		sqlDB, err = sql.Open(sqliteshim.ShimName, cfg.DSN)
		if err != nil {
			return nil, err
		}
		db = bun.NewDB(sqlDB, sqlitedialect.New())
	case "mysql":
		dsn, err := mysqlDSN(cfg.DSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, err
		}
		db = bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(cfg.Debug),
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	slog.Debug("database connected", "driver", cfg.Driver)
	return &Store{db: db}, nil
}

// mysqlDSN forces the driver options the repositories rely on: parsed
// timestamps and matched (not changed) row counts for updates.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// Migrate creates the tables if they do not exist yet
func (s *Store) Migrate(ctx context.Context) error {
	for _, model := range models {
		_, err := s.db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table %T: %w", model, err)
		}
	}
	return nil
}

// Begin starts a transaction
func (s *Store) Begin(ctx context.Context) (ngocontent.UnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %w", ngocontent.ErrRecordWrite, err)
	}
	return &unitOfWork{tx: tx}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

type unitOfWork struct {
	tx bun.Tx
}

func (u *unitOfWork) Categories() ngocontent.RecordRepository[*ngocontent.Category] {
	return &repository[*ngocontent.Category, categoryRow]{db: u.tx, m: categories}
}

func (u *unitOfWork) Testimonials() ngocontent.RecordRepository[*ngocontent.Testimonial] {
	return &repository[*ngocontent.Testimonial, testimonialRow]{db: u.tx, m: testimonials}
}

func (u *unitOfWork) Members() ngocontent.RecordRepository[*ngocontent.Member] {
	return &repository[*ngocontent.Member, memberRow]{db: u.tx, m: members}
}

func (u *unitOfWork) SaveChanges(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ngocontent.ErrRecordWrite, err)
	}
	return nil
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%w: rollback: %w", ngocontent.ErrRecordWrite, err)
	}
	return nil
}
