package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/ngo-content/pkg/ngocontent"
)

//go:embed schema.sql
var schema string

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store implements ngocontent.Store on a pgx connection pool. Every unit of
// work is one database transaction.
type Store struct {
	pool *pgxpool.Pool
}

var _ ngocontent.Store = (*Store)(nil)

// New wraps an existing pool
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool for databaseURL. A non-empty schema is set as the
// search_path of every connection.
func Connect(ctx context.Context, databaseURL, schema string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return New(pool), nil
}

// Migrate creates the tables if they do not exist yet
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return handlePostgresError("migrate", err)
	}
	return nil
}

// Begin starts a transaction
func (s *Store) Begin(ctx context.Context) (ngocontent.UnitOfWork, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, handlePostgresError("begin", err)
	}
	return &unitOfWork{tx: tx}, nil
}

// Close closes the pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

type unitOfWork struct {
	tx pgx.Tx
}

func (u *unitOfWork) Categories() ngocontent.RecordRepository[*ngocontent.Category] {
	return &repository[*ngocontent.Category]{db: u.tx, table: categoryTable}
}

func (u *unitOfWork) Testimonials() ngocontent.RecordRepository[*ngocontent.Testimonial] {
	return &repository[*ngocontent.Testimonial]{db: u.tx, table: testimonialTable}
}

func (u *unitOfWork) Members() ngocontent.RecordRepository[*ngocontent.Member] {
	return &repository[*ngocontent.Member]{db: u.tx, table: memberTable}
}

func (u *unitOfWork) SaveChanges(ctx context.Context) error {
	if err := u.tx.Commit(ctx); err != nil {
		return handlePostgresError("commit", err)
	}
	return nil
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return handlePostgresError("rollback", err)
	}
	return nil
}

// Error handling helper
func handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return &ngocontent.ValidationError{Fields: []string{fmt.Sprintf("duplicate entry (%s)", pgErr.ConstraintName)}}
		case "23502": // not_null_violation
			return fmt.Errorf("%w: required field %s is missing", ngocontent.ErrRecordWrite, pgErr.ColumnName)
		case "22001": // string_data_right_truncation
			return fmt.Errorf("%w: value too long for %s", ngocontent.ErrRecordWrite, pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("%w: table does not exist - database migration required", ngocontent.ErrRecordWrite)
		default:
			return fmt.Errorf("%w: database error in %s: %s (code: %s)", ngocontent.ErrRecordWrite, operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ngocontent.ErrNotFound
	}

	return fmt.Errorf("%w: database error in %s: %w", ngocontent.ErrRecordWrite, operation, err)
}
