// Package pg implements the record store on Postgres using pgxpool.
package pg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/raphaelgruber/voicejournal/internal/metrics"
	"github.com/raphaelgruber/voicejournal/internal/store"
)

// Config configures the pool.
type Config struct {
	URL      string
	MaxConns int32
	// SlowMs logs queries slower than this at WARN. Zero disables.
	SlowMs int
}

// Store is a Postgres-backed record store.
type Store struct {
	pool    *pgxpool.Pool
	slow    time.Duration
	metrics *metrics.Collector
}

var newPool = pgxpool.NewWithConfig

// Open creates the pool and verifies connectivity. poolCfgMut may adjust the
// parsed pool config before the pool is built.
func Open(ctx context.Context, cfg Config, mc *metrics.Collector, poolCfgMut func(*pgxpool.Config)) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if poolCfgMut != nil {
		poolCfgMut(pcfg)
	}

	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Store{
		pool:    pool,
		slow:    time.Duration(cfg.SlowMs) * time.Millisecond,
		metrics: mc,
	}, nil
}

// Close closes the pool.
func (s *Store) Close(context.Context) error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// InitSchema creates tables and indexes if missing.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// WipeData deletes all rows while preserving the schema.
func (s *Store) WipeData(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "TRUNCATE chat_messages, voice_notes"); err != nil {
		return fmt.Errorf("wipe data: %w", err)
	}
	return nil
}

// track records query timing and logs slow statements.
func (s *Store) track(op string, start time.Time, err error) {
	d := time.Since(start)
	s.metrics.RecordResult(metrics.OpDBQuery, d, err)
	if s.slow > 0 && d > s.slow {
		slog.Warn("slow query", "op", op, "duration_ms", d.Milliseconds())
	}
}

// wrapPgError maps unique and serialization violations onto store.ErrConflict
// and constraint violations onto store.ErrInvalid.
func wrapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "40001":
			return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.Message)
		case "23502", "23514", "22P02":
			return fmt.Errorf("%w: %s", store.ErrInvalid, pgErr.Message)
		}
	}
	return err
}

// validUUID lets lookups of malformed ids report not-found instead of a
// type error from Postgres.
func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

var _ store.RecordStore = (*Store)(nil)
