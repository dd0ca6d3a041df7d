package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mlekodaj/gatepass/internal/utils"
)

// ErrUnavailable reports that the backing store could not be reached or
// a pooled connection could not be acquired in time.
var ErrUnavailable = errors.New("db: store unavailable")

type poolState int

const (
	stateUninitialized poolState = iota
	stateReady
	stateFailed
)

// Postgres owns the pooled connection handle to the backing store. The
// pool is opened lazily on first use; if an open attempt fails the
// handle returns to the uninitialized state so the next call retries
// instead of latching the failure.
type Postgres struct {
	cfg utils.PostgresConfig

	mu    sync.Mutex
	state poolState
	pool  *pgxpool.Pool
}

func NewPostgres(cfg utils.PostgresConfig) *Postgres {
	return &Postgres{cfg: cfg}
}

// Acquire returns the ready pool, opening it and bootstrapping the
// schema on first use. Failures are reported as ErrUnavailable.
func (p *Postgres) Acquire(ctx context.Context) (*pgxpool.Pool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateReady {
		return p.pool, nil
	}

	// A previously failed open does not stick: retry on this call.
	p.state = stateUninitialized

	pool, err := p.open(ctx)
	if err != nil {
		p.state = stateFailed
		zap.L().Error("postgres open failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	p.pool = pool
	p.state = stateReady
	return p.pool, nil
}

func (p *Postgres) open(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(p.cfg.BuildDSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}

	if p.cfg.MaxConns > 0 {
		poolConfig.MaxConns = p.cfg.MaxConns
	}
	if p.cfg.MinConns >= 0 {
		poolConfig.MinConns = p.cfg.MinConns
	}
	if p.cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = p.cfg.MaxConnLifetime
	}
	if p.cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = p.cfg.MaxConnIdleTime
	}
	if p.cfg.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = p.cfg.HealthCheckPeriod
	}

	connectTimeout := p.cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}

	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(dialCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if err := ensureSchema(dialCtx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// ensureSchema creates the users relation if missing. Safe to run
// against an already-initialized store.
func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmt := strings.Join([]string{
		"CREATE TABLE IF NOT EXISTS users (",
		"    id TEXT PRIMARY KEY,",
		"    user_id TEXT NOT NULL UNIQUE,",
		"    name TEXT NOT NULL,",
		"    email TEXT NOT NULL UNIQUE,",
		"    phone TEXT NOT NULL,",
		"    password TEXT NOT NULL,",
		"    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()",
		")",
	}, "\n")

	if _, err := pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}

	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	pool, err := p.Acquire(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (p *Postgres) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
	p.state = stateUninitialized
}
