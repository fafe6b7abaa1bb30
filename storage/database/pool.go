package database

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const (
	defaultPoolSize       = 10
	defaultAcquireTimeout = 5 * time.Second
	releaseProbeTimeout   = time.Second
)

// Pool is a bounded set of reusable database connections. Connections are
// liveness-probed on checkout and checkin; dead ones are discarded and
// replaced. It is explicitly constructed and injected (no package singleton)
// so services can be tested against a fake.
//
// When all connections are checked out, Acquire blocks up to the configured
// acquire timeout, then fails with ErrStoreUnavailable.
type Pool struct {
	db             *sqlx.DB
	sem            chan struct{} // bounds live connections
	acquireTimeout time.Duration

	mu     sync.Mutex // guards idle & closed only
	idle   []*sqlx.Conn
	closed bool
}

func NewPool(db *sqlx.DB, size int, acquireTimeout time.Duration) *Pool {
	if size <= 0 {
		size = defaultPoolSize
	}
	if acquireTimeout <= 0 {
		acquireTimeout = defaultAcquireTimeout
	}
	// the pool holds connections itself; do not let database/sql hoard its own
	db.SetMaxIdleConns(0)
	db.SetMaxOpenConns(size)
	return &Pool{
		db:             db,
		sem:            make(chan struct{}, size),
		acquireTimeout: acquireTimeout,
		idle:           make([]*sqlx.Conn, 0, size),
	}
}

// Acquire returns a healthy connection, reusing an idle one when possible.
func (p *Pool) Acquire(ctx context.Context) (*sqlx.Conn, error) {
	waitCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()
	select {
	case p.sem <- struct{}{}:
	case <-waitCtx.Done():
		return nil, errors.Wrap(ErrStoreUnavailable, "acquiring connection: pool exhausted")
	}

	// idle connections first; dead ones are closed and the next tried
	for {
		conn := p.popIdle()
		if conn == nil {
			break
		}
		if err := conn.PingContext(ctx); err == nil {
			return conn, nil
		}
		_ = conn.Close()
	}

	conn, err := p.db.Connx(ctx)
	if err != nil {
		<-p.sem
		return nil, errors.Wrapf(ErrStoreUnavailable, "opening connection: %v", err)
	}
	return conn, nil
}

// Release returns a connection to the pool if it is still healthy,
// otherwise closes it discarding errors.
func (p *Pool) Release(conn *sqlx.Conn) {
	defer func() { <-p.sem }()
	if conn == nil {
		return
	}

	probeCtx, cancel := context.WithTimeout(context.Background(), releaseProbeTimeout)
	defer cancel()
	if err := conn.PingContext(probeCtx); err != nil {
		_ = conn.Close()
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = conn.Close()
		return
	}
	p.idle = append(p.idle, conn)
	p.mu.Unlock()
}

// Shutdown drains and closes all idle connections and the underlying handle.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	for _, conn := range idle {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_ = conn.Close()
	}
	return p.db.Close()
}

func (p *Pool) popIdle() *sqlx.Conn {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.idle)
	if n == 0 {
		return nil
	}
	conn := p.idle[n-1]
	p.idle = p.idle[:n-1]
	return conn
}

// IdleCount reports the number of idle connections; used in tests and stats.
func (p *Pool) IdleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}
