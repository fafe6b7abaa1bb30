package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"

	"github.com/jmoiron/sqlx"
)

// stub driver recording connection and transaction lifecycles.
var stub = &stubState{}

type stubState struct {
	mu         sync.Mutex
	opened     int
	closed     int
	pingErr    bool
	execErr    error
	begun      int
	committed  int
	rolledBack int
	cols       []string
	rows       [][]driver.Value
}

func (s *stubState) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened, s.closed, s.begun, s.committed, s.rolledBack = 0, 0, 0, 0, 0
	s.pingErr = false
	s.execErr = nil
	s.cols = nil
	s.rows = nil
}

func (s *stubState) snapshot() (opened, closed, begun, committed, rolledBack int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened, s.closed, s.begun, s.committed, s.rolledBack
}

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.opened++
	return &stubConn{}, nil
}

type stubConn struct{}

var (
	_ driver.Conn           = (*stubConn)(nil)
	_ driver.Pinger         = (*stubConn)(nil)
	_ driver.ConnBeginTx    = (*stubConn)(nil)
	_ driver.ExecerContext  = (*stubConn)(nil)
	_ driver.QueryerContext = (*stubConn)(nil)
)

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }

func (c *stubConn) Close() error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.closed++
	return nil
}

func (c *stubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.begun++
	return &stubTx{}, nil
}

func (c *stubConn) Ping(context.Context) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.pingErr {
		return errors.New("ping failed")
	}
	return nil
}

func (c *stubConn) ExecContext(context.Context, string, []driver.NamedValue) (driver.Result, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.execErr != nil {
		return nil, stub.execErr
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.execErr != nil {
		return nil, stub.execErr
	}
	return &stubRows{cols: stub.cols, rows: stub.rows}, nil
}

type stubTx struct{}

func (stubTx) Commit() error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.committed++
	return nil
}

func (stubTx) Rollback() error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.rolledBack++
	return nil
}

type stubRows struct {
	cols []string
	rows [][]driver.Value
	pos  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

func init() {
	sql.Register("stub", stubDriver{})
}

func openStubDB() *sqlx.DB {
	stub.reset()
	db, err := sqlx.Open("stub", "stub://test")
	if err != nil {
		panic(err)
	}
	return db
}
