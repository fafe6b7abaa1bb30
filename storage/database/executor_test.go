package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func newTestExecutor(t *testing.T) (*Executor, *Pool) {
	t.Helper()
	db := openStubDB()
	pool := NewPool(db, 2, 100*time.Millisecond)
	t.Cleanup(func() { _ = pool.Shutdown(context.Background()) })
	return NewExecutor(pool), pool
}

func TestExecutor_commitsOnSuccess(t *testing.T) {
	exec, pool := newTestExecutor(t)

	affected, err := exec.Exec(context.Background(), `UPDATE users SET is_active = FALSE WHERE id = $1`, 1)
	if err != nil {
		t.Fatalf("Exec() failed: %v", err)
	}
	if affected != 1 {
		t.Errorf("Exec() affected = %d, want 1", affected)
	}

	_, _, begun, committed, rolledBack := stub.snapshot()
	if begun != 1 || committed != 1 || rolledBack != 0 {
		t.Errorf("tx lifecycle = begun %d, committed %d, rolledBack %d; want 1, 1, 0", begun, committed, rolledBack)
	}
	// released exactly once: the connection is back in the idle set
	if pool.IdleCount() != 1 {
		t.Errorf("IdleCount() = %d, want 1", pool.IdleCount())
	}
}

func TestExecutor_rollsBackOnFailure(t *testing.T) {
	exec, pool := newTestExecutor(t)

	boom := errors.New("boom")
	stub.mu.Lock()
	stub.execErr = boom
	stub.mu.Unlock()

	_, err := exec.Exec(context.Background(), `DELETE FROM courses WHERE id = $1`, 1)
	stub.mu.Lock()
	stub.execErr = nil
	stub.mu.Unlock()

	if errors.Cause(err) != boom {
		t.Fatalf("Exec() error = %v, want %v re-raised", err, boom)
	}

	_, _, begun, committed, rolledBack := stub.snapshot()
	if begun != 1 || committed != 0 || rolledBack != 1 {
		t.Errorf("tx lifecycle = begun %d, committed %d, rolledBack %d; want 1, 0, 1", begun, committed, rolledBack)
	}
	// the connection must be released even on the failure path
	if pool.IdleCount() != 1 {
		t.Errorf("IdleCount() = %d, want 1", pool.IdleCount())
	}
}

func TestExecutor_execIDReturnsInsertedID(t *testing.T) {
	exec, _ := newTestExecutor(t)

	stub.mu.Lock()
	stub.cols = []string{"id"}
	stub.rows = [][]driver.Value{{int64(7)}}
	stub.mu.Unlock()

	id, err := exec.ExecID(context.Background(),
		`INSERT INTO courses (name, code) VALUES ($1, $2) RETURNING id`, "Math", "M1")
	if err != nil {
		t.Fatalf("ExecID() failed: %v", err)
	}
	if id != 7 {
		t.Errorf("ExecID() = %d, want 7", id)
	}

	_, _, _, committed, _ := stub.snapshot()
	if committed != 1 {
		t.Errorf("committed = %d, want 1", committed)
	}
}

func TestExecutor_getNoRows(t *testing.T) {
	exec, pool := newTestExecutor(t)

	stub.mu.Lock()
	stub.cols = []string{"id"}
	stub.rows = nil
	stub.mu.Unlock()

	var id int
	err := exec.Get(context.Background(), &id, `SELECT id FROM users WHERE id = $1`, 404)
	if errors.Cause(err) != sql.ErrNoRows {
		t.Fatalf("Get() error = %v, want sql.ErrNoRows", err)
	}
	if pool.IdleCount() != 1 {
		t.Errorf("IdleCount() = %d, want 1", pool.IdleCount())
	}
}

func TestExecutor_execManySingleTransaction(t *testing.T) {
	exec, _ := newTestExecutor(t)

	argsList := [][]interface{}{
		{"admin", "admin desc"},
		{"teacher", "teacher desc"},
		{"student", "student desc"},
	}
	affected, err := exec.ExecMany(context.Background(),
		`INSERT INTO roles (name, description) VALUES ($1, $2)`, argsList)
	if err != nil {
		t.Fatalf("ExecMany() failed: %v", err)
	}
	if affected != 3 {
		t.Errorf("ExecMany() affected = %d, want 3", affected)
	}

	_, _, begun, committed, _ := stub.snapshot()
	if begun != 1 || committed != 1 {
		t.Errorf("tx lifecycle = begun %d, committed %d; want a single transaction", begun, committed)
	}
}
