package database

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestPool_boundsConnections(t *testing.T) {
	db := openStubDB()
	pool := NewPool(db, 2, 100*time.Millisecond)
	defer pool.Shutdown(context.Background())
	ctx := context.Background()

	conn1, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}
	conn2, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}

	// at capacity: the next acquire must time out
	start := time.Now()
	if _, err = pool.Acquire(ctx); errors.Cause(err) != ErrStoreUnavailable {
		t.Errorf("Acquire() error = %v, want ErrStoreUnavailable", err)
	}
	if waited := time.Since(start); waited < 100*time.Millisecond {
		t.Errorf("Acquire() returned after %v, want it to block for the acquire timeout", waited)
	}

	// freeing capacity unblocks acquisition
	pool.Release(conn1)
	conn3, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() after Release() failed: %v", err)
	}
	pool.Release(conn2)
	pool.Release(conn3)
}

func TestPool_reusesIdleConnections(t *testing.T) {
	db := openStubDB()
	pool := NewPool(db, 2, 100*time.Millisecond)
	defer pool.Shutdown(context.Background())
	ctx := context.Background()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}
	pool.Release(conn)

	if n := pool.IdleCount(); n != 1 {
		t.Fatalf("IdleCount() = %d, want 1", n)
	}

	reused, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}
	if reused != conn {
		t.Error("Acquire() dialed a new connection instead of reusing the idle one")
	}
	if opened, _, _, _, _ := stub.snapshot(); opened != 1 {
		t.Errorf("driver opened %d connections, want 1", opened)
	}
	pool.Release(reused)
}

func TestPool_discardsDeadIdleConnections(t *testing.T) {
	db := openStubDB()
	pool := NewPool(db, 2, 100*time.Millisecond)
	defer pool.Shutdown(context.Background())
	ctx := context.Background()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}
	pool.Release(conn)

	// the idle connection dies while parked; the checkout probe must
	// discard it and dial a replacement
	stub.mu.Lock()
	stub.pingErr = true
	stub.mu.Unlock()
	replacement, err := pool.Acquire(ctx)
	stub.mu.Lock()
	stub.pingErr = false
	stub.mu.Unlock()
	if err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}
	if replacement == conn {
		t.Error("Acquire() returned the dead connection")
	}
	if pool.IdleCount() != 0 {
		t.Errorf("IdleCount() = %d, want 0", pool.IdleCount())
	}
	pool.Release(replacement)
}

func TestPool_shutdownClosesIdleConnections(t *testing.T) {
	db := openStubDB()
	pool := NewPool(db, 2, 100*time.Millisecond)
	ctx := context.Background()

	conn1, _ := pool.Acquire(ctx)
	conn2, _ := pool.Acquire(ctx)
	pool.Release(conn1)
	pool.Release(conn2)

	if err := pool.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}
	if pool.IdleCount() != 0 {
		t.Errorf("IdleCount() = %d, want 0 after Shutdown()", pool.IdleCount())
	}
	if _, err := pool.Acquire(ctx); errors.Cause(err) != ErrStoreUnavailable {
		t.Errorf("Acquire() after Shutdown() error = %v, want ErrStoreUnavailable", err)
	}
}
