package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// Executor runs each statement (or batch) as its own transaction on a pooled
// connection: commit on success, rollback on any failure. The connection is
// released exactly once on every path. All values go through bound
// parameters; call sites never interpolate.
type Executor struct {
	pool *Pool
}

func NewExecutor(pool *Pool) *Executor {
	return &Executor{pool: pool}
}

// Get runs a query expected to return a single row scanned into dest.
// Returns sql.ErrNoRows when nothing matches.
func (x *Executor) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return x.withTx(ctx, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, dest, query, args...)
	})
}

// Select runs a query returning any number of rows scanned into dest (a slice pointer).
func (x *Executor) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return x.withTx(ctx, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, dest, query, args...)
	})
}

// ExecID runs an INSERT carrying a `RETURNING id` clause and returns the new id.
func (x *Executor) ExecID(ctx context.Context, query string, args ...interface{}) (int, error) {
	var id int
	err := x.withTx(ctx, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, &id, query, args...)
	})
	return id, err
}

// Exec runs a mutation and returns the affected-row count.
func (x *Executor) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var affected int64
	err := x.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

// ExecMany runs the statement once per parameter tuple under a single
// transaction and returns the total affected-row count.
func (x *Executor) ExecMany(ctx context.Context, query string, argsList [][]interface{}) (int64, error) {
	var affected int64
	err := x.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, args := range argsList {
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			affected += n
		}
		return nil
	})
	return affected, err
}

func (x *Executor) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	conn, err := x.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer x.pool.Release(conn)

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// IsUniqueViolation reports whether err is a unique-constraint violation,
// optionally on a specific constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	if !ok {
		return false
	}
	return pqErr.Code == "23505" && (constraint == "" || pqErr.Constraint == constraint)
}
