package database

import (
	"context"
	"errors"
)

var errNoTransaction = errors.New("no transaction in context")

// txScope is the transaction a context carries. owner is false for scopes
// that joined an enclosing unit of work.
type txScope struct {
	tx    Transaction
	owner bool
}

type txScopeKey struct{}

func scopeOf(ctx context.Context) (txScope, bool) {
	s, ok := ctx.Value(txScopeKey{}).(txScope)
	return s, ok && s.tx != nil
}

// ExecutorFromContext returns the transaction bound to ctx, or conn outside
// a unit of work. Repositories resolve their executor through it on every
// call so writes land in the caller's transaction.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if s, ok := scopeOf(ctx); ok {
		return s.tx
	}
	return conn
}

// UnitOfWork binds a transaction on conn to the context. A Begin inside an
// open unit of work joins it, and only the outermost scope commits.
type UnitOfWork struct {
	conn Connection
}

func NewUnitOfWork(conn Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if s, ok := scopeOf(ctx); ok {
		return context.WithValue(ctx, txScopeKey{}, txScope{tx: s.tx}), nil
	}
	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, txScopeKey{}, txScope{tx: tx, owner: true}), nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	return end(ctx, Transaction.Commit)
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	return end(ctx, Transaction.Rollback)
}

func end(ctx context.Context, fn func(Transaction, context.Context) error) error {
	s, ok := scopeOf(ctx)
	switch {
	case !ok:
		return errNoTransaction
	case !s.owner:
		return nil
	}
	return fn(s.tx, ctx)
}
