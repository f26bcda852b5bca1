package vastdb

import (
	"context"
	"fmt"

	"github.com/opentracing/opentracing-go"

	"github.com/vast-data/vastdb-go/errors"
)

type txState int

const (
	txUnopened txState = iota
	txOpen
	txCommitted
	txRolledBack
)

func (s txState) String() string {
	switch s {
	case txUnopened:
		return "unopened"
	case txOpen:
		return "open"
	case txCommitted:
		return "committed"
	case txRolledBack:
		return "rolled-back"
	}
	return fmt.Sprintf("txState(%d)", int(s))
}

// Transaction is a handle to one server-side transaction. It is owned by
// the scope that opened it and must not be shared across goroutines; open
// independent transactions for concurrent work.
type Transaction struct {
	session *Session
	rpc     Transport
	txid    uint64
	state   txState
}

// Begin opens a transaction on the next endpoint in the pool.
//
// Prefer Session.Transaction, which guarantees the commit-or-rollback
// contract. With Begin the caller owns that contract: exactly one of
// Commit or Rollback must run on every exit path.
func (s *Session) Begin(ctx context.Context) (*Transaction, error) {
	span, ctx := opentracing.StartSpanFromContextWithTracer(ctx, s.tracer, "vastdb.Begin")
	defer span.Finish()

	rpc := s.transport()
	txid, err := rpc.BeginTransaction(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.WithCode(err, ErrTransactionFailure), "beginning transaction")
	}
	s.logger.Debugf("opened txid=%016x", txid)
	return &Transaction{
		session: s,
		rpc:     rpc,
		txid:    txid,
		state:   txOpen,
	}, nil
}

// Transaction opens a transaction and runs fn inside it. When fn returns
// nil the transaction is committed; when fn returns an error or panics it
// is rolled back (a panic is re-raised after the rollback). Exactly one of
// commit or rollback runs, exactly once, on every exit path.
//
// A failed commit and a failed rollback both surface as
// ErrTransactionFailure, with distinct messages: the former means unknown
// durability, the latter a clean abort that could not complete. Neither is
// retried here; with the server-side state unknown, that call is the
// caller's to make.
func (s *Session) Transaction(ctx context.Context, fn func(tx *Transaction) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(ctx); rerr != nil {
			return errors.Wrapf(rerr, "while handling: %v", err)
		}
		return err
	}
	return tx.Commit(ctx)
}

// ID returns the server-assigned transaction id.
func (tx *Transaction) ID() uint64 { return tx.txid }

func (tx *Transaction) String() string {
	return fmt.Sprintf("Transaction(id=0x%016x)", tx.txid)
}

// Commit makes the transaction's effects durable. On failure the
// transaction stays open: the outcome on the server is unknown and
// retrying is the caller's decision.
func (tx *Transaction) Commit(ctx context.Context) error {
	if tx.state != txOpen {
		return errors.Newf(ErrTransactionFailure, "cannot commit %s transaction", tx.state)
	}
	span, ctx := opentracing.StartSpanFromContextWithTracer(ctx, tx.session.tracer, "vastdb.Commit")
	defer span.Finish()

	tx.session.logger.Debugf("committing txid=%016x", tx.txid)
	if err := tx.rpc.CommitTransaction(ctx, tx.txid); err != nil {
		tx.session.logger.Errorf("commit of txid=%016x failed: %v", tx.txid, err)
		return errors.Wrapf(errors.WithCode(err, ErrTransactionFailure), "committing txid=%016x", tx.txid)
	}
	tx.state = txCommitted
	return nil
}

// Rollback aborts the transaction. Calling it after a Commit (or a prior
// Rollback) is a no-op, so `defer tx.Rollback(ctx)` is safe with the
// explicit Begin form.
func (tx *Transaction) Rollback(ctx context.Context) error {
	switch tx.state {
	case txCommitted, txRolledBack:
		return nil
	case txUnopened:
		return errors.Newf(ErrTransactionFailure, "cannot roll back %s transaction", tx.state)
	}
	span, ctx := opentracing.StartSpanFromContextWithTracer(ctx, tx.session.tracer, "vastdb.Rollback")
	defer span.Finish()

	tx.session.logger.Debugf("rolling back txid=%016x", tx.txid)
	if err := tx.rpc.RollbackTransaction(ctx, tx.txid); err != nil {
		tx.session.logger.Errorf("rollback of txid=%016x failed: %v", tx.txid, err)
		return errors.Wrapf(errors.WithCode(err, ErrTransactionFailure), "rolling back txid=%016x", tx.txid)
	}
	tx.state = txRolledBack
	return nil
}
