package vastdb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vastdb "github.com/vast-data/vastdb-go"
	"github.com/vast-data/vastdb-go/errors"
	"github.com/vast-data/vastdb-go/logger"
)

// fakeTransport counts the transaction verbs and can be told to fail any
// of them.
type fakeTransport struct {
	begins    int
	commits   int
	rollbacks int

	beginErr    error
	commitErr   error
	rollbackErr error

	lastTxid uint64
}

func (f *fakeTransport) BeginTransaction(ctx context.Context) (uint64, error) {
	f.begins++
	if f.beginErr != nil {
		return 0, f.beginErr
	}
	f.lastTxid = uint64(0xdead0000) + uint64(f.begins)
	return f.lastTxid, nil
}

func (f *fakeTransport) CommitTransaction(ctx context.Context, txid uint64) error {
	f.commits++
	f.lastTxid = txid
	return f.commitErr
}

func (f *fakeTransport) RollbackTransaction(ctx context.Context, txid uint64) error {
	f.rollbacks++
	f.lastTxid = txid
	return f.rollbackErr
}

type fakeObjectStore struct {
	heads []string
	err   error
}

func (f *fakeObjectStore) HeadBucket(ctx context.Context, name string) error {
	f.heads = append(f.heads, name)
	return f.err
}

func newTestSession(t *testing.T, rpc vastdb.Transport, store vastdb.ObjectStore) *vastdb.Session {
	t.Helper()
	if store == nil {
		store = &fakeObjectStore{}
	}
	s, err := vastdb.NewSession(vastdb.Config{
		Endpoints:   []string{"http://10.0.0.1"},
		Transport:   rpc,
		ObjectStore: store,
		Logger:      logger.NewLogfLogger(t),
	})
	require.NoError(t, err)
	return s
}

func TestTransactionScopeCommits(t *testing.T) {
	rpc := &fakeTransport{}
	s := newTestSession(t, rpc, nil)

	var insideID uint64
	err := s.Transaction(context.Background(), func(tx *vastdb.Transaction) error {
		insideID = tx.ID()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rpc.begins)
	assert.Equal(t, 1, rpc.commits)
	assert.Equal(t, 0, rpc.rollbacks)
	assert.Equal(t, insideID, rpc.lastTxid)
}

func TestTransactionScopeRollsBackOnError(t *testing.T) {
	rpc := &fakeTransport{}
	s := newTestSession(t, rpc, nil)

	boom := errors.Errorf("boom")
	err := s.Transaction(context.Background(), func(tx *vastdb.Transaction) error {
		return boom
	})
	require.Error(t, err)
	assert.Equal(t, boom.Error(), err.Error())
	assert.Equal(t, 0, rpc.commits)
	assert.Equal(t, 1, rpc.rollbacks)
}

func TestTransactionScopeRollsBackOnPanic(t *testing.T) {
	rpc := &fakeTransport{}
	s := newTestSession(t, rpc, nil)

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = s.Transaction(context.Background(), func(tx *vastdb.Transaction) error {
			panic("kaboom")
		})
	})
	assert.Equal(t, 0, rpc.commits)
	assert.Equal(t, 1, rpc.rollbacks)
}

func TestTransactionBeginFailure(t *testing.T) {
	refused := errors.Errorf("refused")
	rpc := &fakeTransport{beginErr: refused}
	s := newTestSession(t, rpc, nil)

	called := false
	err := s.Transaction(context.Background(), func(tx *vastdb.Transaction) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, vastdb.ErrTransactionFailure))
	// the transport error stays on the chain under the code
	assert.Equal(t, refused, errors.Cause(err))
	assert.False(t, called)
	assert.Equal(t, 0, rpc.commits)
	assert.Equal(t, 0, rpc.rollbacks)
}

func TestTransactionCommitFailureSurfaces(t *testing.T) {
	reset := errors.Errorf("connection reset")
	rpc := &fakeTransport{commitErr: reset}
	s := newTestSession(t, rpc, nil)

	err := s.Transaction(context.Background(), func(tx *vastdb.Transaction) error {
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, vastdb.ErrTransactionFailure))
	assert.Contains(t, err.Error(), "committing")
	assert.Equal(t, reset, errors.Cause(err))
	assert.Equal(t, vastdb.ErrTransactionFailure, errors.CodeOf(err))
	// a failed commit is never followed by a rollback
	assert.Equal(t, 1, rpc.commits)
	assert.Equal(t, 0, rpc.rollbacks)
}

func TestTransactionRollbackFailureSurfaces(t *testing.T) {
	reset := errors.Errorf("connection reset")
	rpc := &fakeTransport{rollbackErr: reset}
	s := newTestSession(t, rpc, nil)

	err := s.Transaction(context.Background(), func(tx *vastdb.Transaction) error {
		return errors.Errorf("inner failure")
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, vastdb.ErrTransactionFailure))
	// rollback failures read differently from commit failures
	assert.Contains(t, err.Error(), "rolling back")
	assert.Contains(t, err.Error(), "inner failure")
	assert.Equal(t, reset, errors.Cause(err))
}

func TestTransactionExplicitForm(t *testing.T) {
	rpc := &fakeTransport{}
	s := newTestSession(t, rpc, nil)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	assert.Contains(t, tx.String(), "Transaction(id=0x")

	require.NoError(t, tx.Commit(ctx))
	// rollback after commit is a no-op
	require.NoError(t, tx.Rollback(ctx))
	assert.Equal(t, 1, rpc.commits)
	assert.Equal(t, 0, rpc.rollbacks)

	// double commit is an error
	err = tx.Commit(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, vastdb.ErrTransactionFailure))
}
