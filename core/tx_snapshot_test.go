package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevertImmediatelyAfterSnapshot(t *testing.T) {
	pool, ws := setupTxPool(t)
	key := newKey(t)
	ws.fund(key, testBalance)

	mustAdd(t, pool, transaction(0, 21000, key))
	mustAdd(t, pool, transaction(2, 21000, key))
	before := pool.current.clone()

	require.True(t, pool.Revert(pool.Snapshot()))
	assertSameState(t, before, pool.current)
}

func TestRevertRestoresSnapshot(t *testing.T) {
	pool, ws := setupTxPool(t)
	key := newKey(t)
	from := ws.fund(key, testBalance)

	first := mustAdd(t, pool, transaction(0, 21000, key))
	mustAdd(t, pool, transaction(2, 21000, key))
	before := pool.current.clone()
	id := pool.Snapshot()

	mustAdd(t, pool, transaction(1, 21000, key))
	mustAdd(t, pool, transaction(5, 21000, key))
	require.True(t, pool.RemoveTransaction(first.Hash()))
	pool.SetBlockGasLimit(1_000_000)
	ws.nonces[from] = 1
	require.NoError(t, pool.UpdatePendingAndQueued(context.Background()))

	require.True(t, pool.Revert(id))
	assertSameState(t, before, pool.current)
	assert.Equal(t, testTxPoolConfig.BlockGasLimit, pool.GetBlockGasLimit())
	assert.Equal(t, first, pool.GetTransactionByHash(first.Hash()))
	assert.Equal(t, TxStatusQueued, pool.Status(pool.GetQueuedTransactions()[from][0].Hash()))
}

func TestSnapshotIDsAreSingleUse(t *testing.T) {
	pool, ws := setupTxPool(t)
	key := newKey(t)
	ws.fund(key, testBalance)

	s1 := pool.Snapshot()
	mustAdd(t, pool, transaction(0, 21000, key))
	s2 := pool.Snapshot()
	mustAdd(t, pool, transaction(1, 21000, key))
	s3 := pool.Snapshot()

	assert.Equal(t, uint64(1), s1)
	assert.Less(t, s1, s2)
	assert.Less(t, s2, s3)

	require.True(t, pool.Revert(s2))
	pending, _ := pool.Stats()
	assert.Equal(t, 1, pending)

	// s2 and everything taken after it are gone
	assert.False(t, pool.Revert(s2))
	assert.False(t, pool.Revert(s3))

	// ids are never reused
	s4 := pool.Snapshot()
	assert.Greater(t, s4, s3)

	require.True(t, pool.Revert(s1))
	assert.False(t, pool.HasPendingTransactions())
	assert.False(t, pool.Revert(s4))
	assert.False(t, pool.Revert(42))
}

func TestSnapshotIsolation(t *testing.T) {
	pool, ws := setupTxPool(t)
	key := newKey(t)
	from := ws.fund(key, testBalance)

	mustAdd(t, pool, transaction(0, 21000, key))
	s1 := pool.Snapshot()
	mustAdd(t, pool, transaction(1, 21000, key))
	s2 := pool.Snapshot()
	mustAdd(t, pool, transaction(2, 21000, key))

	// mutating the version restored from s1 must not leak into s2's record
	snapshotOfS2 := pool.snapshots[s2].clone()
	require.True(t, pool.Revert(s1))
	mustAdd(t, pool, transaction(3, 21000, key))
	assert.Equal(t, []uint64{0}, nonces(pool.GetPendingTransactions(), from))
	assert.Equal(t, []uint64{3}, nonces(pool.GetQueuedTransactions(), from))
	assert.Equal(t, []uint64{0, 1}, nonces(flatten(snapshotOfS2.pending), from))
}

func TestRevertDoesNotRewindOrderIDs(t *testing.T) {
	pool, ws := setupTxPool(t)
	key := newKey(t)
	ws.fund(key, testBalance)

	id := pool.Snapshot()
	first := mustAdd(t, pool, transaction(0, 21000, key))
	require.True(t, pool.Revert(id))

	second := mustAdd(t, pool, transaction(0, 21000, key))
	assert.Greater(t, second.OrderID(), first.OrderID())
}
