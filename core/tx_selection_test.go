package core

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NomicFoundation/hardhat-sub012/core/types"
)

func drain(q *TxSelectionQueue) types.PoolTransactions {
	var txs types.PoolTransactions
	for tx := q.NextTransaction(); tx != nil; tx = q.NextTransaction() {
		txs = append(txs, tx)
	}
	return txs
}

func orderIDs(txs types.PoolTransactions) []uint64 {
	ids := make([]uint64, len(txs))
	for i, tx := range txs {
		ids[i] = tx.OrderID()
	}
	return ids
}

func TestSelectionFifoOrder(t *testing.T) {
	pool, ws := setupTxPool(t)
	keyA, keyB := newKey(t), newKey(t)
	ws.fund(keyA, testBalance)
	ws.fund(keyB, testBalance)

	mustAdd(t, pool, pricedTransaction(0, 21000, big.NewInt(1), keyA))
	mustAdd(t, pool, pricedTransaction(0, 21000, big.NewInt(100), keyB))
	mustAdd(t, pool, pricedTransaction(1, 21000, big.NewInt(1000), keyA))

	txs := drain(pool.BuildSelectionQueue(FifoOrder, nil))
	assert.Equal(t, []uint64{1, 2, 3}, orderIDs(txs))
}

func TestSelectionPriorityOrder(t *testing.T) {
	pool, ws := setupTxPool(t)
	keyA, keyB, keyC := newKey(t), newKey(t), newKey(t)
	addrA := ws.fund(keyA, testBalance)
	addrB := ws.fund(keyB, testBalance)
	addrC := ws.fund(keyC, testBalance)

	mustAdd(t, pool, pricedTransaction(0, 21000, big.NewInt(1), keyA))
	mustAdd(t, pool, pricedTransaction(1, 21000, big.NewInt(100), keyA))
	mustAdd(t, pool, pricedTransaction(0, 21000, big.NewInt(50), keyB))
	mustAdd(t, pool, pricedTransaction(0, 21000, big.NewInt(50), keyC))

	txs := drain(pool.BuildSelectionQueue(PriorityOrder, nil))
	require.Len(t, txs, 4)

	// equal tips are served by arrival, A's second transaction waits for its first
	assert.Equal(t, addrB, txs[0].Sender())
	assert.Equal(t, addrC, txs[1].Sender())
	assert.Equal(t, addrA, txs[2].Sender())
	assert.Equal(t, uint64(0), txs[2].Nonce())
	assert.Equal(t, addrA, txs[3].Sender())
	assert.Equal(t, uint64(1), txs[3].Nonce())
}

func TestSelectionPriorityUsesBaseFee(t *testing.T) {
	pool, ws := setupTxPool(t)
	keyA, keyB := newKey(t), newKey(t)
	addrA := ws.fund(keyA, testBalance)
	addrB := ws.fund(keyB, testBalance)

	mustAdd(t, pool, dynamicFeeTransaction(0, 21000, big.NewInt(100), big.NewInt(50), keyA))
	mustAdd(t, pool, pricedTransaction(0, 21000, big.NewInt(90), keyB))

	// without a base fee the fee caps compete: 100 > 90
	txs := drain(pool.BuildSelectionQueue(PriorityOrder, nil))
	require.Len(t, txs, 2)
	assert.Equal(t, addrA, txs[0].Sender())

	// at base fee 30 the tips compete: min(50, 70) < min(90, 60)
	txs = drain(pool.BuildSelectionQueue(PriorityOrder, big.NewInt(30)))
	require.Len(t, txs, 2)
	assert.Equal(t, addrB, txs[0].Sender())

	// fee caps below the base fee yield a zero tip and fall back to arrival
	txs = drain(pool.BuildSelectionQueue(PriorityOrder, big.NewInt(200)))
	require.Len(t, txs, 2)
	assert.Equal(t, addrA, txs[0].Sender())
}

func TestSelectionRemoveLastSenderTransactions(t *testing.T) {
	pool, ws := setupTxPool(t)
	keyA, keyB := newKey(t), newKey(t)
	addrA := ws.fund(keyA, testBalance)
	addrB := ws.fund(keyB, testBalance)

	mustAdd(t, pool, transaction(0, 21000, keyA))
	mustAdd(t, pool, transaction(0, 21000, keyB))
	mustAdd(t, pool, transaction(1, 21000, keyA))
	mustAdd(t, pool, transaction(2, 21000, keyA))
	mustAdd(t, pool, transaction(1, 21000, keyB))

	q := pool.BuildSelectionQueue(FifoOrder, nil)
	tx := q.NextTransaction()
	require.Equal(t, addrA, tx.Sender())
	q.RemoveLastSenderTransactions()

	rest := drain(q)
	require.Len(t, rest, 2)
	for _, tx := range rest {
		assert.Equal(t, addrB, tx.Sender())
	}
	assert.Nil(t, q.NextTransaction())

	// the pool itself is untouched
	assert.Equal(t, []uint64{0, 1, 2}, nonces(pool.GetPendingTransactions(), addrA))
}

func TestSelectionIgnoresQueuedAndLaterMutations(t *testing.T) {
	pool, ws := setupTxPool(t)
	key := newKey(t)
	ws.fund(key, testBalance)

	first := mustAdd(t, pool, transaction(0, 21000, key))
	mustAdd(t, pool, transaction(2, 21000, key))

	q := pool.BuildSelectionQueue(PriorityOrder, nil)
	mustAdd(t, pool, transaction(1, 21000, key))
	require.True(t, pool.RemoveTransaction(first.Hash()))

	txs := drain(q)
	require.Len(t, txs, 1)
	assert.Equal(t, first.Hash(), txs[0].Hash())
}

func TestSelectionEmptyQueue(t *testing.T) {
	pool, _ := setupTxPool(t)
	q := pool.BuildSelectionQueue(PriorityOrder, nil)
	assert.Nil(t, q.NextTransaction())
	q.RemoveLastSenderTransactions()
	assert.Nil(t, q.NextTransaction())
}

func TestSelectionRespectsNonceOrder(t *testing.T) {
	pool, ws := setupTxPool(t)
	rnd := rand.New(rand.NewSource(7))

	for i := 0; i < 5; i++ {
		key := newKey(t)
		ws.fund(key, testBalance)
		for nonce := uint64(0); nonce < 6; nonce++ {
			price := big.NewInt(int64(1 + rnd.Intn(100)))
			mustAdd(t, pool, pricedTransaction(nonce, 21000, price, key))
		}
	}

	for _, order := range []SelectionOrder{PriorityOrder, FifoOrder} {
		q := pool.BuildSelectionQueue(order, big.NewInt(int64(rnd.Intn(50))))
		next := make(map[common.Address]uint64)
		removed := make(map[common.Address]bool)
		for tx := q.NextTransaction(); tx != nil; tx = q.NextTransaction() {
			from := tx.Sender()
			require.False(t, removed[from], "transaction of removed sender %x returned", from)
			require.Equal(t, next[from], tx.Nonce(), "out of order nonce for %x", from)
			next[from]++
			if rnd.Intn(8) == 0 {
				q.RemoveLastSenderTransactions()
				removed[from] = true
			}
		}
	}
}

func TestParseSelectionOrder(t *testing.T) {
	order, err := ParseSelectionOrder("fifo")
	require.NoError(t, err)
	assert.Equal(t, FifoOrder, order)

	order, err = ParseSelectionOrder("priority")
	require.NoError(t, err)
	assert.Equal(t, PriorityOrder, order)

	_, err = ParseSelectionOrder("random")
	assert.Error(t, err)
}
