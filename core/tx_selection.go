package core

import (
	"container/heap"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/NomicFoundation/hardhat-sub012/core/types"
)

// SelectionOrder is the global order in which a TxSelectionQueue yields
// the heads of the senders.
type SelectionOrder string

const (
	// PriorityOrder yields the highest effective tip first, ties by arrival.
	PriorityOrder SelectionOrder = "priority"
	// FifoOrder yields by arrival only.
	FifoOrder SelectionOrder = "fifo"
)

// ParseSelectionOrder converts a configuration string to a SelectionOrder.
func ParseSelectionOrder(s string) (SelectionOrder, error) {
	switch order := SelectionOrder(s); order {
	case PriorityOrder, FifoOrder:
		return order, nil
	}
	return "", errors.Errorf("unknown selection order %q", s)
}

type headEntry struct {
	tx  *types.PoolTransaction
	tip *uint256.Int
}

// txHeadHeap holds at most one transaction per sender.
type txHeadHeap struct {
	entries []headEntry
	fifo    bool
}

func (h *txHeadHeap) Len() int { return len(h.entries) }

func (h *txHeadHeap) Less(i, j int) bool {
	a, b := h.entries[i], h.entries[j]
	if !h.fifo {
		if cmp := a.tip.Cmp(b.tip); cmp != 0 {
			return cmp > 0
		}
	}
	return a.tx.OrderID() < b.tx.OrderID()
}

func (h *txHeadHeap) Swap(i, j int) { h.entries[i], h.entries[j] = h.entries[j], h.entries[i] }

func (h *txHeadHeap) Push(x interface{}) {
	h.entries = append(h.entries, x.(headEntry))
}

func (h *txHeadHeap) Pop() interface{} {
	old := h.entries
	n := len(old)
	x := old[n-1]
	h.entries = old[0 : n-1]
	return x
}

// TxSelectionQueue yields pending transactions to a block builder in the
// configured global order while keeping every sender's nonce order. Only the
// lowest not yet returned transaction of each sender competes at any time.
type TxSelectionQueue struct {
	heads     txHeadHeap
	remaining map[common.Address]types.PoolTransactions // Not yet surfaced transactions per sender
	feePolicy FeePolicy
	baseFee   *uint256.Int

	last *types.PoolTransaction // Returned by the latest NextTransaction, its follower not yet promoted
}

// NewTxSelectionQueue builds a queue over pending. The lists of pending are
// not modified. baseFee may be nil for pre-London blocks and is ignored in
// FifoOrder.
func NewTxSelectionQueue(pending map[common.Address]types.PoolTransactions, order SelectionOrder,
	baseFee *big.Int, feePolicy FeePolicy) *TxSelectionQueue {
	if feePolicy == nil {
		feePolicy = NewDefaultFeePolicy()
	}
	q := &TxSelectionQueue{
		heads:     txHeadHeap{entries: make([]headEntry, 0, len(pending)), fifo: order == FifoOrder},
		remaining: make(map[common.Address]types.PoolTransactions, len(pending)),
		feePolicy: feePolicy,
	}
	if baseFee != nil {
		q.baseFee, _ = uint256.FromBig(baseFee)
	}
	for addr, txs := range pending {
		if len(txs) == 0 {
			continue
		}
		q.heads.entries = append(q.heads.entries, q.entry(txs[0]))
		if len(txs) > 1 {
			q.remaining[addr] = txs[1:]
		}
	}
	heap.Init(&q.heads)
	return q
}

// BuildSelectionQueue snapshots the pending transactions into a
// TxSelectionQueue. Later pool mutations do not affect the queue.
func (pool *TxPool) BuildSelectionQueue(order SelectionOrder, baseFee *big.Int) *TxSelectionQueue {
	return NewTxSelectionQueue(flatten(pool.current.pending), order, baseFee, pool.feePolicy)
}

func (q *TxSelectionQueue) entry(tx *types.PoolTransaction) headEntry {
	e := headEntry{tx: tx}
	if !q.heads.fifo {
		e.tip = q.feePolicy.EffectiveTip(tx, q.baseFee)
	}
	return e
}

// NextTransaction returns the best remaining transaction, or nil when the
// queue is exhausted.
func (q *TxSelectionQueue) NextTransaction() *types.PoolTransaction {
	if q.last != nil {
		q.promote(q.last.Sender())
		q.last = nil
	}
	if q.heads.Len() == 0 {
		return nil
	}
	q.last = heap.Pop(&q.heads).(headEntry).tx
	return q.last
}

// RemoveLastSenderTransactions discards every remaining transaction of the
// sender of the transaction last returned by NextTransaction.
func (q *TxSelectionQueue) RemoveLastSenderTransactions() {
	if q.last == nil {
		return
	}
	delete(q.remaining, q.last.Sender())
	q.last = nil
}

// promote moves the next transaction of addr into the heap.
func (q *TxSelectionQueue) promote(addr common.Address) {
	txs, ok := q.remaining[addr]
	if !ok {
		return
	}
	heap.Push(&q.heads, q.entry(txs[0]))
	if len(txs) > 1 {
		q.remaining[addr] = txs[1:]
	} else {
		delete(q.remaining, addr)
	}
}
