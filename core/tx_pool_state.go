package core

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/btree"

	"github.com/NomicFoundation/hardhat-sub012/core/types"
)

const poolStateDegree = 16

// senderTxs is the nonce-sorted list of one sender. The slice is never
// modified once stored in a tree; updates store a fresh slice.
type senderTxs struct {
	addr common.Address
	txs  types.PoolTransactions
}

func senderLess(a, b senderTxs) bool {
	return bytes.Compare(a.addr[:], b.addr[:]) < 0
}

type hashEntry struct {
	hash common.Hash
	tx   *types.PoolTransaction
}

func hashLess(a, b hashEntry) bool {
	return bytes.Compare(a.hash[:], b.hash[:]) < 0
}

// poolState is one version of the pool contents. clone is O(1): the trees
// share nodes lazily and copy them on the first write of either side, so a
// cloned version is never affected by mutations of the other.
type poolState struct {
	pending       *btree.BTreeG[senderTxs]
	queued        *btree.BTreeG[senderTxs]
	byHash        *btree.BTreeG[hashEntry]
	blockGasLimit uint64
}

func newPoolState(blockGasLimit uint64) *poolState {
	return &poolState{
		pending:       btree.NewG(poolStateDegree, senderLess),
		queued:        btree.NewG(poolStateDegree, senderLess),
		byHash:        btree.NewG(poolStateDegree, hashLess),
		blockGasLimit: blockGasLimit,
	}
}

func (s *poolState) clone() *poolState {
	return &poolState{
		pending:       s.pending.Clone(),
		queued:        s.queued.Clone(),
		byHash:        s.byHash.Clone(),
		blockGasLimit: s.blockGasLimit,
	}
}

func getList(tree *btree.BTreeG[senderTxs], addr common.Address) types.PoolTransactions {
	item, ok := tree.Get(senderTxs{addr: addr})
	if !ok {
		return nil
	}
	return item.txs
}

// setList stores txs for addr, removing the sender entry when txs is empty.
func setList(tree *btree.BTreeG[senderTxs], addr common.Address, txs types.PoolTransactions) {
	if len(txs) == 0 {
		tree.Delete(senderTxs{addr: addr})
		return
	}
	tree.ReplaceOrInsert(senderTxs{addr: addr, txs: txs})
}

func (s *poolState) getPending(addr common.Address) types.PoolTransactions {
	return getList(s.pending, addr)
}

func (s *poolState) getQueued(addr common.Address) types.PoolTransactions {
	return getList(s.queued, addr)
}

func (s *poolState) setPending(addr common.Address, txs types.PoolTransactions) {
	setList(s.pending, addr, txs)
}

func (s *poolState) setQueued(addr common.Address, txs types.PoolTransactions) {
	setList(s.queued, addr, txs)
}

func (s *poolState) getTx(hash common.Hash) (*types.PoolTransaction, bool) {
	entry, ok := s.byHash.Get(hashEntry{hash: hash})
	if !ok {
		return nil, false
	}
	return entry.tx, true
}

func (s *poolState) indexTx(tx *types.PoolTransaction) {
	s.byHash.ReplaceOrInsert(hashEntry{hash: tx.Hash(), tx: tx})
}

func (s *poolState) unindexTx(hash common.Hash) bool {
	_, ok := s.byHash.Delete(hashEntry{hash: hash})
	return ok
}

// senders returns the addresses with entries in tree, in address order.
func senders(tree *btree.BTreeG[senderTxs]) []common.Address {
	addrs := make([]common.Address, 0, tree.Len())
	tree.Ascend(func(item senderTxs) bool {
		addrs = append(addrs, item.addr)
		return true
	})
	return addrs
}

// flatten copies tree into a map. The lists are shared, callers must not
// modify them.
func flatten(tree *btree.BTreeG[senderTxs]) map[common.Address]types.PoolTransactions {
	content := make(map[common.Address]types.PoolTransactions, tree.Len())
	tree.Ascend(func(item senderTxs) bool {
		content[item.addr] = item.txs
		return true
	})
	return content
}

func count(tree *btree.BTreeG[senderTxs]) int {
	n := 0
	tree.Ascend(func(item senderTxs) bool {
		n += len(item.txs)
		return true
	})
	return n
}
