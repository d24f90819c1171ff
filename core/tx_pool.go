// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package core

import (
	"context"
	"math/big"

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/NomicFoundation/hardhat-sub012/core/types"
	"github.com/NomicFoundation/hardhat-sub012/internal/utils"
)

// TxStatus is the current status of a transaction as seen by the pool.
type TxStatus uint

// Constants for TxStatus.
const (
	TxStatusUnknown TxStatus = iota
	TxStatusQueued
	TxStatusPending
)

func (s TxStatus) String() string {
	switch s {
	case TxStatusQueued:
		return "queued"
	case TxStatusPending:
		return "pending"
	}
	return "unknown"
}

// TxPool contains all currently known transactions. Transactions enter the
// pool when they are submitted and exit it when they are mined, replaced,
// removed or invalidated by a state update.
//
// The pool separates processable transactions (pending, nonce-contiguous from
// the sender's confirmed nonce) and future transactions (queued). Transactions
// move between those two states over time.
//
// TxPool is not safe for concurrent use: callers serialize access, for example
// through a TxPoolService.
type TxPool struct {
	config     TxPoolConfig
	worldState WorldState
	signer     SenderRecoverer
	feePolicy  FeePolicy

	current *poolState // Current version of the pool contents

	snapshots      map[uint64]*poolState // Versions recorded by Snapshot
	nextSnapshotID uint64

	nextOrderID uint64 // Arrival counter, never rewound by Revert

	txErrorSink *types.TransactionErrorSink // All rejected and dropped txs get reported here

	logger zerolog.Logger
}

// NewTxPool creates a new transaction pool validating against worldState.
// A nil feePolicy selects the DefaultFeePolicy.
func NewTxPool(config TxPoolConfig, worldState WorldState, feePolicy FeePolicy) *TxPool {
	// Sanitize the input to ensure no vulnerable gas prices are set
	config = (&config).sanitize()

	if feePolicy == nil {
		feePolicy = NewDefaultFeePolicy()
	}
	pool := &TxPool{
		config:         config,
		worldState:     worldState,
		signer:         NewSignerRecoverer(config.ChainID),
		feePolicy:      feePolicy,
		current:        newPoolState(config.BlockGasLimit),
		snapshots:      make(map[uint64]*poolState),
		nextSnapshotID: 1,
		nextOrderID:    1,
		txErrorSink:    types.NewTransactionErrorSink(config.ErrorSinkSize),
		logger:         utils.Logger().With().Str("module", "txpool").Logger(),
	}
	return pool
}

// SetSenderRecoverer replaces the sender recovery used by AddTransaction.
func (pool *TxPool) SetSenderRecoverer(signer SenderRecoverer) {
	pool.signer = signer
}

// TxErrorSink returns the sink of rejected and dropped transactions.
func (pool *TxPool) TxErrorSink() *types.TransactionErrorSink {
	return pool.txErrorSink
}

// AddTransaction recovers the sender of tx, validates it against the current
// world state and inserts it into the pending or queued list of its sender.
// A transaction at an occupied (sender, nonce) replaces the occupant when it
// pays enough of a price bump on every fee dimension.
func (pool *TxPool) AddTransaction(ctx context.Context, tx *ethtypes.Transaction) (*types.PoolTransaction, error) {
	receivedTxsCounter.Inc()

	from, err := pool.signer.Sender(tx)
	if err != nil {
		invalidTxsCounterVec.With(prometheus.Labels{"err": ErrInvalidSender.Error()}).Inc()
		return nil, err
	}
	ptx := types.NewPoolTransaction(tx, from, pool.nextOrderID)

	nonce, balance, err := pool.accountState(ctx, from)
	if err != nil {
		return nil, err
	}
	if err := pool.validateTx(ptx, nonce, balance); err != nil {
		pool.reject(ptx, err)
		return nil, err
	}
	if err := pool.add(ptx, nonce); err != nil {
		pool.reject(ptx, err)
		return nil, err
	}
	pool.nextOrderID++
	pool.updateGauges()
	return ptx, nil
}

// add inserts a validated transaction. confirmedNonce is the sender's nonce
// the transaction was validated against.
func (pool *TxPool) add(tx *types.PoolTransaction, confirmedNonce uint64) error {
	from := tx.Sender()
	pending := pool.current.getPending(from)
	queued := pool.current.getQueued(from)

	nextNonce := confirmedNonce
	if len(pending) > 0 {
		nextNonce = pending[len(pending)-1].Nonce() + 1
	}

	// Try to replace an existing transaction at the same nonce first
	if i, ok := searchNonce(pending, tx.Nonce()); ok {
		return pool.replace(pending, i, tx, pool.current.setPending)
	}
	if i, ok := searchNonce(queued, tx.Nonce()); ok {
		return pool.replace(queued, i, tx, pool.current.setQueued)
	}

	start := confirmedNonce
	if tx.Nonce() > nextNonce {
		queued = listInsert(queued, tx)
		pool.logger.Debug().
			Str("hash", tx.Hash().Hex()).
			Str("from", from.Hex()).
			Uint64("nonce", tx.Nonce()).
			Msg("Queued future transaction")
	} else {
		pending = listInsert(pending, tx)
		pool.logger.Debug().
			Str("hash", tx.Hash().Hex()).
			Str("from", from.Hex()).
			Uint64("nonce", tx.Nonce()).
			Msg("Pooled new executable transaction")
	}
	if len(pending) > 0 {
		start = pending[0].Nonce()
	}
	pending, queued = repartition(pending, queued, start)
	pool.current.setPending(from, pending)
	pool.current.setQueued(from, queued)
	pool.current.indexTx(tx)
	return nil
}

// replace swaps list[i] for tx if the price bump allows it, keeping its position.
func (pool *TxPool) replace(list types.PoolTransactions, i int, tx *types.PoolTransaction,
	store func(common.Address, types.PoolTransactions)) error {
	old := list[i]
	if err := checkReplacement(old, tx, pool.config.PriceBump); err != nil {
		return err
	}
	if !pool.current.unindexTx(old.Hash()) {
		pool.logger.Panic().
			Str("hash", old.Hash().Hex()).
			Str("from", old.Sender().Hex()).
			Uint64("nonce", old.Nonce()).
			Msg("Replaced transaction is missing from the hash index")
	}
	store(tx.Sender(), listReplace(list, i, tx))
	pool.current.indexTx(tx)
	replacedTxsCounter.Inc()

	pool.logger.Debug().
		Str("old", old.Hash().Hex()).
		Str("new", tx.Hash().Hex()).
		Uint64("nonce", tx.Nonce()).
		Msg("Replaced transaction")
	return nil
}

// RemoveTransaction removes the transaction with the given hash, reporting
// whether it was found. Removing from the middle of a pending list moves the
// following transactions to the queue.
func (pool *TxPool) RemoveTransaction(hash common.Hash) bool {
	tx, ok := pool.current.getTx(hash)
	if !ok {
		return false
	}
	pool.removeTx(tx)
	pool.updateGauges()
	return true
}

// removeTx removes a resident transaction from its list and the hash index.
func (pool *TxPool) removeTx(tx *types.PoolTransaction) {
	from := tx.Sender()
	if pending := pool.current.getPending(from); len(pending) > 0 {
		if i := indexOfHash(pending, tx); i >= 0 {
			// Postpone any invalidated transactions
			queued := listMerge(pool.current.getQueued(from), pending[i+1:])
			pool.current.setPending(from, pending[:i:i])
			pool.current.setQueued(from, queued)
			pool.current.unindexTx(tx.Hash())
			return
		}
	}
	if queued := pool.current.getQueued(from); len(queued) > 0 {
		if i := indexOfHash(queued, tx); i >= 0 {
			pool.current.setQueued(from, listRemove(queued, i))
			pool.current.unindexTx(tx.Hash())
			return
		}
	}
	pool.logger.Panic().
		Str("hash", tx.Hash().Hex()).
		Str("from", from.Hex()).
		Uint64("nonce", tx.Nonce()).
		Msg("Indexed transaction is missing from pending and queued")
}

// GetTransactionByHash returns a transaction if it is contained in the pool
// and nil otherwise.
func (pool *TxPool) GetTransactionByHash(hash common.Hash) *types.PoolTransaction {
	tx, _ := pool.current.getTx(hash)
	return tx
}

// Status returns the status (unknown/pending/queued) of the transaction
// identified by hash.
func (pool *TxPool) Status(hash common.Hash) TxStatus {
	tx, ok := pool.current.getTx(hash)
	if !ok {
		return TxStatusUnknown
	}
	if indexOfHash(pool.current.getPending(tx.Sender()), tx) >= 0 {
		return TxStatusPending
	}
	return TxStatusQueued
}

// HasPendingTransactions reports whether any transaction is executable.
func (pool *TxPool) HasPendingTransactions() bool {
	return pool.current.pending.Len() > 0
}

// HasQueuedTransactions reports whether any transaction is waiting in the queue.
func (pool *TxPool) HasQueuedTransactions() bool {
	return pool.current.queued.Len() > 0
}

// GetPendingTransactions retrieves all currently executable transactions,
// grouped by origin account and sorted by nonce. The returned transaction set
// is a copy and can be freely modified by calling code.
func (pool *TxPool) GetPendingTransactions() map[common.Address]types.PoolTransactions {
	return copyContent(flatten(pool.current.pending))
}

// GetQueuedTransactions retrieves all currently non-executable transactions,
// grouped by origin account and sorted by nonce. The returned transaction set
// is a copy and can be freely modified by calling code.
func (pool *TxPool) GetQueuedTransactions() map[common.Address]types.PoolTransactions {
	return copyContent(flatten(pool.current.queued))
}

// Content retrieves the data content of the transaction pool, returning all the
// pending as well as queued transactions, grouped by account and sorted by nonce.
func (pool *TxPool) Content() (map[common.Address]types.PoolTransactions, map[common.Address]types.PoolTransactions) {
	return pool.GetPendingTransactions(), pool.GetQueuedTransactions()
}

// Stats retrieves the current pool stats, namely the number of pending and the
// number of queued (non-executable) transactions.
func (pool *TxPool) Stats() (int, int) {
	return count(pool.current.pending), count(pool.current.queued)
}

// GetNextPendingNonce returns the nonce the sender should sign next: the
// confirmed nonce when nothing is pending, else one past the last pending one.
func (pool *TxPool) GetNextPendingNonce(ctx context.Context, addr common.Address) (uint64, error) {
	if pending := pool.current.getPending(addr); len(pending) > 0 {
		return pending[len(pending)-1].Nonce() + 1, nil
	}
	nonce, err := pool.worldState.ConfirmedNonce(ctx, addr)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read nonce of %s", addr.Hex())
	}
	return nonce, nil
}

// GetBlockGasLimit returns the gas ceiling transactions are validated against.
func (pool *TxPool) GetBlockGasLimit() uint64 {
	return pool.current.blockGasLimit
}

// SetBlockGasLimit updates the gas ceiling. Resident transactions are
// re-validated by the next UpdatePendingAndQueued.
func (pool *TxPool) SetBlockGasLimit(limit uint64) {
	pool.current.blockGasLimit = limit
	pool.logger.Info().Uint64("limit", limit).Msg("Transaction pool block gas limit updated")
}

// UpdatePendingAndQueued re-validates every resident transaction against the
// current world state and block gas limit. It is called whenever the world
// state advances. The pool is left untouched if the world state cannot be read.
func (pool *TxPool) UpdatePendingAndQueued(ctx context.Context) error {
	next := pool.current.clone()

	accounts := make(map[common.Address]accountState)
	lookup := func(addr common.Address) (accountState, error) {
		if acc, ok := accounts[addr]; ok {
			return acc, nil
		}
		nonce, balance, err := pool.accountState(ctx, addr)
		if err != nil {
			return accountState{}, err
		}
		accounts[addr] = accountState{nonce: nonce, balance: balance}
		return accounts[addr], nil
	}

	var dropped []droppedTx
	touched := mapset.NewThreadUnsafeSet()

	for _, addr := range senders(next.pending) {
		acc, err := lookup(addr)
		if err != nil {
			return err
		}
		touched.Add(addr)

		pending := next.getPending(addr)
		keep := make(types.PoolTransactions, 0, len(pending))
		var tail types.PoolTransactions
		for i, tx := range pending {
			if tx.Nonce() < acc.nonce {
				dropped = append(dropped, droppedTx{tx, &NonceTooLowError{TxNonce: tx.Nonce(), StateNonce: acc.nonce}})
				continue
			}
			if err := checkExecutable(tx, acc.balance, next.blockGasLimit); err != nil {
				dropped = append(dropped, droppedTx{tx, err})
				tail = pending[i+1:]
				break
			}
			keep = append(keep, tx)
		}
		if len(tail) > 0 {
			switch pool.config.Invalidation {
			case DropFollowers:
				for _, tx := range tail {
					dropped = append(dropped, droppedTx{tx, ErrPredecessorInvalidated})
				}
			default:
				next.setQueued(addr, listMerge(next.getQueued(addr), tail))
				pool.logger.Debug().
					Str("from", addr.Hex()).
					Int("count", len(tail)).
					Msg("Demoting pending transactions")
			}
		}
		next.setPending(addr, keep)
	}

	for _, addr := range senders(next.queued) {
		acc, err := lookup(addr)
		if err != nil {
			return err
		}
		touched.Add(addr)

		queued := next.getQueued(addr)
		keep := make(types.PoolTransactions, 0, len(queued))
		for _, tx := range queued {
			if tx.Nonce() < acc.nonce {
				dropped = append(dropped, droppedTx{tx, &NonceTooLowError{TxNonce: tx.Nonce(), StateNonce: acc.nonce}})
				continue
			}
			if err := checkExecutable(tx, acc.balance, next.blockGasLimit); err != nil {
				dropped = append(dropped, droppedTx{tx, err})
				continue
			}
			keep = append(keep, tx)
		}
		next.setQueued(addr, keep)
	}

	// Promote queued transactions whose nonce gap has closed
	for item := range touched.Iter() {
		addr := item.(common.Address)
		pending, queued := repartition(next.getPending(addr), next.getQueued(addr), accounts[addr].nonce)
		next.setPending(addr, pending)
		next.setQueued(addr, queued)
	}

	for _, d := range dropped {
		if !next.unindexTx(d.tx.Hash()) {
			pool.logger.Panic().
				Str("hash", d.tx.Hash().Hex()).
				Msg("Dropped transaction is missing from the hash index")
		}
		droppedTxsCounterVec.With(prometheus.Labels{"reason": errorLabel(d.err)}).Inc()
		pool.txErrorSink.Add(d.tx, d.err)
		pool.logger.Debug().
			Str("hash", d.tx.Hash().Hex()).
			Str("from", d.tx.Sender().Hex()).
			Uint64("nonce", d.tx.Nonce()).
			Err(d.err).
			Msg("Removed invalid transaction")
	}
	pool.current = next
	pool.updateGauges()
	return nil
}

type accountState struct {
	nonce   uint64
	balance *big.Int
}

type droppedTx struct {
	tx  *types.PoolTransaction
	err error
}

// accountState reads the confirmed nonce and balance of addr.
func (pool *TxPool) accountState(ctx context.Context, addr common.Address) (uint64, *big.Int, error) {
	nonce, err := pool.worldState.ConfirmedNonce(ctx, addr)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "failed to read nonce of %s", addr.Hex())
	}
	balance, err := pool.worldState.Balance(ctx, addr)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "failed to read balance of %s", addr.Hex())
	}
	return nonce, balance, nil
}

// reject records a refused submission.
func (pool *TxPool) reject(tx *types.PoolTransaction, err error) {
	if errors.Is(err, ErrKnownTransaction) {
		knownTxsCounter.Inc()
	} else {
		invalidTxsCounterVec.With(prometheus.Labels{"err": errorLabel(err)}).Inc()
		pool.txErrorSink.Add(tx, err)
	}
	pool.logger.Debug().
		Str("hash", tx.Hash().Hex()).
		Str("from", tx.Sender().Hex()).
		Uint64("nonce", tx.Nonce()).
		Err(err).
		Msg("Discarding invalid transaction")
}

func (pool *TxPool) updateGauges() {
	pending, queued := pool.Stats()
	pendingTxGauge.Set(float64(pending))
	queuedTxGauge.Set(float64(queued))
}

func copyContent(content map[common.Address]types.PoolTransactions) map[common.Address]types.PoolTransactions {
	for addr, txs := range content {
		cpy := make(types.PoolTransactions, len(txs))
		copy(cpy, txs)
		content[addr] = cpy
	}
	return content
}
