// Copyright 2016 The go-ethereum Authors
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
	"math/big"
	"sort"

	"github.com/NomicFoundation/hardhat-sub012/core/types"
)

// The helpers below treat a types.PoolTransactions as an immutable nonce-sorted
// list: every change returns a new slice and leaves the argument untouched, so
// lists stored in an older pool state version stay valid.

// searchNonce returns the position of nonce in txs, or the position it would be
// inserted at, and whether it is present.
func searchNonce(txs types.PoolTransactions, nonce uint64) (int, bool) {
	i := sort.Search(len(txs), func(i int) bool { return txs[i].Nonce() >= nonce })
	return i, i < len(txs) && txs[i].Nonce() == nonce
}

// indexOfHash returns the position of the transaction with the given hash.
func indexOfHash(txs types.PoolTransactions, tx *types.PoolTransaction) int {
	i, ok := searchNonce(txs, tx.Nonce())
	if !ok || txs[i].Hash() != tx.Hash() {
		return -1
	}
	return i
}

// listInsert returns txs with tx inserted at its nonce position. The nonce
// must not be present.
func listInsert(txs types.PoolTransactions, tx *types.PoolTransaction) types.PoolTransactions {
	i, _ := searchNonce(txs, tx.Nonce())
	out := make(types.PoolTransactions, 0, len(txs)+1)
	out = append(out, txs[:i]...)
	out = append(out, tx)
	return append(out, txs[i:]...)
}

// listReplace returns txs with position i set to tx.
func listReplace(txs types.PoolTransactions, i int, tx *types.PoolTransaction) types.PoolTransactions {
	out := make(types.PoolTransactions, len(txs))
	copy(out, txs)
	out[i] = tx
	return out
}

// listRemove returns txs without position i.
func listRemove(txs types.PoolTransactions, i int) types.PoolTransactions {
	out := make(types.PoolTransactions, 0, len(txs)-1)
	out = append(out, txs[:i]...)
	return append(out, txs[i+1:]...)
}

// listMerge merges two nonce-sorted lists that share no nonce.
func listMerge(a, b types.PoolTransactions) types.PoolTransactions {
	out := make(types.PoolTransactions, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].Nonce() < b[j].Nonce() {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// repartition splits the union of a sender's pending and queued lists into the
// maximal nonce-contiguous run starting exactly at start, and the rest.
func repartition(pending, queued types.PoolTransactions, start uint64) (types.PoolTransactions, types.PoolTransactions) {
	all := listMerge(pending, queued)

	first, ok := searchNonce(all, start)
	if !ok {
		if len(all) == 0 {
			return nil, nil
		}
		return nil, all
	}
	last := first + 1
	for last < len(all) && all[last].Nonce() == all[last-1].Nonce()+1 {
		last++
	}
	ready := make(types.PoolTransactions, last-first)
	copy(ready, all[first:last])

	rest := make(types.PoolTransactions, 0, len(all)-len(ready))
	rest = append(rest, all[:first]...)
	rest = append(rest, all[last:]...)
	if len(rest) == 0 {
		rest = nil
	}
	return ready, rest
}

// minReplacementFee returns ceil(fee * (100+priceBump) / 100).
func minReplacementFee(fee *big.Int, priceBump uint64) *big.Int {
	min := new(big.Int).Mul(fee, new(big.Int).SetUint64(100+priceBump))
	min.Add(min, big.NewInt(99))
	return min.Div(min, big.NewInt(100))
}

// checkReplacement verifies that tx pays at least priceBump percent more than
// old on every fee dimension.
func checkReplacement(old, tx *types.PoolTransaction, priceBump uint64) error {
	minFeeCap := minReplacementFee(old.GasFeeCap(), priceBump)
	if tx.GasFeeCap().Cmp(minFeeCap) < 0 {
		field := FeeFieldGasPrice
		if tx.IsDynamicFee() {
			field = FeeFieldMaxFeePerGas
		}
		return &ReplaceUnderpricedError{Field: field, Minimum: minFeeCap, Nonce: old.Nonce()}
	}
	minTipCap := minReplacementFee(old.GasTipCap(), priceBump)
	if tx.GasTipCap().Cmp(minTipCap) < 0 {
		field := FeeFieldGasPrice
		if tx.IsDynamicFee() {
			field = FeeFieldMaxPriorityFeePerGas
		}
		return &ReplaceUnderpricedError{Field: field, Minimum: minTipCap, Nonce: old.Nonce()}
	}
	return nil
}
