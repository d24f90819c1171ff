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
	"math/rand"
	"sort"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NomicFoundation/hardhat-sub012/core/types"
)

func poolTxs(t *testing.T, nonces ...uint64) types.PoolTransactions {
	t.Helper()
	key := newKey(t)
	txs := make(types.PoolTransactions, len(nonces))
	for i, nonce := range nonces {
		txs[i] = types.NewPoolTransaction(transaction(nonce, 21000, key), common.Address{}, uint64(i+1))
	}
	return txs
}

// Tests that lists keep nonce order and never modify their inputs.
func TestListInsertRemoveImmutable(t *testing.T) {
	key := newKey(t)
	var list types.PoolTransactions
	for _, nonce := range rand.New(rand.NewSource(1)).Perm(16) {
		tx := types.NewPoolTransaction(transaction(uint64(nonce), 21000, key), common.Address{}, 0)
		prev := list
		prevNonces := prev.Nonces()

		list = listInsert(list, tx)
		assert.Equal(t, prevNonces, prev.Nonces())
		require.True(t, sort.SliceIsSorted(list, func(i, j int) bool { return list[i].Nonce() < list[j].Nonce() }))
	}
	require.Len(t, list, 16)

	i, ok := searchNonce(list, 7)
	require.True(t, ok)
	assert.Equal(t, i, indexOfHash(list, list[i]))

	removed := listRemove(list, i)
	assert.Len(t, list, 16)
	_, ok = searchNonce(removed, 7)
	assert.False(t, ok)
	assert.Equal(t, -1, indexOfHash(removed, list[i]))
}

func TestRepartition(t *testing.T) {
	tests := []struct {
		name           string
		pending        []uint64
		queued         []uint64
		start          uint64
		ready, theRest []uint64
	}{
		{name: "empty", start: 0},
		{name: "gap filled", pending: []uint64{0, 1}, queued: []uint64{2, 3, 5}, start: 0,
			ready: []uint64{0, 1, 2, 3}, theRest: []uint64{5}},
		{name: "nothing at start", queued: []uint64{1, 2}, start: 0, theRest: []uint64{1, 2}},
		{name: "later start", pending: []uint64{4}, queued: []uint64{5, 7}, start: 4,
			ready: []uint64{4, 5}, theRest: []uint64{7}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			all := poolTxs(t, append(append([]uint64{}, test.pending...), test.queued...)...)
			pending, queued := all[:len(test.pending)], all[len(test.pending):]

			ready, rest := repartition(pending, queued, test.start)
			assert.Equal(t, len(test.ready), len(ready))
			if len(test.ready) > 0 {
				assert.Equal(t, test.ready, ready.Nonces())
			}
			assert.Equal(t, len(test.theRest), len(rest))
			if len(test.theRest) > 0 {
				assert.Equal(t, test.theRest, rest.Nonces())
			}
		})
	}
}

func TestMinReplacementFee(t *testing.T) {
	tests := []struct {
		fee, bump, want int64
	}{
		{10, 10, 11},
		{100, 10, 110},
		{1, 10, 2},
		{0, 10, 0},
		{15, 10, 17},
		{10, 100, 20},
	}
	for _, test := range tests {
		have := minReplacementFee(big.NewInt(test.fee), uint64(test.bump))
		assert.Zero(t, have.Cmp(big.NewInt(test.want)), "fee %d bump %d: have %v want %d", test.fee, test.bump, have, test.want)
	}
}
