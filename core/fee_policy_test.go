package core

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NomicFoundation/hardhat-sub012/core/types"
)

func TestIntrinsicGas(t *testing.T) {
	accessList := ethtypes.AccessList{
		{Address: testRecipient, StorageKeys: []common.Hash{{1}, {2}}},
	}
	tests := []struct {
		name       string
		data       []byte
		accessList ethtypes.AccessList
		creation   bool
		homestead  bool
		shanghai   bool
		want       uint64
	}{
		{name: "transfer", want: 21000},
		{name: "calldata", data: []byte{0, 1, 0, 2}, want: 21000 + 2*4 + 2*16},
		{name: "access list", accessList: accessList, want: 21000 + 2400 + 2*1900},
		{name: "frontier creation", creation: true, data: []byte{1}, want: 21000 + 16},
		{name: "homestead creation", creation: true, homestead: true, data: []byte{1}, want: 53000 + 16},
		{
			name: "shanghai creation", creation: true, homestead: true, shanghai: true,
			data: make([]byte, 33), want: 53000 + 33*4 + 2*2,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			gas, err := IntrinsicGas(test.data, len(test.accessList), test.accessList.StorageKeys(),
				test.creation, test.homestead, test.shanghai)
			require.NoError(t, err)
			assert.Equal(t, test.want, gas)
		})
	}
}

func TestDefaultFeePolicyIntrinsicGas(t *testing.T) {
	key := newKey(t)
	tx := ethtypes.MustSignNewTx(key, testSigner, &ethtypes.AccessListTx{
		ChainID:  DefaultTxPoolConfig.ChainID,
		GasPrice: big.NewInt(1),
		Gas:      100000,
		To:       &testRecipient,
		Data:     []byte{0xff},
		AccessList: ethtypes.AccessList{
			{Address: testRecipient, StorageKeys: []common.Hash{{1}}},
		},
	})
	ptx := types.NewPoolTransaction(tx, common.Address{}, 1)

	gas, err := NewDefaultFeePolicy().IntrinsicGas(ptx)
	require.NoError(t, err)
	assert.Equal(t, uint64(21000+16+2400+1900), gas)
}

func TestEffectiveTip(t *testing.T) {
	key := newKey(t)
	policy := NewDefaultFeePolicy()
	dynamic := types.NewPoolTransaction(dynamicFeeTransaction(0, 21000, big.NewInt(100), big.NewInt(10), key), common.Address{}, 1)
	legacy := types.NewPoolTransaction(pricedTransaction(0, 21000, big.NewInt(40), key), common.Address{}, 2)

	tests := []struct {
		name    string
		tx      *types.PoolTransaction
		baseFee *uint256.Int
		want    uint64
	}{
		{name: "dynamic without base fee", tx: dynamic, want: 100},
		{name: "dynamic capped by tip", tx: dynamic, baseFee: uint256.NewInt(50), want: 10},
		{name: "dynamic capped by headroom", tx: dynamic, baseFee: uint256.NewInt(95), want: 5},
		{name: "dynamic below base fee", tx: dynamic, baseFee: uint256.NewInt(101), want: 0},
		{name: "legacy without base fee", tx: legacy, want: 40},
		{name: "legacy with base fee", tx: legacy, baseFee: uint256.NewInt(15), want: 25},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, policy.EffectiveTip(test.tx, test.baseFee).Uint64())
		})
	}
}
