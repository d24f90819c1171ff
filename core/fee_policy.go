package core

import (
	"math"

	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/NomicFoundation/hardhat-sub012/core/types"
)

// errGasUintOverflow is returned when the intrinsic gas does not fit in a uint64.
var errGasUintOverflow = errors.New("gas uint64 overflow")

// DefaultFeePolicy prices transactions with the rules of the latest hardfork
// the pool targets: EIP-2028 calldata, EIP-2930 access lists and EIP-3860
// init code words.
type DefaultFeePolicy struct {
	// Homestead charges the contract creation surcharge.
	Homestead bool
	// Shanghai charges EIP-3860 init code words on contract creation.
	Shanghai bool
}

// NewDefaultFeePolicy returns a policy with every supported fork active.
func NewDefaultFeePolicy() *DefaultFeePolicy {
	return &DefaultFeePolicy{Homestead: true, Shanghai: true}
}

// IntrinsicGas implements FeePolicy.
func (p *DefaultFeePolicy) IntrinsicGas(tx *types.PoolTransaction) (uint64, error) {
	return IntrinsicGas(tx.Data(), len(tx.AccessList()), tx.AccessList().StorageKeys(),
		tx.IsContractCreation(), p.Homestead, p.Shanghai)
}

// EffectiveTip implements FeePolicy: min(tipCap, feeCap - baseFee), clamped at zero.
func (p *DefaultFeePolicy) EffectiveTip(tx *types.PoolTransaction, baseFee *uint256.Int) *uint256.Int {
	feeCap, _ := uint256.FromBig(tx.GasFeeCap())
	if baseFee == nil {
		return feeCap
	}
	tipCap, _ := uint256.FromBig(tx.GasTipCap())
	if feeCap.Lt(baseFee) {
		return new(uint256.Int)
	}
	headroom := new(uint256.Int).Sub(feeCap, baseFee)
	if headroom.Lt(tipCap) {
		return headroom
	}
	return tipCap
}

// IntrinsicGas computes the 'intrinsic gas' for a message with the given data.
func IntrinsicGas(data []byte, accessAddresses, accessStorageKeys int, contractCreation, homestead, shanghai bool) (uint64, error) {
	// Set the starting gas for the raw transaction
	var gas uint64
	if contractCreation && homestead {
		gas = params.TxGasContractCreation
	} else {
		gas = params.TxGas
	}
	dataLen := uint64(len(data))
	// Bump the required gas by the amount of transactional data
	if dataLen > 0 {
		// Zero and non-zero bytes are priced differently
		var nz uint64
		for _, byt := range data {
			if byt != 0 {
				nz++
			}
		}
		// Make sure we don't exceed uint64 for all data combinations
		if (math.MaxUint64-gas)/params.TxDataNonZeroGasEIP2028 < nz {
			return 0, errGasUintOverflow
		}
		gas += nz * params.TxDataNonZeroGasEIP2028

		z := dataLen - nz
		if (math.MaxUint64-gas)/params.TxDataZeroGas < z {
			return 0, errGasUintOverflow
		}
		gas += z * params.TxDataZeroGas

		if contractCreation && shanghai {
			lenWords := (dataLen + 31) / 32
			if (math.MaxUint64-gas)/params.InitCodeWordGas < lenWords {
				return 0, errGasUintOverflow
			}
			gas += lenWords * params.InitCodeWordGas
		}
	}
	gas += uint64(accessAddresses) * params.TxAccessListAddressGas
	gas += uint64(accessStorageKeys) * params.TxAccessListStorageKeyGas
	return gas, nil
}
