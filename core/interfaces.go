package core

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/NomicFoundation/hardhat-sub012/core/types"
)

//go:generate mockgen -destination mock_core/world_state.go -package mock_core github.com/NomicFoundation/hardhat-sub012/core WorldState

// WorldState provides the confirmed account state the pool validates against.
// Values are read fresh for every validation or update pass and never cached
// by the pool.
type WorldState interface {
	ConfirmedNonce(ctx context.Context, addr common.Address) (uint64, error)
	Balance(ctx context.Context, addr common.Address) (*big.Int, error)
}

// SenderRecoverer derives the signing address of a transaction.
type SenderRecoverer interface {
	Sender(tx *ethtypes.Transaction) (common.Address, error)
}

// FeePolicy supplies the gas and fee rules the pool does not own.
type FeePolicy interface {
	// IntrinsicGas returns the minimum gas limit tx must declare.
	IntrinsicGas(tx *types.PoolTransaction) (uint64, error)
	// EffectiveTip returns the per-gas amount tx pays the block producer at the
	// given base fee. A nil base fee means a pre-London block.
	EffectiveTip(tx *types.PoolTransaction, baseFee *uint256.Int) *uint256.Int
}
