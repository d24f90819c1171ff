package core

import (
	"math/big"

	"github.com/NomicFoundation/hardhat-sub012/core/types"
	"github.com/NomicFoundation/hardhat-sub012/internal/utils"
)

// InvalidationPolicy is applied to the pending transactions that follow one
// invalidated by a state update.
type InvalidationPolicy string

const (
	// DemoteFollowers moves the followers to the queue.
	DemoteFollowers InvalidationPolicy = "demote"
	// DropFollowers removes the followers from the pool.
	DropFollowers InvalidationPolicy = "drop"
)

// TxPoolConfig are the configuration parameters of the transaction pool.
type TxPoolConfig struct {
	ChainID *big.Int // Chain id used to recover senders of EIP-155 and typed transactions

	PriceBump uint64 // Minimum price bump (percent) to replace an already existing transaction (nonce)

	// Invalidation decides the fate of the pending transactions following the
	// first one of a sender invalidated by a state update.
	Invalidation InvalidationPolicy

	BlockGasLimit uint64 // Initial block gas limit
	MaxTxDataSize uint64 // Maximum calldata size accepted, 0 disables the check

	ErrorSinkSize int // Number of rejected/dropped transaction reports kept
}

// DefaultTxPoolConfig contains the default configurations for the transaction
// pool.
var DefaultTxPoolConfig = TxPoolConfig{
	ChainID: big.NewInt(31337),

	PriceBump:    10, // ceil(old * 1.10)
	Invalidation: DemoteFollowers,

	BlockGasLimit: 30_000_000,
	MaxTxDataSize: types.MaxPoolTransactionDataSize,

	ErrorSinkSize: types.DefaultTxErrorSinkLimit,
}

// sanitize checks the provided user configurations and changes anything that's
// unreasonable or unworkable.
func (config *TxPoolConfig) sanitize() TxPoolConfig {
	conf := *config
	if conf.ChainID == nil || conf.ChainID.Sign() <= 0 {
		utils.Logger().Warn().
			Str("updated", DefaultTxPoolConfig.ChainID.String()).
			Msg("Sanitizing invalid txpool chain id")
		conf.ChainID = new(big.Int).Set(DefaultTxPoolConfig.ChainID)
	}
	if conf.PriceBump < 1 {
		utils.Logger().Warn().
			Uint64("provided", conf.PriceBump).
			Uint64("updated", DefaultTxPoolConfig.PriceBump).
			Msg("Sanitizing invalid txpool price bump")
		conf.PriceBump = DefaultTxPoolConfig.PriceBump
	}
	if conf.Invalidation != DemoteFollowers && conf.Invalidation != DropFollowers {
		utils.Logger().Warn().
			Str("provided", string(conf.Invalidation)).
			Str("updated", string(DefaultTxPoolConfig.Invalidation)).
			Msg("Sanitizing invalid txpool invalidation policy")
		conf.Invalidation = DefaultTxPoolConfig.Invalidation
	}
	if conf.BlockGasLimit == 0 {
		utils.Logger().Warn().
			Uint64("provided", conf.BlockGasLimit).
			Uint64("updated", DefaultTxPoolConfig.BlockGasLimit).
			Msg("Sanitizing invalid txpool block gas limit")
		conf.BlockGasLimit = DefaultTxPoolConfig.BlockGasLimit
	}
	if conf.ErrorSinkSize <= 0 {
		utils.Logger().Warn().
			Int("provided", conf.ErrorSinkSize).
			Int("updated", DefaultTxPoolConfig.ErrorSinkSize).
			Msg("Sanitizing invalid txpool error sink size")
		conf.ErrorSinkSize = DefaultTxPoolConfig.ErrorSinkSize
	}
	return conf
}
