package core

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/NomicFoundation/hardhat-sub012/core/types"
)

// validateTx checks whether a transaction is valid according to the consensus
// rules and adheres to some heuristic limits of the local node. nonce and
// balance are the confirmed state of the sender. It never modifies the pool.
func (pool *TxPool) validateTx(tx *types.PoolTransaction, nonce uint64, balance *big.Int) error {
	if _, ok := pool.current.getTx(tx.Hash()); ok {
		return &KnownTransactionError{Hash: tx.Hash()}
	}
	if tx.IsContractCreation() && len(tx.Data()) == 0 {
		return ErrEmptyContractCreation
	}
	if err := checkFunds(tx, balance); err != nil {
		return err
	}
	if tx.Nonce() < nonce {
		return &NonceTooLowError{TxNonce: tx.Nonce(), StateNonce: nonce}
	}
	intrGas, err := pool.feePolicy.IntrinsicGas(tx)
	if err != nil {
		return &IntrinsicGasError{Have: tx.GasLimit(), Want: ^uint64(0)}
	}
	if tx.GasLimit() < intrGas {
		return &IntrinsicGasError{Have: tx.GasLimit(), Want: intrGas}
	}
	if limit := pool.current.blockGasLimit; tx.GasLimit() > limit {
		return &GasLimitError{Gas: tx.GasLimit(), BlockGasLimit: limit}
	}
	if limit := pool.config.MaxTxDataSize; limit > 0 && uint64(len(tx.Data())) > limit {
		return &OversizedDataError{Size: len(tx.Data()), Limit: limit}
	}
	return nil
}

// checkExecutable re-checks a resident transaction against a newer state:
// funds and the block gas limit. Stale nonces are handled by the caller.
func checkExecutable(tx *types.PoolTransaction, balance *big.Int, blockGasLimit uint64) error {
	if err := checkFunds(tx, balance); err != nil {
		return err
	}
	if tx.GasLimit() > blockGasLimit {
		return &GasLimitError{Gas: tx.GasLimit(), BlockGasLimit: blockGasLimit}
	}
	return nil
}

// checkFunds verifies gas * feeCap + value <= balance.
func checkFunds(tx *types.PoolTransaction, balance *big.Int) error {
	cost, overflow := tx.Cost()
	if overflow {
		return &InsufficientFundsError{Balance: new(big.Int).Set(balance)}
	}
	bal, of := uint256.FromBig(balance)
	if !of && bal.Lt(cost) {
		return &InsufficientFundsError{Cost: cost.ToBig(), Balance: new(big.Int).Set(balance)}
	}
	return nil
}
