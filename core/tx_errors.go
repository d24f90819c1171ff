package core

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidSender is returned if the transaction contains an invalid signature.
	ErrInvalidSender = errors.New("invalid sender")

	// ErrKnownTransaction is returned if a transaction that is already in the pool
	// attempting to be added to the pool.
	ErrKnownTransaction = errors.New("known transaction")

	// ErrEmptyContractCreation is returned for a contract creation without init code.
	ErrEmptyContractCreation = errors.New("contract creation without any data provided")

	// ErrInsufficientFunds is returned if the total cost of executing a transaction
	// is higher than the balance of the user's account.
	ErrInsufficientFunds = errors.New("insufficient funds for gas * price + value")

	// ErrNonceTooLow is returned if the nonce of a transaction is lower than the
	// one present in the local chain.
	ErrNonceTooLow = errors.New("nonce too low")

	// ErrIntrinsicGas is returned if the transaction is specified to use less gas
	// than required to start the invocation.
	ErrIntrinsicGas = errors.New("intrinsic gas too low")

	// ErrGasLimit is returned if a transaction's requested gas limit exceeds the
	// maximum allowance of the current block.
	ErrGasLimit = errors.New("exceeds block gas limit")

	// ErrReplaceUnderpriced is returned if a transaction is attempted to be replaced
	// with a different one without the required price bump.
	ErrReplaceUnderpriced = errors.New("replacement transaction underpriced")

	// ErrOversizedData is returned if the input data of a transaction is greater
	// than some meaningful limit a user might use. This is not a consensus error
	// making the transaction invalid, rather a DOS protection.
	ErrOversizedData = errors.New("oversized data")

	// ErrPredecessorInvalidated is reported for pending transactions dropped
	// because a lower nonce of the same sender became invalid.
	ErrPredecessorInvalidated = errors.New("preceding transaction of the sender was invalidated")
)

var poolErrors = []error{
	ErrInvalidSender,
	ErrKnownTransaction,
	ErrEmptyContractCreation,
	ErrInsufficientFunds,
	ErrNonceTooLow,
	ErrIntrinsicGas,
	ErrGasLimit,
	ErrReplaceUnderpriced,
	ErrOversizedData,
	ErrPredecessorInvalidated,
}

// errorLabel maps err to the message of the pool error it wraps, keeping
// metric label values bounded.
func errorLabel(err error) string {
	for _, e := range poolErrors {
		if errors.Is(err, e) {
			return e.Error()
		}
	}
	return "other"
}

// KnownTransactionError reports a hash that already resides in the pool.
type KnownTransactionError struct {
	Hash common.Hash
}

func (e *KnownTransactionError) Error() string {
	return fmt.Sprintf("%v: %s", ErrKnownTransaction, e.Hash.Hex())
}

func (e *KnownTransactionError) Unwrap() error { return ErrKnownTransaction }

// InsufficientFundsError carries the upfront cost and the sender balance.
// Cost is nil when the cost does not fit in 256 bits.
type InsufficientFundsError struct {
	Cost    *big.Int
	Balance *big.Int
}

func (e *InsufficientFundsError) Error() string {
	if e.Cost == nil {
		return fmt.Sprintf("%v: upfront cost overflows 256 bits, balance %v", ErrInsufficientFunds, e.Balance)
	}
	return fmt.Sprintf("%v: have %v want %v", ErrInsufficientFunds, e.Balance, e.Cost)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// NonceTooLowError carries the transaction nonce and the confirmed nonce.
type NonceTooLowError struct {
	TxNonce    uint64
	StateNonce uint64
}

func (e *NonceTooLowError) Error() string {
	return fmt.Sprintf("%v: next nonce %d, tx nonce %d", ErrNonceTooLow, e.StateNonce, e.TxNonce)
}

func (e *NonceTooLowError) Unwrap() error { return ErrNonceTooLow }

// IntrinsicGasError carries the gas limit and the intrinsic gas floor.
type IntrinsicGasError struct {
	Have uint64
	Want uint64
}

func (e *IntrinsicGasError) Error() string {
	return fmt.Sprintf("%v: have %d, want %d", ErrIntrinsicGas, e.Have, e.Want)
}

func (e *IntrinsicGasError) Unwrap() error { return ErrIntrinsicGas }

// GasLimitError carries the transaction gas limit and the block gas limit.
type GasLimitError struct {
	Gas           uint64
	BlockGasLimit uint64
}

func (e *GasLimitError) Error() string {
	return fmt.Sprintf("%v: transaction gas limit %d, block gas limit %d", ErrGasLimit, e.Gas, e.BlockGasLimit)
}

func (e *GasLimitError) Unwrap() error { return ErrGasLimit }

// Fee dimensions named in ReplaceUnderpricedError.
const (
	FeeFieldGasPrice             = "gasPrice"
	FeeFieldMaxFeePerGas         = "maxFeePerGas"
	FeeFieldMaxPriorityFeePerGas = "maxPriorityFeePerGas"
)

// ReplaceUnderpricedError names the fee dimension that was too low, the
// minimum it needed and the nonce being replaced.
type ReplaceUnderpricedError struct {
	Field   string
	Minimum *big.Int
	Nonce   uint64
}

func (e *ReplaceUnderpricedError) Error() string {
	return fmt.Sprintf("%v: a %s of at least %v is necessary to replace the existing transaction with nonce %d",
		ErrReplaceUnderpriced, e.Field, e.Minimum, e.Nonce)
}

func (e *ReplaceUnderpricedError) Unwrap() error { return ErrReplaceUnderpriced }

// OversizedDataError carries the calldata size and the configured limit.
type OversizedDataError struct {
	Size  int
	Limit uint64
}

func (e *OversizedDataError) Error() string {
	return fmt.Sprintf("%v: transaction size %d, limit %d", ErrOversizedData, e.Size, e.Limit)
}

func (e *OversizedDataError) Unwrap() error { return ErrOversizedData }
