package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

const (
	//MaxPoolTransactionDataSize is a 128KB heuristic data limit for DOS prevention on txn
	MaxPoolTransactionDataSize = 128 * 1024
)

// PoolTransaction is a signed transaction as held by the tx pool: the payload,
// the recovered sender, and the arrival order assigned by the pool.
// A PoolTransaction is never modified after creation.
type PoolTransaction struct {
	tx      *ethtypes.Transaction
	sender  common.Address
	orderID uint64
}

// NewPoolTransaction wraps tx. The sender must already be recovered.
func NewPoolTransaction(tx *ethtypes.Transaction, sender common.Address, orderID uint64) *PoolTransaction {
	return &PoolTransaction{tx: tx, sender: sender, orderID: orderID}
}

// Tx returns the underlying signed transaction.
func (ptx *PoolTransaction) Tx() *ethtypes.Transaction { return ptx.tx }

// Sender returns the address that signed the transaction.
func (ptx *PoolTransaction) Sender() common.Address { return ptx.sender }

// OrderID returns the arrival order assigned by the pool.
func (ptx *PoolTransaction) OrderID() uint64 { return ptx.orderID }

// Hash returns the transaction hash, its identity inside the pool.
func (ptx *PoolTransaction) Hash() common.Hash { return ptx.tx.Hash() }

// Nonce returns the sender nonce of the transaction.
func (ptx *PoolTransaction) Nonce() uint64 { return ptx.tx.Nonce() }

// GasLimit returns the gas limit of the transaction.
func (ptx *PoolTransaction) GasLimit() uint64 { return ptx.tx.Gas() }

// Value returns the amount transferred.
func (ptx *PoolTransaction) Value() *big.Int { return ptx.tx.Value() }

// To returns the recipient, nil for contract creation.
func (ptx *PoolTransaction) To() *common.Address { return ptx.tx.To() }

// Data returns the calldata (or init code).
func (ptx *PoolTransaction) Data() []byte { return ptx.tx.Data() }

// AccessList returns the EIP-2930 access list, nil for legacy transactions.
func (ptx *PoolTransaction) AccessList() ethtypes.AccessList { return ptx.tx.AccessList() }

// IsContractCreation reports whether the transaction deploys a contract.
func (ptx *PoolTransaction) IsContractCreation() bool { return ptx.tx.To() == nil }

// IsDynamicFee reports whether the fee is given as a (fee cap, tip cap) pair.
func (ptx *PoolTransaction) IsDynamicFee() bool { return ptx.tx.Type() >= ethtypes.DynamicFeeTxType }

// GasFeeCap returns the max fee per gas. For legacy transactions it is the gas price.
func (ptx *PoolTransaction) GasFeeCap() *big.Int { return ptx.tx.GasFeeCap() }

// GasTipCap returns the max priority fee per gas. For legacy transactions it is
// the gas price.
func (ptx *PoolTransaction) GasTipCap() *big.Int { return ptx.tx.GasTipCap() }

// Cost returns gas * feeCap + value, the most the sender can be charged.
// overflow is set when the result does not fit 256 bits.
func (ptx *PoolTransaction) Cost() (cost *uint256.Int, overflow bool) {
	feeCap, of := uint256.FromBig(ptx.GasFeeCap())
	if of {
		return nil, true
	}
	value, of := uint256.FromBig(ptx.Value())
	if of {
		return nil, true
	}
	cost, of = new(uint256.Int).MulOverflow(feeCap, uint256.NewInt(ptx.GasLimit()))
	if of {
		return nil, true
	}
	if _, of = cost.AddOverflow(cost, value); of {
		return nil, true
	}
	return cost, false
}

// PoolTransactions is a PoolTransactions slice type for basic sorting.
type PoolTransactions []*PoolTransaction

// Len returns the length of s.
func (s PoolTransactions) Len() int { return len(s) }

// Swap swaps the i'th and the j'th element in s.
func (s PoolTransactions) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// Hashes returns the hashes of s in order.
func (s PoolTransactions) Hashes() []common.Hash {
	hashes := make([]common.Hash, len(s))
	for i, tx := range s {
		hashes[i] = tx.Hash()
	}
	return hashes
}

// Nonces returns the nonces of s in order.
func (s PoolTransactions) Nonces() []uint64 {
	nonces := make([]uint64, len(s))
	for i, tx := range s {
		nonces[i] = tx.Nonce()
	}
	return nonces
}
