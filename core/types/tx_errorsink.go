package types

import (
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/NomicFoundation/hardhat-sub012/internal/utils"
)

const (
	// DefaultTxErrorSinkLimit is the number of reports kept when no limit is given.
	DefaultTxErrorSinkLimit = 1024
	logTag                  = "[TransactionErrorSink]"
)

// TransactionErrorReport ..
type TransactionErrorReport struct {
	TxHashID             string `json:"tx-hash-id"`
	Sender               string `json:"sender"`
	Nonce                uint64 `json:"nonce"`
	TimestampOfRejection int64  `json:"time-at-rejection"`
	ErrMessage           string `json:"error-message"`
}

// TransactionErrorReports ..
type TransactionErrorReports []*TransactionErrorReport

// TransactionErrorSink is where all rejected or dropped transactions get reported.
// Note that the keys of the lru cache are tx-hash strings.
type TransactionErrorSink struct {
	failedTxs *lru.Cache
}

// NewTransactionErrorSink creates a sink keeping at most limit reports.
func NewTransactionErrorSink(limit int) *TransactionErrorSink {
	if limit <= 0 {
		limit = DefaultTxErrorSinkLimit
	}
	failedTxs, _ := lru.New(limit)
	return &TransactionErrorSink{
		failedTxs: failedTxs,
	}
}

// Add a transaction to the error sink with the given error
func (sink *TransactionErrorSink) Add(tx *PoolTransaction, err error) {
	// no-op if no error is provided
	if err == nil || tx == nil {
		return
	}
	hash := tx.Hash().String()
	sink.failedTxs.Add(hash, &TransactionErrorReport{
		TxHashID:             hash,
		Sender:               tx.Sender().Hex(),
		Nonce:                tx.Nonce(),
		TimestampOfRejection: time.Now().Unix(),
		ErrMessage:           err.Error(),
	})
	utils.Logger().Debug().
		Str("tag", logTag).
		Str("tx-hash-id", hash).
		Err(err).
		Msg("Added transaction error message")
}

// Contains checks if there is an error associated with the given hash
func (sink *TransactionErrorSink) Contains(hash string) bool {
	return sink.failedTxs.Contains(hash)
}

// Get returns the report stored for hash, if any.
func (sink *TransactionErrorSink) Get(hash string) (*TransactionErrorReport, bool) {
	v, ok := sink.failedTxs.Get(hash)
	if !ok {
		return nil, false
	}
	report, ok := v.(*TransactionErrorReport)
	return report, ok
}

// Remove a transaction's error from the error sink
func (sink *TransactionErrorSink) Remove(tx *PoolTransaction) {
	hash := tx.Hash().String()
	sink.failedTxs.Remove(hash)
	utils.Logger().Debug().
		Str("tag", logTag).
		Str("tx-hash-id", hash).
		Msg("Removed transaction error message")
}

// Report returns every stored report, oldest first.
func (sink *TransactionErrorSink) Report() TransactionErrorReports {
	reports := TransactionErrorReports{}
	for _, txHash := range sink.failedTxs.Keys() {
		fetched, ok := sink.failedTxs.Peek(txHash)
		if !ok {
			utils.Logger().Warn().
				Str("tag", logTag).
				Interface("tx-hash-id", txHash).
				Msg("Error not found in sink")
			continue
		}
		report, ok := fetched.(*TransactionErrorReport)
		if !ok {
			utils.Logger().Error().
				Str("tag", logTag).
				Interface("tx-hash-id", txHash).
				Msg("Invalid type of value in sink")
			continue
		}
		reports = append(reports, report)
	}
	return reports
}

// Count ..
func (sink *TransactionErrorSink) Count() int {
	return sink.failedTxs.Len()
}
