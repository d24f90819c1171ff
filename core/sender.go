package core

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// signerRecoverer recovers senders with the latest go-ethereum signer of a chain.
type signerRecoverer struct {
	signer ethtypes.Signer
}

// NewSignerRecoverer returns a SenderRecoverer accepting every transaction type
// known to go-ethereum for the given chain id.
func NewSignerRecoverer(chainID *big.Int) SenderRecoverer {
	return &signerRecoverer{signer: ethtypes.LatestSignerForChainID(chainID)}
}

func (r *signerRecoverer) Sender(tx *ethtypes.Transaction) (common.Address, error) {
	from, err := ethtypes.Sender(r.signer, tx)
	if err != nil {
		return common.Address{}, errors.Wrap(ErrInvalidSender, err.Error())
	}
	return from, nil
}
