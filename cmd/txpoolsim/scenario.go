package main

import (
	"crypto/ecdsa"
	"io/ioutil"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// scenario is the toml description of a simulation run.
type scenario struct {
	Accounts     []scenarioAccount
	Transactions []scenarioTx
}

type scenarioAccount struct {
	Name    string
	Key     string // hex private key, derived from Name when empty
	Balance string // decimal wei
	Nonce   uint64
}

type scenarioTx struct {
	From  string // account name
	Nonce uint64
	Gas   uint64
	To    string // hex address, contract creation when empty
	Value string // decimal wei
	Data  string // hex

	// Legacy pricing
	GasPrice string
	// EIP-1559 pricing, used when MaxFeePerGas is set
	MaxFeePerGas         string
	MaxPriorityFeePerGas string

	// Raw is a hex encoded signed transaction. When set, every other field
	// except From is ignored.
	Raw string
}

type account struct {
	name    string
	key     *ecdsa.PrivateKey
	address common.Address
	balance *big.Int
	nonce   uint64
}

func loadScenario(file string) (*scenario, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return parseScenario(b)
}

func parseScenario(b []byte) (*scenario, error) {
	var sc scenario
	if err := toml.Unmarshal(b, &sc); err != nil {
		return nil, errors.Wrap(err, "scenario file parse error")
	}
	if len(sc.Accounts) == 0 {
		return nil, errors.New("scenario has no accounts")
	}
	return &sc, nil
}

// accounts resolves the keys and balances of the scenario accounts.
func (sc *scenario) accounts() (map[string]*account, error) {
	accounts := make(map[string]*account, len(sc.Accounts))
	for _, a := range sc.Accounts {
		if a.Name == "" {
			return nil, errors.New("account without name")
		}
		if _, ok := accounts[a.Name]; ok {
			return nil, errors.Errorf("duplicate account %s", a.Name)
		}
		var (
			key *ecdsa.PrivateKey
			err error
		)
		if a.Key == "" {
			key, err = crypto.ToECDSA(crypto.Keccak256([]byte(a.Name)))
		} else {
			key, err = crypto.HexToECDSA(strings.TrimPrefix(a.Key, "0x"))
		}
		if err != nil {
			return nil, errors.Wrapf(err, "invalid key of account %s", a.Name)
		}
		balance, err := parseWei(a.Balance)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid balance of account %s", a.Name)
		}
		accounts[a.Name] = &account{
			name:    a.Name,
			key:     key,
			address: crypto.PubkeyToAddress(key.PublicKey),
			balance: balance,
			nonce:   a.Nonce,
		}
	}
	return accounts, nil
}

// build returns the signed transaction described by stx.
func (stx scenarioTx) build(acc *account, signer ethtypes.Signer, chainID *big.Int) (*ethtypes.Transaction, error) {
	if stx.Raw != "" {
		b, err := hexutil.Decode(stx.Raw)
		if err != nil {
			return nil, errors.Wrap(err, "invalid raw transaction")
		}
		tx := new(ethtypes.Transaction)
		if err := tx.UnmarshalBinary(b); err != nil {
			return nil, errors.Wrap(err, "invalid raw transaction")
		}
		return tx, nil
	}

	var to *common.Address
	if stx.To != "" {
		if !common.IsHexAddress(stx.To) {
			return nil, errors.Errorf("invalid recipient %q", stx.To)
		}
		addr := common.HexToAddress(stx.To)
		to = &addr
	}
	value, err := parseWei(stx.Value)
	if err != nil {
		return nil, errors.Wrap(err, "invalid value")
	}
	var data []byte
	if stx.Data != "" {
		if data, err = hexutil.Decode(stx.Data); err != nil {
			return nil, errors.Wrap(err, "invalid data")
		}
	}

	var txdata ethtypes.TxData
	if stx.MaxFeePerGas != "" {
		feeCap, err := parseWei(stx.MaxFeePerGas)
		if err != nil {
			return nil, errors.Wrap(err, "invalid max fee per gas")
		}
		tipCap, err := parseWei(stx.MaxPriorityFeePerGas)
		if err != nil {
			return nil, errors.Wrap(err, "invalid max priority fee per gas")
		}
		txdata = &ethtypes.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     stx.Nonce,
			GasTipCap: tipCap,
			GasFeeCap: feeCap,
			Gas:       stx.Gas,
			To:        to,
			Value:     value,
			Data:      data,
		}
	} else {
		gasPrice, err := parseWei(stx.GasPrice)
		if err != nil {
			return nil, errors.Wrap(err, "invalid gas price")
		}
		txdata = &ethtypes.LegacyTx{
			Nonce:    stx.Nonce,
			GasPrice: gasPrice,
			Gas:      stx.Gas,
			To:       to,
			Value:    value,
			Data:     data,
		}
	}
	return ethtypes.SignNewTx(acc.key, signer, txdata)
}

// parseWei parses a decimal or 0x-prefixed amount, empty meaning zero.
func parseWei(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok || v.Sign() < 0 {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	return v, nil
}
